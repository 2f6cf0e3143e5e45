package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/accuritas/voyagemap/internal/pkg/config"
	"github.com/accuritas/voyagemap/internal/pkg/telemetry"
)

func TestStartSpan_RecordsError(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	_, span := telemetry.StartSpan(context.Background(), telemetry.SpanVoyageBuild)
	telemetry.EndSpan(span, errors.New("boom"))

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != telemetry.SpanVoyageBuild {
		t.Errorf("unexpected span name %s", spans[0].Name())
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected error event")
	}
}

func TestInitTracer_Stdout(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	shutdown, err := telemetry.InitTracer(context.Background(), config.TelemetryConfig{
		ServiceName: "voyagemap-test",
		Exporter:    "stdout",
		SampleRatio: 1,
	})
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	shutdown()
}

func TestInitTracer_UnknownExporter(t *testing.T) {
	_, err := telemetry.InitTracer(context.Background(), config.TelemetryConfig{Exporter: "zipkin"})
	if err == nil {
		t.Fatal("expected error for unknown exporter")
	}
}
