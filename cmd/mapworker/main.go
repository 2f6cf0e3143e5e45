package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.temporal.io/sdk/client"

	natsadapter "github.com/accuritas/voyagemap/internal/adapters/nats"
	"github.com/accuritas/voyagemap/internal/adapters/postgres"
	"github.com/accuritas/voyagemap/internal/adapters/valkey"
	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/core/ports"
	"github.com/accuritas/voyagemap/internal/core/usecases"
	"github.com/accuritas/voyagemap/internal/pkg/config"
	"github.com/accuritas/voyagemap/internal/pkg/logging"
	"github.com/accuritas/voyagemap/internal/pkg/metrics"
	"github.com/accuritas/voyagemap/internal/pkg/telemetry"
	"github.com/accuritas/voyagemap/internal/workflows"
)

func main() {
	cfg, err := config.Load("voyagemap-mapworker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("voyagemap-mapworker", cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	opts, err := usecases.RenderOptionsFrom(cfg.Render, cfg.Valkey.TTL)
	if err != nil {
		log.Fatalf("render options: %v", err)
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolStats(ctx, 15*time.Second)

	var cacheSvc ports.CacheService
	if cache, err := valkey.New(valkey.Options{Addr: cfg.Valkey.Addr, Password: cfg.Valkey.Password, DB: cfg.Valkey.DB}); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		cacheSvc = cache
		defer cache.Close()
	}

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.Replicas)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer publisher.Close()

	subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer subscriber.Close()

	mapRepo := postgres.NewMapRepo(db)
	layerRepo := postgres.NewLayerRepo(db)
	stationRepo := postgres.NewStationRepo(db)
	elevationRepo := postgres.NewElevationRepo(db)

	voyageSvc := usecases.NewVoyageMapService(mapRepo, layerRepo, publisher, opts)
	forensicSvc := usecases.NewForensicService(mapRepo, layerRepo, stationRepo, elevationRepo, cacheSvc, publisher, opts)
	stationSvc := usecases.NewStationService(stationRepo, cacheSvc, opts)
	requests := usecases.NewRequestService(voyageSvc, forensicSvc, stationSvc)

	handler := ports.MapRequestHandler(requests.Handle)

	// Voyage maps run on the renderer workers when temporal is enabled
	if cfg.Temporal.Enabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.Host,
			Namespace: cfg.Temporal.Namespace,
		})
		if err != nil {
			log.Fatalf("temporal client: %v", err)
		}
		defer tc.Close()
		handler = workflows.VoyageMapHandler(tc, cfg.Temporal.TaskQueue, handler)
		slog.Info("voyage maps delegated to temporal", "task_queue", cfg.Temporal.TaskQueue)
	}

	if err := subscriber.SubscribeMapRequests(ctx, traced(handler)); err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	slog.Info("map worker started", "nats", cfg.NATS.URL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutting down", "signal", sig.String())
}

// traced wraps a request handler in a span and records its build metrics.
func traced(next ports.MapRequestHandler) ports.MapRequestHandler {
	return func(ctx context.Context, req *domain.MapRequest) (*domain.MapResult, error) {
		ctx, span := telemetry.StartSpan(ctx, telemetry.SpanMapRequest,
			attribute.String("request.id", req.ID),
			attribute.String("request.type", string(req.Type)),
		)
		started := time.Now()
		res, err := next(ctx, req)
		telemetry.EndSpan(span, err)

		buildErr := err
		if buildErr == nil {
			buildErr = res.Err()
		}
		switch req.Type {
		case domain.MessageVoyageMap:
			metrics.ObserveBuild(string(domain.MapKindVoyage), started, buildErr)
			if buildErr == nil && req.Voyage != nil {
				metrics.ObserveCrossings(req.Voyage.Details)
			}
		case domain.MessageForensicMap:
			metrics.ObserveBuild(string(domain.MapKindForensic), started, buildErr)
		}
		return res, err
	}
}
