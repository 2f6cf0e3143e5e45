package workflows_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"go.temporal.io/sdk/testsuite"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/workflows"
)

type mockVoyages struct {
	mu        sync.Mutex
	calls     map[string]int
	announced []string

	importFn  func(ctx context.Context, mapID string, req *domain.VoyageMapRequest) error
	prepareFn func(ctx context.Context, mapID string) (*domain.MapDocument, error)
}

func (m *mockVoyages) called(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
	return m.calls[name]
}

func (m *mockVoyages) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockVoyages) Create(ctx context.Context, req *domain.VoyageMapRequest) (*domain.MapDocument, error) {
	m.called("create")
	return &domain.MapDocument{ID: "map-1", Kind: domain.MapKindVoyage, DPI: 96}, nil
}

func (m *mockVoyages) Import(ctx context.Context, mapID string, req *domain.VoyageMapRequest) error {
	m.called("import")
	if m.importFn != nil {
		return m.importFn(ctx, mapID, req)
	}
	return nil
}

func (m *mockVoyages) Prepare(ctx context.Context, mapID string) (*domain.MapDocument, error) {
	m.called("prepare")
	if m.prepareFn != nil {
		return m.prepareFn(ctx, mapID)
	}
	return &domain.MapDocument{
		ID:       mapID,
		Kind:     domain.MapKindVoyage,
		DPI:      96,
		Viewport: domain.Viewport{CenterX: 0, CenterY: 45, Width: 23, Height: 11.5},
	}, nil
}

func (m *mockVoyages) Announce(ctx context.Context, doc *domain.MapDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.announced = append(m.announced, doc.ID)
}

type mockExporter struct {
	exportFn func(ctx context.Context, id string) (*domain.MapExport, error)
}

func (m *mockExporter) Export(ctx context.Context, id string) (*domain.MapExport, error) {
	if m.exportFn != nil {
		return m.exportFn(ctx, id)
	}
	return &domain.MapExport{
		Map: &domain.MapDocument{ID: id, Kind: domain.MapKindVoyage},
		Layers: []domain.LayerFeatures{{
			Layer:    domain.LayerPorts,
			Features: []domain.Feature{domain.PointFeature(domain.LayerPorts, domain.GeoPoint{Lat: 40, Lon: -10}, nil)},
		}},
	}, nil
}

func input() workflows.VoyageMapInput {
	return workflows.VoyageMapInput{
		RequestID: "req-1",
		Request: domain.VoyageMapRequest{
			VoyageID: "v1",
			Details: []domain.VoyageDetail{
				{ID: 1, Type: domain.PositionATD, Lat: 40, Lon: -10},
				{ID: 2, Type: domain.PositionATA, Lat: 50, Lon: 10},
			},
		},
	}
}

func run(t *testing.T, acts *workflows.VoyageMapActivities) (*workflows.VoyageMapOutput, error) {
	t.Helper()
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(workflows.VoyageMapWorkflow)
	env.RegisterActivity(acts)

	env.ExecuteWorkflow(workflows.VoyageMapWorkflow, input())
	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		return nil, err
	}
	var out *workflows.VoyageMapOutput
	if err := env.GetWorkflowResult(&out); err != nil {
		t.Fatalf("workflow result: %v", err)
	}
	return out, nil
}

func TestVoyageMapWorkflow_Success(t *testing.T) {
	voyages := &mockVoyages{}
	dir := t.TempDir()

	out, err := run(t, &workflows.VoyageMapActivities{Voyages: voyages, Maps: &mockExporter{}, ExportDir: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Map == nil || out.Map.ID != "map-1" || out.Map.Viewport.CenterY != 45 {
		t.Fatalf("unexpected map %+v", out.Map)
	}
	if out.ExportPath == "" {
		t.Fatal("expected an export path")
	}
	data, err := os.ReadFile(out.ExportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(data) == 0 {
		t.Error("empty export")
	}
	if len(voyages.announced) != 1 || voyages.announced[0] != "map-1" {
		t.Errorf("expected map-1 announced once, got %v", voyages.announced)
	}
}

func TestVoyageMapWorkflow_NoExportDir(t *testing.T) {
	out, err := run(t, &workflows.VoyageMapActivities{Voyages: &mockVoyages{}, Maps: &mockExporter{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ExportPath != "" {
		t.Errorf("expected no export, got %q", out.ExportPath)
	}
}

func TestVoyageMapWorkflow_InvalidRequestIsNotRetried(t *testing.T) {
	voyages := &mockVoyages{
		importFn: func(ctx context.Context, mapID string, req *domain.VoyageMapRequest) error {
			return fmt.Errorf("%w: detail 1 has no position", domain.ErrInvalidRequest)
		},
	}

	_, err := run(t, &workflows.VoyageMapActivities{Voyages: voyages, Maps: &mockExporter{}})
	if err == nil {
		t.Fatal("expected workflow error")
	}
	if !workflows.IsInvalidRequest(err) {
		t.Errorf("expected invalid request error, got %v", err)
	}
	if n := voyages.count("import"); n != 1 {
		t.Errorf("expected 1 import attempt, got %d", n)
	}
	if len(voyages.announced) != 0 {
		t.Errorf("failed map announced: %v", voyages.announced)
	}
}

func TestVoyageMapWorkflow_RetriesTransientFailure(t *testing.T) {
	voyages := &mockVoyages{}
	voyages.prepareFn = func(ctx context.Context, mapID string) (*domain.MapDocument, error) {
		if voyages.count("prepare") == 1 {
			return nil, errors.New("connection reset")
		}
		return &domain.MapDocument{ID: mapID, Kind: domain.MapKindVoyage}, nil
	}

	out, err := run(t, &workflows.VoyageMapActivities{Voyages: voyages, Maps: &mockExporter{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Map.ID != "map-1" {
		t.Errorf("unexpected map %+v", out.Map)
	}
	if n := voyages.count("prepare"); n != 2 {
		t.Errorf("expected 2 prepare attempts, got %d", n)
	}
}

func TestVoyageMapWorkflow_ExportFailureIsNotFatal(t *testing.T) {
	voyages := &mockVoyages{}
	exporter := &mockExporter{
		exportFn: func(ctx context.Context, id string) (*domain.MapExport, error) {
			return nil, fmt.Errorf("map %s: %w", id, domain.ErrNotFound)
		},
	}

	out, err := run(t, &workflows.VoyageMapActivities{Voyages: voyages, Maps: exporter, ExportDir: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ExportPath != "" {
		t.Errorf("expected no export path, got %q", out.ExportPath)
	}
	if len(voyages.announced) != 1 {
		t.Errorf("expected map announced, got %v", voyages.announced)
	}
}

func TestVoyageMapWorkflowID(t *testing.T) {
	if got := workflows.VoyageMapWorkflowID("abc"); got != "voyage-map-abc" {
		t.Errorf("unexpected id %q", got)
	}
}
