package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/accuritas/voyagemap/internal/adapters/geojson"
	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/core/usecases"
	"github.com/accuritas/voyagemap/internal/pkg/telemetry"
)

// ErrTypeInvalidRequest tags activity failures caused by the request itself.
// They are not retried.
const ErrTypeInvalidRequest = "invalid_request"

// VoyageMaps is the voyage map pipeline the activities drive.
// *usecases.VoyageMapService implements it.
type VoyageMaps interface {
	Create(ctx context.Context, req *domain.VoyageMapRequest) (*domain.MapDocument, error)
	Import(ctx context.Context, mapID string, req *domain.VoyageMapRequest) error
	Prepare(ctx context.Context, mapID string) (*domain.MapDocument, error)
	Announce(ctx context.Context, doc *domain.MapDocument)
}

// MapExporter reads a finished map with its layers. *usecases.MapService
// implements it.
type MapExporter interface {
	Export(ctx context.Context, id string) (*domain.MapExport, error)
}

// VoyageMapActivities holds the activity implementations for the voyage map workflow.
type VoyageMapActivities struct {
	Voyages   VoyageMaps
	Maps      MapExporter
	ExportDir string
}

// CreateMap stores an empty map document for the voyage.
func (a *VoyageMapActivities) CreateMap(ctx context.Context, req domain.VoyageMapRequest) (*domain.MapDocument, error) {
	doc, err := a.Voyages.Create(ctx, &req)
	if err != nil {
		return nil, classify(err)
	}
	activity.GetLogger(ctx).Info("map created", "map_id", doc.ID, "voyage_id", req.VoyageID)
	return doc, nil
}

// ImportTrack draws the voyage's track layers on the map.
func (a *VoyageMapActivities) ImportTrack(ctx context.Context, mapID string, req domain.VoyageMapRequest) error {
	if err := a.Voyages.Import(ctx, mapID, &req); err != nil {
		return classify(fmt.Errorf("import track of map %s: %w", mapID, err))
	}
	return nil
}

// PrepareMap centers and frames the map on its track.
func (a *VoyageMapActivities) PrepareMap(ctx context.Context, mapID string) (*domain.MapDocument, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanVoyagePrepare, attribute.String("map.id", mapID))
	doc, err := a.Voyages.Prepare(ctx, mapID)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, classify(fmt.Errorf("prepare map %s: %w", mapID, err))
	}
	return doc, nil
}

// ExportMap writes the map as <ExportDir>/<id>.geojson and returns the path.
// Without an export directory nothing is written.
func (a *VoyageMapActivities) ExportMap(ctx context.Context, mapID string) (string, error) {
	if a.ExportDir == "" {
		return "", nil
	}
	export, err := a.Maps.Export(ctx, mapID)
	if err != nil {
		return "", classify(fmt.Errorf("export map %s: %w", mapID, err))
	}
	data, err := geojson.Marshal(export)
	if err != nil {
		return "", fmt.Errorf("encode map %s: %w", mapID, err)
	}
	if err := os.MkdirAll(a.ExportDir, 0o755); err != nil {
		return "", fmt.Errorf("export dir: %w", err)
	}
	path := filepath.Join(a.ExportDir, mapID+".geojson")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	activity.GetLogger(ctx).Info("map exported", "map_id", mapID, "path", path)
	return path, nil
}

// AnnounceMap publishes the map-ready event.
func (a *VoyageMapActivities) AnnounceMap(ctx context.Context, doc *domain.MapDocument) error {
	a.Voyages.Announce(ctx, doc)
	return nil
}

// classify marks request errors as non-retryable.
func classify(err error) error {
	if usecases.IsClientError(err) {
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidRequest, err)
	}
	return err
}
