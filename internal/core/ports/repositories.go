package ports

import (
	"context"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

// MapRepository persists map documents. It owns the active projection and
// viewport of each map.
type MapRepository interface {
	Create(ctx context.Context, doc *domain.MapDocument) error
	GetByID(ctx context.Context, id string) (*domain.MapDocument, error)
	// SetCentralMeridian re-centers the map's projection on meridian degrees.
	SetCentralMeridian(ctx context.Context, id string, meridian float64) error
	// SetViewport makes vp the map's active extent.
	SetViewport(ctx context.Context, id string, vp domain.Viewport) error
	SetHiddenLayers(ctx context.Context, id string, layers []domain.Layer) error
	ExcludeStations(ctx context.Context, id string, refs []domain.StationRef) error
	// Project converts p into the map units of the map's projection.
	Project(ctx context.Context, id string, p domain.GeoPoint) (x, y float64, err error)
	// ViewportBounds returns the geographic box covered by the map's viewport.
	ViewportBounds(ctx context.Context, id string) (domain.Bounds, error)
}

// LayerRepository stores the features drawn on each map layer.
type LayerRepository interface {
	// Features returns a layer's features in insertion order.
	Features(ctx context.Context, mapID string, layer domain.Layer) ([]domain.Feature, error)
	InsertFeatures(ctx context.Context, mapID string, features []domain.Feature) error
	ClearLayer(ctx context.Context, mapID string, layer domain.Layer) error
	// Envelope returns the extent of the given layers in the map's current
	// projection. It is empty when the layers hold no features.
	Envelope(ctx context.Context, mapID string, layers []domain.Layer) (domain.Envelope, error)
}

// StationRepository reads and loads the station catalogues.
type StationRepository interface {
	// Active returns the stations of kind in service on date (yyyymmdd).
	Active(ctx context.Context, kind domain.StationKind, date int64) ([]domain.Station, error)
	Count(ctx context.Context, kind domain.StationKind) (int, error)
	// Fields returns the catalogue's attribute names in column order.
	Fields(ctx context.Context, kind domain.StationKind) ([]string, error)
	// Page returns stations with start <= ID < start+count, ordered by ID.
	Page(ctx context.Context, kind domain.StationKind, start, count int) ([]domain.Station, error)
	SetFields(ctx context.Context, kind domain.StationKind, fields []string) error
	UpsertBatch(ctx context.Context, stations []domain.Station) error
}

// ElevationRepository samples the terrain model.
type ElevationRepository interface {
	// ElevationMeters returns the terrain height at p. ok is false where the
	// model has no data.
	ElevationMeters(ctx context.Context, p domain.GeoPoint) (meters float64, ok bool, err error)
}
