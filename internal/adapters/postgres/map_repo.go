package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

// mapProj is the PROJ definition of a projected map, centered on its
// meridian. It expects the maps table aliased as m.
const mapProj = `'+proj=merc +lon_0=' || m.central_meridian || ' +datum=WGS84 +units=m +no_defs'`

// MapRepo implements ports.MapRepository with pgx.
type MapRepo struct {
	db *DB
}

// NewMapRepo creates a new MapRepo.
func NewMapRepo(db *DB) *MapRepo {
	return &MapRepo{db: db}
}

// Create inserts doc and fills in its ID and timestamps.
func (r *MapRepo) Create(ctx context.Context, doc *domain.MapDocument) error {
	ids := doc.ExcludedIDs
	if ids == nil {
		ids = map[domain.Layer][]int64{}
	}
	excluded, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode excluded ids: %w", err)
	}
	var poiLon, poiLat *float64
	if doc.PointOfInterest != nil {
		poiLon, poiLat = &doc.PointOfInterest.Lon, &doc.PointOfInterest.Lat
	}

	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO maps (kind, title, image_type, dpi, projected, central_meridian,
		                  center_x, center_y, width, height, hidden_layers,
		                  poi, radius_miles, filter_date, excluded_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		        CASE WHEN $12::float8 IS NULL THEN NULL ELSE ST_SetSRID(ST_MakePoint($12, $13), 4326) END,
		        $14, $15, $16)
		RETURNING id, created_at, updated_at
	`, doc.Kind, doc.Title, doc.ImageType, doc.DPI, doc.Projected, doc.CentralMeridian,
		doc.Viewport.CenterX, doc.Viewport.CenterY, doc.Viewport.Width, doc.Viewport.Height,
		layerNames(doc.HiddenLayers), poiLon, poiLat, doc.RadiusMiles, doc.FilterDate, excluded,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
}

// GetByID returns a map document.
func (r *MapRepo) GetByID(ctx context.Context, id string) (*domain.MapDocument, error) {
	var (
		doc            domain.MapDocument
		hidden         []string
		poiLat, poiLon *float64
		excluded       []byte
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, kind, COALESCE(title, ''), image_type, dpi, projected, central_meridian,
		       center_x, center_y, width, height, COALESCE(hidden_layers, '{}'),
		       ST_Y(poi), ST_X(poi), COALESCE(radius_miles, 0), COALESCE(filter_date, 0),
		       COALESCE(excluded_ids, '{}'), created_at, updated_at
		FROM maps WHERE id = $1
	`, id).Scan(
		&doc.ID, &doc.Kind, &doc.Title, &doc.ImageType, &doc.DPI, &doc.Projected, &doc.CentralMeridian,
		&doc.Viewport.CenterX, &doc.Viewport.CenterY, &doc.Viewport.Width, &doc.Viewport.Height, &hidden,
		&poiLat, &poiLon, &doc.RadiusMiles, &doc.FilterDate,
		&excluded, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, wrapNotFound(err, "map "+id)
	}

	for _, h := range hidden {
		doc.HiddenLayers = append(doc.HiddenLayers, domain.Layer(h))
	}
	if poiLat != nil && poiLon != nil {
		doc.PointOfInterest = &domain.GeoPoint{Lat: *poiLat, Lon: *poiLon}
	}
	if err := json.Unmarshal(excluded, &doc.ExcludedIDs); err != nil {
		return nil, fmt.Errorf("decode excluded ids: %w", err)
	}
	return &doc, nil
}

func (r *MapRepo) SetCentralMeridian(ctx context.Context, id string, meridian float64) error {
	return r.exec(ctx, id, `UPDATE maps SET central_meridian = $2, updated_at = now() WHERE id = $1`, meridian)
}

func (r *MapRepo) SetViewport(ctx context.Context, id string, vp domain.Viewport) error {
	return r.exec(ctx, id, `
		UPDATE maps SET center_x = $2, center_y = $3, width = $4, height = $5, updated_at = now()
		WHERE id = $1
	`, vp.CenterX, vp.CenterY, vp.Width, vp.Height)
}

func (r *MapRepo) SetHiddenLayers(ctx context.Context, id string, layers []domain.Layer) error {
	return r.exec(ctx, id, `UPDATE maps SET hidden_layers = $2, updated_at = now() WHERE id = $1`, layerNames(layers))
}

// ExcludeStations appends station ids to the map's per-layer exclusion
// lists.
func (r *MapRepo) ExcludeStations(ctx context.Context, id string, refs []domain.StationRef) error {
	add := make(map[domain.Layer][]int64)
	for _, ref := range refs {
		add[ref.Kind.Layer()] = append(add[ref.Kind.Layer()], ref.ID)
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT COALESCE(excluded_ids, '{}') FROM maps WHERE id = $1 FOR UPDATE`, id).Scan(&raw)
	if err != nil {
		return wrapNotFound(err, "map "+id)
	}
	var excluded map[domain.Layer][]int64
	if err := json.Unmarshal(raw, &excluded); err != nil {
		return fmt.Errorf("decode excluded ids: %w", err)
	}
	if excluded == nil {
		excluded = make(map[domain.Layer][]int64)
	}
	for layer, ids := range add {
		excluded[layer] = append(excluded[layer], ids...)
	}
	data, err := json.Marshal(excluded)
	if err != nil {
		return fmt.Errorf("encode excluded ids: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE maps SET excluded_ids = $2, updated_at = now() WHERE id = $1`, id, data); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Project converts p into the map's coordinates: meters in the map's
// Mercator projection, or degrees for geographic maps.
func (r *MapRepo) Project(ctx context.Context, id string, p domain.GeoPoint) (float64, float64, error) {
	var x, y float64
	err := r.db.Pool.QueryRow(ctx, `
		SELECT ST_X(g), ST_Y(g) FROM (
			SELECT CASE WHEN m.projected
			            THEN ST_Transform(ST_SetSRID(ST_MakePoint($2, $3), 4326), `+mapProj+`)
			            ELSE ST_SetSRID(ST_MakePoint($2, $3), 4326)
			       END AS g
			FROM maps m WHERE m.id = $1
		) t
	`, id, p.Lon, p.Lat).Scan(&x, &y)
	if err != nil {
		return 0, 0, wrapNotFound(err, "map "+id)
	}
	return x, y, nil
}

// ViewportBounds returns the geographic box covered by the map's viewport.
func (r *MapRepo) ViewportBounds(ctx context.Context, id string) (domain.Bounds, error) {
	var b domain.Bounds
	err := r.db.Pool.QueryRow(ctx, `
		SELECT ST_YMin(g), ST_XMin(g), ST_YMax(g), ST_XMax(g) FROM (
			SELECT CASE WHEN m.projected
			            THEN ST_Transform(ST_MakeEnvelope(m.center_x - m.width / 2, m.center_y - m.height / 2,
			                                              m.center_x + m.width / 2, m.center_y + m.height / 2),
			                              `+mapProj+`, 4326)
			            ELSE ST_MakeEnvelope(m.center_x - m.width / 2, m.center_y - m.height / 2,
			                                 m.center_x + m.width / 2, m.center_y + m.height / 2, 4326)
			       END AS g
			FROM maps m WHERE m.id = $1
		) t
	`, id).Scan(&b.MinLat, &b.MinLon, &b.MaxLat, &b.MaxLon)
	if err != nil {
		return domain.Bounds{}, wrapNotFound(err, "map "+id)
	}
	b.MinLat = math.Max(b.MinLat, -90)
	b.MaxLat = math.Min(b.MaxLat, 90)
	return b, nil
}

func (r *MapRepo) exec(ctx context.Context, id, sql string, args ...any) error {
	tag, err := r.db.Pool.Exec(ctx, sql, append([]any{id}, args...)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("map %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
