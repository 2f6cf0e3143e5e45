package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	gj "github.com/paulmach/go.geojson"

	"github.com/accuritas/voyagemap/internal/adapters/geojson"
	"github.com/accuritas/voyagemap/internal/core/domain"
)

// LayerRepo implements ports.LayerRepository with PostGIS geometries.
type LayerRepo struct {
	db *DB
}

// NewLayerRepo creates a new LayerRepo.
func NewLayerRepo(db *DB) *LayerRepo {
	return &LayerRepo{db: db}
}

// Features returns a layer's features in insertion order.
func (r *LayerRepo) Features(ctx context.Context, mapID string, layer domain.Layer) ([]domain.Feature, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, ST_AsGeoJSON(geom), COALESCE(attributes, '{}')
		FROM map_features
		WHERE map_id = $1 AND layer = $2
		ORDER BY id
	`, mapID, string(layer))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var features []domain.Feature
	for rows.Next() {
		var (
			f    = domain.Feature{Layer: layer}
			geom gj.Geometry
		)
		if err := rows.Scan(&f.ID, &geom, &f.Attributes); err != nil {
			return nil, err
		}
		if f.Points, err = geojson.Points(&geom); err != nil {
			return nil, fmt.Errorf("feature %d: %w", f.ID, err)
		}
		features = append(features, f)
	}
	return features, rows.Err()
}

// InsertFeatures appends features to their layers using pgx.Batch.
func (r *LayerRepo) InsertFeatures(ctx context.Context, mapID string, features []domain.Feature) error {
	batch := &pgx.Batch{}
	for _, f := range features {
		geom, err := geojson.MarshalGeometry(f.Points)
		if err != nil {
			return fmt.Errorf("%s feature: %w", f.Layer, err)
		}
		attrs := f.Attributes
		if attrs == nil {
			attrs = map[string]any{}
		}
		batch.Queue(`
			INSERT INTO map_features (map_id, layer, geom, attributes)
			VALUES ($1, $2, ST_SetSRID(ST_GeomFromGeoJSON($3), 4326), $4)
		`, mapID, string(f.Layer), string(geom), attrs)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range features {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

func (r *LayerRepo) ClearLayer(ctx context.Context, mapID string, layer domain.Layer) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM map_features WHERE map_id = $1 AND layer = $2`, mapID, string(layer))
	return err
}

// Envelope returns the extent of the given layers in the map's current
// projection.
func (r *LayerRepo) Envelope(ctx context.Context, mapID string, layers []domain.Layer) (domain.Envelope, error) {
	var minX, minY, maxX, maxY *float64
	err := r.db.Pool.QueryRow(ctx, `
		SELECT ST_XMin(e), ST_YMin(e), ST_XMax(e), ST_YMax(e) FROM (
			SELECT ST_Extent(CASE WHEN m.projected
			                      THEN ST_Transform(f.geom, `+mapProj+`)
			                      ELSE f.geom
			                 END) AS e
			FROM map_features f
			JOIN maps m ON m.id = f.map_id
			WHERE f.map_id = $1 AND f.layer = ANY($2)
		) t
	`, mapID, layerNames(layers)).Scan(&minX, &minY, &maxX, &maxY)
	if err != nil {
		return domain.Envelope{}, err
	}
	if minX == nil || minY == nil || maxX == nil || maxY == nil {
		return domain.EmptyEnvelope(), nil
	}
	return domain.Envelope{MinX: *minX, MinY: *minY, MaxX: *maxX, MaxY: *maxY}, nil
}
