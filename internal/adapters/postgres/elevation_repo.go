package postgres

import (
	"context"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

// ElevationRepo samples the terrain raster loaded into the elevation table.
type ElevationRepo struct {
	db *DB
}

// NewElevationRepo creates a new ElevationRepo.
func NewElevationRepo(db *DB) *ElevationRepo {
	return &ElevationRepo{db: db}
}

func (r *ElevationRepo) ElevationMeters(ctx context.Context, p domain.GeoPoint) (float64, bool, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT ST_Value(rast, pt)
		FROM elevation, ST_SetSRID(ST_MakePoint($1, $2), 4326) AS pt
		WHERE ST_Intersects(rast, pt)
		LIMIT 1
	`, p.Lon, p.Lat)
	if err != nil {
		return 0, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, false, rows.Err()
	}
	var v *float64
	if err := rows.Scan(&v); err != nil {
		return 0, false, err
	}
	if v == nil {
		return 0, false, nil
	}
	return *v, true, nil
}
