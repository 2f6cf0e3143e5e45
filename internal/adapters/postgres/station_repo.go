package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

// activeClause selects the stations of a catalogue in service on date $2
// (yyyymmdd). COOP dates are unreliable, so their end date is widened by
// ten years.
func activeClause(kind domain.StationKind) string {
	switch kind {
	case domain.StationNOS:
		return `begins <= $2 AND (ends IS NULL OR ends >= $2)`
	case domain.StationCOOP:
		return `begins <= $2 AND ABS(ends) >= $2 - 100000`
	case domain.StationASOS, domain.StationCRN:
		return `begins <= $2`
	}
	return `$2 = $2`
}

const stationColumns = `object_id, kind, COALESCE(name, ''), ST_Y(geom), ST_X(geom), elevation_ft, COALESCE(attributes, '{}')`

// StationRepo implements ports.StationRepository with pgx.
type StationRepo struct {
	db *DB
}

// NewStationRepo creates a new StationRepo.
func NewStationRepo(db *DB) *StationRepo {
	return &StationRepo{db: db}
}

func (r *StationRepo) Active(ctx context.Context, kind domain.StationKind, date int64) ([]domain.Station, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+stationColumns+`
		FROM stations
		WHERE kind = $1 AND `+activeClause(kind)+`
		ORDER BY object_id
	`, string(kind), date)
	if err != nil {
		return nil, err
	}
	return scanStations(rows)
}

func (r *StationRepo) Count(ctx context.Context, kind domain.StationKind) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM stations WHERE kind = $1`, string(kind)).Scan(&n)
	return n, err
}

// Fields returns the catalogue's column names. A catalogue that was never
// loaded has none.
func (r *StationRepo) Fields(ctx context.Context, kind domain.StationKind) ([]string, error) {
	var fields []string
	err := r.db.Pool.QueryRow(ctx, `SELECT fields FROM station_fields WHERE kind = $1`, string(kind)).Scan(&fields)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return fields, err
}

func (r *StationRepo) Page(ctx context.Context, kind domain.StationKind, start, count int) ([]domain.Station, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+stationColumns+`
		FROM stations
		WHERE kind = $1 AND object_id >= $2 AND object_id < $2 + $3
		ORDER BY object_id
	`, string(kind), start, count)
	if err != nil {
		return nil, err
	}
	return scanStations(rows)
}

func (r *StationRepo) SetFields(ctx context.Context, kind domain.StationKind, fields []string) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO station_fields (kind, fields) VALUES ($1, $2)
		ON CONFLICT (kind) DO UPDATE SET fields = EXCLUDED.fields
	`, string(kind), fields)
	return err
}

// UpsertBatch inserts or replaces stations using pgx.Batch.
func (r *StationRepo) UpsertBatch(ctx context.Context, stations []domain.Station) error {
	batch := &pgx.Batch{}
	for _, s := range stations {
		attrs := s.Attributes
		if attrs == nil {
			attrs = map[string]string{}
		}
		batch.Queue(`
			INSERT INTO stations (kind, object_id, name, geom, elevation_ft, begins, ends, attributes)
			VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326), $6,
			        $7, $8, $9)
			ON CONFLICT (kind, object_id) DO UPDATE
			SET name = EXCLUDED.name, geom = EXCLUDED.geom, elevation_ft = EXCLUDED.elevation_ft,
			    begins = EXCLUDED.begins, ends = EXCLUDED.ends, attributes = EXCLUDED.attributes
		`, string(s.Kind), s.ID, s.Name, s.Location.Lon, s.Location.Lat, s.ElevationFeet,
			s.Begins, s.Ends, attrs)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range stations {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

func scanStations(rows pgx.Rows) ([]domain.Station, error) {
	defer rows.Close()

	var stations []domain.Station
	for rows.Next() {
		var (
			s    domain.Station
			kind string
		)
		if err := rows.Scan(&s.ID, &kind, &s.Name, &s.Location.Lat, &s.Location.Lon, &s.ElevationFeet, &s.Attributes); err != nil {
			return nil, err
		}
		s.Kind = domain.StationKind(kind)
		stations = append(stations, s)
	}
	return stations, rows.Err()
}
