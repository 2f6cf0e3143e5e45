package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/core/ports"
	"github.com/accuritas/voyagemap/internal/pkg/geospatial"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// coordinateColumns are appended to a catalogue's own fields, per kind.
var coordinateColumns = map[domain.StationKind][]string{
	domain.StationASOS: {"LAT", "LAT_MIN", "LAT_SEC", "LAT_DIR", "LON", "LON_MIN", "LON_SEC", "LON_DIR", "LAT_DEC", "LON_DEC"},
	domain.StationAWOS: {"LAT_DEC", "LON_DEC"},
	domain.StationCOOP: {"LAT", "LAT_MIN", "LAT_SEC", "LON", "LON_MIN", "LON_SEC", "LAT_DEC", "LON_DEC"},
	domain.StationCRN:  {"LAT_DEC", "LON_DEC"},
	domain.StationNOS:  {"LAT", "LAT_MIN", "LAT_DIR", "LON", "LON_MIN", "LON_DIR", "LAT_DEC", "LON_DEC"},
}

// StationService exposes the station catalogues as tables.
type StationService struct {
	stations ports.StationRepository
	cache    ports.CacheService
	ttl      int
}

// NewStationService creates a new StationService.
func NewStationService(stations ports.StationRepository, cache ports.CacheService, opts RenderOptions) *StationService {
	return &StationService{stations: stations, cache: cache, ttl: opts.CacheTTLSeconds}
}

// Count returns the number of stations in a catalogue.
func (s *StationService) Count(ctx context.Context, kind domain.StationKind) (int, error) {
	if err := checkCatalogue(kind); err != nil {
		return 0, err
	}
	return s.stations.Count(ctx, kind)
}

// Headers returns the column names of a catalogue followed by its derived
// coordinate columns.
func (s *StationService) Headers(ctx context.Context, kind domain.StationKind) ([]string, error) {
	if err := checkCatalogue(kind); err != nil {
		return nil, err
	}
	cacheKey := "headers:" + string(kind)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var headers []string
			if err := json.Unmarshal(data, &headers); err == nil {
				return headers, nil
			}
		}
	}

	fields, err := s.stations.Fields(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("fields of %s: %w", kind, err)
	}
	headers := append(append([]string{}, fields...), coordinateColumns[kind]...)

	if s.cache != nil {
		if data, err := json.Marshal(headers); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.ttl)
		}
	}
	return headers, nil
}

// Rows returns the stations with start <= ID < start+count as string rows
// laid out like Headers.
func (s *StationService) Rows(ctx context.Context, kind domain.StationKind, start, count int) ([][]string, error) {
	if err := checkCatalogue(kind); err != nil {
		return nil, err
	}
	start, count = RowWindow(start, count)

	fields, err := s.stations.Fields(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("fields of %s: %w", kind, err)
	}
	page, err := s.stations.Page(ctx, kind, start, count)
	if err != nil {
		return nil, fmt.Errorf("page of %s: %w", kind, err)
	}

	rows := make([][]string, 0, len(page))
	for _, st := range page {
		row := make([]string, 0, len(fields)+len(coordinateColumns[kind]))
		for _, f := range fields {
			if f == "OBJECTID" {
				row = append(row, strconv.FormatInt(st.ID, 10))
				continue
			}
			row = append(row, st.Attributes[f])
		}
		coords, err := CoordinateCells(kind, st.Location)
		if err != nil {
			return nil, fmt.Errorf("station %s %d: %w", kind, st.ID, err)
		}
		rows = append(rows, append(row, coords...))
	}
	return rows, nil
}

// RowWindow clamps a requested catalogue window: IDs start at 1, and the
// count defaults to 100 and is capped at 1000.
func RowWindow(start, count int) (int, int) {
	if start < 1 {
		start = 1
	}
	if count <= 0 {
		count = defaultPageSize
	}
	if count > maxPageSize {
		count = maxPageSize
	}
	return start, count
}

// CoordinateCells renders p as the derived coordinate columns of kind.
func CoordinateCells(kind domain.StationKind, p domain.GeoPoint) ([]string, error) {
	decimals := []string{formatDecimal(p.Lat), formatDecimal(p.Lon)}

	switch kind {
	case domain.StationAWOS, domain.StationCRN:
		return decimals, nil
	case domain.StationNOS:
		lat, err := geospatial.ToDMS(p.Lat, geospatial.Latitude, geospatial.DecimalMinutes)
		if err != nil {
			return nil, err
		}
		lon, err := geospatial.ToDMS(p.Lon, geospatial.Longitude, geospatial.DecimalMinutes)
		if err != nil {
			return nil, err
		}
		return append([]string{
			strconv.Itoa(lat.Degrees), strconv.FormatFloat(lat.DecimalMinutes, 'f', 1, 64), lat.Hemisphere,
			strconv.Itoa(lon.Degrees), strconv.FormatFloat(lon.DecimalMinutes, 'f', 1, 64), lon.Hemisphere,
		}, decimals...), nil
	case domain.StationASOS, domain.StationCOOP:
		lat, err := geospatial.ToDMS(p.Lat, geospatial.Latitude, geospatial.WholeSeconds)
		if err != nil {
			return nil, err
		}
		lon, err := geospatial.ToDMS(p.Lon, geospatial.Longitude, geospatial.WholeSeconds)
		if err != nil {
			return nil, err
		}
		latCells := []string{strconv.Itoa(lat.Degrees), strconv.Itoa(lat.Minutes), strconv.Itoa(lat.Seconds)}
		lonCells := []string{strconv.Itoa(lon.Degrees), strconv.Itoa(lon.Minutes), strconv.Itoa(lon.Seconds)}
		if kind == domain.StationASOS {
			latCells = append(latCells, lat.Hemisphere)
			lonCells = append(lonCells, lon.Hemisphere)
		}
		out := append(latCells, lonCells...)
		return append(out, decimals...), nil
	}
	return nil, nil
}

// formatDecimal prints up to six decimals without trailing zeros.
func formatDecimal(v float64) string {
	s := strings.TrimRight(strconv.FormatFloat(v, 'f', 6, 64), "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func checkCatalogue(kind domain.StationKind) error {
	if kind == domain.StationSpotters {
		return fmt.Errorf("%w: %s has no catalogue table", domain.ErrUnknownLayer, kind)
	}
	if _, err := domain.ParseStationKind(string(kind)); err != nil {
		return err
	}
	return nil
}
