package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/core/ports"
	"github.com/accuritas/voyagemap/internal/pkg/geospatial"
)

const poiName = "Point of Interest"

// ForensicService builds station context maps around a point of interest
// and writes their captions.
type ForensicService struct {
	maps      ports.MapRepository
	layers    ports.LayerRepository
	elevation ports.ElevationRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
	indexes   *stationIndexCache
	opts      RenderOptions
}

// NewForensicService creates a new ForensicService.
func NewForensicService(
	maps ports.MapRepository,
	layers ports.LayerRepository,
	stations ports.StationRepository,
	elevation ports.ElevationRepository,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	opts RenderOptions,
) *ForensicService {
	return &ForensicService{
		maps:      maps,
		layers:    layers,
		elevation: elevation,
		cache:     cache,
		publisher: publisher,
		indexes:   newStationIndexCache(stations, 10*time.Minute),
		opts:      opts,
	}
}

// Create stores a forensic map centered on the point of interest and zoomed
// so the requested radius fills the shorter side of the map.
func (s *ForensicService) Create(ctx context.Context, req *domain.ForensicMapRequest) (*domain.MapDocument, error) {
	if err := geospatial.CheckPoint(req.Location); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if req.RadiusMiles <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive", domain.ErrInvalidRequest)
	}
	if req.Date < 10000101 || req.Date > 99991231 {
		return nil, fmt.Errorf("%w: date %d is not yyyymmdd", domain.ErrInvalidRequest, req.Date)
	}
	for _, sp := range req.Spotters {
		if err := geospatial.CheckPoint(sp.Location); err != nil {
			return nil, fmt.Errorf("%w: spotter %q: %v", domain.ErrInvalidRequest, sp.Name, err)
		}
	}

	poi := req.Location
	doc := &domain.MapDocument{
		Kind:            domain.MapKindForensic,
		Title:           req.Title,
		ImageType:       domain.ImagePDF,
		DPI:             s.opts.DPILarge,
		Projected:       s.opts.ForensicProjected,
		Viewport:        worldViewport(s.opts.ForensicProjected),
		HiddenLayers:    req.HiddenLayers(),
		PointOfInterest: &poi,
		RadiusMiles:     req.RadiusMiles,
		FilterDate:      req.Date,
	}
	if err := s.maps.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create map: %w", err)
	}

	x, y, err := s.maps.Project(ctx, doc.ID, poi)
	if err != nil {
		return nil, fmt.Errorf("project point of interest: %w", err)
	}
	radius := geospatial.Convert(req.RadiusMiles, geospatial.Miles, mapUnits(doc.Projected))
	vp, err := geospatial.FrameRadius(doc.Viewport, x, y, radius)
	if err != nil {
		return nil, fmt.Errorf("frame radius: %w", err)
	}
	if err := s.maps.SetViewport(ctx, doc.ID, vp); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	doc.Viewport = vp

	features := []domain.Feature{domain.PointFeature(domain.LayerPOI, poi, nil)}
	for _, sp := range req.Spotters {
		features = append(features, domain.PointFeature(
			domain.StationSpotters.Layer(), sp.Location, map[string]any{"name": sp.Name},
		))
	}
	if err := s.layers.InsertFeatures(ctx, doc.ID, features); err != nil {
		return nil, fmt.Errorf("insert features: %w", err)
	}

	if s.publisher != nil {
		_ = s.publisher.PublishMapReady(ctx, doc)
	}
	return doc, nil
}

// VisibleStations returns the catalogue stations shown on a forensic map:
// visible layers only, active on the map's date, inside the viewport, and
// not excluded.
func (s *ForensicService) VisibleStations(ctx context.Context, doc *domain.MapDocument) ([]domain.Station, error) {
	bounds, err := s.maps.ViewportBounds(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("viewport bounds: %w", err)
	}

	var out []domain.Station
	for _, kind := range domain.StationKinds {
		if kind == domain.StationSpotters || !doc.LayerVisible(kind.Layer()) {
			continue
		}
		idx, err := s.indexes.get(ctx, kind, doc.FilterDate)
		if err != nil {
			return nil, err
		}
		excluded := make(map[int64]bool)
		for _, id := range doc.ExcludedIDs[kind.Layer()] {
			excluded[id] = true
		}
		for _, st := range idx.Within(bounds) {
			if !excluded[st.ID] {
				out = append(out, st)
			}
		}
	}
	return out, nil
}

// Caption lists the point of interest followed by every visible station and
// spotter with its elevation and distance from the point of interest.
func (s *ForensicService) Caption(ctx context.Context, mapID string) (*domain.Caption, error) {
	cacheKey := "caption:" + mapID
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var c domain.Caption
			if err := json.Unmarshal(data, &c); err == nil {
				return &c, nil
			}
		}
	}

	doc, err := s.maps.GetByID(ctx, mapID)
	if err != nil {
		return nil, err
	}
	if doc.Kind != domain.MapKindForensic {
		return nil, fmt.Errorf("%w: map %s is not a forensic map", domain.ErrInvalidRequest, mapID)
	}

	caption := &domain.Caption{MapID: mapID}
	poi := doc.PointOfInterest

	if poi != nil && doc.LayerVisible(domain.LayerPOI) {
		elev, err := s.terrainFeet(ctx, *poi)
		if err != nil {
			return nil, err
		}
		caption.Rows = append(caption.Rows, domain.CaptionRow{Name: poiName, Elevation: elev})
	}

	stations, err := s.VisibleStations(ctx, doc)
	if err != nil {
		return nil, err
	}
	for _, st := range stations {
		row, err := s.stationRow(ctx, st, poi)
		if err != nil {
			return nil, err
		}
		caption.Rows = append(caption.Rows, row)
	}

	if doc.LayerVisible(domain.StationSpotters.Layer()) {
		spotters, err := s.layers.Features(ctx, mapID, domain.StationSpotters.Layer())
		if err != nil {
			return nil, fmt.Errorf("spotters: %w", err)
		}
		for _, f := range spotters {
			if len(f.Points) == 0 {
				continue
			}
			name, _ := f.Attributes["name"].(string)
			st := domain.Station{ID: f.ID, Kind: domain.StationSpotters, Name: name, Location: f.Points[0]}
			row, err := s.stationRow(ctx, st, poi)
			if err != nil {
				return nil, err
			}
			caption.Rows = append(caption.Rows, row)
		}
	}

	if s.cache != nil {
		if data, err := json.Marshal(caption); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.opts.CacheTTLSeconds)
		}
	}
	return caption, nil
}

// RemoveStations hides individual stations from a forensic map.
func (s *ForensicService) RemoveStations(ctx context.Context, mapID string, refs []domain.StationRef) error {
	if len(refs) == 0 {
		return nil
	}
	if err := s.maps.ExcludeStations(ctx, mapID, refs); err != nil {
		return fmt.Errorf("exclude stations: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "caption:"+mapID)
	}
	return nil
}

func (s *ForensicService) stationRow(ctx context.Context, st domain.Station, poi *domain.GeoPoint) (domain.CaptionRow, error) {
	var miles float64
	if poi != nil {
		meters, err := geospatial.Distance(s.opts.Ellipsoid, st.Location, *poi)
		if err != nil {
			return domain.CaptionRow{}, fmt.Errorf("distance to %s %d: %w", st.Kind, st.ID, err)
		}
		miles = geospatial.MetersToMiles(meters)
	}
	elev, err := s.stationElevation(ctx, st)
	if err != nil {
		return domain.CaptionRow{}, err
	}
	return domain.CaptionRow{
		Name:          st.Name,
		Elevation:     elev,
		DistanceMiles: miles,
		Layer:         string(st.Kind),
		StationID:     strconv.FormatInt(st.ID, 10),
	}, nil
}

// stationElevation renders a station's elevation the way each catalogue
// records it.
func (s *ForensicService) stationElevation(ctx context.Context, st domain.Station) (string, error) {
	switch st.Kind {
	case domain.StationNOS:
		return "0ft", nil
	case domain.StationNWS:
		return "", nil
	case domain.StationSpotters:
		return s.terrainFeet(ctx, st.Location)
	case domain.StationCOOP:
		if st.ElevationFeet == nil || *st.ElevationFeet == domain.ElevationUnknown {
			return s.terrainFeet(ctx, st.Location)
		}
	case domain.StationAWOS:
		if st.ElevationFeet == nil {
			return "Unknown", nil
		}
	}
	if st.ElevationFeet == nil {
		return "", nil
	}
	return strconv.FormatFloat(*st.ElevationFeet, 'f', -1, 64) + "ft", nil
}

// terrainFeet samples the terrain model at p. Points outside the model
// render as an empty elevation.
func (s *ForensicService) terrainFeet(ctx context.Context, p domain.GeoPoint) (string, error) {
	if s.elevation == nil {
		return "", nil
	}
	meters, ok, err := s.elevation.ElevationMeters(ctx, p)
	if err != nil {
		return "", fmt.Errorf("elevation: %w", err)
	}
	if !ok {
		return "", nil
	}
	return fmt.Sprintf("%.2fft", geospatial.MetersToFeet(meters)), nil
}
