package usecases

import (
	"context"
	"fmt"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/core/ports"
	"github.com/accuritas/voyagemap/internal/pkg/geospatial"
)

// trackLayers are the layers a voyage map frames, in drawing order.
var trackLayers = []domain.Layer{
	domain.LayerPorts, domain.LayerProgress, domain.LayerProjected, domain.LayerWaypoints,
}

// VoyageMapService builds voyage track maps.
type VoyageMapService struct {
	maps      ports.MapRepository
	layers    ports.LayerRepository
	publisher ports.EventPublisher
	opts      RenderOptions
}

// NewVoyageMapService creates a new VoyageMapService.
func NewVoyageMapService(
	maps ports.MapRepository,
	layers ports.LayerRepository,
	publisher ports.EventPublisher,
	opts RenderOptions,
) *VoyageMapService {
	return &VoyageMapService{maps: maps, layers: layers, publisher: publisher, opts: opts}
}

// Build creates a map for req, draws the track, frames it and announces the
// finished map.
func (s *VoyageMapService) Build(ctx context.Context, req *domain.VoyageMapRequest) (*domain.MapDocument, error) {
	doc, err := s.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.Import(ctx, doc.ID, req); err != nil {
		return nil, err
	}
	doc, err = s.Prepare(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	s.Announce(ctx, doc)
	return doc, nil
}

// Create validates req, including every detail, and stores an empty map
// document showing the world.
func (s *VoyageMapService) Create(ctx context.Context, req *domain.VoyageMapRequest) (*domain.MapDocument, error) {
	if len(req.Details) == 0 {
		return nil, fmt.Errorf("%w: voyage %q has no details", domain.ErrInvalidRequest, req.VoyageID)
	}
	imageType, err := domain.ParseImageType(req.ImageType)
	if err != nil {
		return nil, err
	}
	if _, err := BuildTrack(req.VesselName, req.Details); err != nil {
		return nil, err
	}

	doc := &domain.MapDocument{
		Kind:      domain.MapKindVoyage,
		ImageType: imageType,
		DPI:       s.opts.DPISmall,
		Projected: req.Projected,
		Viewport:  worldViewport(req.Projected),
	}
	if req.MapSize == domain.MapSizeLarge {
		doc.DPI = s.opts.DPILarge
		doc.Title = req.Title
	}
	if err := s.maps.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create map: %w", err)
	}
	return doc, nil
}

// Import replaces the track layers of a map with the voyage in req.
func (s *VoyageMapService) Import(ctx context.Context, mapID string, req *domain.VoyageMapRequest) error {
	track, err := BuildTrack(req.VesselName, req.Details)
	if err != nil {
		return err
	}
	for _, lf := range track.Layers() {
		if err := s.layers.ClearLayer(ctx, mapID, lf.Layer); err != nil {
			return fmt.Errorf("clear %s: %w", lf.Layer, err)
		}
		if len(lf.Features) == 0 {
			continue
		}
		if err := s.layers.InsertFeatures(ctx, mapID, lf.Features); err != nil {
			return fmt.Errorf("insert %s: %w", lf.Layer, err)
		}
	}
	return nil
}

// Prepare centers the map's projection on the track and frames the track
// with a margin. Maps without any track features are left as they are.
func (s *VoyageMapService) Prepare(ctx context.Context, mapID string) (*domain.MapDocument, error) {
	doc, err := s.maps.GetByID(ctx, mapID)
	if err != nil {
		return nil, err
	}

	env, err := s.layers.Envelope(ctx, mapID, trackLayers)
	if err != nil {
		return nil, fmt.Errorf("track envelope: %w", err)
	}
	if env.IsEmpty() {
		return doc, nil
	}

	if doc.Projected {
		meridian, err := s.Meridian(ctx, mapID)
		if err != nil {
			return nil, err
		}
		if err := s.maps.SetCentralMeridian(ctx, mapID, meridian); err != nil {
			return nil, fmt.Errorf("set central meridian: %w", err)
		}
		doc.CentralMeridian = meridian

		// Extents change with the projection.
		env, err = s.layers.Envelope(ctx, mapID, trackLayers)
		if err != nil {
			return nil, fmt.Errorf("track envelope: %w", err)
		}
	}

	vp, err := geospatial.Reframe(doc.Viewport, env, s.opts.MarginRatio)
	if err != nil {
		return nil, fmt.Errorf("reframe: %w", err)
	}
	if err := s.maps.SetViewport(ctx, mapID, vp); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	doc.Viewport = vp
	return doc, nil
}

// Meridian selects the central meridian for a map from its ports and its
// progress and projected tracks.
func (s *VoyageMapService) Meridian(ctx context.Context, mapID string) (float64, error) {
	ports, err := s.layers.Features(ctx, mapID, domain.LayerPorts)
	if err != nil {
		return 0, fmt.Errorf("ports: %w", err)
	}
	points := make([]domain.GeoPoint, 0, len(ports))
	for _, f := range ports {
		if len(f.Points) > 0 {
			points = append(points, f.Points[0])
		}
	}

	var tracks [][]domain.Segment
	for _, l := range []domain.Layer{domain.LayerProgress, domain.LayerProjected} {
		features, err := s.layers.Features(ctx, mapID, l)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", l, err)
		}
		var segs []domain.Segment
		for _, f := range features {
			segs = append(segs, f.Segments()...)
		}
		tracks = append(tracks, segs)
	}
	return geospatial.SelectMeridian(points, tracks)
}

// Announce publishes a map-ready event. Delivery failures do not fail the
// build.
func (s *VoyageMapService) Announce(ctx context.Context, doc *domain.MapDocument) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.PublishMapReady(ctx, doc)
}
