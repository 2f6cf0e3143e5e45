package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/core/ports"
)

// StationLocator finds the catalogue stations shown on a forensic map.
type StationLocator interface {
	VisibleStations(ctx context.Context, doc *domain.MapDocument) ([]domain.Station, error)
}

// MapService reads finished maps and their layer contents.
type MapService struct {
	maps     ports.MapRepository
	layers   ports.LayerRepository
	stations StationLocator
	cache    ports.CacheService
	ttl      int
}

// NewMapService creates a new MapService.
func NewMapService(
	maps ports.MapRepository,
	layers ports.LayerRepository,
	stations StationLocator,
	cache ports.CacheService,
	opts RenderOptions,
) *MapService {
	return &MapService{maps: maps, layers: layers, stations: stations, cache: cache, ttl: opts.CacheTTLSeconds}
}

// Get returns a map document, using the cache when available.
func (s *MapService) Get(ctx context.Context, id string) (*domain.MapDocument, error) {
	cacheKey := "map:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var doc domain.MapDocument
			if err := json.Unmarshal(data, &doc); err == nil {
				return &doc, nil
			}
		}
	}

	doc, err := s.maps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(doc); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.ttl)
		}
	}
	return doc, nil
}

// Invalidate drops a cached map document after it changed.
func (s *MapService) Invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "map:"+id)
	}
}

// Export returns a map with the features of every visible layer.
func (s *MapService) Export(ctx context.Context, id string) (*domain.MapExport, error) {
	doc, err := s.maps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &domain.MapExport{Map: doc}
	switch doc.Kind {
	case domain.MapKindForensic:
		if err := s.exportForensic(ctx, doc, out); err != nil {
			return nil, err
		}
	default:
		for _, l := range trackLayers {
			if err := s.appendLayer(ctx, doc, l, out); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (s *MapService) exportForensic(ctx context.Context, doc *domain.MapDocument, out *domain.MapExport) error {
	if err := s.appendLayer(ctx, doc, domain.LayerPOI, out); err != nil {
		return err
	}
	if s.stations != nil {
		stations, err := s.stations.VisibleStations(ctx, doc)
		if err != nil {
			return err
		}
		byKind := make(map[domain.StationKind][]domain.Feature)
		for _, st := range stations {
			f := domain.PointFeature(st.Kind.Layer(), st.Location, map[string]any{"name": st.Name})
			f.ID = st.ID
			byKind[st.Kind] = append(byKind[st.Kind], f)
		}
		for _, k := range domain.StationKinds {
			if fs := byKind[k]; len(fs) > 0 {
				out.Layers = append(out.Layers, domain.LayerFeatures{Layer: k.Layer(), Features: fs})
			}
		}
	}
	return s.appendLayer(ctx, doc, domain.StationSpotters.Layer(), out)
}

func (s *MapService) appendLayer(ctx context.Context, doc *domain.MapDocument, l domain.Layer, out *domain.MapExport) error {
	if !doc.LayerVisible(l) {
		return nil
	}
	features, err := s.layers.Features(ctx, doc.ID, l)
	if err != nil {
		return fmt.Errorf("%s features: %w", l, err)
	}
	out.Layers = append(out.Layers, domain.LayerFeatures{Layer: l, Features: features})
	return nil
}
