package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

var errCacheMiss = errors.New("cache miss")

// --- Mock MapRepository ---

type mockMapRepo struct {
	mu   sync.Mutex
	docs map[string]*domain.MapDocument
	seq  int

	projectFn        func(ctx context.Context, id string, p domain.GeoPoint) (float64, float64, error)
	viewportBoundsFn func(ctx context.Context, id string) (domain.Bounds, error)
	meridians        []float64
	viewports        []domain.Viewport
}

func newMockMapRepo() *mockMapRepo {
	return &mockMapRepo{docs: make(map[string]*domain.MapDocument)}
}

func (m *mockMapRepo) Create(ctx context.Context, doc *domain.MapDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	doc.ID = fmt.Sprintf("map-%d", m.seq)
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

func (m *mockMapRepo) GetByID(ctx context.Context, id string) (*domain.MapDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (m *mockMapRepo) SetCentralMeridian(ctx context.Context, id string, meridian float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meridians = append(m.meridians, meridian)
	if doc, ok := m.docs[id]; ok {
		doc.CentralMeridian = meridian
	}
	return nil
}

func (m *mockMapRepo) SetViewport(ctx context.Context, id string, vp domain.Viewport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewports = append(m.viewports, vp)
	if doc, ok := m.docs[id]; ok {
		doc.Viewport = vp
	}
	return nil
}

func (m *mockMapRepo) SetHiddenLayers(ctx context.Context, id string, layers []domain.Layer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc, ok := m.docs[id]; ok {
		doc.HiddenLayers = layers
	}
	return nil
}

func (m *mockMapRepo) ExcludeStations(ctx context.Context, id string, refs []domain.StationRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if doc.ExcludedIDs == nil {
		doc.ExcludedIDs = make(map[domain.Layer][]int64)
	}
	for _, r := range refs {
		doc.ExcludedIDs[r.Kind.Layer()] = append(doc.ExcludedIDs[r.Kind.Layer()], r.ID)
	}
	return nil
}

func (m *mockMapRepo) Project(ctx context.Context, id string, p domain.GeoPoint) (float64, float64, error) {
	if m.projectFn != nil {
		return m.projectFn(ctx, id, p)
	}
	return p.Lon, p.Lat, nil
}

func (m *mockMapRepo) ViewportBounds(ctx context.Context, id string) (domain.Bounds, error) {
	if m.viewportBoundsFn != nil {
		return m.viewportBoundsFn(ctx, id)
	}
	return domain.Bounds{MinLat: -90, MinLon: -180, MaxLat: 90, MaxLon: 180}, nil
}

// --- Mock LayerRepository ---

type mockLayerRepo struct {
	mu       sync.Mutex
	features map[string][]domain.Feature

	envelopeFn func(ctx context.Context, mapID string, layers []domain.Layer) (domain.Envelope, error)
}

func newMockLayerRepo() *mockLayerRepo {
	return &mockLayerRepo{features: make(map[string][]domain.Feature)}
}

func layerKey(mapID string, l domain.Layer) string {
	return mapID + "/" + string(l)
}

func (m *mockLayerRepo) Features(ctx context.Context, mapID string, layer domain.Layer) ([]domain.Feature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Feature(nil), m.features[layerKey(mapID, layer)]...), nil
}

func (m *mockLayerRepo) InsertFeatures(ctx context.Context, mapID string, features []domain.Feature) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range features {
		key := layerKey(mapID, f.Layer)
		f.ID = int64(len(m.features[key]) + 1)
		m.features[key] = append(m.features[key], f)
	}
	return nil
}

func (m *mockLayerRepo) ClearLayer(ctx context.Context, mapID string, layer domain.Layer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.features, layerKey(mapID, layer))
	return nil
}

func (m *mockLayerRepo) Envelope(ctx context.Context, mapID string, layers []domain.Layer) (domain.Envelope, error) {
	if m.envelopeFn != nil {
		return m.envelopeFn(ctx, mapID, layers)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	env := domain.EmptyEnvelope()
	for _, l := range layers {
		for _, f := range m.features[layerKey(mapID, l)] {
			env = env.Union(domain.EnvelopeOf(f.Points...))
		}
	}
	return env, nil
}

// --- Mock StationRepository ---

type mockStationRepo struct {
	activeFn func(ctx context.Context, kind domain.StationKind, date int64) ([]domain.Station, error)
	countFn  func(ctx context.Context, kind domain.StationKind) (int, error)
	fieldsFn func(ctx context.Context, kind domain.StationKind) ([]string, error)
	pageFn   func(ctx context.Context, kind domain.StationKind, start, count int) ([]domain.Station, error)
}

func (m *mockStationRepo) Active(ctx context.Context, kind domain.StationKind, date int64) ([]domain.Station, error) {
	if m.activeFn != nil {
		return m.activeFn(ctx, kind, date)
	}
	return nil, nil
}

func (m *mockStationRepo) Count(ctx context.Context, kind domain.StationKind) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, kind)
	}
	return 0, nil
}

func (m *mockStationRepo) Fields(ctx context.Context, kind domain.StationKind) ([]string, error) {
	if m.fieldsFn != nil {
		return m.fieldsFn(ctx, kind)
	}
	return nil, nil
}

func (m *mockStationRepo) Page(ctx context.Context, kind domain.StationKind, start, count int) ([]domain.Station, error) {
	if m.pageFn != nil {
		return m.pageFn(ctx, kind, start, count)
	}
	return nil, nil
}

func (m *mockStationRepo) SetFields(ctx context.Context, kind domain.StationKind, fields []string) error {
	return nil
}

func (m *mockStationRepo) UpsertBatch(ctx context.Context, stations []domain.Station) error {
	return nil
}

// --- Mock ElevationRepository ---

type mockElevationRepo struct {
	elevationFn func(ctx context.Context, p domain.GeoPoint) (float64, bool, error)
}

func (m *mockElevationRepo) ElevationMeters(ctx context.Context, p domain.GeoPoint) (float64, bool, error) {
	if m.elevationFn != nil {
		return m.elevationFn(ctx, p)
	}
	return 0, false, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu      sync.Mutex
	ready   []*domain.MapDocument
	results []*domain.MapResult
	err     error
}

func (m *mockPublisher) PublishMapReady(ctx context.Context, doc *domain.MapDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = append(m.ready, doc)
	return m.err
}

func (m *mockPublisher) PublishResult(ctx context.Context, result *domain.MapResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
	return m.err
}
