package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/core/ports"
	"github.com/accuritas/voyagemap/internal/pkg/geospatial"
)

type indexEntry struct {
	index   *geospatial.StationIndex
	expires time.Time
}

// stationIndexCache keeps one spatial index per catalogue and filter date.
type stationIndexCache struct {
	stations ports.StationRepository
	ttl      time.Duration

	mu      sync.Mutex
	entries map[string]indexEntry
}

func newStationIndexCache(stations ports.StationRepository, ttl time.Duration) *stationIndexCache {
	return &stationIndexCache{stations: stations, ttl: ttl, entries: make(map[string]indexEntry)}
}

func (c *stationIndexCache) get(ctx context.Context, kind domain.StationKind, date int64) (*geospatial.StationIndex, error) {
	key := fmt.Sprintf("%s:%d", kind, date)
	now := time.Now()

	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if ok && now.Before(e.expires) {
		return e.index, nil
	}

	stations, err := c.stations.Active(ctx, kind, date)
	if err != nil {
		return nil, fmt.Errorf("active %s stations: %w", kind, err)
	}
	idx := geospatial.NewStationIndex(stations)

	c.mu.Lock()
	c.sweepLocked(time.Now())
	c.entries[key] = indexEntry{index: idx, expires: now.Add(c.ttl)}
	c.mu.Unlock()
	return idx, nil
}

// sweepLocked drops expired entries. c.mu must be held.
func (c *stationIndexCache) sweepLocked(now time.Time) {
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
}

func (c *stationIndexCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
