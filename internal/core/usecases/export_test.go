package usecases

import (
	"context"
	"time"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/core/ports"
	"github.com/accuritas/voyagemap/internal/pkg/geospatial"
)

// StationIndexCache exposes the forensic station index cache to tests.
type StationIndexCache struct{ c *stationIndexCache }

func NewStationIndexCache(stations ports.StationRepository, ttl time.Duration) StationIndexCache {
	return StationIndexCache{c: newStationIndexCache(stations, ttl)}
}

func (s StationIndexCache) Get(ctx context.Context, kind domain.StationKind, date int64) (*geospatial.StationIndex, error) {
	return s.c.get(ctx, kind, date)
}

func (s StationIndexCache) Len() int { return s.c.size() }
