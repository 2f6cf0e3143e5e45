package usecases_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/core/usecases"
)

func countingStations(calls *int32) *mockStationRepo {
	return &mockStationRepo{
		activeFn: func(ctx context.Context, kind domain.StationKind, date int64) ([]domain.Station, error) {
			atomic.AddInt32(calls, 1)
			return []domain.Station{{ID: 1, Kind: kind, Location: domain.GeoPoint{Lat: 10, Lon: 10}}}, nil
		},
	}
}

func TestStationIndexCache_ReusesLiveEntry(t *testing.T) {
	var calls int32
	cache := usecases.NewStationIndexCache(countingStations(&calls), time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cache.Get(ctx, domain.StationASOS, 20200101); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 catalogue query, got %d", calls)
	}
}

func TestStationIndexCache_DropsExpiredEntries(t *testing.T) {
	var calls int32
	cache := usecases.NewStationIndexCache(countingStations(&calls), time.Millisecond)
	ctx := context.Background()

	for date := int64(20200101); date < 20200101+200; date++ {
		if _, err := cache.Get(ctx, domain.StationCOOP, date); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := cache.Get(ctx, domain.StationCOOP, 20210101); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if n := cache.Len(); n != 1 {
		t.Errorf("expected only the fresh entry to remain, got %d", n)
	}
}
