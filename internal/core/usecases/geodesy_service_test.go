package usecases_test

import (
	"errors"
	"math"
	"testing"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/core/usecases"
	"github.com/accuritas/voyagemap/internal/pkg/geospatial"
)

func TestGeodesyService_Distance(t *testing.T) {
	svc := usecases.NewGeodesyService(usecases.DefaultRenderOptions())

	res, err := svc.Distance("", domain.GeoPoint{Lat: 0, Lon: 0}, domain.GeoPoint{Lat: 0, Lon: 1}, geospatial.Kilometers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := geospatial.WGS84.SemiMajorAxis * math.Pi / 180
	if math.Abs(res.Meters-want) > 1e-3 {
		t.Errorf("expected %v m, got %v", want, res.Meters)
	}
	if math.Abs(res.Distance-want/1000) > 1e-6 {
		t.Errorf("expected %v km, got %v", want/1000, res.Distance)
	}
	if res.Ellipsoid != geospatial.WGS84.Name {
		t.Errorf("expected %s, got %s", geospatial.WGS84.Name, res.Ellipsoid)
	}
}

func TestGeodesyService_DistanceUnknownEllipsoid(t *testing.T) {
	svc := usecases.NewGeodesyService(usecases.DefaultRenderOptions())
	if _, err := svc.Distance("Everest", domain.GeoPoint{}, domain.GeoPoint{Lat: 1}, geospatial.Meters); err == nil {
		t.Error("expected error")
	}
}

func TestGeodesyService_DMS(t *testing.T) {
	svc := usecases.NewGeodesyService(usecases.DefaultRenderOptions())

	res, err := svc.DMS(domain.GeoPoint{Lat: 38.5, Lon: -77.25}, geospatial.WholeSeconds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != `38°30'00"N 77°15'00"W` {
		t.Errorf("unexpected text %q", res.Text)
	}

	if _, err := svc.DMS(domain.GeoPoint{Lat: 95}, geospatial.WholeSeconds); !errors.Is(err, geospatial.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestGeodesyService_Rectify(t *testing.T) {
	svc := usecases.NewGeodesyService(usecases.DefaultRenderOptions())

	segs, g, err := svc.Rectify([]domain.GeoPoint{{Lon: 170}, {Lon: -170}, {Lon: -160}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !g.Dateline || g.PrimeMeridian {
		t.Errorf("unexpected crossing summary %+v", g)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].To.Lon != 190 || segs[1].From.Lon != 190 || segs[1].To.Lon != 200 {
		t.Errorf("unexpected segments %+v", segs)
	}
}
