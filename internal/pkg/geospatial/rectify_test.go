package geospatial_test

import (
	"errors"
	"math"
	"testing"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/pkg/geospatial"
)

func pt(lon float64) domain.GeoPoint {
	return domain.GeoPoint{Lat: 10, Lon: lon}
}

func TestRectify_NoSignChangeUnchanged(t *testing.T) {
	lons := []float64{0, 5, 45, 90, 135, 179.5}
	for _, a := range lons {
		for _, b := range lons {
			seg, err := geospatial.Rectify(pt(a), pt(b), geospatial.GlobalCrossing{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seg.From.Lon != a || seg.To.Lon != b {
				t.Errorf("(%v,%v) changed to (%v,%v)", a, b, seg.From.Lon, seg.To.Lon)
			}
		}
	}
}

func TestRectify_Antimeridian(t *testing.T) {
	seg, err := geospatial.Rectify(pt(170), pt(-170), geospatial.GlobalCrossing{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seg.From.Lon != 170 || seg.To.Lon != 190 {
		t.Errorf("expected (170,190), got (%v,%v)", seg.From.Lon, seg.To.Lon)
	}

	seg, err = geospatial.Rectify(pt(-170), pt(170), geospatial.GlobalCrossing{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seg.From.Lon != 190 || seg.To.Lon != 170 {
		t.Errorf("expected (190,170), got (%v,%v)", seg.From.Lon, seg.To.Lon)
	}
}

func TestRectify_PrimeMeridian(t *testing.T) {
	seg, err := geospatial.Rectify(pt(10), pt(-5), geospatial.GlobalCrossing{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seg.From.Lon != 370 || seg.To.Lon != 355 {
		t.Errorf("expected (370,355), got (%v,%v)", seg.From.Lon, seg.To.Lon)
	}

	seg, err = geospatial.Rectify(pt(-5), pt(10), geospatial.GlobalCrossing{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seg.From.Lon != 355 || seg.To.Lon != 370 {
		t.Errorf("expected (355,370), got (%v,%v)", seg.From.Lon, seg.To.Lon)
	}
}

func TestRectify_BothNegative(t *testing.T) {
	seg, err := geospatial.Rectify(pt(-10), pt(-20), geospatial.GlobalCrossing{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seg.From.Lon != 350 || seg.To.Lon != 340 {
		t.Errorf("expected (350,340), got (%v,%v)", seg.From.Lon, seg.To.Lon)
	}
}

func TestRectify_WholeRoutePrimeMeridianDrawsAsSupplied(t *testing.T) {
	g := geospatial.GlobalCrossing{PrimeMeridian: true, Dateline: true}
	for _, c := range [][2]float64{{170, -170}, {10, -5}, {-10, -20}} {
		seg, err := geospatial.Rectify(pt(c[0]), pt(c[1]), g)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seg.From.Lon != c[0] || seg.To.Lon != c[1] {
			t.Errorf("%v: expected unchanged, got (%v,%v)", c, seg.From.Lon, seg.To.Lon)
		}
	}
}

func TestRectify_Idempotent(t *testing.T) {
	pairs := [][2]float64{{170, -170}, {-170, 170}, {10, -5}, {-5, 10}, {-10, -20}, {30, 40}}
	for _, p := range pairs {
		once, err := geospatial.Rectify(pt(p[0]), pt(p[1]), geospatial.GlobalCrossing{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		twice, err := geospatial.Rectify(once.From, once.To, geospatial.GlobalCrossing{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if once != twice {
			t.Errorf("%v: second application changed %+v to %+v", p, once, twice)
		}
	}
}

func TestRectify_LatitudeUntouched(t *testing.T) {
	seg, err := geospatial.Rectify(
		domain.GeoPoint{Lat: 21.5, Lon: 170},
		domain.GeoPoint{Lat: -3.25, Lon: -170},
		geospatial.GlobalCrossing{},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seg.From.Lat != 21.5 || seg.To.Lat != -3.25 {
		t.Errorf("latitudes changed: %+v", seg)
	}
}

func TestRectify_InvalidCoordinate(t *testing.T) {
	_, err := geospatial.Rectify(domain.GeoPoint{Lat: 95}, pt(0), geospatial.GlobalCrossing{})
	if !errors.Is(err, geospatial.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
	_, err = geospatial.Rectify(pt(0), pt(math.NaN()), geospatial.GlobalCrossing{})
	if !errors.Is(err, geospatial.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		prev, curr float64
		want       geospatial.CrossingClass
	}{
		{170, -170, geospatial.CrossingAntimeridianFromPositive},
		{-170, 170, geospatial.CrossingAntimeridianFromNegative},
		{10, -5, geospatial.CrossingPrimeMeridian},
		{-5, 10, geospatial.CrossingPrimeMeridian},
		{90, -90, geospatial.CrossingPrimeMeridian},
		{-10, -20, geospatial.CrossingNone},
		{0, -20, geospatial.CrossingNone},
		{20, 30, geospatial.CrossingNone},
	}
	for _, tc := range cases {
		if got := geospatial.Classify(tc.prev, tc.curr); got != tc.want {
			t.Errorf("Classify(%v,%v) = %s, want %s", tc.prev, tc.curr, got, tc.want)
		}
	}
}

func TestScanCrossings(t *testing.T) {
	transpacific := []domain.GeoPoint{pt(139.7), pt(160), pt(179), pt(-175), pt(-150), pt(-122.4)}
	g := geospatial.ScanCrossings(transpacific)
	if !g.Dateline || g.PrimeMeridian {
		t.Errorf("transpacific: unexpected %+v", g)
	}

	transatlantic := []domain.GeoPoint{pt(-74), pt(-40), pt(-10), pt(2), pt(4.5)}
	g = geospatial.ScanCrossings(transatlantic)
	if g.Dateline || !g.PrimeMeridian {
		t.Errorf("transatlantic: unexpected %+v", g)
	}

	if g := geospatial.ScanCrossings(nil); g.Dateline || g.PrimeMeridian {
		t.Errorf("empty route: unexpected %+v", g)
	}
}
