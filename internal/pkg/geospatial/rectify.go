package geospatial

import (
	"fmt"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

// CrossingClass describes how a segment's longitude changes sign.
type CrossingClass int

const (
	CrossingNone CrossingClass = iota
	CrossingPrimeMeridian
	CrossingAntimeridianFromPositive
	CrossingAntimeridianFromNegative
)

func (c CrossingClass) String() string {
	switch c {
	case CrossingNone:
		return "none"
	case CrossingPrimeMeridian:
		return "prime_meridian"
	case CrossingAntimeridianFromPositive:
		return "antimeridian_from_positive"
	case CrossingAntimeridianFromNegative:
		return "antimeridian_from_negative"
	}
	return fmt.Sprintf("CrossingClass(%d)", int(c))
}

// IsAntimeridian reports whether c is either antimeridian class.
func (c CrossingClass) IsAntimeridian() bool {
	return c == CrossingAntimeridianFromPositive || c == CrossingAntimeridianFromNegative
}

// GlobalCrossing summarises the crossings of a whole route. It is computed
// once up front and passed to every Rectify call for that route.
type GlobalCrossing struct {
	PrimeMeridian bool `json:"prime_meridian"`
	Dateline      bool `json:"dateline"`
}

// Classify inspects the x coordinates of consecutive points. A sign change
// with an endpoint beyond 90 on the positive side crosses the antimeridian;
// any other sign change crosses the prime meridian.
func Classify(prevX, currX float64) CrossingClass {
	switch {
	case prevX > 0 && currX < 0:
		if prevX > 90 {
			return CrossingAntimeridianFromPositive
		}
		return CrossingPrimeMeridian
	case prevX < 0 && currX > 0:
		if currX > 90 {
			return CrossingAntimeridianFromNegative
		}
		return CrossingPrimeMeridian
	}
	return CrossingNone
}

// ScanCrossings classifies every consecutive pair of a route, using the
// west-positive convention x = -longitude.
func ScanCrossings(points []domain.GeoPoint) GlobalCrossing {
	var g GlobalCrossing
	for i := 1; i < len(points); i++ {
		switch c := Classify(-points[i-1].Lon, -points[i].Lon); {
		case c.IsAntimeridian():
			g.Dateline = true
		case c == CrossingPrimeMeridian:
			g.PrimeMeridian = true
		}
	}
	return g
}

// Rectify returns the segment from prev to curr with longitudes offset by
// +360 where needed so the drawn line does not wrap across the map. Lon is
// treated as the drawing x coordinate. When g.PrimeMeridian is set the whole
// route is drawn as supplied and no per-segment offset is applied.
//
// Offsets are for drawing only. Distances and DMS text must be computed from
// the unrectified coordinates.
func Rectify(prev, curr domain.GeoPoint, g GlobalCrossing) (domain.Segment, error) {
	if err := CheckPoint(prev); err != nil {
		return domain.Segment{}, err
	}
	if err := CheckPoint(curr); err != nil {
		return domain.Segment{}, err
	}
	seg := domain.Segment{From: prev, To: curr}
	if g.PrimeMeridian {
		return seg, nil
	}

	switch Classify(prev.Lon, curr.Lon) {
	case CrossingAntimeridianFromPositive:
		seg.To.Lon += 360
	case CrossingAntimeridianFromNegative:
		seg.From.Lon += 360
	case CrossingPrimeMeridian:
		seg.From.Lon += 360
		seg.To.Lon += 360
	default:
		if prev.Lon < 0 && curr.Lon < 0 {
			seg.From.Lon += 360
			seg.To.Lon += 360
		}
	}
	return seg, nil
}
