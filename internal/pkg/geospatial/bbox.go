package geospatial

import (
	"math"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

const metersPerDegreeLat = 111320.0

// BoundingBox returns a geographic box around center that contains every
// point within radiusMeters. Near the poles the longitude span widens to the
// full globe.
func BoundingBox(center domain.GeoPoint, radiusMeters float64) (domain.Bounds, error) {
	if err := CheckPoint(center); err != nil {
		return domain.Bounds{}, err
	}
	latDelta := radiusMeters / metersPerDegreeLat
	lonDelta := 180.0
	if c := math.Cos(toRad(center.Lat)); c > 1e-9 {
		lonDelta = math.Min(180, radiusMeters/(metersPerDegreeLat*c))
	}
	return domain.Bounds{
		MinLat: math.Max(-90, center.Lat-latDelta),
		MinLon: center.Lon - lonDelta,
		MaxLat: math.Min(90, center.Lat+latDelta),
		MaxLon: center.Lon + lonDelta,
	}, nil
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
