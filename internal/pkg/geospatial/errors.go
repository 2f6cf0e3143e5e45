package geospatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

var (
	// ErrInvalidCoordinate is returned for NaN or infinite input and for
	// latitudes outside [-90, 90]. Values are never clamped.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrDegenerateEllipsoid is returned when an ellipsoid has a non-positive
	// axis or zero flattening.
	ErrDegenerateEllipsoid = errors.New("degenerate ellipsoid")
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkLatitude(lat float64) error {
	if !finite(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinate, lat)
	}
	return nil
}

func checkLongitude(lon float64) error {
	if !finite(lon) {
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinate, lon)
	}
	return nil
}

// CheckPoint validates p. Longitude may lie outside [-180, 180].
func CheckPoint(p domain.GeoPoint) error {
	if err := checkLatitude(p.Lat); err != nil {
		return err
	}
	return checkLongitude(p.Lon)
}
