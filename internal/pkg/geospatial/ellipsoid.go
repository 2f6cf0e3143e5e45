package geospatial

import (
	"fmt"
	"math"
	"strings"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

// Ellipsoid is a reference model of the earth's surface.
type Ellipsoid struct {
	Name              string  `json:"name"`
	SemiMajorAxis     float64 `json:"semi_major_axis"`
	SemiMinorAxis     float64 `json:"semi_minor_axis"`
	Flattening        float64 `json:"flattening"`
	InverseFlattening float64 `json:"inverse_flattening"`
}

// NewEllipsoid derives an ellipsoid from its semi-major axis in meters and
// inverse flattening.
func NewEllipsoid(name string, semiMajor, inverseFlattening float64) Ellipsoid {
	f := 1 / inverseFlattening
	return Ellipsoid{
		Name:              name,
		SemiMajorAxis:     semiMajor,
		SemiMinorAxis:     (1 - f) * semiMajor,
		Flattening:        f,
		InverseFlattening: inverseFlattening,
	}
}

// Validate rejects ellipsoids the geodesic solver cannot use.
func (e Ellipsoid) Validate() error {
	switch {
	case !finite(e.SemiMajorAxis) || e.SemiMajorAxis <= 0:
		return fmt.Errorf("%w: %s semi-major axis %v", ErrDegenerateEllipsoid, e.Name, e.SemiMajorAxis)
	case !finite(e.SemiMinorAxis) || e.SemiMinorAxis <= 0:
		return fmt.Errorf("%w: %s semi-minor axis %v", ErrDegenerateEllipsoid, e.Name, e.SemiMinorAxis)
	case !finite(e.Flattening) || e.Flattening <= 0 || e.Flattening >= 1:
		return fmt.Errorf("%w: %s flattening %v", ErrDegenerateEllipsoid, e.Name, e.Flattening)
	case math.Abs((1-e.Flattening)*e.SemiMajorAxis-e.SemiMinorAxis) > 1e-3:
		return fmt.Errorf("%w: %s axes disagree with flattening", ErrDegenerateEllipsoid, e.Name)
	}
	return nil
}

var (
	WGS84      = NewEllipsoid("WGS84", 6378137.0, 298.257223563)
	GRS80      = NewEllipsoid("GRS80", 6378137.0, 298.257222101)
	GRS67      = NewEllipsoid("GRS67", 6378160.0, 298.25)
	ANS        = NewEllipsoid("ANS", 6378160.0, 298.25)
	WGS72      = NewEllipsoid("WGS72", 6378135.0, 298.26)
	Clarke1858 = NewEllipsoid("Clarke1858", 6378293.645, 294.26)
	Clarke1880 = NewEllipsoid("Clarke1880", 6378249.145, 293.465)
)

var ellipsoids = []Ellipsoid{WGS84, GRS80, GRS67, ANS, WGS72, Clarke1858, Clarke1880}

// EllipsoidByName looks up a reference ellipsoid case-insensitively.
func EllipsoidByName(name string) (Ellipsoid, error) {
	for _, e := range ellipsoids {
		if strings.EqualFold(e.Name, name) {
			return e, nil
		}
	}
	return Ellipsoid{}, fmt.Errorf("%w: unknown ellipsoid %q", domain.ErrInvalidRequest, name)
}
