package usecases

import (
	"fmt"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/pkg/geospatial"
)

// GeodesyService answers stand-alone geodetic queries.
type GeodesyService struct {
	ellipsoid geospatial.Ellipsoid
}

// NewGeodesyService creates a new GeodesyService using the configured
// ellipsoid.
func NewGeodesyService(opts RenderOptions) *GeodesyService {
	return &GeodesyService{ellipsoid: opts.Ellipsoid}
}

// DistanceResult is a geodesic distance expressed in the requested unit.
type DistanceResult struct {
	Ellipsoid      string  `json:"ellipsoid"`
	Distance       float64 `json:"distance"`
	Unit           string  `json:"unit"`
	Meters         float64 `json:"meters"`
	Azimuth        float64 `json:"azimuth"`
	ReverseAzimuth float64 `json:"reverse_azimuth"`
}

// Distance measures the geodesic between p1 and p2. An empty ellipsoid name
// selects the configured one.
func (s *GeodesyService) Distance(ellipsoid string, p1, p2 domain.GeoPoint, unit geospatial.Unit) (*DistanceResult, error) {
	e := s.ellipsoid
	if ellipsoid != "" {
		var err error
		if e, err = geospatial.EllipsoidByName(ellipsoid); err != nil {
			return nil, err
		}
	}
	curve, err := geospatial.Curve(e, p1, p2)
	if err != nil {
		return nil, err
	}
	return &DistanceResult{
		Ellipsoid:      e.Name,
		Distance:       geospatial.Convert(curve.DistanceMeters, geospatial.Meters, unit),
		Unit:           unit.String(),
		Meters:         curve.DistanceMeters,
		Azimuth:        curve.Azimuth,
		ReverseAzimuth: curve.ReverseAzimuth,
	}, nil
}

// DMSResult is a coordinate in both sexagesimal notations.
type DMSResult struct {
	Latitude  geospatial.DMSCoordinate `json:"latitude"`
	Longitude geospatial.DMSCoordinate `json:"longitude"`
	Text      string                   `json:"text"`
}

// DMS converts p to degree/minute/second notation.
func (s *GeodesyService) DMS(p domain.GeoPoint, precision geospatial.Precision) (*DMSResult, error) {
	lat, err := geospatial.ToDMS(p.Lat, geospatial.Latitude, precision)
	if err != nil {
		return nil, err
	}
	lon, err := geospatial.ToDMS(p.Lon, geospatial.Longitude, precision)
	if err != nil {
		return nil, err
	}
	return &DMSResult{Latitude: lat, Longitude: lon, Text: fmt.Sprintf("%s %s", lat, lon)}, nil
}

// Meridian selects a central meridian for the given ports and tracks.
func (s *GeodesyService) Meridian(ports []domain.GeoPoint, tracks [][]domain.Segment) (float64, error) {
	return geospatial.SelectMeridian(ports, tracks)
}

// Rectify shifts each consecutive pair of points into a continuous
// longitude frame for drawing.
func (s *GeodesyService) Rectify(points []domain.GeoPoint) ([]domain.Segment, geospatial.GlobalCrossing, error) {
	for _, p := range points {
		if err := geospatial.CheckPoint(p); err != nil {
			return nil, geospatial.GlobalCrossing{}, err
		}
	}
	g := geospatial.ScanCrossings(points)
	if len(points) < 2 {
		return nil, g, nil
	}
	out := make([]domain.Segment, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		seg, err := geospatial.Rectify(points[i-1], points[i], g)
		if err != nil {
			return nil, g, err
		}
		out = append(out, seg)
	}
	return out, g, nil
}
