package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/pkg/geospatial"
)

// queryFloat parses a required float query parameter.
func queryFloat(c *fiber.Ctx, name string) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

func queryPoint(c *fiber.Ctx, latName, lonName string) (domain.GeoPoint, error) {
	lat, err := queryFloat(c, latName)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	lon, err := queryFloat(c, lonName)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}

// DistanceHandler measures the geodesic between two points.
// Query: lat1, lon1, lat2, lon2, unit (default m), ellipsoid (optional).
func DistanceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p1, err := queryPoint(c, "lat1", "lon1")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		p2, err := queryPoint(c, "lat2", "lon2")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		unit, err := geospatial.ParseUnit(c.Query("unit", "m"))
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		res, err := deps.Geodesy.Distance(c.Query("ellipsoid"), p1, p2, unit)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(res)
	}
}

// DMSHandler converts a point to degree/minute/second notation.
// Query: lat, lon, precision (seconds | minutes).
func DMSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := queryPoint(c, "lat", "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		var precision geospatial.Precision
		switch c.Query("precision", "seconds") {
		case "seconds":
			precision = geospatial.WholeSeconds
		case "minutes":
			precision = geospatial.DecimalMinutes
		default:
			return errBadRequest(c, "precision must be seconds or minutes")
		}

		res, err := deps.Geodesy.DMS(p, precision)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(res)
	}
}

type meridianRequest struct {
	Ports  []domain.GeoPoint  `json:"ports"`
	Tracks [][]domain.Segment `json:"tracks"`
}

// MeridianHandler selects the central meridian for a set of ports and
// tracks.
func MeridianHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req meridianRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		m, err := deps.Geodesy.Meridian(req.Ports, req.Tracks)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(fiber.Map{"central_meridian": m})
	}
}

type rectifyRequest struct {
	Points []domain.GeoPoint `json:"points"`
}

// RectifyHandler returns a route's segments shifted into a continuous
// longitude frame, and the route's crossings.
func RectifyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req rectifyRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		segments, crossing, err := deps.Geodesy.Rectify(req.Points)
		if err != nil {
			return errFrom(c, err)
		}
		if segments == nil {
			segments = []domain.Segment{}
		}
		return c.JSON(fiber.Map{"segments": segments, "crossing": crossing})
	}
}
