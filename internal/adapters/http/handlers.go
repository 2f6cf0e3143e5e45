package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/accuritas/voyagemap/internal/adapters/geojson"
	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/core/usecases"
	"github.com/accuritas/voyagemap/internal/pkg/metrics"
	"github.com/accuritas/voyagemap/internal/pkg/telemetry"
)

// BuildVoyageMapHandler draws a voyage track on a new map and frames it.
func BuildVoyageMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.VoyageMapRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Details) == 0 {
			return errBadRequest(c, "details are required")
		}

		started := time.Now()
		ctx, span := telemetry.StartSpan(c.UserContext(), telemetry.SpanVoyageBuild,
			attribute.String("voyage.id", req.VoyageID),
			attribute.Int("voyage.details", len(req.Details)),
		)
		doc, err := deps.Voyages.Build(ctx, &req)
		telemetry.EndSpan(span, err)
		metrics.ObserveBuild(string(domain.MapKindVoyage), started, err)
		if err != nil {
			return errFrom(c, err)
		}
		metrics.ObserveCrossings(req.Details)

		c.Location("/v1/maps/" + doc.ID)
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// CreateForensicMapHandler creates a station context map around a point.
func CreateForensicMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.ForensicMapRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		started := time.Now()
		ctx, span := telemetry.StartSpan(c.UserContext(), telemetry.SpanForensicCreate,
			attribute.Float64("forensic.radius_miles", req.RadiusMiles),
			attribute.Int64("forensic.date", req.Date),
		)
		doc, err := deps.Forensic.Create(ctx, &req)
		telemetry.EndSpan(span, err)
		metrics.ObserveBuild(string(domain.MapKindForensic), started, err)
		if err != nil {
			return errFrom(c, err)
		}

		c.Location("/v1/maps/" + doc.ID)
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetMapHandler returns a map document.
func GetMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "map id is required")
		}
		doc, err := deps.Maps.Get(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(doc)
	}
}

// ExportMapHandler returns a map's visible layers as a GeoJSON
// FeatureCollection.
func ExportMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		export, err := deps.Maps.Export(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err)
		}
		data, err := geojson.Marshal(export)
		if err != nil {
			return errFrom(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

// CaptionHandler returns the caption table of a forensic map, as
// tab-separated text unless format=json is given.
func CaptionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, span := telemetry.StartSpan(c.UserContext(), telemetry.SpanCaption,
			attribute.String("map.id", c.Params("id")),
		)
		caption, err := deps.Forensic.Caption(ctx, c.Params("id"))
		telemetry.EndSpan(span, err)
		if err != nil {
			return errFrom(c, err)
		}

		if c.Query("format") == "json" {
			return c.JSON(caption)
		}
		c.Set(fiber.HeaderContentType, "text/tab-separated-values; charset=utf-8")
		return c.SendString(caption.String())
	}
}

// removeStationsRequest lists the stations to hide from a forensic map.
type removeStationsRequest struct {
	Stations []domain.StationRef `json:"stations"`
}

// RemoveStationsHandler hides individual stations from a forensic map.
func RemoveStationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req removeStationsRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Stations) == 0 {
			return errBadRequest(c, "stations are required")
		}
		for i, ref := range req.Stations {
			kind, err := domain.ParseStationKind(string(ref.Kind))
			if err != nil {
				return errBadRequest(c, err.Error())
			}
			req.Stations[i].Kind = kind
		}

		id := c.Params("id")
		if err := deps.Forensic.RemoveStations(c.UserContext(), id, req.Stations); err != nil {
			return errFrom(c, err)
		}
		deps.Maps.Invalidate(c.UserContext(), id)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// StationCountHandler returns the size of a station catalogue.
func StationCountHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := domain.ParseStationKind(c.Params("kind"))
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		n, err := deps.Stations.Count(c.UserContext(), kind)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(fiber.Map{"kind": kind, "count": n})
	}
}

// StationHeadersHandler returns the column names of a station catalogue.
func StationHeadersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := domain.ParseStationKind(c.Params("kind"))
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		headers, err := deps.Stations.Headers(c.UserContext(), kind)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(fiber.Map{"kind": kind, "headers": headers})
	}
}

// StationRowsHandler returns one window of a station catalogue.
func StationRowsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := domain.ParseStationKind(c.Params("kind"))
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		ctx := c.UserContext()

		start, count := usecases.RowWindow(c.QueryInt("start", 1), c.QueryInt("count", 0))
		headers, err := deps.Stations.Headers(ctx, kind)
		if err != nil {
			return errFrom(c, err)
		}
		rows, err := deps.Stations.Rows(ctx, kind, start, count)
		if err != nil {
			return errFrom(c, err)
		}
		total, err := deps.Stations.Count(ctx, kind)
		if err != nil {
			return errFrom(c, err)
		}

		w := RowWindow{Start: start, Count: count, Total: total}
		SetLinkHeaders(c, w)
		if rows == nil {
			rows = [][]string{}
		}
		return c.JSON(RowsResponse{Headers: headers, Rows: rows, Window: w})
	}
}
