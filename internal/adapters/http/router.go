package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/accuritas/voyagemap/internal/pkg/metrics"
)

// requestTimeout bounds every REST handler. Voyage builds are the slowest.
const (
	requestTimeout = 15 * time.Second
	buildTimeout   = 60 * time.Second
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestContextMiddleware())
	app.Use(AccessLogMiddleware())

	if deps.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        deps.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
			},
		}))
	}

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(DeprecationMiddleware(deprecatedRoutes))
	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))
	app.Get("/health", HealthHandler(deps))
	app.Get("/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Maps
	v1.Post("/maps/voyage", timeout.NewWithContext(BuildVoyageMapHandler(deps), buildTimeout))
	v1.Post("/maps/forensic", timeout.NewWithContext(CreateForensicMapHandler(deps), buildTimeout))
	v1.Get("/maps/:id", timeout.NewWithContext(GetMapHandler(deps), requestTimeout))
	v1.Get("/maps/:id/export", timeout.NewWithContext(ExportMapHandler(deps), requestTimeout))
	v1.Get("/maps/:id/caption", timeout.NewWithContext(CaptionHandler(deps), requestTimeout))
	v1.Delete("/maps/:id/stations", timeout.NewWithContext(RemoveStationsHandler(deps), requestTimeout))

	// Station catalogues
	v1.Get("/stations/:kind/count", timeout.NewWithContext(StationCountHandler(deps), requestTimeout))
	v1.Get("/stations/:kind/headers", timeout.NewWithContext(StationHeadersHandler(deps), requestTimeout))
	v1.Get("/stations/:kind/rows", timeout.NewWithContext(StationRowsHandler(deps), requestTimeout))

	// Geodesy
	v1.Get("/geodesy/distance", DistanceHandler(deps))
	v1.Get("/geodesy/dms", DMSHandler(deps))
	v1.Post("/geodesy/meridian", MeridianHandler(deps))
	v1.Post("/geodesy/rectify", RectifyHandler(deps))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket relay of map events
	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws/maps", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
