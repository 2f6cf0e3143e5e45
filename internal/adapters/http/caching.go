package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on successful GET responses that did
// not set their own.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != fiber.StatusOK {
			return err
		}
		if c.GetRespHeader(fiber.HeaderCacheControl) != "" {
			return err
		}

		if ttl := cacheControlFor(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready" || path == "/health" || path == "/ready":
		return "no-cache"
	case path == "/metrics":
		return "no-store"
	case strings.HasPrefix(path, "/v1/geodesy/"):
		return "public, max-age=86400"
	case strings.HasPrefix(path, "/v1/stations/"):
		return "public, max-age=3600"
	case strings.HasSuffix(path, "/caption"), strings.HasSuffix(path, "/export"):
		return "private, max-age=60"
	case strings.HasPrefix(path, "/v1/maps/"):
		return "private, max-age=30"
	case strings.HasPrefix(path, "/docs"):
		return "public, max-age=3600"
	}
	return ""
}
