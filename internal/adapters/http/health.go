package http

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

// Version is reported by the liveness probe. Release builds set it with
// -ldflags "-X github.com/accuritas/voyagemap/internal/adapters/http.Version=v1.2.3".
var Version = "dev"

var errNotConfigured = errors.New("not configured")

// readinessCheck probes one dependency. A required check that fails, or is
// not configured, makes the service not ready.
type readinessCheck struct {
	name     string
	required bool
	run      func(ctx context.Context) (string, error)
}

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": Version,
		})
	}
}

// ReadyHandler checks the database, NATS, the cache and the station
// catalogues. Only the database is required.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	checks := readinessChecks(deps)

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks))
		ready := true
		for _, chk := range checks {
			msg, err := chk.run(ctx)
			switch {
			case errors.Is(err, errNotConfigured):
				results[chk.name] = err.Error()
			case err != nil:
				results[chk.name] = "error: " + err.Error()
			default:
				results[chk.name] = msg
			}
			if err != nil && chk.required {
				ready = false
			}
		}

		status, code := "ready", fiber.StatusOK
		if !ready {
			status, code = "not ready", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": results,
		})
	}
}

func readinessChecks(deps *Dependencies) []readinessCheck {
	return []readinessCheck{
		{name: "database", required: true, run: func(ctx context.Context) (string, error) {
			if deps.DB == nil {
				return "", errNotConfigured
			}
			if err := deps.DB.Pool.Ping(ctx); err != nil {
				return "", err
			}
			return "ok", nil
		}},
		{name: "nats", run: func(ctx context.Context) (string, error) {
			if deps.NATS == nil {
				return "", errNotConfigured
			}
			if !deps.NATS.IsConnected() {
				return "", errors.New("disconnected")
			}
			return "ok", nil
		}},
		{name: "cache", run: func(ctx context.Context) (string, error) {
			if deps.Cache == nil {
				return "", errNotConfigured
			}
			if err := deps.Cache.Ping(ctx); err != nil {
				return "", err
			}
			return "ok", nil
		}},
		{name: "stations", run: func(ctx context.Context) (string, error) {
			if deps.DB == nil || deps.Stations == nil {
				return "", errNotConfigured
			}
			loaded := 0
			for _, kind := range domain.StationKinds {
				if kind == domain.StationSpotters {
					continue
				}
				n, err := deps.Stations.Count(ctx, kind)
				if err != nil {
					return "", err
				}
				if n > 0 {
					loaded++
				}
			}
			return fmt.Sprintf("%d catalogues loaded", loaded), nil
		}},
	}
}
