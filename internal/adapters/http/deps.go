package http

import (
	"github.com/nats-io/nats.go"

	"github.com/accuritas/voyagemap/internal/adapters/postgres"
	"github.com/accuritas/voyagemap/internal/adapters/valkey"
	"github.com/accuritas/voyagemap/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Voyages  *usecases.VoyageMapService
	Forensic *usecases.ForensicService
	Maps     *usecases.MapService
	Stations *usecases.StationService
	Geodesy  *usecases.GeodesyService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache

	// RateLimit is the number of requests allowed per IP per minute.
	// Zero disables the limiter.
	RateLimit int
}
