package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/accuritas/voyagemap/internal/adapters/http"
	natsadapter "github.com/accuritas/voyagemap/internal/adapters/nats"
	"github.com/accuritas/voyagemap/internal/adapters/postgres"
	"github.com/accuritas/voyagemap/internal/adapters/valkey"
	"github.com/accuritas/voyagemap/internal/core/ports"
	"github.com/accuritas/voyagemap/internal/core/usecases"
	"github.com/accuritas/voyagemap/internal/pkg/config"
	"github.com/accuritas/voyagemap/internal/pkg/logging"
	"github.com/accuritas/voyagemap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("voyagemap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup("voyagemap-api", cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	opts, err := usecases.RenderOptionsFrom(cfg.Render, cfg.Valkey.TTL)
	if err != nil {
		log.Fatalf("render options: %v", err)
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolStats(ctx, 15*time.Second)

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(valkey.Options{Addr: cfg.Valkey.Addr, Password: cfg.Valkey.Password, DB: cfg.Valkey.DB})
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		cacheSvc = cache
		defer cache.Close()
	}

	// NATS
	var publisher ports.EventPublisher
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.Replicas)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		publisher = nc
		defer nc.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	// Repos
	mapRepo := postgres.NewMapRepo(db)
	layerRepo := postgres.NewLayerRepo(db)
	stationRepo := postgres.NewStationRepo(db)
	elevationRepo := postgres.NewElevationRepo(db)

	// Use cases
	voyageSvc := usecases.NewVoyageMapService(mapRepo, layerRepo, publisher, opts)
	forensicSvc := usecases.NewForensicService(mapRepo, layerRepo, stationRepo, elevationRepo, cacheSvc, publisher, opts)
	mapSvc := usecases.NewMapService(mapRepo, layerRepo, forensicSvc, cacheSvc, opts)
	stationSvc := usecases.NewStationService(stationRepo, cacheSvc, opts)
	geodesySvc := usecases.NewGeodesyService(opts)

	deps := &http.Dependencies{
		Voyages:   voyageSvc,
		Forensic:  forensicSvc,
		Maps:      mapSvc,
		Stations:  stationSvc,
		Geodesy:   geodesySvc,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
		RateLimit: cfg.Server.RateLimit,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    8 * 1024 * 1024, // voyages with many position reports
		AppName:      "Voyage Map API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.TrimSpace(cfg.Server.CORSOrigins),
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, If-None-Match",
		ExposeHeaders:    "Location, Link, ETag, Deprecation, Sunset",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
