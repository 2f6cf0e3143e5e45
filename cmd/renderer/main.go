package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/accuritas/voyagemap/internal/adapters/nats"
	"github.com/accuritas/voyagemap/internal/adapters/postgres"
	"github.com/accuritas/voyagemap/internal/core/ports"
	"github.com/accuritas/voyagemap/internal/core/usecases"
	"github.com/accuritas/voyagemap/internal/pkg/config"
	"github.com/accuritas/voyagemap/internal/pkg/logging"
	"github.com/accuritas/voyagemap/internal/pkg/telemetry"
	"github.com/accuritas/voyagemap/internal/workflows"
)

func main() {
	cfg, err := config.Load("voyagemap-renderer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("voyagemap-renderer", cfg.Logging.Level, cfg.Logging.Format)

	opts, err := usecases.RenderOptionsFrom(cfg.Render, cfg.Valkey.TTL)
	if err != nil {
		log.Fatalf("render options: %v", err)
	}

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var publisher ports.EventPublisher
	if p, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.Replicas); err != nil {
		slog.Warn("nats unavailable, maps will not be announced", "error", err)
	} else {
		publisher = p
		defer p.Close()
	}

	mapRepo := postgres.NewMapRepo(db)
	layerRepo := postgres.NewLayerRepo(db)
	stationRepo := postgres.NewStationRepo(db)
	elevationRepo := postgres.NewElevationRepo(db)

	forensicSvc := usecases.NewForensicService(mapRepo, layerRepo, stationRepo, elevationRepo, nil, publisher, opts)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.Host,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.VoyageMapWorkflow)
	w.RegisterActivity(&workflows.VoyageMapActivities{
		Voyages:   usecases.NewVoyageMapService(mapRepo, layerRepo, publisher, opts),
		Maps:      usecases.NewMapService(mapRepo, layerRepo, forensicSvc, nil, opts),
		ExportDir: cfg.Render.ExportDir,
	})

	slog.Info("renderer worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
