package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/accuritas/voyagemap/internal/adapters/postgres"
	"github.com/accuritas/voyagemap/internal/adapters/stationcsv"
	"github.com/accuritas/voyagemap/internal/adapters/valkey"
	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/core/ports"
	"github.com/accuritas/voyagemap/internal/pkg/config"
	"github.com/accuritas/voyagemap/internal/pkg/logging"
	"github.com/accuritas/voyagemap/internal/pkg/telemetry"
)

const (
	batchSize     = 500
	batchesPerSec = 4
	usage         = "usage: stationloader KIND=file.csv [KIND=file.csv ...]"
)

type catalogue struct {
	kind domain.StationKind
	path string
}

func main() {
	cfg, err := config.Load("voyagemap-stationloader")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("voyagemap-stationloader", cfg.Logging.Level, cfg.Logging.Format)

	catalogues, err := parseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("%v\n%s", err, usage)
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

	var cache ports.CacheService
	if c, err := valkey.New(valkey.Options{Addr: cfg.Valkey.Addr, Password: cfg.Valkey.Password, DB: cfg.Valkey.DB}); err != nil {
		slog.Warn("valkey unavailable, cached headers will expire on their own", "error", err)
	} else {
		cache = c
		defer c.Close()
	}

	repo := postgres.NewStationRepo(db)
	limiter := rate.NewLimiter(rate.Limit(batchesPerSec), 1)

	failed := 0
	for _, c := range catalogues {
		if err := load(ctx, repo, cache, limiter, c); err != nil {
			slog.Error("catalogue load failed", "kind", c.kind, "path", c.path, "error", err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
	slog.Info("station load complete", "catalogues", len(catalogues))
}

func parseArgs(args []string) ([]catalogue, error) {
	if len(args) == 0 {
		return nil, errors.New("no catalogues given")
	}
	out := make([]catalogue, 0, len(args))
	for _, a := range args {
		name, path, ok := strings.Cut(a, "=")
		if !ok || path == "" {
			return nil, fmt.Errorf("bad argument %q", a)
		}
		kind, err := domain.ParseStationKind(name)
		if err != nil {
			return nil, err
		}
		out = append(out, catalogue{kind: kind, path: path})
	}
	return out, nil
}

func load(ctx context.Context, repo ports.StationRepository, cache ports.CacheService, limiter *rate.Limiter, c catalogue) (err error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanStationLoad,
		attribute.String("station.kind", string(c.kind)),
		attribute.String("station.path", c.path),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	f, err := os.Open(c.path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := stationcsv.NewReader(c.kind, f)
	if err != nil {
		return err
	}
	if err := repo.SetFields(ctx, c.kind, r.Fields()); err != nil {
		return fmt.Errorf("set fields: %w", err)
	}
	if cache != nil {
		_ = cache.Delete(ctx, "headers:"+string(c.kind))
	}

	batch := make([]domain.Station, 0, batchSize)
	total, skipped := 0, 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := repo.UpsertBatch(ctx, batch); err != nil {
			return fmt.Errorf("upsert: %w", err)
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		s, err := r.Next()
		if err == io.EOF {
			break
		}
		if errors.Is(err, stationcsv.ErrBadRow) {
			slog.Debug("skipping row", "kind", c.kind, "error", err)
			skipped++
			continue
		}
		if err != nil {
			return err
		}
		batch = append(batch, s)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	span.SetAttributes(attribute.Int("station.count", total), attribute.Int("station.skipped", skipped))
	slog.Info("catalogue loaded", "kind", c.kind, "stations", total, "skipped", skipped)
	return nil
}
