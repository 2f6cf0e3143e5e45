package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/pkg/geospatial"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voyagemap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "voyagemap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "voyagemap",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Map metrics
	MapsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voyagemap",
		Subsystem: "maps",
		Name:      "built_total",
		Help:      "Total maps built",
	}, []string{"kind"})

	MapBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "voyagemap",
		Subsystem: "maps",
		Name:      "build_duration_seconds",
		Help:      "Duration of map builds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"kind"})

	MapBuildErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voyagemap",
		Subsystem: "maps",
		Name:      "build_errors_total",
		Help:      "Total failed map builds",
	}, []string{"kind"})

	TrackCrossings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voyagemap",
		Subsystem: "maps",
		Name:      "track_crossings_total",
		Help:      "Voyage routes by meridian crossing",
	}, []string{"class"})

	// Messaging metrics
	NATSMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voyagemap",
		Subsystem: "nats",
		Name:      "messages_total",
		Help:      "Map requests consumed from NATS",
	}, []string{"type", "outcome"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "voyagemap",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voyagemap",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voyagemap",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "voyagemap",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "voyagemap",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "voyagemap",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// ObserveBuild records one map build of kind.
func ObserveBuild(kind string, started time.Time, err error) {
	if err != nil {
		MapBuildErrors.WithLabelValues(kind).Inc()
		return
	}
	MapsBuilt.WithLabelValues(kind).Inc()
	MapBuildDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// ObserveCrossings classifies a voyage route by the meridians it crosses.
func ObserveCrossings(details []domain.VoyageDetail) {
	points := make([]domain.GeoPoint, len(details))
	for i, d := range details {
		points[i] = d.Point()
	}
	g := geospatial.ScanCrossings(points)
	switch {
	case g.Dateline && g.PrimeMeridian:
		TrackCrossings.WithLabelValues("both").Inc()
	case g.Dateline:
		TrackCrossings.WithLabelValues("dateline").Inc()
	case g.PrimeMeridian:
		TrackCrossings.WithLabelValues("prime_meridian").Inc()
	default:
		TrackCrossings.WithLabelValues("none").Inc()
	}
}

// UpdateDBPoolMetrics updates database pool metrics from pgx pool stats.
// stat is a *pgxpool.Stat; the metrics package does not import pgxpool.
func UpdateDBPoolMetrics(stat interface{}) {
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
