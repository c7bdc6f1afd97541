package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmconnect_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})

	// RedisCommandLatency records Redis command latency by command name.
	RedisCommandLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "farmconnect_redis_command_latency_seconds",
		Help:    "Redis command latency in seconds",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"command"})

	// MongoCommandLatency records driver command latency by command and outcome.
	MongoCommandLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "farmconnect_mongo_command_latency_seconds",
		Help:    "MongoDB command latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"command", "outcome"})

	// DBConnectionState is 0 (disconnected), 1 (connecting) or 2 (connected).
	DBConnectionState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "farmconnect_db_connection_state",
		Help: "Current database connection state",
	})

	// DBConnectAttempts counts connection attempts by result.
	DBConnectAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmconnect_db_connect_attempts_total",
		Help: "Total number of database connection attempts",
	}, []string{"result"})

	// CacheLookups counts cache-aside lookups by cache name and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmconnect_cache_lookups_total",
		Help: "Total number of cache lookups",
	}, []string{"cache", "result"})

	// NotificationsPublished counts realtime events by type.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmconnect_notifications_published_total",
		Help: "Total number of realtime notifications published",
	}, []string{"type"})

	// ActiveWebSockets tracks open notification sockets.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "farmconnect_active_websockets",
		Help: "Number of open websocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped for slow clients.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmconnect_websocket_backpressure_drops_total",
		Help: "Total number of websocket messages dropped",
	}, []string{"hub", "reason"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide Fiber Prometheus collector for serviceName.
// The collector registers with the default registry once; later calls reuse it.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware records request metrics, skipping the scrape endpoint itself.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		return p.Middleware(c)
	}
}
