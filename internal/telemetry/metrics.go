// Package telemetry provides application-level observability.
//
// All metrics are registered against the default Prometheus registry and
// exposed on the side-channel HTTP server started by main.go:
//
//	GET http://<host>:<TASKBOARD_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint serves the Prometheus text exposition
// format and is intentionally not mounted on the Gin router, so it is never
// reachable through the public API surface.
//
// HTTP metrics are labelled by c.FullPath() (route template such as
// /tasks/:id), never the raw URL, to keep label cardinality bounded.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/taskboard/taskboard/internal/safego"
)

// HTTP metrics, labelled by method, route template, and status code.
//
// Example PromQL:
//   - Request rate:  rate(http_requests_total[5m])
//   - Error rate:    sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m]))
//   - p99 latency:   histogram_quantile(0.99, sum by (path, le) (rate(http_request_duration_seconds_bucket[5m])))
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Domain metrics.
//
// TaskMutationsTotal counts successful task writes by action (create, update,
// delete). LoginFailuresTotal counts rejected login attempts; a spike is an
// early credential-stuffing signal. AuditWritesTotal counts appended audit
// entries by action, and AuditWriteErrorsTotal counts audit inserts that
// failed after the guarded operation had already succeeded — those entries
// are lost, so any nonzero rate deserves an alert.
var (
	TaskMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_mutations_total",
			Help: "Total number of successful task mutations, by action.",
		},
		[]string{"action"},
	)

	LoginFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "login_failures_total",
			Help: "Total number of rejected login attempts.",
		},
	)

	AuditWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_writes_total",
			Help: "Total number of audit trail entries recorded, by action.",
		},
		[]string{"action"},
	)

	AuditWriteErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_write_errors_total",
			Help: "Total number of audit trail writes that failed after the guarded operation succeeded.",
		},
	)
)

// DBOpenConnections tracks the number of open connections held by the sql.DB
// pool. It is sampled every 30 seconds by StartDBStatsCollector rather than
// per-request.
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples the
// connection pool every 30 seconds and updates DBOpenConnections. The
// goroutine exits once the database becomes unreachable, which happens
// naturally at shutdown when main defers db.Close().
func StartDBStatsCollector(db *sql.DB) {
	safego.Go(func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	})
}
