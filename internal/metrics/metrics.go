// Package metrics exposes Prometheus collectors for HTTP traffic and storage
// operations. Each Collector owns its registry so tests can build isolated
// instances.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bookcatalog"

type Collector struct {
	registry *prometheus.Registry

	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInProgress prometheus.Gauge

	StorageOperationsTotal   *prometheus.CounterVec
	StorageOperationDuration *prometheus.HistogramVec

	MaintenanceRowsPruned *prometheus.CounterVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		HTTPRequestsInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_progress",
			Help:      "HTTP requests currently being served.",
		}),
		StorageOperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_operations_total",
			Help:      "Repository operations by name and outcome kind.",
		}, []string{"operation", "outcome"}),
		StorageOperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_operation_duration_seconds",
			Help:      "Repository operation latency.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),
		MaintenanceRowsPruned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maintenance_rows_pruned_total",
			Help:      "Dangling association rows removed by the maintenance sweep.",
		}, []string{"table"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequestsTotal,
		c.HTTPRequestDuration,
		c.HTTPRequestsInProgress,
		c.StorageOperationsTotal,
		c.StorageOperationDuration,
		c.MaintenanceRowsPruned,
	)
	return c
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveOperation records one storage operation. An empty outcome means success.
func (c *Collector) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	if outcome == "" {
		outcome = "ok"
	}
	c.StorageOperationsTotal.WithLabelValues(operation, outcome).Inc()
	c.StorageOperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObservePruned records rows removed from a join table.
func (c *Collector) ObservePruned(table string, rows int64) {
	if rows > 0 {
		c.MaintenanceRowsPruned.WithLabelValues(table).Add(float64(rows))
	}
}

// Middleware records request counts and latency per matched route.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		c.HTTPRequestsInProgress.Inc()
		defer c.HTTPRequestsInProgress.Dec()

		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := ctx.Request.Method
		c.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
