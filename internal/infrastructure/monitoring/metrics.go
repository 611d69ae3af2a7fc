// Package monitoring provides Prometheus metrics and OpenTelemetry setup
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "cookbook"

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// Domain metrics
	upstreamRequests  *prometheus.CounterVec
	upstreamDuration  *prometheus.HistogramVec
	cacheOperations   *prometheus.CounterVec
	browseResults     *prometheus.CounterVec
	sweepFailedLetter prometheus.Counter
	catalogReloads    *prometheus.CounterVec
	catalogSize       prometheus.Gauge
	shareFailures     *prometheus.CounterVec
	supersededTotal   prometheus.Counter
}

// NewMetricsCollector registers every collector on a fresh registry
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &MetricsCollector{
		logger:   logger.Named("metrics"),
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		httpResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path", "status_code"},
		),

		upstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Requests sent to the remote recipe service",
			},
			[]string{"endpoint", "outcome"},
		),
		upstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Remote recipe service latency in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint"},
		),
		cacheOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_operations_total",
				Help:      "Upstream response cache lookups",
			},
			[]string{"operation", "status"},
		),
		browseResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "menu_browse_total",
				Help:      "Remote browse results by mode and status",
			},
			[]string{"mode", "status"},
		),
		sweepFailedLetter: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "menu_sweep_failed_letters_total",
				Help:      "Letters that failed during the alphabet sweep",
			},
		),
		catalogReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_reloads_total",
				Help:      "Static catalog reload attempts",
			},
			[]string{"result"},
		),
		catalogSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_recipes",
				Help:      "Recipes in the active static catalog",
			},
		),
		shareFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "share_failures_total",
				Help:      "Share or copy failures reported by browsers",
			},
			[]string{"method"},
		),
		supersededTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "menu_superseded_total",
				Help:      "Browse responses dropped because a newer request arrived",
			},
		),
	}
}

// Registry exposes the underlying registry, e.g. for the otel exporter
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// HTTPMiddleware creates a Gin middleware for HTTP metrics collection
func (m *MetricsCollector) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.observeHTTP(c.Request.Method, path, c.Writer.Status(), c.Writer.Size(), time.Since(start))
	}
}

// Middleware is the net/http equivalent of HTTPMiddleware for chi routers
func (m *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.observeHTTP(r.Method, path, status, ww.BytesWritten(), time.Since(start))
	})
}

func (m *MetricsCollector) observeHTTP(method, path string, status, size int, d time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(method, path, code).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, code).Observe(d.Seconds())
	if size > 0 {
		m.httpResponseSize.WithLabelValues(method, path, code).Observe(float64(size))
	}
}

// ObserveUpstream records one remote recipe service call
func (m *MetricsCollector) ObserveUpstream(endpoint, outcome string, d time.Duration) {
	m.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	m.upstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveCache records a cache lookup
func (m *MetricsCollector) ObserveCache(operation string, hit bool) {
	status := "miss"
	if hit {
		status = "hit"
	}
	m.cacheOperations.WithLabelValues(operation, status).Inc()
}

// ObserveBrowse records a remote browse result
func (m *MetricsCollector) ObserveBrowse(mode, status string, failedLetters int) {
	m.browseResults.WithLabelValues(mode, status).Inc()
	if failedLetters > 0 {
		m.sweepFailedLetter.Add(float64(failedLetters))
	}
}

// CatalogReloaded records a catalog reload attempt
func (m *MetricsCollector) CatalogReloaded(recipes int, err error) {
	if err != nil {
		m.catalogReloads.WithLabelValues("rejected").Inc()
		return
	}
	m.catalogReloads.WithLabelValues("applied").Inc()
	m.catalogSize.Set(float64(recipes))
}

// SetCatalogSize sets the catalog gauge
func (m *MetricsCollector) SetCatalogSize(recipes int) {
	m.catalogSize.Set(float64(recipes))
}

// ShareFailed records a failed share attempt
func (m *MetricsCollector) ShareFailed(method string) {
	m.shareFailures.WithLabelValues(method).Inc()
}

// Superseded records a dropped stale browse response
func (m *MetricsCollector) Superseded() {
	m.supersededTotal.Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
