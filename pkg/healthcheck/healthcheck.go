// Package healthcheck reports whether the recipe catalog, the remote recipe
// service and the optional response cache are usable.
package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// worse reports whether a is a worse status than b.
func worse(a, b Status) bool {
	rank := map[Status]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}
	return rank[a] > rank[b]
}

// Check is the outcome of one dependency probe
type Check struct {
	Name        string        `json:"name"`
	Status      Status        `json:"status"`
	Message     string        `json:"message,omitempty"`
	LastChecked time.Time     `json:"last_checked"`
	Duration    time.Duration `json:"-"`
	DurationMS  float64       `json:"duration_ms"`
	Details     interface{}   `json:"details,omitempty"`
}

// Response aggregates every registered check
type Response struct {
	Status          Status        `json:"status"`
	Version         string        `json:"version"`
	Timestamp       time.Time     `json:"timestamp"`
	Checks          []Check       `json:"checks"`
	TotalDuration   time.Duration `json:"-"`
	TotalDurationMS float64       `json:"total_duration_ms"`
}

// Checker probes one dependency
type Checker interface {
	Check(ctx context.Context) Check
}

// CheckFunc adapts a function to Checker
type CheckFunc func(ctx context.Context) Check

// Check calls f
func (f CheckFunc) Check(ctx context.Context) Check { return f(ctx) }

// Pinger is a dependency with a cheap probe, such as the catalog
// repository, the TheMealDB client or the Redis cache.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// Dependency checks a Pinger. A failing critical dependency makes the
// service unhealthy; an optional one only degrades it.
type Dependency struct {
	pinger   Pinger
	critical bool
	details  func() interface{}
}

// Critical wraps a dependency the site cannot serve pages without.
func Critical(p Pinger) *Dependency {
	return &Dependency{pinger: p, critical: true}
}

// Optional wraps a dependency whose loss only disables some features.
func Optional(p Pinger) *Dependency {
	return &Dependency{pinger: p}
}

// WithDetails attaches details reported with a passing check.
func (d *Dependency) WithDetails(fn func() interface{}) *Dependency {
	d.details = fn
	return d
}

// Check probes the dependency
func (d *Dependency) Check(ctx context.Context) Check {
	check := Check{Status: StatusHealthy, LastChecked: time.Now()}
	if err := d.pinger.HealthCheck(ctx); err != nil {
		check.Status = StatusDegraded
		if d.critical {
			check.Status = StatusUnhealthy
		}
		check.Message = err.Error()
	} else if d.details != nil {
		check.Details = d.details()
	}
	return check
}

// HealthCheck runs the registered checks and caches the result briefly
type HealthCheck struct {
	version string
	logger  *zap.Logger

	mu       sync.RWMutex
	checkers map[string]Checker
	cached   *Response
	cacheTTL time.Duration
	timeout  time.Duration
}

// New creates a new health check instance
func New(version string, logger *zap.Logger) *HealthCheck {
	return &HealthCheck{
		version:  version,
		logger:   logger.Named("healthcheck"),
		checkers: make(map[string]Checker),
		cacheTTL: 5 * time.Second,
		timeout:  5 * time.Second,
	}
}

// Register adds a named check, replacing any check with the same name
func (h *HealthCheck) Register(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
	h.cached = nil
}

// SetCacheTTL sets how long a response is reused. Zero disables caching.
func (h *HealthCheck) SetCacheTTL(ttl time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cacheTTL = ttl
}

// SetTimeout bounds each individual check
func (h *HealthCheck) SetTimeout(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.timeout = d
}

// Check runs every registered check concurrently
func (h *HealthCheck) Check(ctx context.Context) Response {
	h.mu.RLock()
	if h.cached != nil && time.Since(h.cached.Timestamp) < h.cacheTTL {
		cached := *h.cached
		h.mu.RUnlock()
		return cached
	}
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	checkers := make([]Checker, len(names))
	sort.Strings(names)
	for i, name := range names {
		checkers[i] = h.checkers[name]
	}
	timeout := h.timeout
	h.mu.RUnlock()

	start := time.Now()
	checks := make([]Check, len(names))

	var g errgroup.Group
	for i := range checkers {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			began := time.Now()
			check := checkers[i].Check(cctx)
			check.Name = names[i]
			if check.LastChecked.IsZero() {
				check.LastChecked = began
			}
			check.Duration = time.Since(began)
			check.DurationMS = float64(check.Duration.Microseconds()) / 1000
			checks[i] = check
			return nil
		})
	}
	_ = g.Wait()

	response := Response{
		Status:    StatusHealthy,
		Version:   h.version,
		Timestamp: start,
		Checks:    checks,
	}
	for _, check := range checks {
		if worse(check.Status, response.Status) {
			response.Status = check.Status
		}
		if check.Status != StatusHealthy {
			h.logger.Warn("Health check failing",
				zap.String("check", check.Name),
				zap.String("status", string(check.Status)),
				zap.String("message", check.Message),
			)
		}
	}
	response.TotalDuration = time.Since(start)
	response.TotalDurationMS = float64(response.TotalDuration.Microseconds()) / 1000

	h.mu.Lock()
	h.cached = &response
	h.mu.Unlock()

	return response
}

// HTTPHandler serves the full report; 503 when unhealthy
func (h *HealthCheck) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := h.Check(r.Context())
		status := http.StatusOK
		if response.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, response)
	}
}

// ReadinessHTTPHandler answers 200 unless a critical dependency is down.
// A degraded service still serves the static catalog.
func (h *HealthCheck) ReadinessHTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := h.Check(r.Context())
		if response.Status == StatusUnhealthy {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "not_ready",
				"checks": response.Checks,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "ready",
			"degraded":  response.Status == StatusDegraded,
			"timestamp": response.Timestamp,
		})
	}
}

// LivenessHTTPHandler answers 200 while the process serves requests
func (h *HealthCheck) LivenessHTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "alive",
			"timestamp": time.Now(),
		})
	}
}

// Handler is HTTPHandler for gin
func (h *HealthCheck) Handler() gin.HandlerFunc { return gin.WrapF(h.HTTPHandler()) }

// ReadinessHandler is ReadinessHTTPHandler for gin
func (h *HealthCheck) ReadinessHandler() gin.HandlerFunc {
	return gin.WrapF(h.ReadinessHTTPHandler())
}

// LivenessHandler is LivenessHTTPHandler for gin
func (h *HealthCheck) LivenessHandler() gin.HandlerFunc {
	return gin.WrapF(h.LivenessHTTPHandler())
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
