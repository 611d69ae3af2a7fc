// Package webserver provides the server-rendered HTMX web frontend
package webserver

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/alchemorsel/cookbook/internal/application/menu"
	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/cookbook/internal/infrastructure/monitoring"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/healthcheck"
)

// Dependencies are the collaborators of the web server. Metrics and
// LiveReload are optional.
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	Catalog    inbound.CatalogService
	Menu       inbound.MenuService
	Tracker    *menu.Tracker
	Health     *healthcheck.HealthCheck
	Metrics    *monitoring.MetricsCollector
	LiveReload http.Handler
}

// WebServer represents the web frontend HTTP server
type WebServer struct {
	config     *config.Config
	logger     *zap.Logger
	catalog    inbound.CatalogService
	menu       inbound.MenuService
	tracker    *menu.Tracker
	health     *healthcheck.HealthCheck
	metrics    *monitoring.MetricsCollector
	liveReload http.Handler
	templates  *templateSet
	router     *chi.Mux
	server     *http.Server
}

// NewWebServer creates a new web frontend server instance
func NewWebServer(deps Dependencies) (*WebServer, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	tracker := deps.Tracker
	if tracker == nil {
		tracker = menu.NewTracker()
	}

	s := &WebServer{
		config:     deps.Config,
		logger:     deps.Logger.Named("web"),
		catalog:    deps.Catalog,
		menu:       deps.Menu,
		tracker:    tracker,
		health:     deps.Health,
		metrics:    deps.Metrics,
		liveReload: deps.LiveReload,
		templates:  templates,
	}
	s.router = s.setupRoutes()

	var handler http.Handler = s.router
	if s.config.Monitoring.EnableTracing {
		handler = otelhttp.NewHandler(handler, "web",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
	if s.config.Server.EnableH2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	s.server = &http.Server{
		Addr:           s.config.ListenAddr(),
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}
	return s, nil
}

// setupRoutes configures the web frontend routes
func (s *WebServer) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(middleware.Security(s.config.IsProduction()))
	r.Use(middleware.HTMX)
	if s.config.Server.EnableCompression {
		r.Use(middleware.Brotli)
	}

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get(s.config.Monitoring.HealthCheckPath, s.health.HTTPHandler())
	r.Get(s.config.Monitoring.ReadinessPath, s.health.ReadinessHTTPHandler())
	r.Get("/live", s.health.LivenessHTTPHandler())
	if s.metrics != nil && s.config.Monitoring.EnableMetrics {
		r.Handle(s.config.Monitoring.MetricsPath, s.metrics.Handler())
	}
	if s.liveReload != nil && s.config.Server.EnableLiveReload {
		r.Handle("/livereload", s.liveReload)
	}

	// Static catalog
	r.Get("/", s.handleHome)
	r.Get("/recipes", s.handleRecipes)
	r.Get("/recipes/{id}", s.handleRecipe)
	r.Get("/recipes/{id}/share", s.handleRecipeShare)

	// Remote catalog
	r.Get("/menu", s.handleMenu)
	r.Get("/menu/random", s.handleRandomMeal)
	r.Get("/menu/{id}", s.handleMeal)
	r.Get("/htmx/menu", s.handleHTMXMenu)

	r.Post("/telemetry/share-failure", s.handleShareFailure)

	r.NotFound(s.handleNotFound)
	return r
}

// Handler exposes the routed handler, mainly for tests
func (s *WebServer) Handler() http.Handler {
	return s.router
}

// Start starts the web frontend HTTP server and blocks until it stops
func (s *WebServer) Start() error {
	s.logger.Info("Starting web server",
		zap.String("address", s.server.Addr),
		zap.Bool("h2c", s.config.Server.EnableH2C),
		zap.Bool("livereload", s.liveReload != nil && s.config.Server.EnableLiveReload),
	)

	if err := s.server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the web server
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down web server")
	return s.server.Shutdown(ctx)
}
