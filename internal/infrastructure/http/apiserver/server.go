// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/cookbook/internal/infrastructure/monitoring"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/alchemorsel/cookbook/pkg/healthcheck"
)

// Dependencies are the collaborators of the API server. Metrics is optional.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	Catalog inbound.CatalogService
	Menu    inbound.MenuService
	Health  *healthcheck.HealthCheck
	Metrics *monitoring.MetricsCollector
}

// APIServer represents the JSON API HTTP server
type APIServer struct {
	config     *config.Config
	logger     *zap.Logger
	engine     *gin.Engine
	server     *http.Server
	middleware *middleware.Middleware
	handlers   *Handlers
	openAPI    *OpenAPIHandler
	health     *healthcheck.HealthCheck
	metrics    *monitoring.MetricsCollector
}

// NewAPIServer creates a new API server instance
func NewAPIServer(deps Dependencies) *APIServer {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := deps.Logger.Named("api")
	s := &APIServer{
		config:     deps.Config,
		logger:     logger,
		middleware: middleware.New(deps.Config, logger),
		handlers:   NewHandlers(deps.Catalog, deps.Menu, logger),
		openAPI:    NewOpenAPIHandler(logger),
		health:     deps.Health,
		metrics:    deps.Metrics,
	}
	s.engine = s.setupRoutes()

	s.server = &http.Server{
		Addr:           s.config.APIListenAddr(),
		Handler:        s.engine,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}
	return s
}

// setupRoutes configures the API routes
func (s *APIServer) setupRoutes() *gin.Engine {
	r := gin.New()
	if len(s.config.Server.TrustedProxies) > 0 {
		if err := r.SetTrustedProxies(s.config.Server.TrustedProxies); err != nil {
			s.logger.Warn("Ignoring invalid trusted proxies", zap.Error(err))
		}
	} else {
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(s.middleware.RequestID())
	r.Use(s.middleware.Logger())
	r.Use(s.middleware.Recovery())
	r.Use(s.middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(s.middleware.CORS())
	}
	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware())
	}
	if s.config.Monitoring.EnableTracing {
		r.Use(s.middleware.Tracing())
	}
	r.Use(s.middleware.ErrorHandler())

	r.GET(s.config.Monitoring.HealthCheckPath, s.health.Handler())
	r.GET(s.config.Monitoring.ReadinessPath, s.health.ReadinessHandler())
	r.GET("/live", s.health.LivenessHandler())
	if s.metrics != nil && s.config.Monitoring.EnableMetrics {
		r.GET(s.config.Monitoring.MetricsPath, gin.WrapH(s.metrics.Handler()))
	}

	v1 := r.Group("/api/v1")
	if s.config.RateLimit.Enable {
		v1.Use(s.middleware.RateLimit())
	}
	s.openAPI.RegisterRoutes(v1)
	s.handlers.RegisterRoutes(v1)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errors.ToErrorResponse(errors.NewNotFoundError("route"), c.GetString("request_id")))
	})
	return r
}

// Handler exposes the routed handler, mainly for tests
func (s *APIServer) Handler() http.Handler {
	return s.engine
}

// Limiters exposes the rate limiters so their cleanup can be scheduled
func (s *APIServer) Limiters() *middleware.ClientLimiters {
	return s.middleware.Limiters()
}

// Start starts the API server and blocks until it stops
func (s *APIServer) Start() error {
	s.logger.Info("Starting JSON API server",
		zap.String("address", s.server.Addr),
		zap.Bool("rate_limit", s.config.RateLimit.Enable),
	)

	if err := s.server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the API server
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down JSON API server")
	return s.server.Shutdown(ctx)
}
