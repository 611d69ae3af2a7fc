// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/application/menu"
	"github.com/alchemorsel/cookbook/internal/application/recipe"
	"github.com/alchemorsel/cookbook/internal/infrastructure/cache"
	"github.com/alchemorsel/cookbook/internal/infrastructure/catalog"
	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/hotreload"
	"github.com/alchemorsel/cookbook/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/cookbook/internal/infrastructure/http/webserver"
	"github.com/alchemorsel/cookbook/internal/infrastructure/mealdb"
	"github.com/alchemorsel/cookbook/internal/infrastructure/monitoring"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/healthcheck"
	"github.com/alchemorsel/cookbook/pkg/logger"
)

// ConfigPath selects the configuration file; empty searches the default
// locations.
type ConfigPath string

// CoreModule provides everything both servers share
var CoreModule = fx.Options(
	ConfigModule,
	LoggerModule,
	ObservabilityModule,
	CatalogModule,
	MealDBModule,
	ServiceModule,
	HealthModule,
)

// WebModule runs the server-rendered web frontend
var WebModule = fx.Options(
	CoreModule,
	fx.Provide(
		NewLiveReloadHub,
		NewWebServer,
	),
	fx.Invoke(RegisterWebHooks),
)

// APIModule runs the JSON API
var APIModule = fx.Options(
	CoreModule,
	fx.Provide(NewAPIServer),
	fx.Invoke(RegisterAPIHooks),
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// ObservabilityModule provides metrics and tracing. The providers install
// themselves globally, so they are constructed eagerly.
var ObservabilityModule = fx.Options(
	fx.Provide(
		monitoring.NewMetricsCollector,
		NewTracingProvider,
		NewMeterProvider,
	),
	fx.Invoke(func(*monitoring.TracingProvider, *monitoring.MeterProvider) {}),
)

// CatalogModule provides the static catalog
var CatalogModule = fx.Provide(
	NewCatalogRepository,
	func(repo *catalog.Repository) outbound.RecipeRepository { return repo },
)

// MealDBModule provides the remote recipe service client and its cache
var MealDBModule = fx.Provide(
	NewMealDBClient,
	NewCache,
	NewMealProvider,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(repo outbound.RecipeRepository, cfg *config.Config, log *zap.Logger) inbound.CatalogService {
		return recipe.NewCatalogService(repo, cfg.Catalog.Threshold, log)
	},
	func(provider outbound.MealProvider, cfg *config.Config, metrics *monitoring.MetricsCollector, log *zap.Logger) inbound.MenuService {
		return menu.NewService(provider, menu.Config{
			PageSize:         cfg.Menu.PageSize,
			SweepConcurrency: cfg.Menu.SweepConcurrency,
			PaginationWindow: cfg.Menu.PaginationWindow,
			Observer:         metrics,
		}, log)
	},
	menu.NewTracker,
)

// HealthModule provides the health checks
var HealthModule = fx.Provide(NewHealthCheck)

func tracingConfig(cfg *config.Config) monitoring.TracingConfig {
	return monitoring.TracingConfig{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
		SamplingRate:   cfg.Monitoring.SamplingRate,
		Enabled:        cfg.Monitoring.EnableTracing,
	}
}

// NewTracingProvider creates the tracer provider and flushes it on stop
func NewTracingProvider(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
	tp, err := monitoring.NewTracingProvider(tracingConfig(cfg), log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: tp.Shutdown})
	return tp, nil
}

// NewMeterProvider bridges OpenTelemetry metrics into the Prometheus registry
func NewMeterProvider(lc fx.Lifecycle, cfg *config.Config, metrics *monitoring.MetricsCollector, log *zap.Logger) (*monitoring.MeterProvider, error) {
	mp, err := monitoring.NewMeterProvider(metrics, tracingConfig(cfg), log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: mp.Shutdown})
	return mp, nil
}

// NewCatalogRepository opens the catalog and, when configured, keeps it in
// sync with its file
func NewCatalogRepository(cfg *config.Config, metrics *monitoring.MetricsCollector, log *zap.Logger) (*catalog.Repository, error) {
	repo, err := catalog.Open(cfg.Catalog.Path, log)
	if err != nil {
		return nil, err
	}
	metrics.SetCatalogSize(repo.Len())
	return repo, nil
}

// NewMealDBClient creates the instrumented remote recipe service client
func NewMealDBClient(cfg *config.Config, metrics *monitoring.MetricsCollector, log *zap.Logger) (*mealdb.Client, error) {
	return mealdb.NewClient(mealdb.Config{
		BaseURL:           cfg.MealDB.BaseURL,
		Timeout:           cfg.MealDB.Timeout,
		RequestsPerSecond: cfg.MealDB.RequestsPerSecond,
		Burst:             cfg.MealDB.Burst,
	}, log, mealdb.WithObserver(metrics))
}

// Cache is the optional upstream response cache. Repository is nil when
// caching is off.
type Cache struct {
	Repository outbound.CacheRepository
}

// NewCache opens the configured cache backend
func NewCache(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheMemory:
		repo := memory.NewCacheRepository(cfg.Cache.MaxEntries)
		interval := cfg.Cache.TTL
		if interval <= 0 {
			interval = cache.DefaultTTL
		}
		ctx, cancel := context.WithCancel(context.Background())
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go repo.RunCleanup(ctx, interval)
				return nil
			},
			OnStop: func(context.Context) error {
				cancel()
				return nil
			},
		})
		log.Info("Using in-memory response cache", zap.Int("max_entries", cfg.Cache.MaxEntries))
		return &Cache{Repository: repo}, nil

	case config.CacheRedis:
		client := redis.NewClient(redis.Config{
			Addr:      cfg.Cache.RedisAddr,
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.Cache.KeyPrefix,
		})
		repo := redis.NewCacheRepository(client, cfg.Cache.KeyPrefix, log)
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return repo.Close() },
		})
		log.Info("Using Redis response cache", zap.String("addr", cfg.Cache.RedisAddr))
		return &Cache{Repository: repo}, nil

	case config.CacheNone, "":
		return &Cache{}, nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// NewMealProvider decorates the client with the cache when one is configured
func NewMealProvider(client *mealdb.Client, c *Cache, cfg *config.Config, metrics *monitoring.MetricsCollector, log *zap.Logger) outbound.MealProvider {
	if c.Repository == nil {
		return client
	}
	return cache.NewMealProvider(client, c.Repository, cfg.Cache.TTL, metrics, log)
}

// NewHealthCheck registers the dependency checks
func NewHealthCheck(cfg *config.Config, repo *catalog.Repository, client *mealdb.Client, c *Cache, log *zap.Logger) *healthcheck.HealthCheck {
	hc := healthcheck.New(cfg.App.Version, log)

	hc.Register("catalog", healthcheck.Critical(repo).WithDetails(func() interface{} {
		return map[string]int{"recipes": repo.Len()}
	}))
	// the site still serves the static catalog without the remote service
	hc.Register("mealdb", healthcheck.Optional(client))

	if p, ok := c.Repository.(healthcheck.Pinger); ok {
		hc.Register("cache", healthcheck.Optional(p))
	}
	return hc
}

// NewLiveReloadHub creates the browser live reload hub
func NewLiveReloadHub(log *zap.Logger) *hotreload.Hub {
	return hotreload.NewHub(log)
}

// NewWebServer creates the web frontend server
func NewWebServer(
	cfg *config.Config,
	log *zap.Logger,
	catalogService inbound.CatalogService,
	menuService inbound.MenuService,
	tracker *menu.Tracker,
	health *healthcheck.HealthCheck,
	metrics *monitoring.MetricsCollector,
	hub *hotreload.Hub,
) (*webserver.WebServer, error) {
	var liveReload http.Handler
	if cfg.Server.EnableLiveReload {
		liveReload = hub
	}
	return webserver.NewWebServer(webserver.Dependencies{
		Config:     cfg,
		Logger:     log,
		Catalog:    catalogService,
		Menu:       menuService,
		Tracker:    tracker,
		Health:     health,
		Metrics:    metrics,
		LiveReload: liveReload,
	})
}

// NewAPIServer creates the JSON API server
func NewAPIServer(
	cfg *config.Config,
	log *zap.Logger,
	catalogService inbound.CatalogService,
	menuService inbound.MenuService,
	health *healthcheck.HealthCheck,
	metrics *monitoring.MetricsCollector,
) *apiserver.APIServer {
	return apiserver.NewAPIServer(apiserver.Dependencies{
		Config:  cfg,
		Logger:  log,
		Catalog: catalogService,
		Menu:    menuService,
		Health:  health,
		Metrics: metrics,
	})
}

// startCatalogWatcher follows the catalog file when catalog.watch is set.
// hub may be nil.
func startCatalogWatcher(ctx context.Context, cfg *config.Config, repo *catalog.Repository, metrics *monitoring.MetricsCollector, hub *hotreload.Hub, log *zap.Logger) error {
	if !cfg.Catalog.Watch {
		return nil
	}
	reload := func(path string) error {
		err := repo.ReloadFile(path)
		metrics.CatalogReloaded(repo.Len(), err)
		return err
	}
	watcher, err := hotreload.NewCatalogWatcher(cfg.Catalog.Path, reload, hub, log)
	if err != nil {
		return err
	}
	go watcher.Run(ctx)
	return nil
}

// WebParams are the dependencies of the web lifecycle hooks
type WebParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Config     *config.Config
	Logger     *zap.Logger
	Server     *webserver.WebServer
	Catalog    *catalog.Repository
	Metrics    *monitoring.MetricsCollector
	Hub        *hotreload.Hub
}

// RegisterWebHooks starts and stops the web server and its background work
func RegisterWebHooks(p WebParams) {
	ctx, cancel := context.WithCancel(context.Background())

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			p.Logger.Info("Starting cookbook web frontend",
				zap.String("version", p.Config.App.Version),
				zap.String("environment", p.Config.App.Environment),
			)

			var hub *hotreload.Hub
			if p.Config.Server.EnableLiveReload {
				hub = p.Hub
				go hub.Run(ctx)
			}
			if err := startCatalogWatcher(ctx, p.Config, p.Catalog, p.Metrics, hub, p.Logger); err != nil {
				return err
			}

			go func() {
				if err := p.Server.Start(); err != nil {
					p.Logger.Error("Web server stopped", zap.Error(err))
					_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			if err := p.Server.Shutdown(stopCtx); err != nil {
				p.Logger.Error("Failed to shutdown web server", zap.Error(err))
			}
			_ = p.Logger.Sync()
			return nil
		},
	})
}

// APIParams are the dependencies of the API lifecycle hooks
type APIParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Config     *config.Config
	Logger     *zap.Logger
	Server     *apiserver.APIServer
	Catalog    *catalog.Repository
	Metrics    *monitoring.MetricsCollector
}

// RegisterAPIHooks starts and stops the API server and its background work
func RegisterAPIHooks(p APIParams) {
	ctx, cancel := context.WithCancel(context.Background())

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			p.Logger.Info("Starting cookbook JSON API",
				zap.String("version", p.Config.App.Version),
				zap.String("environment", p.Config.App.Environment),
			)

			if p.Config.RateLimit.Enable {
				go p.Server.Limiters().RunCleanup(ctx, p.Config.RateLimit.CleanupInterval)
			}
			if err := startCatalogWatcher(ctx, p.Config, p.Catalog, p.Metrics, nil, p.Logger); err != nil {
				return err
			}

			go func() {
				if err := p.Server.Start(); err != nil {
					p.Logger.Error("API server stopped", zap.Error(err))
					_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			if err := p.Server.Shutdown(stopCtx); err != nil {
				p.Logger.Error("Failed to shutdown API server", zap.Error(err))
			}
			_ = p.Logger.Sync()
			return nil
		},
	})
}
