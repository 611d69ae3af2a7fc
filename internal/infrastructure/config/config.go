// Package config loads site configuration from defaults, an optional YAML
// file and COOKBOOK_ environment variables.
package config

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/alchemorsel/cookbook/pkg/errors"
)

// EnvPrefix prefixes every environment override, e.g. COOKBOOK_SERVER_PORT.
const EnvPrefix = "COOKBOOK"

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	MealDB     MealDBConfig     `mapstructure:"mealdb"`
	Menu       MenuConfig       `mapstructure:"menu"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port" validate:"min=1,max=65535"`
	APIPort           int           `mapstructure:"api_port" validate:"min=1,max=65535"`
	BaseURL           string        `mapstructure:"base_url" validate:"omitempty,url"` // share link origin; empty follows the request
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	EnableCORS        bool          `mapstructure:"enable_cors"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	TrustedProxies    []string      `mapstructure:"trusted_proxies"`
	EnableCompression bool          `mapstructure:"enable_compression"`
	EnableH2C         bool          `mapstructure:"enable_h2c"`
	EnableLiveReload  bool          `mapstructure:"enable_livereload"`
}

// CatalogConfig configures the bundled static recipe catalog
type CatalogConfig struct {
	// Path overrides the embedded catalog with a JSON file on disk.
	Path          string  `mapstructure:"path" validate:"required_if=Watch true"`
	Watch         bool    `mapstructure:"watch"`
	Threshold     float64 `mapstructure:"threshold" validate:"gte=0,lte=1"`
	FeaturedCount int     `mapstructure:"featured_count" validate:"gte=0"`
}

// MealDBConfig configures the remote recipe service client
type MealDBConfig struct {
	BaseURL           string        `mapstructure:"base_url" validate:"required,url"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// MenuConfig configures remote catalog browsing
type MenuConfig struct {
	PageSize         int `mapstructure:"page_size" validate:"min=1"`
	SweepConcurrency int `mapstructure:"sweep_concurrency" validate:"min=1,max=26"`
	PaginationWindow int `mapstructure:"pagination_window" validate:"gte=0"`
}

// CacheConfig configures the optional upstream response cache
type CacheConfig struct {
	// Backend is one of none, memory or redis.
	Backend       string        `mapstructure:"backend" validate:"oneof=none memory redis"`
	TTL           time.Duration `mapstructure:"ttl"`
	MaxEntries    int           `mapstructure:"max_entries"`
	RedisAddr     string        `mapstructure:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	KeyPrefix     string        `mapstructure:"key_prefix"`
}

// MonitoringConfig contains monitoring configuration
type MonitoringConfig struct {
	EnableMetrics   bool    `mapstructure:"enable_metrics"`
	EnableTracing   bool    `mapstructure:"enable_tracing"`
	OTLPEndpoint    string  `mapstructure:"otlp_endpoint"`
	SamplingRate    float64 `mapstructure:"sampling_rate" validate:"gte=0,lte=1"`
	MetricsPath     string  `mapstructure:"metrics_path"`
	HealthCheckPath string  `mapstructure:"health_check_path"`
	ReadinessPath   string  `mapstructure:"readiness_path"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enable          bool          `mapstructure:"enable"`
	RequestsPerMin  int           `mapstructure:"requests_per_min"`
	BurstSize       int           `mapstructure:"burst_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// Cache backends
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/cookbook")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Cookbook")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.api_port", 8081)
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.max_header_bytes", 1<<20) // 1MB
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.enable_cors", true)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("server.enable_compression", true)
	v.SetDefault("server.enable_h2c", false)
	v.SetDefault("server.enable_livereload", false)

	// Catalog defaults
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.watch", false)
	v.SetDefault("catalog.threshold", 0.3)
	v.SetDefault("catalog.featured_count", 8)

	// MealDB defaults
	v.SetDefault("mealdb.base_url", "https://www.themealdb.com/api/json/v1/1")
	v.SetDefault("mealdb.timeout", "10s")
	v.SetDefault("mealdb.requests_per_second", 20)
	v.SetDefault("mealdb.burst", 10)

	// Menu defaults
	v.SetDefault("menu.page_size", 9)
	v.SetDefault("menu.sweep_concurrency", 6)
	v.SetDefault("menu.pagination_window", 1)

	// Cache defaults
	v.SetDefault("cache.backend", CacheNone)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.max_entries", 1000)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.key_prefix", "cookbook:")

	// Monitoring defaults
	v.SetDefault("monitoring.enable_metrics", true)
	v.SetDefault("monitoring.enable_tracing", false)
	v.SetDefault("monitoring.otlp_endpoint", "localhost:4318")
	v.SetDefault("monitoring.sampling_rate", 0.1)
	v.SetDefault("monitoring.metrics_path", "/metrics")
	v.SetDefault("monitoring.health_check_path", "/health")
	v.SetDefault("monitoring.readiness_path", "/ready")

	// Rate limit defaults
	v.SetDefault("rate_limit.enable", true)
	v.SetDefault("rate_limit.requests_per_min", 600)
	v.SetDefault("rate_limit.burst_size", 60)
	v.SetDefault("rate_limit.cleanup_interval", "1m")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("mapstructure")
	})
	return v
}

// Validate checks every field against its validate tag and reports all
// failures, named by their configuration keys.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err
	}
	out := make(errors.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := fe.Namespace()
		if i := strings.IndexByte(key, '.'); i >= 0 {
			key = key[i+1:]
		}
		out = append(out, errors.ValidationError{
			Field:   key,
			Value:   fe.Value(),
			Tag:     fe.Tag(),
			Message: describe(key, fe),
		})
	}
	return out
}

func describe(key string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return key + " is required"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", key, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", key, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", key, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return key + " must be an absolute URL"
	}
	return key + " is invalid"
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// ListenAddr returns the web server address
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// APIListenAddr returns the JSON API server address
func (c *Config) APIListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.APIPort)
}
