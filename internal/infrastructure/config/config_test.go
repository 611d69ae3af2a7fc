package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/cookbook/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Cookbook", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 0.3, cfg.Catalog.Threshold)
	assert.Equal(t, 8, cfg.Catalog.FeaturedCount)
	assert.Equal(t, "https://www.themealdb.com/api/json/v1/1", cfg.MealDB.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.MealDB.Timeout)
	assert.Equal(t, 9, cfg.Menu.PageSize)
	assert.Equal(t, 6, cfg.Menu.SweepConcurrency)
	assert.Equal(t, CacheNone, cfg.Cache.Backend)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddr())
	assert.Empty(t, cfg.Server.BaseURL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("COOKBOOK_MENU_PAGE_SIZE", "12")
	t.Setenv("COOKBOOK_CACHE_BACKEND", "memory")
	t.Setenv("COOKBOOK_MEALDB_TIMEOUT", "3s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Menu.PageSize)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, 3*time.Second, cfg.MealDB.Timeout)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cookbook.yaml")
	content := `
app:
  environment: production
catalog:
  path: /srv/recipes.json
  watch: true
  threshold: 0.2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "/srv/recipes.json", cfg.Catalog.Path)
	assert.True(t, cfg.Catalog.Watch)
	assert.Equal(t, 0.2, cfg.Catalog.Threshold)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"threshold above one", func(c *Config) { c.Catalog.Threshold = 1.5 }, "catalog.threshold"},
		{"watch without path", func(c *Config) { c.Catalog.Watch = true }, "catalog.path is required"},
		{"relative base url", func(c *Config) { c.MealDB.BaseURL = "/api" }, "mealdb.base_url"},
		{"zero page size", func(c *Config) { c.Menu.PageSize = 0 }, "menu.page_size"},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"redis without addr", func(c *Config) {
			c.Cache.Backend = CacheRedis
			c.Cache.RedisAddr = ""
		}, "cache.redis_addr"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port must be at most 65535"},
		{"relative server base url", func(c *Config) { c.Server.BaseURL = "/cookbook" }, "server.base_url"},
		{"zero timeout", func(c *Config) { c.MealDB.Timeout = 0 }, "mealdb.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Menu.PageSize = 0
	cfg.Cache.Backend = "memcached"

	err = cfg.Validate()
	var verrs errors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)
	assert.Equal(t, "menu.page_size", verrs[0].Field)
	assert.Equal(t, "cache.backend must be one of none, memory, redis", verrs[1].Message)
}
