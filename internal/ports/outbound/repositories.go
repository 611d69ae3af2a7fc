// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

// CatalogSnapshot is an immutable view of the static catalog. Version
// changes whenever the underlying data is reloaded.
type CatalogSnapshot struct {
	Version uint64
	Source  string
	Recipes []recipe.Recipe
}

// RecipeRepository provides the static recipe catalog.
type RecipeRepository interface {
	Snapshot(ctx context.Context) (CatalogSnapshot, error)
	FindByID(ctx context.Context, id string) (*recipe.Recipe, error)
}

// MealProvider is the remote recipe service. List calls return an empty
// slice, not an error, when the service knows no matching meals.
type MealProvider interface {
	SearchByName(ctx context.Context, term string) ([]recipe.Meal, error)
	SearchByFirstLetter(ctx context.Context, letter rune) ([]recipe.Meal, error)
	FilterByCategory(ctx context.Context, category string) ([]recipe.Meal, error)
	// Lookup returns recipe.ErrMealNotFound for unknown ids.
	Lookup(ctx context.Context, id string) (*recipe.Meal, error)
	Random(ctx context.Context) (*recipe.Meal, error)
	Categories(ctx context.Context) ([]string, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	// Get returns ErrCacheMiss when key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
