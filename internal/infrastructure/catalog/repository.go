package catalog

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
)

// Repository holds the current catalog in memory. Reloads swap the whole
// catalog atomically, so readers always see one consistent version.
type Repository struct {
	current atomic.Pointer[state]
	version atomic.Uint64
	logger  *zap.Logger
}

type state struct {
	snapshot outbound.CatalogSnapshot
	byID     map[string]int
}

var _ outbound.RecipeRepository = (*Repository)(nil)

// NewRepository serves an already validated catalog.
func NewRepository(recipes []recipe.Recipe, source string, logger *zap.Logger) *Repository {
	r := &Repository{logger: logger.Named("catalog")}
	r.Replace(recipes, source)
	return r
}

// Open loads the catalog at path, or the embedded catalog when path is empty.
func Open(path string, logger *zap.Logger) (*Repository, error) {
	var (
		recipes []recipe.Recipe
		err     error
		source  = EmbeddedSource
	)
	if path == "" {
		recipes, err = Parse(embedded, EmbeddedSource)
	} else {
		source = path
		recipes, err = ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return NewRepository(recipes, source, logger), nil
}

// Snapshot returns the current catalog version.
func (r *Repository) Snapshot(_ context.Context) (outbound.CatalogSnapshot, error) {
	return r.current.Load().snapshot, nil
}

// FindByID returns recipe.ErrRecipeNotFound for unknown ids.
func (r *Repository) FindByID(_ context.Context, id string) (*recipe.Recipe, error) {
	s := r.current.Load()
	i, ok := s.byID[id]
	if !ok {
		return nil, recipe.ErrRecipeNotFound
	}
	found := s.snapshot.Recipes[i]
	return &found, nil
}

// Replace installs a new catalog and bumps the version.
func (r *Repository) Replace(recipes []recipe.Recipe, source string) {
	owned := make([]recipe.Recipe, len(recipes))
	copy(owned, recipes)

	byID := make(map[string]int, len(owned))
	for i, rec := range owned {
		if _, dup := byID[rec.ID]; !dup {
			byID[rec.ID] = i
		}
	}

	version := r.version.Add(1)
	r.current.Store(&state{
		snapshot: outbound.CatalogSnapshot{Version: version, Source: source, Recipes: owned},
		byID:     byID,
	})
	r.logger.Info("Catalog loaded",
		zap.String("source", source),
		zap.Uint64("version", version),
		zap.Int("recipes", len(owned)),
	)
}

// ReloadFile re-reads path. An invalid file is rejected and the current
// catalog stays in place.
func (r *Repository) ReloadFile(path string) error {
	recipes, err := ReadFile(path)
	if err != nil {
		r.logger.Error("Catalog reload rejected", zap.String("path", path), zap.Error(err))
		return err
	}
	r.Replace(recipes, path)
	return nil
}

// Len returns the number of recipes in the current catalog.
func (r *Repository) Len() int {
	return len(r.current.Load().snapshot.Recipes)
}

// HealthCheck fails when the catalog is empty.
func (r *Repository) HealthCheck(_ context.Context) error {
	if r.Len() == 0 {
		return recipe.ErrEmptyCatalog
	}
	return nil
}
