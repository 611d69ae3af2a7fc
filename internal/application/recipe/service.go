// Package recipe provides the application layer for the static recipe catalog
// This implements the use cases defined in the inbound ports
package recipe

import (
	"context"
	stderrors "errors"
	"math/rand/v2"
	"sync"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/domain/search"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"go.uber.org/zap"
)

// CatalogService implements the static catalog use cases
type CatalogService struct {
	repo      outbound.RecipeRepository
	threshold float64
	logger    *zap.Logger
	shuffle   func(n int, swap func(i, j int))

	mu      sync.Mutex
	index   *search.Index[recipe.Recipe]
	version uint64
}

// NewCatalogService creates a new catalog service. threshold is the fuzzy
// match tolerance in [0,1] and is used as given, so zero means exact
// matches only; pass a negative value to select search.DefaultThreshold.
func NewCatalogService(repo outbound.RecipeRepository, threshold float64, logger *zap.Logger) *CatalogService {
	if threshold < 0 {
		threshold = search.DefaultThreshold
	}
	return &CatalogService{
		repo:      repo,
		threshold: threshold,
		logger:    logger.Named("catalog-service"),
		shuffle:   rand.Shuffle,
	}
}

var _ inbound.CatalogService = (*CatalogService)(nil)

// SearchRecipes filters the catalog with the fuzzy index
func (s *CatalogService) SearchRecipes(ctx context.Context, query string) (*inbound.RecipeList, error) {
	idx, err := s.currentIndex(ctx)
	if err != nil {
		return nil, err
	}

	recipes := idx.Items(query)
	s.logger.Debug("Catalog searched",
		zap.String("query", query),
		zap.Int("matches", len(recipes)),
		zap.Int("catalog_size", idx.Len()),
	)

	return &inbound.RecipeList{
		Query:   query,
		Recipes: recipes,
		Total:   len(recipes),
	}, nil
}

// GetRecipe returns one catalog recipe
func (s *CatalogService) GetRecipe(ctx context.Context, id string) (*recipe.Recipe, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, recipe.ErrRecipeNotFound) {
			return nil, errors.NewRecipeNotFoundError(id).WithCause(err)
		}
		return nil, errors.Wrap(err, "failed to load recipe")
	}
	return r, nil
}

// FeaturedRecipes picks up to n distinct recipes at random
func (s *CatalogService) FeaturedRecipes(ctx context.Context, n int) ([]recipe.Recipe, error) {
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load catalog")
	}
	if n <= 0 {
		return []recipe.Recipe{}, nil
	}

	picked := make([]recipe.Recipe, len(snap.Recipes))
	copy(picked, snap.Recipes)
	s.shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	if len(picked) > n {
		picked = picked[:n]
	}
	return picked, nil
}

// SuggestRecipes returns typeahead candidates for a partial query
func (s *CatalogService) SuggestRecipes(ctx context.Context, query string, limit int) ([]search.Suggestion, error) {
	idx, err := s.currentIndex(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Suggest(query, limit), nil
}

// currentIndex rebuilds the search index when the catalog version changes.
func (s *CatalogService) currentIndex(ctx context.Context) (*search.Index[recipe.Recipe], error) {
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load catalog")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil || s.version != snap.Version {
		s.index = search.NewRecipeIndex(snap.Recipes, s.threshold)
		s.version = snap.Version
		s.logger.Info("Search index built",
			zap.Uint64("version", snap.Version),
			zap.String("source", snap.Source),
			zap.Int("recipes", len(snap.Recipes)),
		)
	}
	return s.index, nil
}
