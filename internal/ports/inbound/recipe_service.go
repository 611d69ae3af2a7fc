// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/domain/search"
	"github.com/alchemorsel/cookbook/pkg/pagination"
)

// CatalogService exposes the bundled static catalog.
type CatalogService interface {
	// SearchRecipes filters the catalog with fuzzy matching. A blank query
	// returns the whole catalog in catalog order.
	SearchRecipes(ctx context.Context, query string) (*RecipeList, error)
	GetRecipe(ctx context.Context, id string) (*recipe.Recipe, error)
	// FeaturedRecipes picks n random recipes for the landing page.
	FeaturedRecipes(ctx context.Context, n int) ([]recipe.Recipe, error)
	SuggestRecipes(ctx context.Context, query string, limit int) ([]search.Suggestion, error)
}

// RecipeList is a filtered view of the static catalog.
type RecipeList struct {
	Query   string          `json:"query"`
	Recipes []recipe.Recipe `json:"recipes"`
	Total   int             `json:"total"`
}

// MenuService browses the remote recipe service.
type MenuService interface {
	// Browse runs the retrieval mode selected by q and paginates the result.
	// Upstream failures are reported through MenuResult.Status; the error
	// is non-nil only when ctx ends before the result is ready.
	Browse(ctx context.Context, q recipe.BrowseQuery) (*MenuResult, error)
	GetMeal(ctx context.Context, id string) (*recipe.Meal, error)
	RandomMeal(ctx context.Context) (*recipe.Meal, error)
	// Categories never fails; it falls back to recipe.DefaultCategories.
	Categories(ctx context.Context) []string
}

// ResultStatus classifies a browse outcome.
type ResultStatus string

const (
	StatusOK            ResultStatus = "ok"
	StatusEmpty         ResultStatus = "empty"
	StatusNotInCategory ResultStatus = "not_in_category"
	StatusFailed        ResultStatus = "failed"
)

// MenuResult is one rendered page of a remote catalog view.
type MenuResult struct {
	Query    recipe.BrowseQuery   `json:"query"`
	Mode     string               `json:"mode"`
	Status   ResultStatus         `json:"status"`
	Message  string               `json:"message,omitempty"`
	Meals    []recipe.Meal        `json:"meals"`
	Page     pagination.Page      `json:"page"`
	Controls []pagination.Control `json:"controls"`
	// FailedLetters lists alphabet sweep letters that returned nothing
	// because their request failed.
	FailedLetters []string `json:"failed_letters,omitempty"`
}

// HasResults reports whether the page has meals to show.
func (r *MenuResult) HasResults() bool {
	return r.Status == StatusOK && len(r.Meals) > 0
}
