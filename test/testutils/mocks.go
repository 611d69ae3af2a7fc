// Package testutils provides mock implementations for testing
package testutils

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/domain/search"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
)

// MockMealProvider provides a mock implementation of outbound.MealProvider
type MockMealProvider struct {
	mock.Mock
}

var _ outbound.MealProvider = (*MockMealProvider)(nil)

// SearchByName mocks a name search
func (m *MockMealProvider) SearchByName(ctx context.Context, term string) ([]recipe.Meal, error) {
	args := m.Called(ctx, term)
	return mealsArg(args, 0), args.Error(1)
}

// SearchByFirstLetter mocks a first-letter search
func (m *MockMealProvider) SearchByFirstLetter(ctx context.Context, letter rune) ([]recipe.Meal, error) {
	args := m.Called(ctx, letter)
	return mealsArg(args, 0), args.Error(1)
}

// FilterByCategory mocks a category listing
func (m *MockMealProvider) FilterByCategory(ctx context.Context, category string) ([]recipe.Meal, error) {
	args := m.Called(ctx, category)
	return mealsArg(args, 0), args.Error(1)
}

// Lookup mocks a meal lookup
func (m *MockMealProvider) Lookup(ctx context.Context, id string) (*recipe.Meal, error) {
	args := m.Called(ctx, id)
	return mealArg(args, 0), args.Error(1)
}

// Random mocks a random meal
func (m *MockMealProvider) Random(ctx context.Context) (*recipe.Meal, error) {
	args := m.Called(ctx)
	return mealArg(args, 0), args.Error(1)
}

// Categories mocks the category list
func (m *MockMealProvider) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCatalogService provides a mock implementation of inbound.CatalogService
type MockCatalogService struct {
	mock.Mock
}

var _ inbound.CatalogService = (*MockCatalogService)(nil)

// SearchRecipes mocks a catalog search
func (m *MockCatalogService) SearchRecipes(ctx context.Context, query string) (*inbound.RecipeList, error) {
	args := m.Called(ctx, query)
	if v := args.Get(0); v != nil {
		return v.(*inbound.RecipeList), args.Error(1)
	}
	return nil, args.Error(1)
}

// GetRecipe mocks a recipe lookup
func (m *MockCatalogService) GetRecipe(ctx context.Context, id string) (*recipe.Recipe, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*recipe.Recipe), args.Error(1)
	}
	return nil, args.Error(1)
}

// FeaturedRecipes mocks the landing page selection
func (m *MockCatalogService) FeaturedRecipes(ctx context.Context, n int) ([]recipe.Recipe, error) {
	args := m.Called(ctx, n)
	if v := args.Get(0); v != nil {
		return v.([]recipe.Recipe), args.Error(1)
	}
	return nil, args.Error(1)
}

// SuggestRecipes mocks typeahead suggestions
func (m *MockCatalogService) SuggestRecipes(ctx context.Context, query string, limit int) ([]search.Suggestion, error) {
	args := m.Called(ctx, query, limit)
	if v := args.Get(0); v != nil {
		return v.([]search.Suggestion), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMenuService provides a mock implementation of inbound.MenuService
type MockMenuService struct {
	mock.Mock
}

var _ inbound.MenuService = (*MockMenuService)(nil)

// Browse mocks a remote browse
func (m *MockMenuService) Browse(ctx context.Context, q recipe.BrowseQuery) (*inbound.MenuResult, error) {
	args := m.Called(ctx, q)
	if v := args.Get(0); v != nil {
		return v.(*inbound.MenuResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// GetMeal mocks a meal lookup
func (m *MockMenuService) GetMeal(ctx context.Context, id string) (*recipe.Meal, error) {
	args := m.Called(ctx, id)
	return mealArg(args, 0), args.Error(1)
}

// RandomMeal mocks a random meal
func (m *MockMenuService) RandomMeal(ctx context.Context) (*recipe.Meal, error) {
	args := m.Called(ctx)
	return mealArg(args, 0), args.Error(1)
}

// Categories mocks the category list
func (m *MockMenuService) Categories(ctx context.Context) []string {
	args := m.Called(ctx)
	return args.Get(0).([]string)
}

func mealsArg(args mock.Arguments, i int) []recipe.Meal {
	if v := args.Get(i); v != nil {
		return v.([]recipe.Meal)
	}
	return nil
}

func mealArg(args mock.Arguments, i int) *recipe.Meal {
	if v := args.Get(i); v != nil {
		return v.(*recipe.Meal)
	}
	return nil
}
