// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

// RecipeFactory provides methods to create test recipes
type RecipeFactory struct {
	faker *gofakeit.Faker
	next  int
}

// NewRecipeFactory creates a new recipe factory with seeded faker
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{
		faker: gofakeit.New(seed),
	}
}

// Recipe creates a valid catalog recipe with a unique id
func (f *RecipeFactory) Recipe() recipe.Recipe {
	f.next++
	return NewRecipeBuilder(f.faker).WithID(fmt.Sprintf("r%d", f.next)).Build()
}

// Recipes creates n valid catalog recipes
func (f *RecipeFactory) Recipes(n int) []recipe.Recipe {
	out := make([]recipe.Recipe, n)
	for i := range out {
		out[i] = f.Recipe()
	}
	return out
}

// RecipeBuilder provides a fluent interface for building test recipes
type RecipeBuilder struct {
	r recipe.Recipe
}

// NewRecipeBuilder creates a new recipe builder with fake default values
func NewRecipeBuilder(faker *gofakeit.Faker) *RecipeBuilder {
	ingredients := make([]string, 3+faker.Number(0, 4))
	for i := range ingredients {
		ingredients[i] = fmt.Sprintf("%d g %s", faker.Number(10, 500), faker.Vegetable())
	}

	steps := make([]string, 2+faker.Number(0, 3))
	for i := range steps {
		steps[i] = faker.Sentence(6)
	}

	levels := []recipe.DifficultyLevel{recipe.DifficultyEasy, recipe.DifficultyMedium, recipe.DifficultyHard}

	return &RecipeBuilder{r: recipe.Recipe{
		ID:           faker.UUID(),
		Name:         faker.Dinner(),
		Image:        "/static/images/" + strings.ToLower(faker.Word()) + ".jpg",
		Ingredients:  ingredients,
		Instructions: strings.Join(steps, "\n"),
		PrepTime:     fmt.Sprintf("%d Min", faker.Number(5, 45)),
		CookTime:     fmt.Sprintf("%d Min", faker.Number(10, 120)),
		Servings:     faker.Number(1, 8),
		Difficulty:   levels[faker.Number(0, len(levels)-1)],
	}}
}

// WithID sets the recipe id
func (rb *RecipeBuilder) WithID(id string) *RecipeBuilder {
	rb.r.ID = id
	return rb
}

// WithName sets the recipe name
func (rb *RecipeBuilder) WithName(name string) *RecipeBuilder {
	rb.r.Name = name
	return rb
}

// WithIngredients replaces the ingredient list
func (rb *RecipeBuilder) WithIngredients(ingredients ...string) *RecipeBuilder {
	rb.r.Ingredients = ingredients
	return rb
}

// WithInstructions sets the instruction text
func (rb *RecipeBuilder) WithInstructions(instructions string) *RecipeBuilder {
	rb.r.Instructions = instructions
	return rb
}

// Build returns the recipe
func (rb *RecipeBuilder) Build() recipe.Recipe {
	return rb.r
}

// MealFactory creates remote meal records
type MealFactory struct {
	faker *gofakeit.Faker
	next  int
}

// NewMealFactory creates a new meal factory with seeded faker
func NewMealFactory(seed int64) *MealFactory {
	return &MealFactory{faker: gofakeit.New(seed)}
}

// Meal creates a meal in category with a unique numeric id
func (f *MealFactory) Meal(category string) recipe.Meal {
	f.next++
	return recipe.Meal{
		ID:           fmt.Sprintf("%d", 52000+f.next),
		Name:         f.faker.Dinner(),
		Category:     category,
		Area:         f.faker.Country(),
		Instructions: f.faker.Sentence(8) + " " + f.faker.Sentence(8),
		Thumbnail:    fmt.Sprintf("https://example.test/meals/%d.jpg", f.next),
	}
}

// Meals creates n meals in category
func (f *MealFactory) Meals(n int, category string) []recipe.Meal {
	out := make([]recipe.Meal, n)
	for i := range out {
		out[i] = f.Meal(category)
	}
	return out
}
