package search

import "github.com/alchemorsel/cookbook/internal/domain/recipe"

// Recipe field names usable in Options.Keys.
const (
	KeyName         = "name"
	KeyIngredients  = "ingredients"
	KeyInstructions = "instructions"
)

// RecipeSchema searches catalog recipes by name, ingredients and instructions.
var RecipeSchema = Schema[recipe.Recipe]{
	Label: func(r recipe.Recipe) string { return r.Name },
	Fields: []Field[recipe.Recipe]{
		{Name: KeyName, Values: func(r recipe.Recipe) []string { return []string{r.Name} }},
		{Name: KeyIngredients, Values: func(r recipe.Recipe) []string { return r.Ingredients }},
		{Name: KeyInstructions, Values: func(r recipe.Recipe) []string { return []string{r.Instructions} }},
	},
}

// NewRecipeIndex indexes a catalog with the default recipe schema.
func NewRecipeIndex(recipes []recipe.Recipe, threshold float64) *Index[recipe.Recipe] {
	return NewIndex(recipes, RecipeSchema, Options{Threshold: threshold})
}
