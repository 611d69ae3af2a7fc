package mealdb

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

// maxIngredients is the number of strIngredientN/strMeasureN pairs a
// meal record carries.
const maxIngredients = 20

// mealsResponse is the envelope of every list endpoint. A null list means
// no matches.
type mealsResponse struct {
	Meals []wireMeal `json:"meals"`
}

type categoriesResponse struct {
	Meals []struct {
		Category string `json:"strCategory"`
	} `json:"meals"`
}

type wireMeal struct {
	ID           string `json:"idMeal"`
	Name         string `json:"strMeal"`
	Category     string `json:"strCategory"`
	Area         string `json:"strArea"`
	Instructions string `json:"strInstructions"`
	Thumbnail    string `json:"strMealThumb"`
	Tags         string `json:"strTags"`
	Video        string `json:"strYoutube"`

	ingredients []string
}

// UnmarshalJSON also collects the numbered ingredient and measure fields.
func (w *wireMeal) UnmarshalJSON(data []byte) error {
	type plain wireMeal
	if err := json.Unmarshal(data, (*plain)(w)); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	w.ingredients = w.ingredients[:0]
	for i := 1; i <= maxIngredients; i++ {
		ingredient := stringField(raw, fmt.Sprintf("strIngredient%d", i))
		if ingredient == "" {
			continue
		}
		measure := stringField(raw, fmt.Sprintf("strMeasure%d", i))
		w.ingredients = append(w.ingredients, strings.TrimSpace(measure+" "+ingredient))
	}
	return nil
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return strings.TrimSpace(s)
}

func (w wireMeal) toDomain() recipe.Meal {
	var tags []string
	for _, tag := range strings.Split(w.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	var ingredients []string
	if len(w.ingredients) > 0 {
		ingredients = append(ingredients, w.ingredients...)
	}

	return recipe.Meal{
		ID:           w.ID,
		Name:         w.Name,
		Category:     w.Category,
		Area:         w.Area,
		Instructions: w.Instructions,
		Thumbnail:    w.Thumbnail,
		Video:        w.Video,
		Tags:         tags,
		Ingredients:  ingredients,
	}
}
