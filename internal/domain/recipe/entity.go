// Package recipe contains the core domain model for recipe browsing.
// Recipes come from the bundled catalog; meals come from the remote
// recipe service. Both are read-only once constructed.
package recipe

import (
	"strings"
)

// Recipe is a record of the bundled static catalog.
type Recipe struct {
	ID           string          `json:"id" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	Image        string          `json:"image" validate:"required"`
	Ingredients  []string        `json:"ingredients,omitempty" validate:"omitempty,dive,required"`
	Instructions string          `json:"instructions,omitempty"`
	PrepTime     string          `json:"prepTime,omitempty"`
	CookTime     string          `json:"cookTime,omitempty"`
	Servings     int             `json:"servings,omitempty" validate:"gte=0"`
	Difficulty   DifficultyLevel `json:"difficulty,omitempty"`
}

// Steps splits the instructions into non-empty lines.
func (r Recipe) Steps() []string {
	return splitSteps(r.Instructions)
}

// Summary is the first sentence of the instructions, or a generic teaser.
func (r Recipe) Summary() string {
	return firstSentence(r.Instructions, "Discover the full recipe details.")
}

// PrepTimeOrDefault returns the preparation time shown on cards.
func (r Recipe) PrepTimeOrDefault() string {
	if r.PrepTime == "" {
		return "15–20 Min"
	}
	return r.PrepTime
}

// Meal is a record fetched from the remote recipe service.
type Meal struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category,omitempty"`
	Area         string   `json:"area,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
	Thumbnail    string   `json:"thumbnail,omitempty"`
	Video        string   `json:"video,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Ingredients  []string `json:"ingredients,omitempty"`
}

// InCategory reports whether the meal belongs to category, ignoring case.
// Meals without a category never match.
func (m Meal) InCategory(category string) bool {
	return m.Category != "" && strings.EqualFold(m.Category, category)
}

// Summary is the first sentence of the instructions, or a generic teaser.
func (m Meal) Summary() string {
	return firstSentence(m.Instructions, "A delicious dish that is easy to make.")
}

// Steps splits the instructions into non-empty lines.
func (m Meal) Steps() []string {
	return splitSteps(m.Instructions)
}

func firstSentence(text, fallback string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback
	}
	if i := strings.Index(text, ". "); i >= 0 {
		return text[:i]
	}
	return text
}

func splitSteps(text string) []string {
	lines := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	steps := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			steps = append(steps, line)
		}
	}
	return steps
}
