// Package catalog loads the static recipe catalog and serves it to the
// application through outbound.RecipeRepository.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/pkg/errors"
)

// EmbeddedSource names the catalog compiled into the binary.
const EmbeddedSource = "embedded"

//go:embed data/recipes.json
var embedded []byte

var validate = validator.New()

// Embedded returns the raw catalog bundled with the binary.
func Embedded() []byte {
	return embedded
}

// Parse decodes and validates a catalog document. Every recipe must carry
// an id, a name and an image; ids must be unique.
func Parse(data []byte, source string) ([]recipe.Recipe, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var recipes []recipe.Recipe
	if err := dec.Decode(&recipes); err != nil {
		return nil, errors.NewInvalidCatalogError(source, err)
	}
	if len(recipes) == 0 {
		return nil, errors.NewInvalidCatalogError(source, recipe.ErrEmptyCatalog)
	}

	seen := make(map[string]int, len(recipes))
	var problems []errors.ValidationError
	for i := range recipes {
		if err := validate.Struct(recipes[i]); err != nil {
			problems = append(problems, fieldErrors(i, err)...)
			continue
		}
		if first, ok := seen[recipes[i].ID]; ok {
			problems = append(problems, errors.ValidationError{
				Field:   fmt.Sprintf("[%d].id", i),
				Value:   recipes[i].ID,
				Tag:     "unique",
				Message: fmt.Sprintf("recipe %d: %v (first used by recipe %d)", i, recipe.ErrDuplicateID, first),
			})
			continue
		}
		seen[recipes[i].ID] = i
	}

	if len(problems) > 0 {
		return nil, errors.NewInvalidCatalogError(source, errors.ValidationErrors(problems))
	}
	return recipes, nil
}

// ReadFile loads and parses a catalog document from disk.
func ReadFile(path string) ([]recipe.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInvalidCatalogError(path, err)
	}
	return Parse(data, path)
}

func fieldErrors(index int, err error) []errors.ValidationError {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return []errors.ValidationError{{
			Field:   fmt.Sprintf("[%d]", index),
			Message: fmt.Sprintf("recipe %d: %v", index, err),
		}}
	}

	out := make([]errors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, errors.ValidationError{
			Field:   fmt.Sprintf("[%d].%s", index, fe.Field()),
			Value:   fe.Value(),
			Tag:     fe.Tag(),
			Message: fmt.Sprintf("recipe %d: field %s failed %q", index, fe.Field(), fe.Tag()),
		})
	}
	return out
}
