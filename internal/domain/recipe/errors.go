package recipe

import "errors"

// Domain errors for recipe lookups

var (
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrMealNotFound   = errors.New("meal not found")

	// ErrUpstream marks a failed call to the remote recipe service.
	ErrUpstream = errors.New("recipe service unavailable")

	ErrEmptyCatalog    = errors.New("recipe catalog is empty")
	ErrDuplicateID     = errors.New("duplicate recipe id in catalog")
	ErrInvalidShareURL = errors.New("share url must be absolute")
)
