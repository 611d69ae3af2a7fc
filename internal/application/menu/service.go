// Package menu provides the application layer for browsing the remote
// recipe service
package menu

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/alchemorsel/cookbook/pkg/pagination"
)

// UpstreamName identifies the remote recipe service in errors and logs.
const UpstreamName = "TheMealDB"

// User-facing messages for non-OK results.
const (
	MessageFailed = "Failed to load recipes. Please try again later."
	MessageEmpty  = "No recipes found for your search."
)

// NotInCategoryMessage explains that a term matched only outside category.
func NotInCategoryMessage(term, category string) string {
	return fmt.Sprintf("%q is not available in the %q category.", term, category)
}

const tracerName = "github.com/alchemorsel/cookbook/internal/application/menu"

// Observer is told about every browse result
type Observer interface {
	ObserveBrowse(mode, status string, failedLetters int)
}

// Config holds the tunables of the menu service
type Config struct {
	PageSize         int
	SweepConcurrency int
	PaginationWindow int
	// Observer is optional.
	Observer Observer
}

// Service implements inbound.MenuService
type Service struct {
	provider         outbound.MealProvider
	pageSize         int
	sweepConcurrency int
	window           int
	observer         Observer
	logger           *zap.Logger
}

// NewService creates a new menu service
func NewService(provider outbound.MealProvider, cfg Config, logger *zap.Logger) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = pagination.DefaultPageSize
	}
	if cfg.SweepConcurrency <= 0 {
		cfg.SweepConcurrency = DefaultSweepConcurrency
	}
	if cfg.PaginationWindow <= 0 {
		cfg.PaginationWindow = 1
	}
	return &Service{
		provider:         provider,
		pageSize:         cfg.PageSize,
		sweepConcurrency: cfg.SweepConcurrency,
		window:           cfg.PaginationWindow,
		observer:         cfg.Observer,
		logger:           logger.Named("menu-service"),
	}
}

var _ inbound.MenuService = (*Service)(nil)

// Browse fetches, filters and paginates meals for q
func (s *Service) Browse(ctx context.Context, q recipe.BrowseQuery) (*inbound.MenuResult, error) {
	start := time.Now()
	mode := q.Mode()

	result := &inbound.MenuResult{
		Query:  q,
		Mode:   mode.String(),
		Status: inbound.StatusOK,
	}

	var (
		meals []recipe.Meal
		err   error
	)

	switch mode {
	case recipe.ModeName:
		meals, err = s.provider.SearchByName(ctx, q.Term)
		if err == nil {
			meals = dedupe(meals)
			if q.HasCategory() {
				filtered := filterCategory(meals, q.Category)
				if len(meals) > 0 && len(filtered) == 0 {
					result.Status = inbound.StatusNotInCategory
					result.Message = NotInCategoryMessage(q.Term, q.Category)
				}
				meals = filtered
			}
		}
	case recipe.ModeCategory:
		meals, err = s.provider.FilterByCategory(ctx, q.Category)
		if err == nil {
			meals = dedupe(meals)
		}
	default:
		var sw sweepResult
		sw, err = s.sweep(ctx)
		meals = sw.meals
		result.FailedLetters = sw.failed
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Error("Failed to fetch meals",
			zap.String("mode", mode.String()),
			zap.String("term", q.Term),
			zap.String("category", q.Category),
			zap.Error(err),
		)
		meals = nil
		result.Status = inbound.StatusFailed
		result.Message = MessageFailed
	}

	if result.Status == inbound.StatusOK && len(meals) == 0 {
		result.Status = inbound.StatusEmpty
		result.Message = MessageEmpty
	}

	page := pagination.New(len(meals), s.pageSize, q.Page)
	result.Query = q.WithPage(page.Number)
	result.Page = page
	result.Meals = pagination.Slice(meals, page)
	result.Controls = page.Controls(s.window)

	if s.observer != nil {
		s.observer.ObserveBrowse(result.Mode, string(result.Status), len(result.FailedLetters))
	}
	s.logger.Debug("Menu browsed",
		zap.String("mode", mode.String()),
		zap.String("status", string(result.Status)),
		zap.Int("total", page.Total),
		zap.Int("page", page.Number),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// GetMeal looks up one remote meal
func (s *Service) GetMeal(ctx context.Context, id string) (*recipe.Meal, error) {
	meal, err := s.provider.Lookup(ctx, id)
	if err != nil {
		if stderrors.Is(err, recipe.ErrMealNotFound) {
			return nil, errors.NewMealNotFoundError(id).WithCause(err)
		}
		s.logger.Error("Failed to look up meal", zap.String("meal_id", id), zap.Error(err))
		return nil, errors.NewUpstreamError(UpstreamName, err)
	}
	return meal, nil
}

// RandomMeal returns a random remote meal
func (s *Service) RandomMeal(ctx context.Context) (*recipe.Meal, error) {
	meal, err := s.provider.Random(ctx)
	if err != nil {
		if stderrors.Is(err, recipe.ErrMealNotFound) {
			return nil, errors.NewMealNotFoundError("random").WithCause(err)
		}
		s.logger.Error("Failed to fetch random meal", zap.Error(err))
		return nil, errors.NewUpstreamError(UpstreamName, err)
	}
	return meal, nil
}

// Categories lists the remote categories, falling back to the built-in list
func (s *Service) Categories(ctx context.Context) []string {
	categories, err := s.provider.Categories(ctx)
	if err != nil || len(categories) == 0 {
		if err != nil {
			s.logger.Warn("Using default categories", zap.Error(err))
		}
		fallback := make([]string, len(recipe.DefaultCategories))
		copy(fallback, recipe.DefaultCategories)
		return fallback
	}
	return categories
}

func filterCategory(meals []recipe.Meal, category string) []recipe.Meal {
	out := make([]recipe.Meal, 0, len(meals))
	for _, m := range meals {
		if m.InCategory(category) {
			out = append(out, m)
		}
	}
	return out
}
