package menu

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

// DefaultSweepConcurrency bounds the in-flight first-letter requests.
const DefaultSweepConcurrency = 6

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// sweepResult is the merged outcome of an alphabet sweep.
type sweepResult struct {
	meals  []recipe.Meal
	failed []string
}

// sweep issues one first-letter search per letter and merges the results
// in letter order once every letter has settled. A failed letter adds no
// meals and is reported in failed; only cancellation of ctx fails the sweep.
func (s *Service) sweep(ctx context.Context) (sweepResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "menu.sweep")
	defer span.End()

	letters := []rune(alphabet)
	buckets := make([][]recipe.Meal, len(letters))
	errs := make([]error, len(letters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.sweepConcurrency)

	for i, letter := range letters {
		g.Go(func() error {
			meals, err := s.provider.SearchByFirstLetter(gctx, letter)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				errs[i] = err
				return nil
			}
			buckets[i] = meals
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return sweepResult{}, err
	}

	var result sweepResult
	for i, err := range errs {
		if err == nil {
			continue
		}
		result.failed = append(result.failed, string(letters[i]))
		s.logger.Error("Letter sweep failed",
			zap.String("letter", string(letters[i])),
			zap.Error(err),
		)
	}

	total := 0
	for _, b := range buckets {
		total += len(b)
	}
	merged := make([]recipe.Meal, 0, total)
	for _, b := range buckets {
		merged = append(merged, b...)
	}
	result.meals = dedupe(merged)
	span.SetAttributes(
		attribute.Int("sweep.meals", len(result.meals)),
		attribute.StringSlice("sweep.failed_letters", result.failed),
	)
	return result, nil
}

// dedupe keeps the first meal seen for each id, preserving order.
func dedupe(meals []recipe.Meal) []recipe.Meal {
	seen := make(map[string]struct{}, len(meals))
	out := make([]recipe.Meal, 0, len(meals))
	for _, m := range meals {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}
