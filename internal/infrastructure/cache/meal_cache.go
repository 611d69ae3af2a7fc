// Package cache provides a read-through cache in front of the remote
// recipe service
package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
)

// DefaultTTL is used when no TTL is configured
const DefaultTTL = 5 * time.Minute

// Observer is told about every cache lookup
type Observer interface {
	ObserveCache(operation string, hit bool)
}

// KeyBuilder builds namespaced cache keys
type KeyBuilder struct{}

// Name keys a name search
func (KeyBuilder) Name(term string) string {
	return "meals:name:" + strings.ToLower(strings.TrimSpace(term))
}

// Letter keys a first-letter search
func (KeyBuilder) Letter(letter rune) string {
	return "meals:letter:" + strings.ToLower(string(letter))
}

// Category keys a category listing
func (KeyBuilder) Category(category string) string {
	return "meals:category:" + strings.ToLower(strings.TrimSpace(category))
}

// Meal keys a single meal
func (KeyBuilder) Meal(id string) string {
	return "meals:id:" + id
}

// Categories keys the category list
func (KeyBuilder) Categories() string {
	return "meals:categories"
}

// MealProvider decorates an outbound.MealProvider with a read-through
// cache. Only successful answers are cached; Random is never cached.
type MealProvider struct {
	next     outbound.MealProvider
	cache    outbound.CacheRepository
	ttl      time.Duration
	keys     KeyBuilder
	observer Observer
	logger   *zap.Logger
}

var _ outbound.MealProvider = (*MealProvider)(nil)

// NewMealProvider wraps next. observer may be nil.
func NewMealProvider(next outbound.MealProvider, cache outbound.CacheRepository, ttl time.Duration, observer Observer, logger *zap.Logger) *MealProvider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MealProvider{
		next:     next,
		cache:    cache,
		ttl:      ttl,
		observer: observer,
		logger:   logger.Named("meal-cache"),
	}
}

// SearchByName reads through the cache
func (p *MealProvider) SearchByName(ctx context.Context, term string) ([]recipe.Meal, error) {
	return readThrough(ctx, p, "search_name", p.keys.Name(term), func() ([]recipe.Meal, error) {
		return p.next.SearchByName(ctx, term)
	})
}

// SearchByFirstLetter reads through the cache
func (p *MealProvider) SearchByFirstLetter(ctx context.Context, letter rune) ([]recipe.Meal, error) {
	return readThrough(ctx, p, "search_letter", p.keys.Letter(letter), func() ([]recipe.Meal, error) {
		return p.next.SearchByFirstLetter(ctx, letter)
	})
}

// FilterByCategory reads through the cache
func (p *MealProvider) FilterByCategory(ctx context.Context, category string) ([]recipe.Meal, error) {
	return readThrough(ctx, p, "filter_category", p.keys.Category(category), func() ([]recipe.Meal, error) {
		return p.next.FilterByCategory(ctx, category)
	})
}

// Lookup reads through the cache
func (p *MealProvider) Lookup(ctx context.Context, id string) (*recipe.Meal, error) {
	return readThrough(ctx, p, "lookup", p.keys.Meal(id), func() (*recipe.Meal, error) {
		return p.next.Lookup(ctx, id)
	})
}

// Random always hits the upstream
func (p *MealProvider) Random(ctx context.Context) (*recipe.Meal, error) {
	return p.next.Random(ctx)
}

// Categories reads through the cache
func (p *MealProvider) Categories(ctx context.Context) ([]string, error) {
	return readThrough(ctx, p, "categories", p.keys.Categories(), func() ([]string, error) {
		return p.next.Categories(ctx)
	})
}

func readThrough[T any](ctx context.Context, p *MealProvider, op, key string, load func() (T, error)) (T, error) {
	if data, err := p.cache.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			p.observe(op, true)
			return v, nil
		}
		p.logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
	} else if !stderrors.Is(err, outbound.ErrCacheMiss) {
		p.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}
	p.observe(op, false)

	v, err := load()
	if err != nil {
		return v, err
	}

	if data, err := json.Marshal(v); err == nil {
		if err := p.cache.Set(ctx, key, data, p.ttl); err != nil {
			p.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}

func (p *MealProvider) observe(op string, hit bool) {
	if p.observer != nil {
		p.observer.ObserveCache(op, hit)
	}
}
