// Package mealdb is the client for TheMealDB public recipe API. It
// implements outbound.MealProvider.
package mealdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
)

// DefaultBaseURL is the free-tier API root.
const DefaultBaseURL = "https://www.themealdb.com/api/json/v1/1"

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 4 << 20

// Endpoint names, used for metrics and logs
const (
	EndpointSearchName   = "search_name"
	EndpointSearchLetter = "search_letter"
	EndpointFilter       = "filter_category"
	EndpointLookup       = "lookup"
	EndpointRandom       = "random"
	EndpointCategories   = "categories"
)

// Observer receives one call per upstream request
type Observer interface {
	ObserveUpstream(endpoint, outcome string, duration time.Duration)
}

// Config configures the client
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client talks to TheMealDB. Calls are rate limited and never retried.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	observer   Observer
	logger     *zap.Logger
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver reports every request to o.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

var _ outbound.MealProvider = (*Client)(nil)

// NewClient creates a new TheMealDB client
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger.Named("mealdb"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SearchByName lists meals whose name contains term
func (c *Client) SearchByName(ctx context.Context, term string) ([]recipe.Meal, error) {
	return c.list(ctx, EndpointSearchName, "search.php", url.Values{"s": {term}}, "")
}

// SearchByFirstLetter lists meals whose name starts with letter
func (c *Client) SearchByFirstLetter(ctx context.Context, letter rune) ([]recipe.Meal, error) {
	return c.list(ctx, EndpointSearchLetter, "search.php", url.Values{"f": {string(letter)}}, "")
}

// FilterByCategory lists the meals of a category. The endpoint returns
// summaries only, so Category is filled in from the request.
func (c *Client) FilterByCategory(ctx context.Context, category string) ([]recipe.Meal, error) {
	return c.list(ctx, EndpointFilter, "filter.php", url.Values{"c": {category}}, category)
}

// Lookup returns the full record of one meal
func (c *Client) Lookup(ctx context.Context, id string) (*recipe.Meal, error) {
	meals, err := c.list(ctx, EndpointLookup, "lookup.php", url.Values{"i": {id}}, "")
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, recipe.ErrMealNotFound
	}
	return &meals[0], nil
}

// Random returns one random meal
func (c *Client) Random(ctx context.Context) (*recipe.Meal, error) {
	meals, err := c.list(ctx, EndpointRandom, "random.php", nil, "")
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, recipe.ErrMealNotFound
	}
	return &meals[0], nil
}

// Categories lists the category names
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var resp categoriesResponse
	if err := c.get(ctx, EndpointCategories, "list.php", url.Values{"c": {"list"}}, &resp); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(resp.Meals))
	for _, m := range resp.Meals {
		if name := strings.TrimSpace(m.Category); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}

// HealthCheck verifies the API answers
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.Categories(ctx)
	return err
}

func (c *Client) list(ctx context.Context, endpoint, path string, query url.Values, category string) ([]recipe.Meal, error) {
	var resp mealsResponse
	if err := c.get(ctx, endpoint, path, query, &resp); err != nil {
		return nil, err
	}

	meals := make([]recipe.Meal, 0, len(resp.Meals))
	for _, w := range resp.Meals {
		m := w.toDomain()
		if m.Category == "" {
			m.Category = category
		}
		meals = append(meals, m)
	}
	return meals, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		if c.observer != nil {
			c.observer.ObserveUpstream(endpoint, outcome, time.Since(start))
		}
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %w", recipe.ErrUpstream, err)
	}

	u := c.baseURL.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Upstream request",
		zap.String("endpoint", endpoint),
		zap.String("url", u.String()),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", recipe.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", recipe.ErrUpstream, err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("Upstream error response",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("%w: status %d", recipe.ErrUpstream, resp.StatusCode)
	}

	// An empty body is how some endpoints answer an unknown id.
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", recipe.ErrUpstream, err)
	}
	return nil
}
