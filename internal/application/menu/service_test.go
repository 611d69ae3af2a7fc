package menu

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeProvider serves canned meals and records calls.
type fakeProvider struct {
	mu         sync.Mutex
	byName     map[string][]recipe.Meal
	byCategory map[string][]recipe.Meal
	byLetter   map[rune][]recipe.Meal
	failLetter map[rune]bool
	meals      map[string]recipe.Meal
	categories []string
	err        error

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	letterDelay time.Duration
	letterCalls atomic.Int32
}

type recordingObserver struct {
	calls []string
}

func (o *recordingObserver) ObserveBrowse(mode, status string, failedLetters int) {
	o.calls = append(o.calls, fmt.Sprintf("%s/%s/%d", mode, status, failedLetters))
}

func (f *fakeProvider) SearchByName(_ context.Context, term string) ([]recipe.Meal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byName[strings.ToLower(term)], nil
}

func (f *fakeProvider) SearchByFirstLetter(ctx context.Context, letter rune) ([]recipe.Meal, error) {
	f.letterCalls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if n <= peak || f.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}

	if f.letterDelay > 0 {
		select {
		case <-time.After(f.letterDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLetter[letter] {
		return nil, fmt.Errorf("letter %c: %w", letter, recipe.ErrUpstream)
	}
	return f.byLetter[letter], nil
}

func (f *fakeProvider) FilterByCategory(_ context.Context, category string) ([]recipe.Meal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byCategory[category], nil
}

func (f *fakeProvider) Lookup(_ context.Context, id string) (*recipe.Meal, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.meals[id]
	if !ok {
		return nil, recipe.ErrMealNotFound
	}
	return &m, nil
}

func (f *fakeProvider) Random(context.Context) (*recipe.Meal, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range f.meals {
		return &m, nil
	}
	return nil, recipe.ErrMealNotFound
}

func (f *fakeProvider) Categories(context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

func meals(prefix string, n int, category string) []recipe.Meal {
	out := make([]recipe.Meal, n)
	for i := range out {
		out[i] = recipe.Meal{
			ID:       fmt.Sprintf("%s-%d", prefix, i),
			Name:     fmt.Sprintf("%s %d", prefix, i),
			Category: category,
		}
	}
	return out
}

type MenuServiceTestSuite struct {
	suite.Suite
	provider *fakeProvider
	service  *Service
	ctx      context.Context
}

func (suite *MenuServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.provider = &fakeProvider{
		byName: map[string][]recipe.Meal{
			"chicken": {
				{ID: "1", Name: "Chicken Curry", Category: "Chicken"},
				{ID: "2", Name: "Chicken Pie", Category: "chicken"},
				{ID: "1", Name: "Chicken Curry (dup)", Category: "Chicken"},
			},
			"fish": {
				{ID: "10", Name: "Fish Pie", Category: "Seafood"},
				{ID: "11", Name: "Fish Stew", Category: "Seafood"},
			},
		},
		byCategory: map[string][]recipe.Meal{
			"Dessert": meals("dessert", 20, "Dessert"),
		},
		byLetter:   map[rune][]recipe.Meal{},
		failLetter: map[rune]bool{},
		meals: map[string]recipe.Meal{
			"52772": {ID: "52772", Name: "Teriyaki Chicken Casserole", Category: "Chicken"},
		},
		categories: []string{"Beef", "Chicken"},
	}
	suite.service = NewService(suite.provider, Config{PageSize: 9, SweepConcurrency: 4}, zap.NewNop())
}

func (suite *MenuServiceTestSuite) TestBrowse_ByNameDeduplicates() {
	result, err := suite.service.Browse(suite.ctx, recipe.NewBrowseQuery("chicken", "", 1))
	suite.Require().NoError(err)

	suite.Equal(inbound.StatusOK, result.Status)
	suite.Equal("name", result.Mode)
	suite.Require().Len(result.Meals, 2)
	suite.Equal("Chicken Curry", result.Meals[0].Name)
	suite.Equal("Chicken Pie", result.Meals[1].Name)
}

func (suite *MenuServiceTestSuite) TestBrowse_ByNameWithCategory() {
	result, err := suite.service.Browse(suite.ctx, recipe.NewBrowseQuery("chicken", "CHICKEN", 1))
	suite.Require().NoError(err)

	suite.Equal(inbound.StatusOK, result.Status)
	suite.Len(result.Meals, 2)
}

func (suite *MenuServiceTestSuite) TestBrowse_NotInCategory() {
	result, err := suite.service.Browse(suite.ctx, recipe.NewBrowseQuery("chicken", "Seafood", 1))
	suite.Require().NoError(err)

	suite.Equal(inbound.StatusNotInCategory, result.Status)
	suite.Equal(`"chicken" is not available in the "Seafood" category.`, result.Message)
	suite.Empty(result.Meals)
	suite.False(result.HasResults())
}

func (suite *MenuServiceTestSuite) TestBrowse_EmptyIsNotScoped() {
	result, err := suite.service.Browse(suite.ctx, recipe.NewBrowseQuery("zzz", "Seafood", 1))
	suite.Require().NoError(err)

	suite.Equal(inbound.StatusEmpty, result.Status)
	suite.Equal(MessageEmpty, result.Message)
	suite.Equal(1, result.Page.TotalPages)
}

func (suite *MenuServiceTestSuite) TestBrowse_ByCategoryPaginates() {
	result, err := suite.service.Browse(suite.ctx, recipe.NewBrowseQuery("", "Dessert", 2))
	suite.Require().NoError(err)

	suite.Equal("category", result.Mode)
	suite.Equal(3, result.Page.TotalPages)
	suite.Require().Len(result.Meals, 9)
	suite.Equal("dessert-9", result.Meals[0].ID)
	suite.Equal("dessert-17", result.Meals[8].ID)

	last, err := suite.service.Browse(suite.ctx, recipe.NewBrowseQuery("", "Dessert", 3))
	suite.Require().NoError(err)
	suite.Len(last.Meals, 2)
}

func (suite *MenuServiceTestSuite) TestBrowse_ClampsPage() {
	suite.provider.byCategory["Side"] = meals("side", 12, "Side")

	result, err := suite.service.Browse(suite.ctx, recipe.NewBrowseQuery("", "Side", 5))
	suite.Require().NoError(err)

	suite.Equal(2, result.Page.Number)
	suite.Equal(2, result.Query.Page)
	suite.Len(result.Meals, 3)
}

func (suite *MenuServiceTestSuite) TestBrowse_UpstreamFailure() {
	suite.provider.err = recipe.ErrUpstream

	for _, q := range []recipe.BrowseQuery{
		recipe.NewBrowseQuery("chicken", "", 1),
		recipe.NewBrowseQuery("", "Dessert", 1),
	} {
		result, err := suite.service.Browse(suite.ctx, q)
		suite.Require().NoError(err)
		suite.Equal(inbound.StatusFailed, result.Status)
		suite.Equal(MessageFailed, result.Message)
		suite.Empty(result.Meals)
	}
}

func (suite *MenuServiceTestSuite) TestBrowse_SweepMergesInLetterOrder() {
	suite.provider.byLetter['a'] = []recipe.Meal{{ID: "1", Name: "Apple Pie"}, {ID: "2", Name: "Apam balik"}}
	suite.provider.byLetter['b'] = []recipe.Meal{{ID: "3", Name: "Beef Stew"}, {ID: "1", Name: "Apple Pie again"}}
	suite.provider.byLetter['z'] = []recipe.Meal{{ID: "26", Name: "Zucchini"}}

	result, err := suite.service.Browse(suite.ctx, recipe.NewBrowseQuery("", "", 1))
	suite.Require().NoError(err)

	suite.Equal("alphabet", result.Mode)
	suite.Equal(int32(26), suite.provider.letterCalls.Load())
	suite.Require().Len(result.Meals, 4)
	suite.Equal([]string{"1", "2", "3", "26"}, ids(result.Meals))
	suite.Equal("Apple Pie", result.Meals[0].Name)
	suite.Empty(result.FailedLetters)
}

func (suite *MenuServiceTestSuite) TestBrowse_SweepIsolatesFailedLetter() {
	for i, letter := range alphabet {
		suite.provider.byLetter[letter] = []recipe.Meal{{ID: fmt.Sprint(i), Name: string(letter)}}
	}
	suite.provider.failLetter['q'] = true
	suite.service.pageSize = 100

	result, err := suite.service.Browse(suite.ctx, recipe.NewBrowseQuery("", "", 1))
	suite.Require().NoError(err)

	suite.Equal(inbound.StatusOK, result.Status)
	suite.Len(result.Meals, 25)
	suite.Equal([]string{"q"}, result.FailedLetters)
}

func (suite *MenuServiceTestSuite) TestBrowse_ReportsToObserver() {
	suite.provider.failLetter['x'] = true
	suite.provider.failLetter['z'] = true
	obs := &recordingObserver{}
	suite.service.observer = obs

	_, err := suite.service.Browse(suite.ctx, recipe.NewBrowseQuery("", "", 1))
	suite.Require().NoError(err)

	suite.Equal([]string{"alphabet/empty/2"}, obs.calls)
}

func (suite *MenuServiceTestSuite) TestBrowse_SweepAllFailedIsEmpty() {
	for _, letter := range alphabet {
		suite.provider.failLetter[letter] = true
	}

	result, err := suite.service.Browse(suite.ctx, recipe.NewBrowseQuery("", "", 1))
	suite.Require().NoError(err)

	suite.Equal(inbound.StatusEmpty, result.Status)
	suite.Len(result.FailedLetters, 26)
}

func (suite *MenuServiceTestSuite) TestBrowse_SweepRespectsConcurrencyLimit() {
	suite.provider.letterDelay = 5 * time.Millisecond

	_, err := suite.service.Browse(suite.ctx, recipe.NewBrowseQuery("", "", 1))
	suite.Require().NoError(err)

	suite.LessOrEqual(suite.provider.maxInFlight.Load(), int32(4))
}

func (suite *MenuServiceTestSuite) TestBrowse_CancelledSweep() {
	suite.provider.letterDelay = time.Second
	ctx, cancel := context.WithCancel(suite.ctx)
	cancel()

	result, err := suite.service.Browse(ctx, recipe.NewBrowseQuery("", "", 1))
	suite.Require().ErrorIs(err, context.Canceled)
	suite.Nil(result)
}

func (suite *MenuServiceTestSuite) TestGetMeal() {
	meal, err := suite.service.GetMeal(suite.ctx, "52772")
	suite.Require().NoError(err)
	suite.Equal("Teriyaki Chicken Casserole", meal.Name)

	_, err = suite.service.GetMeal(suite.ctx, "0")
	suite.True(errors.Is(err, errors.CodeMealNotFound))

	suite.provider.err = recipe.ErrUpstream
	_, err = suite.service.GetMeal(suite.ctx, "52772")
	suite.True(errors.Is(err, errors.CodeUpstreamUnavailable))
}

func (suite *MenuServiceTestSuite) TestRandomMeal() {
	meal, err := suite.service.RandomMeal(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal("52772", meal.ID)
}

func (suite *MenuServiceTestSuite) TestCategories() {
	suite.Equal([]string{"Beef", "Chicken"}, suite.service.Categories(suite.ctx))

	suite.provider.err = recipe.ErrUpstream
	categories := suite.service.Categories(suite.ctx)
	suite.Equal(recipe.DefaultCategories, categories)

	categories[0] = "mutated"
	suite.NotEqual("mutated", recipe.DefaultCategories[0])
}

func TestMenuServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MenuServiceTestSuite))
}

func TestDedupe(t *testing.T) {
	in := []recipe.Meal{{ID: "a", Name: "first"}, {ID: "b"}, {ID: "a", Name: "second"}, {ID: "c"}, {ID: "b"}}
	out := dedupe(in)

	assert.Equal(t, []string{"a", "b", "c"}, ids(out))
	assert.Equal(t, "first", out[0].Name)
	assert.Empty(t, dedupe(nil))
}

func TestNotInCategoryMessage(t *testing.T) {
	require.Equal(t, `"pie" is not available in the "Vegan" category.`, NotInCategoryMessage("pie", "Vegan"))
}

func ids(meals []recipe.Meal) []string {
	out := make([]string, len(meals))
	for i, m := range meals {
		out[i] = m.ID
	}
	return out
}
