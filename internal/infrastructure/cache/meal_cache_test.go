package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/cookbook/test/testutils"
)

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) ObserveCache(_ string, hit bool) {
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func TestMealProvider_CachesSuccessfulAnswers(t *testing.T) {
	upstream := new(testutils.MockMealProvider)
	pie := []recipe.Meal{{ID: "1", Name: "Pie", Category: "Dessert"}}
	upstream.On("SearchByName", mock.Anything, "Pie").Return(pie, nil).Once()

	observer := &countingObserver{}
	provider := NewMealProvider(upstream, memory.NewCacheRepository(0), time.Minute, observer, zap.NewNop())
	ctx := context.Background()

	first, err := provider.SearchByName(ctx, "Pie")
	require.NoError(t, err)
	second, err := provider.SearchByName(ctx, "pie ")
	require.NoError(t, err)

	assert.Equal(t, pie, first)
	assert.Equal(t, pie, second)
	assert.Equal(t, 1, observer.hits)
	assert.Equal(t, 1, observer.misses)
	upstream.AssertExpectations(t)
}

func TestMealProvider_DoesNotCacheFailures(t *testing.T) {
	upstream := new(testutils.MockMealProvider)
	upstream.On("FilterByCategory", mock.Anything, "Beef").Return(nil, recipe.ErrUpstream).Once()
	upstream.On("FilterByCategory", mock.Anything, "Beef").Return([]recipe.Meal{{ID: "2"}}, nil).Once()

	provider := NewMealProvider(upstream, memory.NewCacheRepository(0), time.Minute, nil, zap.NewNop())
	ctx := context.Background()

	_, err := provider.FilterByCategory(ctx, "Beef")
	require.ErrorIs(t, err, recipe.ErrUpstream)

	meals, err := provider.FilterByCategory(ctx, "Beef")
	require.NoError(t, err)
	assert.Len(t, meals, 1)
	upstream.AssertExpectations(t)
}

func TestMealProvider_LookupAndRandom(t *testing.T) {
	upstream := new(testutils.MockMealProvider)
	meal := &recipe.Meal{ID: "52772", Name: "Teriyaki"}
	upstream.On("Lookup", mock.Anything, "52772").Return(meal, nil).Once()
	upstream.On("Random", mock.Anything).Return(meal, nil).Twice()

	provider := NewMealProvider(upstream, memory.NewCacheRepository(0), time.Minute, nil, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := provider.Lookup(ctx, "52772")
		require.NoError(t, err)
		assert.Equal(t, "Teriyaki", got.Name)

		_, err = provider.Random(ctx)
		require.NoError(t, err)
	}
	upstream.AssertExpectations(t)
}

func TestKeyBuilder(t *testing.T) {
	var keys KeyBuilder
	assert.Equal(t, "meals:name:chicken", keys.Name(" Chicken"))
	assert.Equal(t, "meals:letter:b", keys.Letter('B'))
	assert.Equal(t, "meals:category:seafood", keys.Category("Seafood"))
	assert.Equal(t, "meals:id:1", keys.Meal("1"))
}
