package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/cookbook/internal/ports/outbound"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRepository(maxEntries int) (*CacheRepository, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	repo := NewCacheRepository(maxEntries)
	repo.now = c.now
	return repo, c
}

func TestCacheRepository_SetGet(t *testing.T) {
	repo, clk := newTestRepository(0)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	exists, err := repo.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	clk.advance(2 * time.Minute)
	_, err = repo.Get(ctx, "k")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	exists, _ = repo.Exists(ctx, "k")
	assert.False(t, exists)
}

func TestCacheRepository_MissAndDelete(t *testing.T) {
	repo, _ := newTestRepository(0)
	ctx := context.Background()

	_, err := repo.Get(ctx, "absent")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, repo.Delete(ctx, "k"))
	_, err = repo.Get(ctx, "k")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)
}

func TestCacheRepository_StoresCopy(t *testing.T) {
	repo, _ := newTestRepository(0)
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, repo.Set(ctx, "k", value, time.Minute))
	value[0] = 'z'

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestCacheRepository_BoundedSize(t *testing.T) {
	repo, _ := newTestRepository(2)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, repo.Set(ctx, "long", []byte("2"), time.Hour))
	require.NoError(t, repo.Set(ctx, "new", []byte("3"), time.Hour))

	assert.Equal(t, 2, repo.Len())
	_, err := repo.Get(ctx, "short")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss, "the entry closest to expiry is evicted")
	_, err = repo.Get(ctx, "long")
	assert.NoError(t, err)
}

func TestCacheRepository_RemoveExpired(t *testing.T) {
	repo, clk := newTestRepository(0)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, repo.Set(ctx, "b", []byte("2"), time.Hour))
	clk.advance(10 * time.Minute)

	assert.Equal(t, 1, repo.removeExpired())
	assert.Equal(t, 1, repo.Len())
}
