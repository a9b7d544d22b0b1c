// internal/queries/cache_test.go
package queries

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-agent/internal/common/logger"
	"restaurant-agent/internal/models"
)

// countingStore counts calls to the underlying store.
type countingStore struct {
	*fakeStore
	cheapestCalls int
	pendingCalls  int
}

func (c *countingStore) CheapestItem(ctx context.Context) (*models.MenuItem, error) {
	c.cheapestCalls++
	return c.fakeStore.CheapestItem(ctx)
}

func (c *countingStore) PendingOrderCount(ctx context.Context) (int, error) {
	c.pendingCalls++
	return c.fakeStore.PendingOrderCount(ctx)
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCachedStore_ReadThrough(t *testing.T) {
	mr, client := setupRedis(t)
	inner := &countingStore{fakeStore: seededStore()}
	cache := NewCachedStore(inner, client, time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	first, err := cache.CheapestItem(ctx)
	require.NoError(t, err)
	second, err := cache.CheapestItem(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.cheapestCalls)
	assert.True(t, mr.Exists(cacheKeyPrefix+"cheapest"))

	mr.FastForward(2 * time.Minute)
	_, err = cache.CheapestItem(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.cheapestCalls)
}

func TestCachedStore_CategoryKeyIsNormalized(t *testing.T) {
	mr, client := setupRedis(t)
	inner := seededStore()
	cache := NewCachedStore(inner, client, time.Minute, logger.NewTestLogger(t))

	items, err := cache.ItemsByCategory(context.Background(), "dessert")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	raw, err := mr.Get(cacheKeyPrefix + "category:dessert")
	require.NoError(t, err)

	var cached []models.MenuItem
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, inner.byCategory["dessert"], cached)
}

func TestCachedStore_OrdersAreNotCached(t *testing.T) {
	mr, client := setupRedis(t)
	inner := &countingStore{fakeStore: seededStore()}
	cache := NewCachedStore(inner, client, time.Minute, logger.NewTestLogger(t))

	for i := 0; i < 3; i++ {
		count, err := cache.PendingOrderCount(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 4, count)
	}
	assert.Equal(t, 3, inner.pendingCalls)
	assert.Empty(t, mr.Keys())
}

func TestCachedStore_ErrorsAreNotCached(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewCachedStore(&fakeStore{err: ErrNoMenuItems}, client, time.Minute, logger.NewTestLogger(t))

	_, err := cache.CheapestItem(context.Background())
	assert.ErrorIs(t, err, ErrNoMenuItems)
	assert.False(t, mr.Exists(cacheKeyPrefix+"cheapest"))
}

func TestCachedStore_RedisFailureFallsThrough(t *testing.T) {
	client, mock := redismock.NewClientMock()
	inner := seededStore()
	cache := NewCachedStore(inner, client, time.Minute, logger.NewTestLogger(t))

	mock.ExpectGet(cacheKeyPrefix + "categories").SetErr(errors.New("redis down"))

	cats, err := cache.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, inner.categories, cats)
}

func TestCachedStore_UndecodableEntryIsReloaded(t *testing.T) {
	mr, client := setupRedis(t)
	inner := &countingStore{fakeStore: seededStore()}
	cache := NewCachedStore(inner, client, time.Minute, logger.NewTestLogger(t))

	require.NoError(t, mr.Set(cacheKeyPrefix+"cheapest", "{not json"))

	item, err := cache.CheapestItem(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Garlic Bread", item.Name)
	assert.Equal(t, 1, inner.cheapestCalls)
}

func TestCachedStore_Invalidate(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewCachedStore(seededStore(), client, time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	_, _ = cache.CheapestItem(ctx)
	_, _ = cache.Categories(ctx)
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, cache.Invalidate(ctx))
	assert.Equal(t, []string{"unrelated"}, mr.Keys())
}
