// internal/queries/cache.go
package queries

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"restaurant-agent/internal/common/logger"
	"restaurant-agent/internal/models"
)

const (
	DefaultCacheTTL = 5 * time.Minute
	cacheKeyPrefix  = "restaurant:menu:"
)

// CachedStore is a read-through Redis cache over the menu lookups. Order counts and
// revenue change constantly and always go to the underlying store.
type CachedStore struct {
	next   Store
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(next Store, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedStore{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "query-cache"}),
	}
}

func (c *CachedStore) CheapestItem(ctx context.Context) (*models.MenuItem, error) {
	return cached(ctx, c, cacheKeyPrefix+"cheapest", c.next.CheapestItem)
}

func (c *CachedStore) MostExpensiveItem(ctx context.Context) (*models.MenuItem, error) {
	return cached(ctx, c, cacheKeyPrefix+"expensive", c.next.MostExpensiveItem)
}

func (c *CachedStore) ItemsByCategory(ctx context.Context, category string) ([]models.MenuItem, error) {
	key := cacheKeyPrefix + "category:" + strings.ToLower(strings.TrimSpace(category))
	return cached(ctx, c, key, func(ctx context.Context) ([]models.MenuItem, error) {
		return c.next.ItemsByCategory(ctx, category)
	})
}

func (c *CachedStore) Categories(ctx context.Context) ([]string, error) {
	return cached(ctx, c, cacheKeyPrefix+"categories", c.next.Categories)
}

func (c *CachedStore) PendingOrderCount(ctx context.Context) (int, error) {
	return c.next.PendingOrderCount(ctx)
}

func (c *CachedStore) TodayRevenue(ctx context.Context) (*models.Revenue, error) {
	return c.next.TodayRevenue(ctx)
}

// Invalidate drops every cached menu lookup, e.g. after a menu edit.
func (c *CachedStore) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.redis.Scan(ctx, cursor, cacheKeyPrefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.redis.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// cached serves key from Redis when present and decodable, otherwise loads and stores
// it. Redis failures fall through to the loader.
func cached[T any](ctx context.Context, c *CachedStore, key string, load func(context.Context) (T, error)) (T, error) {
	if val, err := c.redis.Get(ctx, key).Result(); err == nil {
		var out T
		if err := json.Unmarshal([]byte(val), &out); err == nil {
			return out, nil
		}
		c.logger.Warn("discarding undecodable cache entry", map[string]interface{}{"key": key})
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}

	out, err := load(ctx)
	if err != nil {
		return out, err
	}

	if data, err := json.Marshal(out); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return out, nil
}
