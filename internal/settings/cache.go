package settings

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cachePrefix = "toyshop:settings:"
	cacheTTL    = 5 * time.Minute
)

// Cache is a read-through Redis cache for individual settings. Writes
// invalidate so the next read repopulates from PostgreSQL.
type Cache struct {
	client *redis.Client
}

// NewCache constructs a Cache.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get returns the cached value for a key. The second result is false on a miss.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, cachePrefix+key).Result()
	if err != nil {
		return "", false
	}
	return value, true
}

// Set stores a value under the cache TTL.
func (c *Cache) Set(ctx context.Context, key, value string) {
	c.client.Set(ctx, cachePrefix+key, value, cacheTTL)
}

// Invalidate drops a key from the cache.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	c.client.Del(ctx, cachePrefix+key)
}
