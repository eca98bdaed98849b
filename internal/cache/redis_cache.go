// Package cache is a thin JSON layer over Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores JSON values in Redis.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache wraps rdb.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// GetJSON decodes key into dst and reports whether it was present.
func (c *RedisCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	s, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dst); err != nil {
		// corrupt entry, treat as a miss
		_ = c.rdb.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

// SetJSON encodes val under key for ttl.
func (c *RedisCache) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// Del removes keys.
func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Generation returns the current value of a namespace counter, 0 when unset.
// Readers embed it in keys so that Bump invalidates every key of the namespace.
func (c *RedisCache) Generation(ctx context.Context, namespace string) (int64, error) {
	n, err := c.rdb.Get(ctx, namespace+":gen").Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Bump advances the namespace counter.
func (c *RedisCache) Bump(ctx context.Context, namespace string) error {
	return c.rdb.Incr(ctx, namespace+":gen").Err()
}
