package config

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to addr, which is either host:port or a redis:// URL, and
// pings it once.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("REDIS_ADDR (or REDIS_URL) is not set")
	}

	var client *redis.Client
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
