package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter is a set of fixed-window counters under one key prefix.
type Counter struct {
	redis  redis.UniversalClient
	prefix string
}

// New creates a Counter whose keys are prefix + ":" + key.
func New(redisClient redis.UniversalClient, prefix string) *Counter {
	return &Counter{redis: redisClient, prefix: prefix}
}

func (c *Counter) key(k string) string {
	return c.prefix + ":" + k
}

// Hit counts one event for key and returns ErrRateLimited when the count in
// the current window exceeds max.
func (c *Counter) Hit(ctx context.Context, key string, max int, window time.Duration) error {
	k := c.key(key)
	count, err := c.redis.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := c.redis.Expire(ctx, k, window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	if count > int64(max) {
		return ErrRateLimited
	}
	return nil
}

// Check returns ErrRateLimited when key has already reached max in the
// current window. It does not count.
func (c *Counter) Check(ctx context.Context, key string, max int) error {
	count, err := c.Count(ctx, key)
	if err != nil {
		return err
	}
	if count >= max {
		return ErrRateLimited
	}
	return nil
}

// Count returns the events counted for key in the current window.
func (c *Counter) Count(ctx context.Context, key string) (int, error) {
	count, err := c.redis.Get(ctx, c.key(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

// Reset drops the windows of keys.
func (c *Counter) Reset(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.redis.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
