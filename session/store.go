package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by [Cache.Get] when the key does not exist or has
// expired.
var ErrCacheMiss = errors.New("cache miss")

// ErrRedisUnavailable wraps transport-level Redis failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Cache is the distributed key-value store with per-key expiry that backs
// token lookups. Implementations must be safe for concurrent use.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// RedisCache is a [Cache] backed by a go-redis client. Keys are used verbatim;
// namespacing is the caller's job.
//
//	Performance: one Redis command per call.
type RedisCache struct {
	redis redis.UniversalClient
}

// NewRedisCache creates a [RedisCache] over the given client.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{redis: client}
}

// Set stores value under key with the given TTL. A non-positive TTL is
// rejected: session entries must always expire.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("cache ttl must be > 0")
	}
	if err := c.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return nil
}

// Get returns the raw value under key, or [ErrCacheMiss].
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return data, nil
}

// Remove deletes key. Deleting a missing key is not an error.
func (c *RedisCache) Remove(ctx context.Context, key string) error {
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return nil
}

// SetRecord encodes r and stores it under key.
func SetRecord(ctx context.Context, c Cache, key string, r *Record, ttl time.Duration) error {
	data, err := Encode(r)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}

// GetRecord loads and decodes the record under key. A miss yields
// [ErrCacheMiss]; an undecodable blob yields [ErrRecordCorrupt].
func GetRecord(ctx context.Context, c Cache, key string) (*Record, error) {
	data, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

var _ Cache = (*RedisCache)(nil)
