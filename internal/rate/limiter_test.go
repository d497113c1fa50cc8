package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCounter(t *testing.T) (*Counter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, "rt"), mr
}

func TestCounterHitLimitsAfterMax(t *testing.T) {
	c, mr := newCounter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Hit(ctx, "k", 3, time.Minute))
	}
	assert.ErrorIs(t, c.Hit(ctx, "k", 3, time.Minute), ErrRateLimited)
	assert.Equal(t, time.Minute, mr.TTL("rt:k"))

	mr.FastForward(time.Minute + time.Second)
	assert.NoError(t, c.Hit(ctx, "k", 3, time.Minute))
}

func TestCounterCheckDoesNotCount(t *testing.T) {
	c, _ := newCounter(t)
	ctx := context.Background()

	require.NoError(t, c.Check(ctx, "k", 1))
	require.NoError(t, c.Check(ctx, "k", 1))

	require.NoError(t, c.Hit(ctx, "k", 1, time.Minute))
	assert.ErrorIs(t, c.Check(ctx, "k", 1), ErrRateLimited)

	n, err := c.Count(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCounterReset(t *testing.T) {
	c, mr := newCounter(t)
	ctx := context.Background()

	require.NoError(t, c.Hit(ctx, "a", 5, time.Minute))
	require.NoError(t, c.Hit(ctx, "b", 5, time.Minute))
	require.NoError(t, c.Reset(ctx, "a", "b"))
	assert.False(t, mr.Exists("rt:a"))
	assert.False(t, mr.Exists("rt:b"))
	assert.NoError(t, c.Reset(ctx))
}

func TestCounterRedisDown(t *testing.T) {
	c, mr := newCounter(t)
	mr.Close()

	err := c.Hit(context.Background(), "k", 1, time.Minute)
	assert.True(t, errors.Is(err, ErrRedisUnavailable), "got %v", err)
	_, err = c.Count(context.Background(), "k")
	assert.ErrorIs(t, err, ErrRedisUnavailable)
}
