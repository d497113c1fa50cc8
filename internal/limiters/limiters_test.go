package limiters

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/goIdentity/internal/rate"
)

func newClient(t *testing.T) (redis.UniversalClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func TestSignInLimiterBlocksAfterFailures(t *testing.T) {
	rdb, mr := newClient(t)
	l := NewSignInLimiter(rdb, "idl", SignInConfig{MaxAttempts: 2, Cooldown: time.Minute})
	ctx := context.Background()

	require.NoError(t, l.Check(ctx, "alice", "10.0.0.1"))
	require.NoError(t, l.RecordFailure(ctx, "alice", "10.0.0.1"))
	require.NoError(t, l.Check(ctx, "alice", "10.0.0.1"))
	require.NoError(t, l.RecordFailure(ctx, "alice", "10.0.0.1"))
	assert.ErrorIs(t, l.Check(ctx, "alice", "10.0.0.1"), rate.ErrRateLimited)

	// Other identifiers are unaffected without IP throttling.
	assert.NoError(t, l.Check(ctx, "bob", "10.0.0.1"))

	mr.FastForward(time.Minute + time.Second)
	assert.NoError(t, l.Check(ctx, "alice", "10.0.0.1"))
}

func TestSignInLimiterIPThrottle(t *testing.T) {
	rdb, _ := newClient(t)
	l := NewSignInLimiter(rdb, "idl", SignInConfig{MaxAttempts: 1, Cooldown: time.Minute, EnableIPThrottle: true})
	ctx := context.Background()

	require.NoError(t, l.RecordFailure(ctx, "alice", "10.0.0.1"))
	assert.ErrorIs(t, l.Check(ctx, "bob", "10.0.0.1"), rate.ErrRateLimited)
	assert.NoError(t, l.Check(ctx, "bob", "10.0.0.2"))
}

func TestSignInLimiterResetClearsWindow(t *testing.T) {
	rdb, mr := newClient(t)
	l := NewSignInLimiter(rdb, "idl", SignInConfig{MaxAttempts: 1, Cooldown: time.Minute})
	ctx := context.Background()

	require.NoError(t, l.RecordFailure(ctx, "alice", ""))
	require.NoError(t, l.Reset(ctx, "alice", ""))
	assert.False(t, mr.Exists("idl:si:id:alice"))
	assert.NoError(t, l.Check(ctx, "alice", ""))
}

func TestSignUpLimiter(t *testing.T) {
	rdb, _ := newClient(t)
	l := NewSignUpLimiter(rdb, "idl", SignUpConfig{MaxAttempts: 1, Cooldown: time.Hour})
	ctx := context.Background()

	require.NoError(t, l.Enforce(ctx, "10.0.0.1"))
	assert.ErrorIs(t, l.Enforce(ctx, "10.0.0.1"), rate.ErrRateLimited)
	assert.NoError(t, l.Enforce(ctx, ""))
}

func TestLimitersNilSafe(t *testing.T) {
	var si *SignInLimiter
	var su *SignUpLimiter
	ctx := context.Background()

	assert.NoError(t, si.Check(ctx, "a", "b"))
	assert.NoError(t, si.RecordFailure(ctx, "a", "b"))
	assert.NoError(t, si.Reset(ctx, "a", "b"))
	assert.NoError(t, su.Enforce(ctx, "b"))
}
