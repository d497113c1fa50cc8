package limiters

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goIdentity/internal/rate"
)

// SignInConfig configures SignInLimiter.
type SignInConfig struct {
	MaxAttempts      int
	Cooldown         time.Duration
	EnableIPThrottle bool
}

// SignInLimiter blocks an identifier (and optionally an IP) after
// MaxAttempts failed sign-ins within Cooldown.
type SignInLimiter struct {
	counter *rate.Counter
	config  SignInConfig
}

func NewSignInLimiter(redisClient redis.UniversalClient, prefix string, cfg SignInConfig) *SignInLimiter {
	return &SignInLimiter{
		counter: rate.New(redisClient, prefix+":si"),
		config:  cfg,
	}
}

func (l *SignInLimiter) keys(identifier, ip string) []string {
	keys := []string{"id:" + identifier}
	if l.config.EnableIPThrottle && ip != "" {
		keys = append(keys, "ip:"+ip)
	}
	return keys
}

// Check returns rate.ErrRateLimited while identifier or ip is blocked.
func (l *SignInLimiter) Check(ctx context.Context, identifier, ip string) error {
	if l == nil {
		return nil
	}
	for _, k := range l.keys(identifier, ip) {
		if err := l.counter.Check(ctx, k, l.config.MaxAttempts); err != nil {
			return err
		}
	}
	return nil
}

// RecordFailure counts one failed sign-in.
func (l *SignInLimiter) RecordFailure(ctx context.Context, identifier, ip string) error {
	if l == nil || identifier == "" {
		return nil
	}
	var limited error
	for _, k := range l.keys(identifier, ip) {
		err := l.counter.Hit(ctx, k, l.config.MaxAttempts, l.config.Cooldown)
		switch {
		case err == nil:
		case errors.Is(err, rate.ErrRateLimited):
			limited = err
		default:
			return err
		}
	}
	return limited
}

// Reset clears the windows after a successful sign-in.
func (l *SignInLimiter) Reset(ctx context.Context, identifier, ip string) error {
	if l == nil || identifier == "" {
		return nil
	}
	return l.counter.Reset(ctx, l.keys(identifier, ip)...)
}
