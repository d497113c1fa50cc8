package limiters

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goIdentity/internal/rate"
)

// SignUpConfig configures SignUpLimiter.
type SignUpConfig struct {
	MaxAttempts int
	Cooldown    time.Duration
}

// SignUpLimiter caps sign-up attempts per client IP.
type SignUpLimiter struct {
	counter *rate.Counter
	config  SignUpConfig
}

func NewSignUpLimiter(redisClient redis.UniversalClient, prefix string, cfg SignUpConfig) *SignUpLimiter {
	return &SignUpLimiter{
		counter: rate.New(redisClient, prefix+":su"),
		config:  cfg,
	}
}

// Enforce counts one attempt from ip. Requests without an IP are not
// throttled.
func (l *SignUpLimiter) Enforce(ctx context.Context, ip string) error {
	if l == nil || ip == "" {
		return nil
	}
	return l.counter.Hit(ctx, "ip:"+ip, l.config.MaxAttempts, l.config.Cooldown)
}
