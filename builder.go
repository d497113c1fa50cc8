package goIdentity

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goIdentity/association"
	"github.com/MrEthical07/goIdentity/internal/audit"
	"github.com/MrEthical07/goIdentity/internal/limiters"
	internalflows "github.com/MrEthical07/goIdentity/internal/flows"
	"github.com/MrEthical07/goIdentity/password"
	"github.com/MrEthical07/goIdentity/session"
)

// Builder assembles an Engine. A Builder is single use: a second Build call
// fails.
type Builder struct {
	config Config

	cache        session.Cache
	redis        redis.UniversalClient
	associations association.Store
	userProvider UserProvider
	auditSink    AuditSink
	tokenGen     TokenGenerator
	logger       hclog.Logger

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the configuration. cfg is copied.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis uses client as the session cache.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	if client == nil {
		b.cache = nil
		return b
	}
	b.cache = session.NewRedisCache(client)
	return b
}

// WithCache installs a custom session cache in place of WithRedis. The
// RateLimit throttle still needs WithRedis.
func (b *Builder) WithCache(cache session.Cache) *Builder {
	b.cache = cache
	return b
}

// WithAssociationStore sets the durable login/token association store.
func (b *Builder) WithAssociationStore(store association.Store) *Builder {
	b.associations = store
	return b
}

// WithUserProvider sets the user directory consumed by SignIn and SignUp.
// Engines built without one still Mint and Erase.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithAuditSink sets the audit destination and enables the dispatcher.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithTokenGenerator replaces the default SHA-256/base64url token generator.
func (b *Builder) WithTokenGenerator(gen TokenGenerator) *Builder {
	b.tokenGen = gen
	return b
}

// WithLogger sets the Engine logger. The default discards everything.
func (b *Builder) WithLogger(logger hclog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the mint latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.cache == nil {
		return nil, ErrMissingCache
	}
	if b.associations == nil {
		return nil, ErrMissingAssociationStore
	}
	if cfg.RateLimit.Enabled && b.redis == nil {
		return nil, fmt.Errorf("%w: RateLimit requires WithRedis", ErrInvalidConfig)
	}

	hasher, err := password.NewHasher(password.Params{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	auditCfg := audit.Config{
		Enabled:    cfg.Audit.Enabled || b.auditSink != nil,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}

	engine := &Engine{
		config:       cfg,
		cache:        b.cache,
		associations: b.associations,
		logger:       logger.Named("engine"),
		audit:        audit.NewDispatcher(auditCfg, b.auditSink),
		metrics:      NewMetrics(cfg.Metrics),
		hasher:       hasher,
		tokenGen:     b.tokenGen,
		userProvider: b.userProvider,
	}
	if engine.tokenGen == nil {
		engine.tokenGen = defaultTokenGenerator
	}
	if cfg.RateLimit.Enabled {
		rl := cfg.RateLimit
		engine.signInLimiter = limiters.NewSignInLimiter(b.redis, rl.KeyPrefix, limiters.SignInConfig{
			MaxAttempts:      rl.MaxSignInAttempts,
			Cooldown:         rl.SignInCooldown,
			EnableIPThrottle: rl.EnableIPThrottle,
		})
		engine.signUpLimiter = limiters.NewSignUpLimiter(b.redis, rl.KeyPrefix, limiters.SignUpConfig{
			MaxAttempts: rl.MaxSignUpAttempts,
			Cooldown:    rl.SignUpCooldown,
		})
	}
	engine.flows = internalflows.New(engine.flowDeps())

	b.built = true
	return engine, nil
}
