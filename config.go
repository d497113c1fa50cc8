package goIdentity

import (
	"fmt"
	"strings"
	"time"
)

// Config is the complete engine configuration. It is cloned into the Engine
// at Build time and is immutable afterwards.
type Config struct {
	Token     TokenConfig     `yaml:"token" envconfig:"TOKEN"`
	Audit     AuditConfig     `yaml:"audit" envconfig:"AUDIT"`
	Metrics   MetricsConfig   `yaml:"metrics" envconfig:"METRICS"`
	Password  PasswordConfig  `yaml:"password" envconfig:"PASSWORD"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	Redis     RedisConfig     `yaml:"redis" envconfig:"REDIS"`
	Database  DatabaseConfig  `yaml:"database" envconfig:"DATABASE"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls the key layouts, lifetime and exclusivity policy of
// minted sessions. Changing a prefix or the suffix orphans existing entries.
type TokenConfig struct {
	CacheTokenPrefix               string `yaml:"cache_token_prefix" envconfig:"CACHE_TOKEN_PREFIX"`
	CacheUserMapTokenPrefix        string `yaml:"cache_user_map_token_prefix" envconfig:"CACHE_USER_MAP_TOKEN_PREFIX"`
	CacheTokenExpireSeconds        int    `yaml:"cache_token_expire_seconds" envconfig:"CACHE_TOKEN_EXPIRE_SECONDS"`
	IdentityServiceProvider        string `yaml:"identity_service_provider" envconfig:"IDENTITY_SERVICE_PROVIDER"`
	IdentityServiceTokenNameSuffix string `yaml:"identity_service_token_name_suffix" envconfig:"IDENTITY_SERVICE_TOKEN_NAME_SUFFIX"`

	// EnableMultiEnd allows several concurrent sessions per user and endpoint
	// class. When false, the (user, endpoint class) index is maintained and
	// always names the most recent token.
	EnableMultiEnd bool `yaml:"enable_multi_end" envconfig:"ENABLE_MULTI_END"`
}

// TTL returns the cache entry lifetime.
func (c TokenConfig) TTL() time.Duration {
	return time.Duration(c.CacheTokenExpireSeconds) * time.Second
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled" envconfig:"ENABLED"`
	BufferSize int  `yaml:"buffer_size" envconfig:"BUFFER_SIZE"`
	DropIfFull bool `yaml:"drop_if_full" envconfig:"DROP_IF_FULL"`
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled" envconfig:"ENABLED"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms" envconfig:"ENABLE_LATENCY_HISTOGRAMS"`
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds the Argon2id parameters used by SignIn and SignUp.
type PasswordConfig struct {
	Memory      uint32 `yaml:"memory" envconfig:"MEMORY"` // in KB
	Time        uint32 `yaml:"time" envconfig:"TIME"`
	Parallelism uint8  `yaml:"parallelism" envconfig:"PARALLELISM"`
	SaltLength  uint32 `yaml:"salt_length" envconfig:"SALT_LENGTH"`
	KeyLength   uint32 `yaml:"key_length" envconfig:"KEY_LENGTH"`
}

/*
====================================
BACKENDS / SERVER CONFIG
====================================
*/

// RateLimitConfig throttles SignIn and SignUp with Redis fixed-window
// counters. It needs the client given to Builder.WithRedis.
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled" envconfig:"ENABLED"`
	KeyPrefix         string        `yaml:"key_prefix" envconfig:"KEY_PREFIX"`
	MaxSignInAttempts int           `yaml:"max_signin_attempts" envconfig:"MAX_SIGNIN_ATTEMPTS"`
	SignInCooldown    time.Duration `yaml:"signin_cooldown" envconfig:"SIGNIN_COOLDOWN"`
	EnableIPThrottle  bool          `yaml:"enable_ip_throttle" envconfig:"ENABLE_IP_THROTTLE"`
	MaxSignUpAttempts int           `yaml:"max_signup_attempts" envconfig:"MAX_SIGNUP_ATTEMPTS"`
	SignUpCooldown    time.Duration `yaml:"signup_cooldown" envconfig:"SIGNUP_COOLDOWN"`
}

// RedisConfig is consumed by binaries that dial Redis themselves. The Engine
// only sees the client passed to Builder.WithRedis.
type RedisConfig struct {
	Address  string `yaml:"address" envconfig:"ADDRESS"`
	Password string `yaml:"password" envconfig:"PASSWORD"`
	DB       int    `yaml:"db" envconfig:"DB"`
	PoolSize int    `yaml:"pool_size" envconfig:"POOL_SIZE"`
}

// DatabaseConfig describes the PostgreSQL connection for the association
// store and the reference user directory.
type DatabaseConfig struct {
	URL             string        `yaml:"url" envconfig:"URL"`
	MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME"`
	RunMigrations   bool          `yaml:"run_migrations" envconfig:"RUN_MIGRATIONS"`
}

// ServerConfig configures cmd/identity-server.
type ServerConfig struct {
	Address         string        `yaml:"address" envconfig:"ADDRESS"`
	LogLevel        string        `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogJSON         bool          `yaml:"log_json" envconfig:"LOG_JSON"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

/*
====================================
DEFAULTS
====================================
*/

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			CacheTokenPrefix:               "idt",
			CacheUserMapTokenPrefix:        "idu",
			CacheTokenExpireSeconds:        3600,
			IdentityServiceProvider:        "identity",
			IdentityServiceTokenNameSuffix: "access",
			EnableMultiEnd:                 false,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			KeyPrefix:         "idl",
			MaxSignInAttempts: 5,
			SignInCooldown:    15 * time.Minute,
			EnableIPThrottle:  false,
			MaxSignUpAttempts: 10,
			SignUpCooldown:    time.Hour,
		},
		Redis: RedisConfig{
			Address:  "127.0.0.1:6379",
			PoolSize: 20,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			RunMigrations:   true,
		},
		Server: ServerConfig{
			Address:         ":8080",
			LogLevel:        "info",
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting, wrapped with ErrInvalidConfig.
// Backend and server sections are checked by the binaries that use them.
func (c *Config) Validate() error {
	invalid := func(msg string) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
	}

	// Token
	if c.Token.CacheTokenPrefix == "" {
		return invalid("Token CacheTokenPrefix must not be empty")
	}
	if c.Token.CacheUserMapTokenPrefix == "" {
		return invalid("Token CacheUserMapTokenPrefix must not be empty")
	}
	if c.Token.CacheTokenPrefix == c.Token.CacheUserMapTokenPrefix {
		return invalid("Token CacheTokenPrefix and CacheUserMapTokenPrefix must differ")
	}
	if strings.Contains(c.Token.CacheTokenPrefix, ":") || strings.Contains(c.Token.CacheUserMapTokenPrefix, ":") {
		return invalid("Token cache prefixes must not contain ':'")
	}
	if c.Token.CacheTokenExpireSeconds <= 0 {
		return invalid("Token CacheTokenExpireSeconds must be > 0")
	}
	if c.Token.IdentityServiceProvider == "" {
		return invalid("Token IdentityServiceProvider must not be empty")
	}
	if c.Token.IdentityServiceTokenNameSuffix == "" {
		return invalid("Token IdentityServiceTokenNameSuffix must not be empty")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return invalid("Audit BufferSize must be > 0 when Audit is enabled")
	}

	// Rate limit
	if c.RateLimit.Enabled {
		if c.RateLimit.KeyPrefix == "" || strings.Contains(c.RateLimit.KeyPrefix, ":") {
			return invalid("RateLimit KeyPrefix must be non-empty and must not contain ':'")
		}
		if c.RateLimit.KeyPrefix == c.Token.CacheTokenPrefix || c.RateLimit.KeyPrefix == c.Token.CacheUserMapTokenPrefix {
			return invalid("RateLimit KeyPrefix must differ from the token cache prefixes")
		}
		if c.RateLimit.MaxSignInAttempts <= 0 || c.RateLimit.SignInCooldown <= 0 {
			return invalid("RateLimit MaxSignInAttempts and SignInCooldown must be > 0")
		}
		if c.RateLimit.MaxSignUpAttempts <= 0 || c.RateLimit.SignUpCooldown <= 0 {
			return invalid("RateLimit MaxSignUpAttempts and SignUpCooldown must be > 0")
		}
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return invalid("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return invalid("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return invalid("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return invalid("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return invalid("Password KeyLength must be >= 16")
	}

	return nil
}
