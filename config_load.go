package goIdentity

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by ApplyEnv,
// e.g. IDENTITY_TOKEN_ENABLE_MULTI_END.
const EnvPrefix = "IDENTITY"

// LoadConfigFile reads a YAML file over DefaultConfig. Keys absent from the
// file keep their default values.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	// #nosec G304 -- path is from CLI args, controlled by admin
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays IDENTITY_* environment variables onto cfg. Unset
// variables leave the existing value untouched.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	return nil
}

// LoadConfig builds the effective configuration: defaults, then the YAML file
// at path when path is non-empty, then the environment. The result is
// validated.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = LoadConfigFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
