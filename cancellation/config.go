package cancellation

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config carries manager tunables, typically loaded from a TOML file:
//
//	token_shards = 7
//	log_level = "warn"
type Config struct {
	// TokenShards is the number of sharded token counters.
	// Zero means DefaultTokenShards.
	TokenShards int `toml:"token_shards"`

	// LogLevel is the minimum level for the manager's logger
	// ("debug", "info", "warn", "error"). Empty means "info".
	LogLevel string `toml:"log_level"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		TokenShards: DefaultTokenShards,
		LogLevel:    "info",
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.TokenShards < 0 {
		return fmt.Errorf("%w: token_shards must not be negative", ErrInvalidConfig)
	}
	return nil
}

// LoadConfigFile loads a Config from a TOML file. Missing keys keep their
// defaults.
func LoadConfigFile(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
