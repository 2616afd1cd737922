// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server's environment-driven configuration.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// DisconnectTTL is how long a dropped player's seat and reconnect
	// session stay reserved before being reaped.
	DisconnectTTL time.Duration `env:"DISCONNECT_TTL" envDefault:"5m"`

	// RedisAddr, when set, enables the action-history pipeline.
	RedisAddr    string `env:"REDIS_ADDR"`
	HistoryQueue string `env:"HISTORY_QUEUE" envDefault:"party_actions"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
