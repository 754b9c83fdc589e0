package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL,required"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Presence windows. Staleness decides who counts as active; retention
	// decides when the cleanup job may purge old heartbeats. Purging is an
	// optimization only, staleness filtering already excludes aged records.
	PresenceStalenessSeconds int `env:"PRESENCE_STALENESS_SECONDS" envDefault:"30"`
	PresenceRetentionSeconds int `env:"PRESENCE_RETENTION_SECONDS" envDefault:"3600"`

	// Closed sessions are kept queryable by id for this long, then reaped.
	// Active sessions never expire.
	SessionRetentionHours int `env:"SESSION_RETENTION_HOURS" envDefault:"720"`

	AppendRateLimitPerMin int `env:"APPEND_RATE_LIMIT_PER_MIN" envDefault:"240"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) PresenceStaleness() time.Duration {
	return time.Duration(c.PresenceStalenessSeconds) * time.Second
}

func (c *Config) PresenceRetention() time.Duration {
	return time.Duration(c.PresenceRetentionSeconds) * time.Second
}

func (c *Config) SessionRetention() time.Duration {
	return time.Duration(c.SessionRetentionHours) * time.Hour
}

func (c *Config) Validate() error {
	if c.PresenceStalenessSeconds <= 0 {
		return fmt.Errorf("PRESENCE_STALENESS_SECONDS must be positive")
	}
	if c.PresenceRetentionSeconds < c.PresenceStalenessSeconds {
		return fmt.Errorf("PRESENCE_RETENTION_SECONDS must be at least the staleness window")
	}
	if c.SessionRetentionHours <= 0 {
		return fmt.Errorf("SESSION_RETENTION_HOURS must be positive")
	}
	if c.AppendRateLimitPerMin <= 0 {
		return fmt.Errorf("APPEND_RATE_LIMIT_PER_MIN must be positive")
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
