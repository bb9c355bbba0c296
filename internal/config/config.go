package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port          string        `env:"PORT" envDefault:"8080"`
	Identity      string        `env:"GAME_IDENTITY" envDefault:"glou"`
	SettingsDB    string        `env:"SETTINGS_DB"`
	PromptsFile   string        `env:"PROMPTS_FILE"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"6h"`
	HostUser      string        `env:"HOST_USER"`
	HostPass      string        `env:"HOST_PASS"`
	SingleSession bool          `env:"SINGLE_SESSION" envDefault:"true"`
	ExportEnabled bool          `env:"EXPORT_ENABLED" envDefault:"false"`
	ExportFile    string        `env:"EXPORT_FILE" envDefault:"./glou-rounds.txt"`
	PublicURL     string        `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
	ChronoSeconds int           `env:"CHRONO_SECONDS" envDefault:"30"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
}

// FromEnv reads the configuration from environment variables.
func FromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if c.ChronoSeconds <= 0 {
		return Config{}, fmt.Errorf("parse env: CHRONO_SECONDS must be positive, got %d", c.ChronoSeconds)
	}
	return c, nil
}

// HostAuth reports whether host routes are protected by basic auth.
func (c Config) HostAuth() bool {
	return c.HostUser != "" && c.HostPass != ""
}
