// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the server
type Config struct {
	Port       int    `env:"PORT" envDefault:"5000"`
	CORSOrigin string `env:"ENABLE_CORS_ORIGIN"`

	BotThinkDelay      time.Duration `env:"BOT_THINK_DELAY" envDefault:"500ms"`
	ResolveDelay       time.Duration `env:"RESOLVE_DELAY" envDefault:"1s"`
	ResultDisplayDelay time.Duration `env:"RESULT_DISPLAY_DELAY" envDefault:"3s"`
	HostLeftGrace      time.Duration `env:"HOST_LEFT_GRACE" envDefault:"250ms"`

	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"30m"`
	ReapInterval time.Duration `env:"REAP_INTERVAL" envDefault:"1m"`

	SubjectLookupURL     string        `env:"SUBJECT_LOOKUP_URL" envDefault:"https://www.thesportsdb.com/api/v1/json/3/searchplayers.php"`
	SubjectLookupTimeout time.Duration `env:"SUBJECT_LOOKUP_TIMEOUT" envDefault:"3s"`
	SubjectLookupEnabled bool          `env:"SUBJECT_LOOKUP_ENABLED" envDefault:"true"`

	PublicBaseURL string `env:"PUBLIC_BASE_URL"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

// Load reads an optional .env file from the working directory, then parses
// the environment. Variables already set win over the file.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	return &cfg, nil
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
