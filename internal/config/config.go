// Package config reads settings from the environment and an optional .env
// file.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds every setting of both clients.
type Config struct {
	APIURL         string        `env:"ZALOGA_API_URL, default=http://localhost:5050/api"`
	Addr           string        `env:"ZALOGA_ADDR, default=:8080"`
	StatePath      string        `env:"ZALOGA_STATE, default=zaloga-state.sqlite3"`
	LogFile        string        `env:"ZALOGA_LOG"`
	SecureCookies  bool          `env:"ZALOGA_SECURE_COOKIES, default=false"`
	RequestTimeout time.Duration `env:"ZALOGA_REQUEST_TIMEOUT, default=15s"`
}

// Load reads .env files (if present) into the process environment and then
// processes it.
func Load(ctx context.Context, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// Variables already set win over the file.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith processes configuration from lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that the environment cannot type-check.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ZALOGA_API_URL must be an absolute http(s) URL, got %q", c.APIURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("ZALOGA_REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
