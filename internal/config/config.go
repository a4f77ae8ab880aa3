// Package config loads suite settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Defaults match the deployment the scenarios were written against.
const (
	DefaultBaseURL  = "https://d3s5nxhwblsjbi.cloudfront.net"
	DefaultUsername = "kami16"
	DefaultPassword = "kam123"
)

// Config holds everything needed to run the suite against one deployment.
type Config struct {
	BaseURL       string        `env:"STORYSPOILER_BASE_URL"       envDefault:"https://d3s5nxhwblsjbi.cloudfront.net"`
	Username      string        `env:"STORYSPOILER_USERNAME"       envDefault:"kami16"`
	Password      string        `env:"STORYSPOILER_PASSWORD"       envDefault:"kam123"`
	Timeout       time.Duration `env:"STORYSPOILER_TIMEOUT"        envDefault:"0s"`
	ValkeyAddress string        `env:"STORYSPOILER_VALKEY_ADDRESS"`
	Logging       LoggingConfig
}

// LoggingConfig selects the zerolog level and output format.
type LoggingConfig struct {
	Level  string `env:"STORYSPOILER_LOG_LEVEL"  envDefault:"info"`
	Format string `env:"STORYSPOILER_LOG_FORMAT" envDefault:"json"`
}

// Load reads the given .env files (missing files are ignored) and then parses
// the process environment. Variables already set in the environment win over
// values from the files.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate makes sure all required fields are present and valid.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base url is required")
	}

	u, err := url.ParseRequestURI(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base url scheme: %q", u.Scheme)
	}

	if c.Username == "" {
		return errors.New("username is required")
	}

	if c.Password == "" {
		return errors.New("password is required")
	}

	if c.Timeout < 0 {
		return errors.New("timeout must be >= 0")
	}

	return nil
}
