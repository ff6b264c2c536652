// Package config reads service configuration from command-line flags, an
// optional .env file and the environment. Environment values win over flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/subosito/gotenv"
)

type Config struct {
	Addr          string `env:"FEIRINHA_ADDR"`
	DBPath        string `env:"FEIRINHA_DB_PATH"`
	LogLevel      string `env:"FEIRINHA_LOG_LEVEL"`
	LogFormat     string `env:"FEIRINHA_LOG_FORMAT"`
	PlacesAPIKey  string `env:"FEIRINHA_PLACES_API_KEY"`
	PlacesBaseURL string `env:"FEIRINHA_PLACES_BASE_URL"`
	Strict        bool   `env:"FEIRINHA_STRICT"`
	EnvFile       string
}

// Parse reads flags from args (without the program name), then loads EnvFile
// if it exists, then applies environment variables on top. Variables already
// set in the process environment are not replaced by the .env file.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}

	fset := flag.NewFlagSet("feirinha", flag.ContinueOnError)
	fset.StringVar(&cfg.Addr, "a", "127.0.0.1:8080", "address and port for HTTP server")
	fset.StringVar(&cfg.DBPath, "d", "feirinha.db", "SQLite database path")
	fset.StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	fset.StringVar(&cfg.LogFormat, "log-format", "json", "log format: json or console")
	fset.StringVar(&cfg.PlacesAPIKey, "places-key", "", "Google Places API key")
	fset.StringVar(&cfg.PlacesBaseURL, "places-url", "", "Google Places base URL override")
	fset.BoolVar(&cfg.Strict, "strict", false, "reject empty list, item and category names")
	fset.StringVar(&cfg.EnvFile, "env-file", ".env", "optional dotenv file")

	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if cfg.EnvFile != "" {
		if err := gotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", cfg.EnvFile, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("address must not be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("database path must not be empty")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
