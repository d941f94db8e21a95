package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	envPrefix     = "PITCHDUEL_"
	envConfigFile = "PITCHDUEL_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PITCHDUEL_CONFIG is set
//  3. env (prefix PITCHDUEL_)
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// PITCHDUEL_WIN_THRESHOLD -> win_threshold. Keys are flat, so underscores stay.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WinThreshold < 1:
		return fmt.Errorf("%w: win_threshold must be at least 1", ErrInvalidConfig)
	case c.DefaultLeaderboardLimit < 1:
		return fmt.Errorf("%w: default_leaderboard_limit must be at least 1", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < c.DefaultLeaderboardLimit:
		return fmt.Errorf("%w: max_leaderboard_limit must not be below default_leaderboard_limit", ErrInvalidConfig)
	}

	c.StandingsDriver = strings.ToLower(strings.TrimSpace(c.StandingsDriver))
	switch c.StandingsDriver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if strings.TrimSpace(c.StandingsDSN) == "" {
			return fmt.Errorf("%w: standings_dsn is required for the %s driver", ErrInvalidConfig, c.StandingsDriver)
		}
	default:
		return fmt.Errorf("%w: unknown standings_driver %q", ErrInvalidConfig, c.StandingsDriver)
	}
	return nil
}
