// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers an optional YAML file and PITCHDUEL_* env vars on top.
package config

import "runtime"

// Standings storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`
	// ServiceName is reported on traces.
	ServiceName string `koanf:"service_name"`

	// WinThreshold is the score a side must reach to win a room.
	WinThreshold int `koanf:"win_threshold"`

	// RecorderQueueSize bounds the in-memory match result queue.
	RecorderQueueSize int `koanf:"recorder_queue_size"`
	// RecorderWorkerCount sets the number of standings workers.
	RecorderWorkerCount int `koanf:"recorder_worker_count"`
	// DedupeSize bounds the set of already-recorded game ids.
	DedupeSize int `koanf:"dedupe_size"`

	// DefaultLeaderboardLimit applies when GET /leaderboard has no limit.
	DefaultLeaderboardLimit int `koanf:"default_leaderboard_limit"`
	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// StandingsDriver is one of memory, sqlite, postgres.
	StandingsDriver string `koanf:"standings_driver"`
	// StandingsDSN is the sqlite path or postgres URL.
	StandingsDSN string `koanf:"standings_dsn"`

	// OTelEndpoint enables OTLP/HTTP trace export when non-empty.
	OTelEndpoint string `koanf:"otel_endpoint"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":5000",
		ServiceName:             "pitchduel",
		WinThreshold:            10,
		RecorderQueueSize:       10_000,
		RecorderWorkerCount:     runtime.NumCPU(),
		DedupeSize:              100_000,
		DefaultLeaderboardLimit: 10,
		MaxLeaderboardLimit:     100,
		StandingsDriver:         DriverMemory,
	}
}
