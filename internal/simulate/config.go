// Package simulate drives complete matches against a running pitchduel API
// and checks that every finished match reaches the leaderboard exactly once.
package simulate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config holds the simulation parameters.
type Config struct {
	BaseURL      string        // API root, e.g. http://127.0.0.1:5000
	Matches      int           // matches to play
	Players      int           // distinct players rotated through the matches
	Concurrency  int           // matches in flight at once
	Timeout      time.Duration // per-request timeout
	PollInterval time.Duration // delay between game polls while waiting for a turn
	SettleWait   time.Duration // how long to wait for standings to catch up
	Seed         uint64        // seed for pitch coordinates; 0 picks one from the clock
	RunID        string        // prefix for player ids so runs do not collide
}

// DefaultConfig returns the defaults used by cmd/pitch-sim.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "http://127.0.0.1:5000",
		Matches:      20,
		Players:      6,
		Concurrency:  4,
		Timeout:      10 * time.Second,
		PollInterval: 20 * time.Millisecond,
		SettleWait:   10 * time.Second,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.BaseURL) == "":
		return fmt.Errorf("%w: base url is empty", ErrInvalidConfig)
	case c.Matches < 1:
		return fmt.Errorf("%w: matches must be at least 1", ErrInvalidConfig)
	case c.Players < 2:
		return fmt.Errorf("%w: players must be at least 2", ErrInvalidConfig)
	case c.Concurrency < 1:
		return fmt.Errorf("%w: concurrency must be at least 1", ErrInvalidConfig)
	case c.Timeout <= 0 || c.PollInterval <= 0 || c.SettleWait <= 0:
		return fmt.Errorf("%w: durations must be positive", ErrInvalidConfig)
	}
	return nil
}
