package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/okian/pitchduel/internal/simulate"
	"github.com/okian/pitchduel/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	def := simulate.DefaultConfig()
	var (
		baseURL     = flag.String("url", def.BaseURL, "Base URL of the service")
		matches     = flag.Int("matches", def.Matches, "Number of matches to play")
		players     = flag.Int("players", def.Players, "Number of distinct players")
		concurrency = flag.Int("concurrency", def.Concurrency, "Matches played at once")
		timeout     = flag.Duration("timeout", def.Timeout, "HTTP request timeout")
		poll        = flag.Duration("poll", def.PollInterval, "Delay between game polls")
		settle      = flag.Duration("settle", def.SettleWait, "How long to wait for standings to catch up")
		seed        = flag.Uint64("seed", 0, "Seed for pitch coordinates (0 = time based)")
		runID       = flag.String("run-id", "", "Prefix for generated player ids (default: random)")
		logFormat   = flag.String("log-format", "text", "Log format: text or json")
		verbose     = flag.Bool("verbose", false, "Log every finished match")
	)
	flag.Parse()

	if err := logger.Init(logger.WithFormat(*logFormat)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(2)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	report, err := simulate.Run(ctx, simulate.Config{
		BaseURL:      *baseURL,
		Matches:      *matches,
		Players:      *players,
		Concurrency:  *concurrency,
		Timeout:      *timeout,
		PollInterval: *poll,
		SettleWait:   *settle,
		Seed:         *seed,
		RunID:        *runID,
	})
	if err != nil {
		_, _ = os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	fmt.Printf("played %d matches (%d throws) in %s; standings verified\n",
		report.Matches, report.Throws, report.Duration.Round(time.Millisecond))
}
