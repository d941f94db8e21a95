package simulate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/pitchduel/pkg/logger"
)

// Report summarizes a simulation run.
type Report struct {
	Matches  int
	Throws   int64
	Duration time.Duration
	// Expected holds each player's wins and games added by this run.
	Expected map[string]Tally
}

// Tally is a wins and games-played pair.
type Tally struct {
	Wins  int
	Games int
}

// Run plays cfg.Matches complete matches and then waits until the
// leaderboard reflects every one of them.
func Run(ctx context.Context, cfg Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	log := logger.Get().Named("simulate")
	client := NewClient(cfg.BaseURL, cfg.Timeout)
	start := time.Now()

	if err := client.Health(ctx); err != nil {
		return Report{}, fmt.Errorf("service health check failed: %w", err)
	}

	runID := cfg.RunID
	if runID == "" {
		runID = strings.SplitN(uuid.NewString(), "-", 2)[0]
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(start.UnixNano())
	}
	players := make([]player, cfg.Players)
	for i := range players {
		players[i] = player{
			ID:   fmt.Sprintf("sim-%s-%03d", runID, i),
			Name: fmt.Sprintf("Player %d", i+1),
		}
	}

	baseline, err := snapshot(ctx, client, players)
	if err != nil {
		return Report{}, err
	}

	log.Info(ctx, "starting simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("matches", cfg.Matches),
		logger.Int("players", cfg.Players),
		logger.Int("concurrency", cfg.Concurrency),
	)

	var (
		mu       sync.Mutex
		outcomes = make([]outcome, 0, cfg.Matches)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i := range cfg.Matches {
		host := players[i%len(players)]
		guest := players[(i+1+i/len(players))%len(players)]
		if guest.ID == host.ID {
			guest = players[(i+1)%len(players)]
		}
		g.Go(func() error {
			o, err := playMatch(gctx, client, cfg, seed+uint64(i), host, guest)
			if err != nil {
				return fmt.Errorf("match %d: %w", i, err)
			}
			mu.Lock()
			outcomes = append(outcomes, o)
			mu.Unlock()
			log.Debug(gctx, "match finished",
				logger.String("game_id", o.GameID),
				logger.String("winner", o.Winner),
				logger.Int("throws", int(o.Throws)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{
		Matches:  len(outcomes),
		Expected: make(map[string]Tally, len(players)),
	}
	for _, o := range outcomes {
		report.Throws += o.Throws
		for _, p := range []player{o.Host, o.Guest} {
			t := report.Expected[p.ID]
			t.Games++
			if o.Winner == p.ID {
				t.Wins++
			}
			report.Expected[p.ID] = t
		}
	}

	if err := settle(ctx, client, cfg, baseline, report.Expected); err != nil {
		return report, err
	}
	report.Duration = time.Since(start)

	log.Info(ctx, "simulation verified",
		logger.Int("matches", report.Matches),
		logger.Int("throws", int(report.Throws)),
		logger.Duration("duration", report.Duration),
	)
	return report, nil
}

// snapshot reads each player's current standing; unknown players count as zero.
func snapshot(ctx context.Context, c *Client, players []player) (map[string]Tally, error) {
	out := make(map[string]Tally, len(players))
	for _, p := range players {
		e, err := c.Player(ctx, p.ID)
		switch {
		case err == nil:
			out[p.ID] = Tally{Wins: e.Wins, Games: e.GamesPlayed}
		case IsCode(err, "not_found"):
			out[p.ID] = Tally{}
		default:
			return nil, fmt.Errorf("read standing for %s: %w", p.ID, err)
		}
	}
	return out, nil
}

// settle polls standings until every player shows baseline plus expected,
// or cfg.SettleWait elapses.
func settle(ctx context.Context, c *Client, cfg Config, baseline, expected map[string]Tally) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.SettleWait)
	defer cancel()

	var lastDiff string
	for {
		diff, err := compare(ctx, c, baseline, expected)
		if err == nil && diff == "" {
			return nil
		}
		if err != nil {
			lastDiff = err.Error()
		} else {
			lastDiff = diff
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("standings did not settle: %s", lastDiff)
		case <-time.After(cfg.PollInterval):
		}
	}
}

// compare returns a description of the first mismatch, or "" when all match.
func compare(ctx context.Context, c *Client, baseline, expected map[string]Tally) (string, error) {
	for id, want := range expected {
		e, err := c.Player(ctx, id)
		if err != nil && !IsCode(err, "not_found") {
			return "", err
		}
		base := baseline[id]
		if e.Wins != base.Wins+want.Wins || e.GamesPlayed != base.Games+want.Games {
			return fmt.Sprintf("%s has %d/%d, want %d/%d", id,
				e.Wins, e.GamesPlayed, base.Wins+want.Wins, base.Games+want.Games), nil
		}
	}
	return "", nil
}
