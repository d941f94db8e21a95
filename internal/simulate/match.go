package simulate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/pitchduel/internal/domain/types"
)

// player is one simulated participant.
type player struct {
	ID   string
	Name string
}

// outcome is what one finished match contributes to the standings.
type outcome struct {
	GameID string
	Host   player
	Guest  player
	Winner string
	Throws int64
}

// playMatch creates a game as host, joins it as guest and lets both sides
// poll and throw until the game completes.
func playMatch(ctx context.Context, c *Client, cfg Config, seed uint64, host, guest player) (outcome, error) {
	gameID, err := c.CreateGame(ctx, host.ID, host.Name)
	if err != nil {
		return outcome{}, fmt.Errorf("create: %w", err)
	}
	if _, err := c.JoinGame(ctx, gameID, guest.ID, guest.Name); err != nil {
		return outcome{}, fmt.Errorf("join %s: %w", gameID, err)
	}

	var throws atomic.Int64
	var final atomic.Pointer[types.Game]

	g, gctx := errgroup.WithContext(ctx)
	for i, me := range []player{host, guest} {
		rng := rand.New(rand.NewPCG(seed, uint64(i)))
		g.Go(func() error {
			game, err := playSide(gctx, c, cfg.PollInterval, gameID, me.ID, rng, &throws)
			if err != nil {
				return err
			}
			final.Store(&game)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcome{}, fmt.Errorf("game %s: %w", gameID, err)
	}

	return outcome{
		GameID: gameID,
		Host:   host,
		Guest:  guest,
		Winner: final.Load().WinnerID,
		Throws: throws.Load(),
	}, nil
}

// playSide polls the game and throws whenever it is me's turn.
func playSide(ctx context.Context, c *Client, poll time.Duration, gameID, me string, rng *rand.Rand, throws *atomic.Int64) (types.Game, error) {
	for {
		game, err := c.GetGame(ctx, gameID)
		if err != nil {
			return types.Game{}, err
		}
		switch {
		case game.Status == "completed":
			return game, nil
		case game.Status == "active" && game.CurrentTurn == me:
			_, err := c.Throw(ctx, gameID, me, rng.Float64(), rng.Float64())
			switch {
			case err == nil:
				throws.Add(1)
				continue
			case IsCode(err, "game_over"), IsCode(err, "not_your_turn"):
				// Lost a race with the other side; poll again.
			default:
				return types.Game{}, err
			}
		}

		select {
		case <-ctx.Done():
			return types.Game{}, ctx.Err()
		case <-time.After(poll):
		}
	}
}
