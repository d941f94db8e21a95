// Package repository holds the room registry and the standings stores that
// back the leaderboard.
package repository

import (
	"context"

	"github.com/okian/pitchduel/internal/domain/model"
)

// Store keeps cumulative wins and games played per player.
type Store interface {
	// RecordResult credits one game to both players and one win to the winner.
	RecordResult(ctx context.Context, r model.MatchResult) error

	// Top returns up to n standings ordered by wins desc, games played asc,
	// then player id asc. Ranks start at 1.
	Top(ctx context.Context, n int) ([]model.Standing, error)

	// Player returns one player's standing with its rank.
	// Returns ErrPlayerNotFound if the player never finished a match.
	Player(ctx context.Context, playerID string) (model.Standing, error)

	// Count returns the number of players tracked.
	Count(ctx context.Context) int

	Close() error
}
