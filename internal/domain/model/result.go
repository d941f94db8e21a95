// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingField is returned by Validate when a required field is blank.
var ErrMissingField = errors.New("missing required field")

// ErrInvalidWinner is returned when the winner is neither participant.
var ErrInvalidWinner = errors.New("winner is not a participant")

// ErrSamePlayer is returned when both sides of a match are the same player.
var ErrSamePlayer = errors.New("a player cannot play against themselves")

// MatchResult is a finished match as handed to the result recorder.
// Player1 is the host and Player2 the guest when produced by the server.
type MatchResult struct {
	// GameID is optional for external submissions; when set it enables dedupe.
	GameID      string
	Player1ID   string
	Player1Name string
	Player2ID   string
	Player2Name string
	WinnerID    string
	// TS is the completion time.
	TS          time.Time
}

// Validate checks the five required fields in submission order, that the two
// players differ and that the winner took part in the match.
func (r MatchResult) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"player1Id", r.Player1ID},
		{"player1Name", r.Player1Name},
		{"player2Id", r.Player2ID},
		{"player2Name", r.Player2Name},
		{"winnerId", r.WinnerID},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	if strings.TrimSpace(r.Player1ID) == strings.TrimSpace(r.Player2ID) {
		return fmt.Errorf("%w: %s", ErrSamePlayer, r.Player1ID)
	}
	if r.WinnerID != r.Player1ID && r.WinnerID != r.Player2ID {
		return fmt.Errorf("%w: %s", ErrInvalidWinner, r.WinnerID)
	}
	return nil
}

// Standing is one player's cumulative record on the leaderboard.
type Standing struct {
	Rank        int
	PlayerID    string
	Username    string
	Wins        int
	GamesPlayed int
	LastPlayed  time.Time
}

// Less orders standings by wins desc, then games played asc, then player id.
func Less(a, b Standing) bool {
	if a.Wins != b.Wins {
		return a.Wins > b.Wins
	}
	if a.GamesPlayed != b.GamesPlayed {
		return a.GamesPlayed < b.GamesPlayed
	}
	return a.PlayerID < b.PlayerID
}
