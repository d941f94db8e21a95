// Package types contains the JSON shapes exchanged with clients.
package types

import (
	"time"

	"github.com/okian/pitchduel/internal/domain/model"
	"github.com/okian/pitchduel/internal/domain/room"
)

// Points is the running score of both sides.
type Points struct {
	Host  int `json:"host"`
	Guest int `json:"guest"`
}

// CurrentPitch is the most recent accepted throw.
type CurrentPitch struct {
	PlayerID    string     `json:"playerId"`
	Coordinates [2]float64 `json:"coordinates"`
	Result      string     `json:"result"`
	Points      int        `json:"points"`
}

// GameState groups the scoring part of a snapshot.
type GameState struct {
	Points       Points        `json:"points"`
	CurrentPitch *CurrentPitch `json:"currentPitch"`
}

// Game is the full room snapshot polled by both clients.
type Game struct {
	ID          string    `json:"id"`
	HostID      string    `json:"hostId"`
	HostName    string    `json:"hostName"`
	GameType    string    `json:"gameType"`
	Status      string    `json:"status"`
	GuestID     string    `json:"guestId"`
	GuestName   string    `json:"guestName"`
	CurrentTurn string    `json:"currentTurn"`
	Created     time.Time `json:"created"`
	LastUpdated time.Time `json:"lastUpdated"`
	GameState   GameState `json:"gameState"`
	WinnerID    string    `json:"winnerId,omitempty"`
}

// WaitingGame is a lobby row.
type WaitingGame struct {
	ID       string    `json:"id"`
	HostID   string    `json:"hostId"`
	HostName string    `json:"hostName"`
	GameType string    `json:"gameType"`
	Created  time.Time `json:"created"`
}

// Entry represents a leaderboard entry.
type Entry struct {
	Rank        int       `json:"rank"`
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Wins        int       `json:"wins"`
	GamesPlayed int       `json:"gamesPlayed"`
	LastPlayed  time.Time `json:"lastPlayed"`
}

// FromRoom renders a room snapshot.
func FromRoom(r room.Room) Game {
	g := Game{
		ID:          r.ID,
		HostID:      r.Host.ID,
		HostName:    r.Host.Name,
		GameType:    string(r.GameType),
		Status:      string(r.Status),
		CurrentTurn: r.Turn,
		Created:     r.CreatedAt,
		LastUpdated: r.UpdatedAt,
		GameState: GameState{
			Points: Points{Host: r.Score.Host, Guest: r.Score.Guest},
		},
		WinnerID: r.Winner,
	}
	if r.Guest != nil {
		g.GuestID = r.Guest.ID
		g.GuestName = r.Guest.Name
	}
	if p := r.LastPitch; p != nil {
		g.GameState.CurrentPitch = &CurrentPitch{
			PlayerID:    p.PlayerID,
			Coordinates: [2]float64{p.Outcome.Coordinate.X, p.Outcome.Coordinate.Y},
			Result:      string(p.Outcome.Label),
			Points:      p.Outcome.Points,
		}
	}
	return g
}

// WaitingFromRoom renders a lobby row.
func WaitingFromRoom(r room.Room) WaitingGame {
	return WaitingGame{
		ID:       r.ID,
		HostID:   r.Host.ID,
		HostName: r.Host.Name,
		GameType: string(r.GameType),
		Created:  r.CreatedAt,
	}
}

// FromStanding renders a leaderboard row.
func FromStanding(s model.Standing) Entry {
	return Entry{
		Rank:        s.Rank,
		ID:          s.PlayerID,
		Username:    s.Username,
		Wins:        s.Wins,
		GamesPlayed: s.GamesPlayed,
		LastPlayed:  s.LastPlayed,
	}
}
