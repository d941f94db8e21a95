// Package room holds the authoritative state of one pitching match and the
// primitives that move it through waiting, active and completed.
//
// A Room is not safe for concurrent use; callers serialize access per room.
package room

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/pitchduel/internal/domain/scoring"
)

// DefaultWinThreshold is the score that ends a match.
const DefaultWinThreshold = 10

// GameType is informational; it does not change scoring.
type GameType string

// Known game types.
const (
	Standard GameType = "standard"
	Advanced GameType = "advanced"
	Timed    GameType = "timed"
)

// ParseGameType validates a caller-supplied game type.
func ParseGameType(s string) (GameType, error) {
	switch gt := GameType(strings.ToLower(strings.TrimSpace(s))); gt {
	case Standard, Advanced, Timed:
		return gt, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGameType, s)
	}
}

// Status is the lifecycle state of a room.
type Status string

// Lifecycle states. Transitions only go forward.
const (
	Waiting   Status = "waiting"
	Active    Status = "active"
	Completed Status = "completed"
)

// Player is a wallet-derived identity with a display name.
type Player struct {
	ID   string
	Name string
}

// Score holds each side's running total.
type Score struct {
	Host  int
	Guest int
}

// Pitch is the last accepted throw and who threw it.
type Pitch struct {
	PlayerID string
	Outcome  scoring.Outcome
}

// Room is one match between a host and at most one guest.
type Room struct {
	ID        string
	GameType  GameType
	Host      Player
	Guest     *Player
	Status    Status
	Turn      string
	Score     Score
	LastPitch *Pitch
	Winner    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Initialize creates a waiting room for host.
func Initialize(id string, host Player, gameType GameType, now time.Time) (*Room, error) {
	gt, err := ParseGameType(string(gameType))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(host.ID) == "" {
		return nil, ErrInvalidPlayer
	}
	return &Room{
		ID:        id,
		GameType:  gt,
		Host:      host,
		Status:    Waiting,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AttachGuest seats guest and starts the match with the host to throw.
func (r *Room) AttachGuest(guest Player, now time.Time) error {
	switch {
	case r.Status != Waiting:
		return ErrNotWaiting
	case r.Guest != nil:
		return ErrRoomFull
	case strings.TrimSpace(guest.ID) == "":
		return ErrInvalidPlayer
	case guest.ID == r.Host.ID:
		return ErrSelfJoin
	}

	g := guest
	r.Guest = &g
	r.Status = Active
	r.Turn = r.Host.ID
	r.UpdatedAt = now
	return nil
}

// ApplyThrow scores a pitch by playerID, hands the turn to the opponent and
// completes the match once the thrower reaches threshold.
func (r *Room) ApplyThrow(playerID string, raw scoring.Coordinate, threshold int, now time.Time) (scoring.Outcome, error) {
	switch {
	case r.Status == Completed:
		return scoring.Outcome{}, ErrGameOver
	case r.Status != Active:
		return scoring.Outcome{}, ErrNotActive
	case !r.IsPlayer(playerID):
		return scoring.Outcome{}, ErrUnknownPlayer
	case playerID != r.Turn:
		return scoring.Outcome{}, ErrNotYourTurn
	}

	out := scoring.Score(raw)

	var total int
	if playerID == r.Host.ID {
		r.Score.Host += out.Points
		total = r.Score.Host
	} else {
		r.Score.Guest += out.Points
		total = r.Score.Guest
	}
	next, _ := r.Opponent(playerID)
	r.Turn = next.ID
	r.LastPitch = &Pitch{PlayerID: playerID, Outcome: out}
	r.UpdatedAt = now

	if threshold < 1 {
		threshold = DefaultWinThreshold
	}
	if total >= threshold {
		r.Status = Completed
		r.Winner = playerID
		r.Turn = ""
	}
	return out, nil
}

// IsPlayer reports whether id is the host or the seated guest.
func (r *Room) IsPlayer(id string) bool {
	if id == "" {
		return false
	}
	return id == r.Host.ID || (r.Guest != nil && id == r.Guest.ID)
}

// Opponent returns the other side of id, or false when id is not seated.
func (r *Room) Opponent(id string) (Player, bool) {
	switch {
	case r.Guest == nil:
		return Player{}, false
	case id == r.Host.ID:
		return *r.Guest, true
	case id == r.Guest.ID:
		return r.Host, true
	}
	return Player{}, false
}

// Snapshot returns a deep copy that shares no pointers with r.
func (r *Room) Snapshot() Room {
	cp := *r
	if r.Guest != nil {
		g := *r.Guest
		cp.Guest = &g
	}
	if r.LastPitch != nil {
		p := *r.LastPitch
		cp.LastPitch = &p
	}
	return cp
}
