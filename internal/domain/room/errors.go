package room

import "errors"

// Precondition failures. None of them mutate the room.
var (
	ErrNotFound        = errors.New("game not found")
	ErrRoomFull        = errors.New("game already has a guest")
	ErrSelfJoin        = errors.New("host cannot join their own game")
	ErrNotWaiting      = errors.New("game is not waiting for a guest")
	ErrNotActive       = errors.New("game is not active")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrUnknownPlayer   = errors.New("player is not part of this game")
	ErrGameOver        = errors.New("game is over")
	ErrInvalidGameType = errors.New("invalid game type")
	ErrInvalidPlayer   = errors.New("player id is required")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrNotFound, "not_found"},
	{ErrRoomFull, "room_full"},
	{ErrSelfJoin, "self_join"},
	{ErrNotWaiting, "not_waiting"},
	{ErrNotActive, "not_active"},
	{ErrNotYourTurn, "not_your_turn"},
	{ErrUnknownPlayer, "unknown_player"},
	{ErrGameOver, "game_over"},
	{ErrInvalidGameType, "invalid_game_type"},
	{ErrInvalidPlayer, "invalid_player"},
}

// Code returns the stable snake_case name of a room error, or "" when err is
// not one of them.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}
