package repository

import "errors"

// Sentinel kinds for standings errors.
var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidLimit   = errors.New("invalid leaderboard limit")
	ErrInvalidResult  = errors.New("invalid match result")
	ErrUnknownDriver  = errors.New("unknown standings driver")
	ErrRoomIDConflict = errors.New("room id already in use")
)
