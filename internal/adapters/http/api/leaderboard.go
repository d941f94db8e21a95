package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/pitchduel/internal/domain/types"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps         StandingsDependencies
	defaultLimit int
	maxLimit     int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps StandingsDependencies, defaultLimit, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:         deps,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	n := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("invalid limit %q", limitStr)))
			return
		}
		n = v
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", WrapKind(op, ErrBadRequest, fmt.Errorf("limit must be at most %d", h.maxLimit)))
		return
	}

	standings, err := h.deps.Top(r.Context(), n)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	out := make([]types.Entry, len(standings))
	for i, s := range standings {
		out[i] = types.FromStanding(s)
	}
	writeJSON(w, http.StatusOK, out)
}
