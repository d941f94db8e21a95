package api

import (
	"net/http"

	"github.com/okian/pitchduel/internal/domain/types"
)

// RankHandler serves a single player's standing.
type RankHandler struct {
	deps StandingsDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps StandingsDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetPlayer handles GET /leaderboard/player/{id} requests.
func (h *RankHandler) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	s, err := h.deps.Player(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap("api.get_player", err))
		return
	}
	writeJSON(w, http.StatusOK, types.FromStanding(s))
}
