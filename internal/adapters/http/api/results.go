package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/okian/pitchduel/internal/domain/model"
)

// resultRequest is the body of POST /games/result.
type resultRequest struct {
	GameID      string `json:"gameId"`
	Player1ID   string `json:"player1Id"`
	Player1Name string `json:"player1Name"`
	Player2ID   string `json:"player2Id"`
	Player2Name string `json:"player2Name"`
	WinnerID    string `json:"winnerId"`
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// ResultHandler accepts match results from clients.
type ResultHandler struct {
	deps StandingsDependencies
}

// NewResultHandler creates a new result handler.
func NewResultHandler(deps StandingsDependencies) *ResultHandler {
	return &ResultHandler{deps: deps}
}

// HandlePostResult handles POST /games/result. Results carrying a gameId
// are counted once no matter how many clients submit them.
func (h *ResultHandler) HandlePostResult(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_result"
	var req resultRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	dup, err := h.deps.Record(r.Context(), model.MatchResult{
		GameID:      strings.TrimSpace(req.GameID),
		Player1ID:   req.Player1ID,
		Player1Name: req.Player1Name,
		Player2ID:   req.Player2ID,
		Player2Name: req.Player2Name,
		WinnerID:    req.WinnerID,
		TS:          time.Now().UTC(),
	})
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if dup {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
