package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/pitchduel/internal/domain/room"
	"github.com/okian/pitchduel/internal/domain/scoring"
	"github.com/okian/pitchduel/internal/domain/types"
)

type createRequest struct {
	HostID   string `json:"hostId"`
	HostName string `json:"hostName"`
	GameType string `json:"gameType"`
}

type createResponse struct {
	GameID string `json:"gameId"`
}

type joinRequest struct {
	GuestID   string `json:"guestId"`
	GuestName string `json:"guestName"`
}

type throwRequest struct {
	PlayerID         string    `json:"playerId"`
	PitchCoordinates []float64 `json:"pitchCoordinates"`
}

func (t throwRequest) coordinate() (scoring.Coordinate, error) {
	if strings.TrimSpace(t.PlayerID) == "" {
		return scoring.Coordinate{}, errors.New("missing playerId")
	}
	if len(t.PitchCoordinates) != 2 {
		return scoring.Coordinate{}, errors.New("pitchCoordinates must be [x, y]")
	}
	return scoring.Coordinate{X: t.PitchCoordinates[0], Y: t.PitchCoordinates[1]}, nil
}

// GameHandler serves the multiplayer game routes.
type GameHandler struct {
	deps GameDependencies
}

// NewGameHandler creates a new game handler.
func NewGameHandler(deps GameDependencies) *GameHandler {
	return &GameHandler{deps: deps}
}

// HandleCreate handles POST /multiplayer/create.
func (h *GameHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_game"
	var req createRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.HostID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing hostId")))
		return
	}
	if req.GameType == "" {
		req.GameType = string(room.Standard)
	}

	id, err := h.deps.CreateGame(r.Context(), req.HostID, req.HostName, req.GameType)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{GameID: id})
}

// HandleListWaiting handles GET /multiplayer/games.
func (h *GameHandler) HandleListWaiting(w http.ResponseWriter, r *http.Request) {
	rooms := h.deps.ListWaitingGames(r.Context())
	out := make([]types.WaitingGame, len(rooms))
	for i, rm := range rooms {
		out[i] = types.WaitingFromRoom(rm)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleJoin handles POST /multiplayer/join/{id}.
func (h *GameHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	const op = "api.join_game"
	var req joinRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.GuestID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing guestId")))
		return
	}

	g, err := h.deps.JoinGame(r.Context(), r.PathValue("id"), req.GuestID, req.GuestName)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.FromRoom(g))
}

// HandleGet handles GET /multiplayer/game/{id}.
func (h *GameHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	g, err := h.deps.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap("api.get_game", err))
		return
	}
	writeJSON(w, http.StatusOK, types.FromRoom(g))
}

// HandleThrow handles POST /multiplayer/game/{id}/throw.
func (h *GameHandler) HandleThrow(w http.ResponseWriter, r *http.Request) {
	const op = "api.throw_pitch"
	var req throwRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	at, err := req.coordinate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	g, err := h.deps.ThrowPitch(r.Context(), r.PathValue("id"), req.PlayerID, at)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.FromRoom(g))
}
