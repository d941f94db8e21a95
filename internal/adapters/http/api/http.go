// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/pitchduel/internal/domain/model"
	"github.com/okian/pitchduel/internal/domain/room"
	"github.com/okian/pitchduel/internal/domain/scoring"
)

// GameDependencies is the turn protocol as seen by the handlers.
type GameDependencies interface {
	CreateGame(ctx context.Context, hostID, hostName, gameType string) (string, error)
	JoinGame(ctx context.Context, gameID, guestID, guestName string) (room.Room, error)
	ThrowPitch(ctx context.Context, gameID, playerID string, at scoring.Coordinate) (room.Room, error)
	GetGame(ctx context.Context, gameID string) (room.Room, error)
	ListWaitingGames(ctx context.Context) []room.Room
}

// StandingsDependencies records results and serves the leaderboard.
type StandingsDependencies interface {
	Record(ctx context.Context, r model.MatchResult) (duplicate bool, err error)
	Top(ctx context.Context, n int) ([]model.Standing, error)
	Player(ctx context.Context, playerID string) (model.Standing, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	gameHandler        *GameHandler
	resultHandler      *ResultHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	defaultLimit int
	maxLimit     int
	stats        []StatsProvider
}

// WithLeaderboardLimits sets the default and maximum leaderboard sizes.
func WithLeaderboardLimits(defaultLimit, maxLimit int) ServerOption {
	return func(c *serverConfig) {
		if defaultLimit > 0 {
			c.defaultLimit = defaultLimit
		}
		if maxLimit >= c.defaultLimit {
			c.maxLimit = maxLimit
		}
	}
}

// WithStatsProviders adds sources merged into GET /stats.
func WithStatsProviders(providers ...StatsProvider) ServerOption {
	return func(c *serverConfig) {
		c.stats = append(c.stats, providers...)
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(games GameDependencies, standings StandingsDependencies, opts ...ServerOption) *Server {
	cfg := serverConfig{defaultLimit: 10, maxLimit: 100}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(cfg.stats...),
		gameHandler:        NewGameHandler(games),
		resultHandler:      NewResultHandler(standings),
		leaderboardHandler: NewLeaderboardHandler(standings, cfg.defaultLimit, cfg.maxLimit),
		rankHandler:        NewRankHandler(standings),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /multiplayer/create", MetricsMiddleware(s.gameHandler.HandleCreate, "create"))
	mux.HandleFunc("GET /multiplayer/games", MetricsMiddleware(s.gameHandler.HandleListWaiting, "games"))
	mux.HandleFunc("POST /multiplayer/join/{id}", MetricsMiddleware(s.gameHandler.HandleJoin, "join"))
	mux.HandleFunc("GET /multiplayer/game/{id}", MetricsMiddleware(s.gameHandler.HandleGet, "game"))
	mux.HandleFunc("POST /multiplayer/game/{id}/throw", MetricsMiddleware(s.gameHandler.HandleThrow, "throw"))

	mux.HandleFunc("POST /games/result", MetricsMiddleware(s.resultHandler.HandlePostResult, "result"))
	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /leaderboard/player/{id}", MetricsMiddleware(s.rankHandler.HandleGetPlayer, "player"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes the matching error response.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

const maxBodyBytes = 1 << 20

// decode reads a JSON request body of at most maxBodyBytes.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
