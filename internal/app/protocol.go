package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/pitchduel/internal/adapters/repository"
	"github.com/okian/pitchduel/internal/domain/model"
	"github.com/okian/pitchduel/internal/domain/room"
	"github.com/okian/pitchduel/internal/domain/scoring"
	"github.com/okian/pitchduel/pkg/logger"
	"github.com/okian/pitchduel/pkg/metrics"
	"github.com/okian/pitchduel/pkg/tracing"
)

// ResultSink receives every match the protocol completes.
type ResultSink interface {
	Record(ctx context.Context, r model.MatchResult) (duplicate bool, err error)
}

// Protocol is the turn protocol clients drive: create, join, throw and poll.
// Every mutating call runs as one exclusive section on a single room.
type Protocol struct {
	registry  *repository.Registry
	threshold int
	sink      ResultSink
	logger    logger.Logger
	tracer    trace.Tracer
}

// ProtocolOption configures a Protocol.
type ProtocolOption func(*Protocol)

// WithWinThreshold sets the score that ends a match.
func WithWinThreshold(threshold int) ProtocolOption {
	return func(p *Protocol) {
		if threshold > 0 {
			p.threshold = threshold
		}
	}
}

// WithResultSink sets where completed matches are reported.
func WithResultSink(sink ResultSink) ProtocolOption {
	return func(p *Protocol) {
		p.sink = sink
	}
}

// WithProtocolLogger sets a custom logger for the protocol.
func WithProtocolLogger(l logger.Logger) ProtocolOption {
	return func(p *Protocol) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProtocol builds a protocol over registry.
func NewProtocol(registry *repository.Registry, opts ...ProtocolOption) *Protocol {
	p := &Protocol{
		registry:  registry,
		threshold: room.DefaultWinThreshold,
		tracer:    tracing.Tracer("github.com/okian/pitchduel/internal/app"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("protocol")
	}
	return p
}

// CreateGame opens a waiting room hosted by hostID and returns its id.
func (p *Protocol) CreateGame(ctx context.Context, hostID, hostName, gameType string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "CreateGame", trace.WithAttributes(
		attribute.String("player.id", hostID),
		attribute.String("game.type", gameType),
	))
	defer span.End()

	gt, err := room.ParseGameType(gameType)
	if err != nil {
		return "", p.reject(ctx, span, "create", err)
	}
	id, err := p.registry.Create(ctx, room.Player{ID: hostID, Name: hostName}, gt)
	if err != nil {
		return "", p.reject(ctx, span, "create", err)
	}

	span.SetAttributes(attribute.String("game.id", id))
	metrics.RecordGameCreated(string(gt))
	p.logger.Info(ctx, "game created",
		logger.String("game_id", id),
		logger.String("host_id", hostID),
		logger.String("game_type", string(gt)),
	)
	return id, nil
}

// JoinGame seats guestID in a waiting room and starts the match.
func (p *Protocol) JoinGame(ctx context.Context, gameID, guestID, guestName string) (room.Room, error) {
	ctx, span := p.tracer.Start(ctx, "JoinGame", trace.WithAttributes(
		attribute.String("game.id", gameID),
		attribute.String("player.id", guestID),
	))
	defer span.End()

	snap, err := p.mutate(ctx, gameID, func(r *room.Room) error {
		return r.AttachGuest(room.Player{ID: guestID, Name: guestName}, p.registry.Now())
	})
	if err != nil {
		return room.Room{}, p.reject(ctx, span, "join", err)
	}

	metrics.RecordGameJoined()
	p.logger.Info(ctx, "game joined",
		logger.String("game_id", gameID),
		logger.String("guest_id", guestID),
	)
	return snap, nil
}

// ThrowPitch scores a pitch by playerID and returns the room after it.
// The match result is reported once, after the throw that completes it.
func (p *Protocol) ThrowPitch(ctx context.Context, gameID, playerID string, at scoring.Coordinate) (room.Room, error) {
	ctx, span := p.tracer.Start(ctx, "ThrowPitch", trace.WithAttributes(
		attribute.String("game.id", gameID),
		attribute.String("player.id", playerID),
	))
	defer span.End()

	var (
		out       scoring.Outcome
		completed bool
	)
	snap, err := p.mutate(ctx, gameID, func(r *room.Room) error {
		o, err := r.ApplyThrow(playerID, at, p.threshold, p.registry.Now())
		if err != nil {
			return err
		}
		out = o
		completed = r.Status == room.Completed
		return nil
	})
	if err != nil {
		return room.Room{}, p.reject(ctx, span, "throw", err)
	}

	span.SetAttributes(
		attribute.String("pitch.result", string(out.Label)),
		attribute.Int("pitch.points", out.Points),
	)
	metrics.RecordPitch(string(out.Label))
	p.logger.Debug(ctx, "pitch thrown",
		logger.String("game_id", gameID),
		logger.String("player_id", playerID),
		logger.String("result", string(out.Label)),
		logger.Int("points", out.Points),
	)

	if completed {
		metrics.RecordGameCompleted(string(snap.GameType))
		p.logger.Info(ctx, "game completed",
			logger.String("game_id", gameID),
			logger.String("winner_id", snap.Winner),
			logger.Int("host_points", snap.Score.Host),
			logger.Int("guest_points", snap.Score.Guest),
		)
		p.report(ctx, snap)
	}
	return snap, nil
}

// GetGame returns the current room snapshot.
func (p *Protocol) GetGame(ctx context.Context, gameID string) (room.Room, error) {
	return p.registry.Get(ctx, gameID)
}

// ListWaitingGames returns every room still waiting for a guest, oldest first.
func (p *Protocol) ListWaitingGames(ctx context.Context) []room.Room {
	return p.registry.ListWaiting(ctx)
}

// RoomCounts returns rooms per status and refreshes the room gauges.
func (p *Protocol) RoomCounts(ctx context.Context) map[room.Status]int {
	counts := p.registry.Count(ctx)
	for status, n := range counts {
		metrics.UpdateRooms(string(status), n)
	}
	return counts
}

// GetStats reports room counts for the stats endpoint.
func (p *Protocol) GetStats() map[string]any {
	counts := p.RoomCounts(context.Background())
	return map[string]any{
		"roomsWaiting":   counts[room.Waiting],
		"roomsActive":    counts[room.Active],
		"roomsCompleted": counts[room.Completed],
	}
}

func (p *Protocol) mutate(ctx context.Context, gameID string, fn func(*room.Room) error) (room.Room, error) {
	start := time.Now()
	defer func() {
		metrics.RecordMutationLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()
	return p.registry.Mutate(ctx, gameID, fn)
}

// reject records a precondition failure and returns err unchanged.
func (p *Protocol) reject(ctx context.Context, span trace.Span, op string, err error) error {
	reason := room.Code(err)
	if reason == "" {
		reason = "internal"
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	metrics.RecordRejection(op, reason)
	p.logger.Debug(ctx, "request rejected",
		logger.String("operation", op),
		logger.String("reason", reason),
	)
	return err
}

// report hands a completed match to the sink. Failures are logged only; the
// match itself is already committed.
func (p *Protocol) report(ctx context.Context, snap room.Room) {
	if p.sink == nil || snap.Guest == nil {
		return
	}
	res := model.MatchResult{
		GameID:      snap.ID,
		Player1ID:   snap.Host.ID,
		Player1Name: displayName(snap.Host),
		Player2ID:   snap.Guest.ID,
		Player2Name: displayName(*snap.Guest),
		WinnerID:    snap.Winner,
		TS:          snap.UpdatedAt,
	}
	if _, err := p.sink.Record(context.WithoutCancel(ctx), res); err != nil {
		p.logger.Error(ctx, "match result not recorded",
			logger.String("game_id", snap.ID),
			logger.Error(err),
		)
	}
}

// displayName falls back to the id for players who never set a name.
func displayName(pl room.Player) string {
	if strings.TrimSpace(pl.Name) == "" {
		return pl.ID
	}
	return pl.Name
}
