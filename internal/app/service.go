// Package service holds the turn protocol and the match result recorder
// that together implement the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	eventqueue "github.com/okian/pitchduel/internal/adapters/mq/queue"
	workerpool "github.com/okian/pitchduel/internal/adapters/mq/worker"
	repository "github.com/okian/pitchduel/internal/adapters/repository"
	"github.com/okian/pitchduel/internal/domain/dedupe"
	"github.com/okian/pitchduel/internal/domain/model"
	"github.com/okian/pitchduel/pkg/logger"
	"github.com/okian/pitchduel/pkg/metrics"
)

// Service records finished matches off the request path and answers
// leaderboard queries.
type Service struct {
	mu sync.RWMutex

	standings  repository.Store
	deduper    dedupe.Deduper
	queue      eventqueue.Queue
	workerPool *workerpool.Pool

	workerCount int
	queueSize   int
	dedupeSize  int

	started     bool
	// ownsStore is set when Start created the default store.
	ownsStore   bool
	// storeClosed is set once Stop closed a store passed with WithStore.
	storeClosed bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of recorder workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending results.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many game ids are remembered for deduplication.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the standings store. The in-memory treap store is used
// when none is given. Stop closes the store, so a Service given a store
// cannot be started again after Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.standings = store
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   10_000,
		dedupeSize:  100_000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the recorder.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	if s.storeClosed {
		return ErrStoreClosed
	}
	if s.standings == nil {
		s.standings = repository.NewTreapStore(ctx)
		s.ownsStore = true
		s.logger.Info(ctx, "using in-memory standings store")
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s.standings)
	// Workers outlive request cancellation so Stop can drain the queue.
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "result recorder started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains pending results and closes the standings store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping result recorder...")

	var err error
	if s.workerPool != nil {
		err = s.workerPool.Shutdown(ctx)
	}
	if s.standings != nil {
		if cerr := s.standings.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if s.ownsStore {
			// A later Start builds a fresh default store.
			s.standings = nil
			s.ownsStore = false
		} else {
			s.storeClosed = true
		}
	}

	s.started = false
	s.logger.Info(ctx, "result recorder stopped")
	return err
}

// Record validates r and queues it for the standings store. Results carrying
// a game id are accepted once; later submissions report duplicate without
// being queued. Record never blocks on the store.
func (s *Service) Record(ctx context.Context, r model.MatchResult) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return false, ErrNotStarted
	}

	if r.GameID != "" && s.deduper.SeenAndRecord(ctx, r.GameID) {
		metrics.RecordResultDuplicate()
		s.logger.Debug(ctx, "duplicate result skipped", logger.String("game_id", r.GameID))
		return true, nil
	}

	if err := s.queue.Enqueue(ctx, r); err != nil {
		if r.GameID != "" {
			s.deduper.Unrecord(ctx, r.GameID)
		}
		metrics.RecordResultDropped(dropReason(err))
		s.logger.Error(ctx, "result dropped",
			logger.String("game_id", r.GameID),
			logger.Error(err),
		)
		return false, fmt.Errorf("%w: %w", ErrBackpressure, err)
	}

	metrics.RecordResultEnqueued()
	return false, nil
}

// Top returns the first n standings.
func (s *Service) Top(ctx context.Context, n int) ([]model.Standing, error) {
	store, err := s.store()
	if err != nil {
		return nil, err
	}
	return store.Top(ctx, n)
}

// Player returns one player's standing.
func (s *Service) Player(ctx context.Context, playerID string) (model.Standing, error) {
	store, err := s.store()
	if err != nil {
		return model.Standing{}, err
	}
	return store.Player(ctx, playerID)
}

// GetStats returns recorder statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if s.started {
		queueLen := s.queue.Len(ctx)
		players := s.standings.Count(ctx)
		stats["queueLength"] = queueLen
		stats["players"] = players
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStandingsPlayers(players)
	}
	return stats
}

func (s *Service) store() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.standings, nil
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, eventqueue.ErrQueueFull):
		return "queue_full"
	case errors.Is(err, eventqueue.ErrQueueClosed):
		return "queue_closed"
	default:
		return "context"
	}
}
