// Package queue buffers finished match results between the game loop and the
// recorder workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/pitchduel/internal/domain/model"
	"github.com/okian/pitchduel/pkg/metrics"
)

const defaultQueueCapacity = 10_000

// Result is the payload flowing through the queue.
type Result = model.MatchResult

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a result without blocking. It returns ErrQueueFull when
	// the buffer is at capacity and ErrQueueClosed after Close.
	Enqueue(ctx context.Context, r Result) error

	// Dequeue returns the channel workers read from. It is closed by Close
	// once buffered results have been consumed.
	Dequeue(ctx context.Context) <-chan Result

	// Len returns the current number of queued results.
	Len(ctx context.Context) int

	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	results  chan Result
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.results = make(chan Result, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a result to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Result) error { //nolint:gocritic // hugeParam: value semantics through the channel
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case q.results <- r:
		metrics.UpdateQueueSize(len(q.results))
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue returns the receive side of the buffer.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Result {
	return q.results
}

// Len returns the current number of queued results.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.results)
	metrics.UpdateQueueSize(size)
	return size
}

// Close stops accepting results. Buffered results stay readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.results)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
