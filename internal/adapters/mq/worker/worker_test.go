package worker_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/pitchduel/internal/adapters/mq/queue"
	worker "github.com/okian/pitchduel/internal/adapters/mq/worker"
	model "github.com/okian/pitchduel/internal/domain/model"
	logging "github.com/okian/pitchduel/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	ch chan queue.Result
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan queue.Result, 16)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Result { return mq.ch }

func (mq *mockQueue) Close() error {
	close(mq.ch)
	return nil
}

type mockRecorder struct {
	mu       sync.Mutex
	recorded []string
	fail     map[string]error
	got      chan string
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{fail: map[string]error{}, got: make(chan string, 256)}
}

func (m *mockRecorder) RecordResult(_ context.Context, r model.MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer func() { m.got <- r.GameID }()
	if err, ok := m.fail[r.GameID]; ok {
		return err
	}
	m.recorded = append(m.recorded, r.GameID)
	return nil
}

func (m *mockRecorder) ids() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.recorded...)
}

func wait(ch <-chan string, n int) {
	for range n {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			return
		}
	}
}

func result(id string) model.MatchResult {
	return model.MatchResult{GameID: id, Player1ID: "a", Player1Name: "A", Player2ID: "b", Player2Name: "B", WinnerID: "a"}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker over a queue", t, func() {
		_ = logging.Init(logging.WithWriter(io.Discard))

		q := newMockQueue()
		rec := newMockRecorder()
		w := worker.NewInMemoryWorker(q, rec, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When results arrive", func() {
			q.ch <- result("g1")
			q.ch <- result("g2")
			wait(rec.got, 2)

			convey.Convey("Then each is recorded in order", func() {
				convey.So(rec.ids(), convey.ShouldResemble, []string{"g1", "g2"})
			})
		})

		convey.Convey("When recording fails", func() {
			rec.mu.Lock()
			rec.fail["bad"] = errors.New("disk full")
			rec.mu.Unlock()
			q.ch <- result("bad")
			q.ch <- result("good")
			wait(rec.got, 2)

			convey.Convey("Then the worker keeps going", func() {
				convey.So(rec.ids(), convey.ShouldResemble, []string{"good"})
			})
		})

		convey.Convey("When shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()

			convey.Convey("Then Run returns and a second shutdown is harmless", func() {
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the queue is closed", func() {
			_ = q.Close()

			convey.Convey("Then Run returns", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					convey.So("worker still running", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		_ = logging.Init(logging.WithWriter(io.Discard))

		q := queue.NewInMemoryQueue(queue.WithCapacity(256))
		rec := newMockRecorder()
		pool := worker.NewPool(4, q, rec)
		convey.So(pool.Size(), convey.ShouldEqual, 4)

		ctx := context.Background()
		for i := range 100 {
			convey.So(q.Enqueue(ctx, result(fmt.Sprintf("g%d", i))), convey.ShouldBeNil)
		}
		pool.Start(ctx)

		convey.Convey("When the pool shuts down", func() {
			err := pool.Shutdown(ctx)

			convey.Convey("Then every buffered result was recorded first", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(rec.ids()), convey.ShouldEqual, 100)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		_ = logging.Init(logging.WithWriter(io.Discard))
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), newMockRecorder())
		convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
	})
}
