package repository

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/okian/pitchduel/internal/domain/model"
	"github.com/okian/pitchduel/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: wins DESC, games played ASC, then player id ASC. "less" means
// ranks earlier, so an in-order traversal yields the leaderboard best first
// and subtree sizes give a player's rank in O(log n).

const storeLabelMemory = "memory"

// key is the ordering tuple of one player.
type key struct {
	wins  int
	games int
	id    string
}

func less(a, b key) bool {
	if a.wins != b.wins {
		return a.wins > b.wins
	}
	if a.games != b.games {
		return a.games < b.games
	}
	return a.id < b.id
}

// record is what the store knows about a player besides the ordering key.
type record struct {
	key
	username   string
	lastPlayed time.Time
}

// treap node
type node struct {
	k     key
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, k key, prio uint64) *node {
	if n == nil {
		return &node{k: k, prio: prio, size: 1}
	}
	if less(k, n.k) {
		n.left = insert(n.left, k, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, k, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, k key) *node {
	if n == nil {
		return nil
	}
	switch {
	case k == n.k:
		// Rotate the higher-priority child up until the node is a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, k)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, k)
		}
	case less(k, n.k):
		n.left = deleteNode(n.left, k)
	default:
		n.right = deleteNode(n.right, k)
	}
	fix(n)
	return n
}

// rankOf returns the 1-based position of k, which must be present.
func rankOf(n *node, k key) int {
	rank := 0
	for n != nil {
		switch {
		case k == n.k:
			return rank + nsize(n.left) + 1
		case less(k, n.k):
			n = n.left
		default:
			rank += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// collectTopN appends up to limit keys in rank order.
func collectTopN(n *node, limit int, out *[]key) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.k)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// TreapStore is the default in-memory standings store.
type TreapStore struct {
	mu                    sync.RWMutex
	root                  *node
	byID                  map[string]*record
	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewTreapStore constructs a treap store and starts its metrics updater.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:                  make(map[string]*record),
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background metrics updater.
func (s *TreapStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// RecordResult implements Store.RecordResult in O(log n) expected time.
func (s *TreapStore) RecordResult(_ context.Context, r model.MatchResult) error {
	start := time.Now()
	defer func() {
		metrics.RecordStandingsLatency(storeLabelMemory, "record", float64(time.Since(start).Microseconds())/1000)
	}()

	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResult, err)
	}
	ts := r.TS
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.credit(r.Player1ID, r.Player1Name, r.WinnerID == r.Player1ID, ts)
	s.credit(r.Player2ID, r.Player2Name, r.WinnerID == r.Player2ID, ts)
	return nil
}

// credit must be called with s.mu held.
func (s *TreapStore) credit(id, name string, won bool, ts time.Time) {
	rec, ok := s.byID[id]
	if ok {
		s.root = deleteNode(s.root, rec.key)
	} else {
		rec = &record{key: key{id: id}}
		s.byID[id] = rec
	}
	rec.games++
	if won {
		rec.wins++
	}
	if strings.TrimSpace(name) != "" {
		rec.username = name
	}
	if ts.After(rec.lastPlayed) {
		rec.lastPlayed = ts
	}
	s.root = insert(s.root, rec.key, rand.Uint64())
}

// Top implements Store.Top.
func (s *TreapStore) Top(_ context.Context, n int) ([]model.Standing, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStandingsLatency(storeLabelMemory, "top", float64(time.Since(start).Microseconds())/1000)
	}()

	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]key, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &keys)
	out := make([]model.Standing, len(keys))
	for i, k := range keys {
		out[i] = s.standing(s.byID[k.id], i+1)
	}
	return out, nil
}

// Player implements Store.Player.
func (s *TreapStore) Player(_ context.Context, playerID string) (model.Standing, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStandingsLatency(storeLabelMemory, "player", float64(time.Since(start).Microseconds())/1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[playerID]
	if !ok {
		return model.Standing{}, ErrPlayerNotFound
	}
	return s.standing(rec, rankOf(s.root, rec.key)), nil
}

// Count returns the number of players.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *TreapStore) standing(rec *record, rank int) model.Standing {
	return model.Standing{
		Rank:        rank,
		PlayerID:    rec.id,
		Username:    rec.username,
		Wins:        rec.wins,
		GamesPlayed: rec.games,
		LastPlayed:  rec.lastPlayed,
	}
}

func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateStandingsPlayers(s.Count(ctx))
				metrics.IncrementStandingsSnapshots()
			}
		}
	}()
}
