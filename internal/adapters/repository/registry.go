package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pitchduel/internal/domain/room"
)

// slot owns one room and the lock that serializes its mutations.
type slot struct {
	mu   sync.Mutex
	room *room.Room
}

// Registry is the in-memory collection of live rooms.
//
// The registry lock only guards the id to slot map. Each room is mutated
// under its own slot lock, so operations on different rooms never wait for
// each other.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*slot
	now   func() time.Time
	newID func() string
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		rooms: make(map[string]*slot),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now returns the registry clock reading.
func (r *Registry) Now() time.Time {
	return r.now()
}

// createAttempts bounds how often Create draws a fresh id after a collision.
const createAttempts = 3

// Create stores a new waiting room for host and returns its id. An id that
// is already registered is never reused; Create draws another one and gives
// up with ErrRoomIDConflict after createAttempts tries.
func (r *Registry) Create(_ context.Context, host room.Player, gameType room.GameType) (string, error) {
	rm, err := room.Initialize(r.newID(), host, gameType, r.now())
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for range createAttempts {
		if _, taken := r.rooms[rm.ID]; !taken {
			r.rooms[rm.ID] = &slot{room: rm}
			return rm.ID, nil
		}
		rm.ID = r.newID()
	}
	return "", fmt.Errorf("%w: %s", ErrRoomIDConflict, rm.ID)
}

// Get returns a copy of the room.
func (r *Registry) Get(_ context.Context, id string) (room.Room, error) {
	s, ok := r.lookup(id)
	if !ok {
		return room.Room{}, room.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Snapshot(), nil
}

// Mutate runs fn with exclusive access to the room and returns the resulting
// copy. fn must not retain the pointer. Room primitives leave the room
// untouched on error, so the copy returned alongside an error is the state
// fn saw.
func (r *Registry) Mutate(_ context.Context, id string, fn func(*room.Room) error) (room.Room, error) {
	s, ok := r.lookup(id)
	if !ok {
		return room.Room{}, room.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.room); err != nil {
		return s.room.Snapshot(), err
	}
	return s.room.Snapshot(), nil
}

// ListWaiting returns copies of every waiting room, oldest first.
func (r *Registry) ListWaiting(_ context.Context) []room.Room {
	out := make([]room.Room, 0)
	for _, s := range r.slots() {
		s.mu.Lock()
		if s.room.Status == room.Waiting {
			out = append(out, s.room.Snapshot())
		}
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count returns the number of rooms per status.
func (r *Registry) Count(_ context.Context) map[room.Status]int {
	counts := map[room.Status]int{room.Waiting: 0, room.Active: 0, room.Completed: 0}
	for _, s := range r.slots() {
		s.mu.Lock()
		counts[s.room.Status]++
		s.mu.Unlock()
	}
	return counts
}

func (r *Registry) lookup(id string) (*slot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.rooms[id]
	return s, ok
}

// slots copies the slot list so room locks are never taken under r.mu.
func (r *Registry) slots() []*slot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*slot, 0, len(r.rooms))
	for _, s := range r.rooms {
		out = append(out, s)
	}
	return out
}
