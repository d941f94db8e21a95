package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/pitchduel/internal/domain/room"
	"github.com/okian/pitchduel/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

// stepClock advances one second per reading.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	host := room.Player{ID: "wallet-ana", Name: "Ana"}

	Convey("Given an empty registry", t, func() {
		reg := NewRegistry(WithClock(stepClock()))

		Convey("When a room is created", func() {
			id, err := reg.Create(ctx, host, room.Standard)
			So(err, ShouldBeNil)
			So(id, ShouldNotBeEmpty)

			Convey("Then it can be read back as waiting", func() {
				r, err := reg.Get(ctx, id)
				So(err, ShouldBeNil)
				So(r.ID, ShouldEqual, id)
				So(r.Status, ShouldEqual, room.Waiting)
				So(r.Host, ShouldResemble, host)
			})

			Convey("And reading twice yields equal snapshots", func() {
				a, _ := reg.Get(ctx, id)
				b, _ := reg.Get(ctx, id)
				So(a, ShouldResemble, b)
			})

			Convey("And the copy does not alias registry state", func() {
				r, _ := reg.Get(ctx, id)
				r.Status = room.Completed
				again, _ := reg.Get(ctx, id)
				So(again.Status, ShouldEqual, room.Waiting)
			})
		})

		Convey("When the game type is unknown", func() {
			_, err := reg.Create(ctx, host, "blitz")
			So(errors.Is(err, room.ErrInvalidGameType), ShouldBeTrue)
			So(reg.ListWaiting(ctx), ShouldBeEmpty)
		})

		Convey("When an unknown id is used", func() {
			_, err := reg.Get(ctx, "missing")
			So(errors.Is(err, room.ErrNotFound), ShouldBeTrue)
			_, err = reg.Mutate(ctx, "missing", func(*room.Room) error { return nil })
			So(errors.Is(err, room.ErrNotFound), ShouldBeTrue)
		})

		Convey("When a mutation fails", func() {
			id, _ := reg.Create(ctx, host, room.Standard)
			boom := errors.New("boom")
			r, err := reg.Mutate(ctx, id, func(*room.Room) error { return boom })

			Convey("Then the error is returned verbatim with the current state", func() {
				So(err, ShouldEqual, boom)
				So(r.Status, ShouldEqual, room.Waiting)
			})
		})
	})

	Convey("Given several rooms in different states", t, func() {
		n := 0
		reg := NewRegistry(WithClock(stepClock()), WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("room-%d", n)
		}))
		first, _ := reg.Create(ctx, host, room.Standard)
		second, _ := reg.Create(ctx, room.Player{ID: "wallet-cy"}, room.Timed)
		third, _ := reg.Create(ctx, room.Player{ID: "wallet-dee"}, room.Advanced)
		_, err := reg.Mutate(ctx, second, func(r *room.Room) error {
			return r.AttachGuest(room.Player{ID: "wallet-bo"}, reg.Now())
		})
		So(err, ShouldBeNil)

		Convey("Then only waiting rooms are listed, oldest first", func() {
			waiting := reg.ListWaiting(ctx)
			So(len(waiting), ShouldEqual, 2)
			So(waiting[0].ID, ShouldEqual, first)
			So(waiting[1].ID, ShouldEqual, third)
		})

		Convey("Then counts are grouped by status", func() {
			So(reg.Count(ctx), ShouldResemble, map[room.Status]int{
				room.Waiting:   2,
				room.Active:    1,
				room.Completed: 0,
			})
		})
	})

	Convey("Given an id generator that always repeats itself", t, func() {
		reg := NewRegistry(WithIDGenerator(func() string { return "same" }))
		id, err := reg.Create(ctx, host, room.Standard)
		So(err, ShouldBeNil)
		_, err = reg.Mutate(ctx, id, func(r *room.Room) error {
			return r.AttachGuest(room.Player{ID: "wallet-bo", Name: "Bo"}, reg.Now())
		})
		So(err, ShouldBeNil)

		Convey("When another room is created", func() {
			again, err := reg.Create(ctx, room.Player{ID: "wallet-cy"}, room.Standard)

			Convey("Then creation fails instead of replacing the live room", func() {
				So(errors.Is(err, ErrRoomIDConflict), ShouldBeTrue)
				So(again, ShouldBeEmpty)

				r, err := reg.Get(ctx, id)
				So(err, ShouldBeNil)
				So(r.Host.ID, ShouldEqual, host.ID)
				So(r.Status, ShouldEqual, room.Active)
				So(r.Guest.ID, ShouldEqual, "wallet-bo")
			})
		})
	})

	Convey("Given an id generator that collides once", t, func() {
		ids := []string{"dup", "dup", "fresh"}
		reg := NewRegistry(WithIDGenerator(func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}))
		first, err := reg.Create(ctx, host, room.Standard)
		So(err, ShouldBeNil)

		Convey("Then the next room gets a fresh id", func() {
			second, err := reg.Create(ctx, room.Player{ID: "wallet-cy"}, room.Standard)
			So(err, ShouldBeNil)
			So(first, ShouldEqual, "dup")
			So(second, ShouldEqual, "fresh")
			So(reg.Count(ctx)[room.Waiting], ShouldEqual, 2)
		})
	})
}

func TestRegistryConcurrency(t *testing.T) {
	ctx := context.Background()

	Convey("Given an active room and two concurrent throws by the player on turn", t, func() {
		reg := NewRegistry()
		id, _ := reg.Create(ctx, room.Player{ID: "h"}, room.Standard)
		_, err := reg.Mutate(ctx, id, func(r *room.Room) error {
			return r.AttachGuest(room.Player{ID: "g"}, reg.Now())
		})
		So(err, ShouldBeNil)

		var ok, rejected atomic.Int32
		var wg sync.WaitGroup
		start := make(chan struct{})
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, err := reg.Mutate(ctx, id, func(r *room.Room) error {
					_, err := r.ApplyThrow("h", scoring.Coordinate{X: 0.5, Y: 0.5}, room.DefaultWinThreshold, reg.Now())
					return err
				})
				switch {
				case err == nil:
					ok.Add(1)
				case errors.Is(err, room.ErrNotYourTurn):
					rejected.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		Convey("Then exactly one succeeds and the other is NotYourTurn", func() {
			So(ok.Load(), ShouldEqual, 1)
			So(rejected.Load(), ShouldEqual, 1)
			r, _ := reg.Get(ctx, id)
			So(r.Score.Host, ShouldEqual, 1)
			So(r.Turn, ShouldEqual, "g")
		})
	})

	Convey("Given a room whose mutation is blocked", t, func() {
		reg := NewRegistry()
		slow, _ := reg.Create(ctx, room.Player{ID: "slow"}, room.Standard)
		fast, _ := reg.Create(ctx, room.Player{ID: "fast"}, room.Standard)

		held := make(chan struct{})
		release := make(chan struct{})
		go func() {
			_, _ = reg.Mutate(ctx, slow, func(*room.Room) error {
				close(held)
				<-release
				return nil
			})
		}()
		<-held

		Convey("Then other rooms can still be mutated and created", func() {
			done := make(chan error, 1)
			go func() {
				_, err := reg.Mutate(ctx, fast, func(r *room.Room) error {
					return r.AttachGuest(room.Player{ID: "guest"}, reg.Now())
				})
				if err == nil {
					_, err = reg.Create(ctx, room.Player{ID: "late"}, room.Standard)
				}
				done <- err
			}()

			select {
			case err := <-done:
				So(err, ShouldBeNil)
			case <-time.After(2 * time.Second):
				So("mutation on a distinct room blocked", ShouldBeEmpty)
			}
			close(release)
		})
	})

	Convey("Given many goroutines creating rooms", t, func() {
		reg := NewRegistry()
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = reg.Create(ctx, room.Player{ID: fmt.Sprintf("p%d", i)}, room.Standard)
			}()
		}
		wg.Wait()

		Convey("Then every room is registered with a distinct id", func() {
			waiting := reg.ListWaiting(ctx)
			So(len(waiting), ShouldEqual, 50)
			seen := map[string]bool{}
			for _, r := range waiting {
				seen[r.ID] = true
			}
			So(len(seen), ShouldEqual, 50)
		})
	})
}
