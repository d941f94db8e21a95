package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/pitchduel/internal/domain/model"
	"github.com/okian/pitchduel/internal/domain/room"
	"github.com/okian/pitchduel/internal/domain/scoring"
	types "github.com/okian/pitchduel/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFromRoom(t *testing.T) {
	now := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

	Convey("Given a waiting room", t, func() {
		r, err := room.Initialize("g-1", room.Player{ID: "wallet-ana", Name: "Ana"}, room.Standard, now)
		So(err, ShouldBeNil)

		Convey("When rendered", func() {
			raw, err := json.Marshal(types.FromRoom(r.Snapshot()))
			So(err, ShouldBeNil)

			var doc map[string]any
			So(json.Unmarshal(raw, &doc), ShouldBeNil)

			Convey("Then the pitch is null and no winner is reported", func() {
				So(doc["status"], ShouldEqual, "waiting")
				So(doc["guestId"], ShouldEqual, "")
				So(doc["currentTurn"], ShouldEqual, "")
				state := doc["gameState"].(map[string]any)
				So(state["currentPitch"], ShouldBeNil)
				So(doc, ShouldNotContainKey, "winnerId")
			})
		})

		Convey("When a guest joins and the host throws", func() {
			So(r.AttachGuest(room.Player{ID: "wallet-bo", Name: "Bo"}, now), ShouldBeNil)
			_, err := r.ApplyThrow("wallet-ana", scoring.Coordinate{X: 0.9, Y: 0.5}, room.DefaultWinThreshold, now)
			So(err, ShouldBeNil)

			g := types.FromRoom(r.Snapshot())

			Convey("Then the snapshot carries the pitch and both players", func() {
				So(g.GuestName, ShouldEqual, "Bo")
				So(g.CurrentTurn, ShouldEqual, "wallet-bo")
				So(g.GameState.Points, ShouldResemble, types.Points{Host: 2})
				So(g.GameState.CurrentPitch, ShouldResemble, &types.CurrentPitch{
					PlayerID:    "wallet-ana",
					Coordinates: [2]float64{0.9, 0.5},
					Result:      "EdgeStrike",
					Points:      2,
				})
			})
		})
	})
}

func TestWaitingAndStanding(t *testing.T) {
	Convey("Given lobby and leaderboard rows", t, func() {
		now := time.Now().UTC()
		r, err := room.Initialize("g-2", room.Player{ID: "h", Name: "Host"}, room.Timed, now)
		So(err, ShouldBeNil)

		w := types.WaitingFromRoom(r.Snapshot())
		So(w, ShouldResemble, types.WaitingGame{ID: "g-2", HostID: "h", HostName: "Host", GameType: "timed", Created: now})

		e := types.FromStanding(model.Standing{Rank: 1, PlayerID: "h", Username: "Host", Wins: 2, GamesPlayed: 3, LastPlayed: now})
		So(e, ShouldResemble, types.Entry{Rank: 1, ID: "h", Username: "Host", Wins: 2, GamesPlayed: 3, LastPlayed: now})
	})
}
