package model_test

import (
	"errors"
	"testing"
	"time"

	model "github.com/okian/pitchduel/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func validResult() model.MatchResult {
	return model.MatchResult{
		GameID:      "g-1",
		Player1ID:   "wallet-ana",
		Player1Name: "Ana",
		Player2ID:   "wallet-bo",
		Player2Name: "Bo",
		WinnerID:    "wallet-ana",
		TS:          time.Now(),
	}
}

func TestMatchResultValidate(t *testing.T) {
	convey.Convey("Given a match result", t, func() {
		convey.Convey("When every field is present", func() {
			convey.So(validResult().Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When the game id is missing", func() {
			r := validResult()
			r.GameID = ""
			convey.Convey("Then it is still valid", func() {
				convey.So(r.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When required fields are blank", func() {
			r := validResult()
			r.Player2Name = "  "
			r.WinnerID = ""

			convey.Convey("Then the first missing field is named", func() {
				err := r.Validate()
				convey.So(errors.Is(err, model.ErrMissingField), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldEndWith, "player2Name")
			})
		})

		convey.Convey("When both sides are the same player", func() {
			r := validResult()
			r.Player2ID = r.Player1ID

			convey.Convey("Then it is rejected even though the winner played", func() {
				convey.So(errors.Is(r.Validate(), model.ErrSamePlayer), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the winner did not play", func() {
			r := validResult()
			r.WinnerID = "wallet-eve"
			convey.So(errors.Is(r.Validate(), model.ErrInvalidWinner), convey.ShouldBeTrue)
		})
	})
}

func TestStandingOrder(t *testing.T) {
	convey.Convey("Given standings", t, func() {
		a := model.Standing{PlayerID: "a", Wins: 3, GamesPlayed: 5}
		b := model.Standing{PlayerID: "b", Wins: 3, GamesPlayed: 4}
		c := model.Standing{PlayerID: "c", Wins: 4, GamesPlayed: 9}
		d := model.Standing{PlayerID: "d", Wins: 3, GamesPlayed: 4}

		convey.Convey("Then more wins rank first", func() {
			convey.So(model.Less(c, a), convey.ShouldBeTrue)
			convey.So(model.Less(a, c), convey.ShouldBeFalse)
		})

		convey.Convey("Then fewer games break win ties", func() {
			convey.So(model.Less(b, a), convey.ShouldBeTrue)
		})

		convey.Convey("Then player id breaks full ties", func() {
			convey.So(model.Less(b, d), convey.ShouldBeTrue)
			convey.So(model.Less(d, b), convey.ShouldBeFalse)
		})
	})
}
