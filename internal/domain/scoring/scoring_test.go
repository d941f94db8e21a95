package scoring_test

import (
	"math"
	"testing"

	"github.com/okian/pitchduel/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScore(t *testing.T) {
	Convey("Given the strike zone grid", t, func() {
		Convey("When a pitch lands in any corner cell", func() {
			for _, c := range []scoring.Coordinate{
				{X: 0.1, Y: 0.1}, {X: 0.9, Y: 0.1}, {X: 0.1, Y: 0.9}, {X: 0.9, Y: 0.9},
				{X: 0, Y: 0}, {X: 1, Y: 1},
			} {
				out := scoring.Score(c)
				So(out.Label, ShouldEqual, scoring.CornerStrike)
				So(out.Points, ShouldEqual, 3)
				So(out.Coordinate, ShouldResemble, c)
			}
		})

		Convey("When a pitch lands in the center cell", func() {
			out := scoring.Score(scoring.Coordinate{X: 0.5, Y: 0.5})
			So(out.Label, ShouldEqual, scoring.CenterStrike)
			So(out.Points, ShouldEqual, 1)
		})

		Convey("When a pitch lands in an edge-midpoint cell", func() {
			for _, c := range []scoring.Coordinate{
				{X: 0.5, Y: 0.1}, {X: 0.1, Y: 0.5}, {X: 0.9, Y: 0.5}, {X: 0.5, Y: 0.9},
			} {
				out := scoring.Score(c)
				So(out.Label, ShouldEqual, scoring.EdgeStrike)
				So(out.Points, ShouldEqual, 2)
			}
		})

		Convey("When a pitch sits exactly on a grid line", func() {
			So(scoring.Score(scoring.Coordinate{X: 1.0 / 3.0, Y: 0.5}).Label, ShouldEqual, scoring.CenterStrike)
			So(scoring.Score(scoring.Coordinate{X: 2.0 / 3.0, Y: 0.5}).Label, ShouldEqual, scoring.EdgeStrike)
			So(scoring.Score(scoring.Coordinate{X: 0.5, Y: 2.0 / 3.0}).Label, ShouldEqual, scoring.EdgeStrike)
		})

		Convey("When a raw component falls outside the zone", func() {
			for _, c := range []scoring.Coordinate{
				{X: -0.01, Y: 0.5}, {X: 0.5, Y: 1.2}, {X: 1.5, Y: -3}, {X: math.NaN(), Y: 0.5},
			} {
				out := scoring.Score(c)
				So(out.Label, ShouldEqual, scoring.Ball)
				So(out.Points, ShouldEqual, 0)
				So(out.Coordinate.InBounds(), ShouldBeTrue)
			}
		})

		Convey("When an out-of-zone pitch is clamped", func() {
			out := scoring.Score(scoring.Coordinate{X: 1.5, Y: -3})
			So(out.Coordinate, ShouldResemble, scoring.Coordinate{X: 1, Y: 0})
		})

		Convey("When the same coordinate is scored twice", func() {
			c := scoring.Coordinate{X: 0.42, Y: 0.77}
			So(scoring.Score(c), ShouldResemble, scoring.Score(c))
		})
	})
}
