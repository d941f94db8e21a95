package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 2, 3}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.gamesJoined.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_games_joined_total")
			})
		})

		Convey("When a second manager registers on the same registry", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then registration panics on duplicates", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestGameMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording lifecycle events", func() {
			before := testutil.ToFloat64(globalManager.pitchesThrown.WithLabelValues("CornerStrike"))
			RecordPitch("CornerStrike")
			RecordPitch("CornerStrike")

			Convey("Then the labelled counter moves", func() {
				after := testutil.ToFloat64(globalManager.pitchesThrown.WithLabelValues("CornerStrike"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When setting room gauges", func() {
			UpdateRooms("waiting", 4)
			UpdateRooms("active", 2)

			Convey("Then each status keeps its own value", func() {
				So(testutil.ToFloat64(globalManager.roomsByStatus.WithLabelValues("waiting")), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.roomsByStatus.WithLabelValues("active")), ShouldEqual, 2)
			})
		})

		Convey("When recording everything else", func() {
			So(func() {
				RecordGameCreated("standard")
				RecordGameJoined()
				RecordGameCompleted("standard")
				RecordRejection("throw", "not_your_turn")
				RecordMutationLatency(0.2)
				RecordResultEnqueued()
				RecordResultDuplicate()
				RecordResultDropped("queue_full")
				RecordResultRecorded()
				RecordRecorderError()
				UpdateQueueSize(3)
				UpdateQueueCapacity(10)
				UpdateWorkerCount(2)
				RecordWorkerLatency(1.5)
				UpdateStandingsPlayers(7)
				RecordStandingsLatency("memory", "record", 0.1)
				IncrementStandingsSnapshots()
				RecordHTTPRequest("game", "GET", "200")
				RecordHTTPRequestDuration("game", "GET", "200", 3)
				RecordErrorByEndpoint("game", "GET", "not_found")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
