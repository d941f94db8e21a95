package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/pitchduel/internal/adapters/repository"
	service "github.com/okian/pitchduel/internal/app"
	"github.com/okian/pitchduel/internal/config"
	"github.com/okian/pitchduel/internal/domain/types"
	"github.com/okian/pitchduel/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestOpenStore(t *testing.T) {
	convey.Convey("Given a configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("When the memory driver is selected", func() {
			store, err := openStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer store.Close()

			convey.Convey("Then a treap store is used", func() {
				_, ok := store.(*repository.TreapStore)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the sqlite driver is selected", func() {
			cfg.StandingsDriver = config.DriverSQLite
			cfg.StandingsDSN = filepath.Join(t.TempDir(), "standings.db")
			store, err := openStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer store.Close()

			convey.Convey("Then a SQL store is used", func() {
				_, ok := store.(*repository.SQLStore)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the postgres DSN is unreachable", func() {
			cfg.StandingsDriver = config.DriverPostgres
			cfg.StandingsDSN = "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1"
			_, err := openStore(ctx, cfg)

			convey.Convey("Then opening fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestHandlerEndToEnd(t *testing.T) {
	convey.Convey("Given the full handler stack with a one point win threshold", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.WinThreshold = 1

		svc := service.New(service.WithWorkerCount(2), service.WithQueueSize(16))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop(ctx)

		protocol := service.NewProtocol(
			repository.NewRegistry(),
			service.WithWinThreshold(cfg.WinThreshold),
			service.WithResultSink(svc),
		)
		ts := httptest.NewServer(newHandler(ctx, cfg, svc, protocol))
		defer ts.Close()

		convey.Convey("When a match is played to the end", func() {
			resp := post(t, ts.URL+"/multiplayer/create", `{"hostId":"ana","hostName":"Ana"}`)
			var created struct {
				GameID string `json:"gameId"`
			}
			convey.So(json.NewDecoder(resp.Body).Decode(&created), convey.ShouldBeNil)
			resp.Body.Close()

			resp = post(t, ts.URL+"/multiplayer/join/"+created.GameID, `{"guestId":"bo","guestName":"Bo"}`)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			resp.Body.Close()

			resp = post(t, ts.URL+"/multiplayer/game/"+created.GameID+"/throw", `{"playerId":"ana","pitchCoordinates":[0.5,0.5]}`)
			var g types.Game
			convey.So(json.NewDecoder(resp.Body).Decode(&g), convey.ShouldBeNil)
			resp.Body.Close()

			convey.Convey("Then the winner reaches the leaderboard", func() {
				convey.So(g.Status, convey.ShouldEqual, "completed")
				convey.So(g.WinnerID, convey.ShouldEqual, "ana")

				var entries []types.Entry
				deadline := time.Now().Add(2 * time.Second)
				for time.Now().Before(deadline) {
					r, err := http.Get(ts.URL + "/leaderboard")
					convey.So(err, convey.ShouldBeNil)
					entries = nil
					_ = json.NewDecoder(r.Body).Decode(&entries)
					r.Body.Close()
					if len(entries) == 2 {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				convey.So(entries, convey.ShouldHaveLength, 2)
				convey.So(entries[0].ID, convey.ShouldEqual, "ana")
				convey.So(entries[0].Wins, convey.ShouldEqual, 1)
				convey.So(entries[1].GamesPlayed, convey.ShouldEqual, 1)
			})

			convey.Convey("Then stats include recorder and room counters", func() {
				r, err := http.Get(ts.URL + "/stats")
				convey.So(err, convey.ShouldBeNil)
				defer r.Body.Close()
				var stats map[string]any
				convey.So(json.NewDecoder(r.Body).Decode(&stats), convey.ShouldBeNil)
				convey.So(stats["started"], convey.ShouldEqual, true)
				convey.So(stats["roomsCompleted"], convey.ShouldEqual, float64(1))
			})
		})

		convey.Convey("When docs are requested", func() {
			r, err := http.Get(ts.URL + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			defer r.Body.Close()

			convey.Convey("Then the OpenAPI document is served with CORS headers", func() {
				convey.So(r.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(r.Header.Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "*")
			})
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given a protocol", t, func() {
		protocol := service.NewProtocol(repository.NewRegistry())

		convey.Convey("Then updating system metrics does not panic", func() {
			convey.So(func() { updateSystemMetrics(context.Background(), protocol) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then the updater returns once its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx, protocol)
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("updater did not stop")
			}
		})
	})
}
