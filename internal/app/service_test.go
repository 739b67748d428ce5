package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/birdie/internal/app"
	"github.com/okian/birdie/internal/domain/model"
	"github.com/okian/birdie/internal/domain/scoring"
)

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := service.New(service.WithDeviceID("test-device"))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		Convey("Then starting again is a no-op", func() {
			So(svc.Start(ctx), ShouldBeNil)
		})

		Convey("Then the stats expose identity and counters", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["device_id"], ShouldEqual, "test-device")
			So(stats["events"], ShouldEqual, 0)
			So(stats["sync_state"], ShouldEqual, "idle")
			So(stats["polling"], ShouldEqual, false)
		})

		Convey("Then stopping twice is safe", func() {
			svc.Stop()
			svc.Stop()
		})
	})
}

func TestServiceRoundFlow(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a course and two players", t, func() {
		svc := service.New(service.WithDeviceID("test-device"))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		courseID := uuid.New()
		So(svc.RegisterCourse(ctx, model.Course{
			ID:        courseID,
			Name:      "Maple Hill",
			HoleCount: 2,
			Pars:      map[int]int{1: 3, 2: 4},
			CreatedAt: time.Now(),
		}), ShouldBeNil)

		amy := uuid.New()
		So(svc.RegisterPlayer(ctx, model.Player{ID: amy, DisplayName: "Amy", CreatedAt: time.Now()}), ShouldBeNil)

		round, err := svc.CreateRound(ctx, model.Round{
			CourseID:  courseID,
			PlayerIDs: []string{amy.String()},
			HoleCount: 2,
		})
		So(err, ShouldBeNil)
		So(round.Status, ShouldEqual, model.StatusSetup)

		Convey("When the round starts", func() {
			So(svc.StartRound(ctx, round.ID), ShouldBeNil)

			Convey("Then polling is on and the round is active", func() {
				got, err := svc.GetRound(ctx, round.ID)
				So(err, ShouldBeNil)
				So(got.Status, ShouldEqual, model.StatusActive)
				So(svc.GetStats()["polling"], ShouldEqual, true)
			})

			Convey("And participants are frozen", func() {
				err := svc.UpdateParticipants(ctx, round.ID, []string{amy.String(), "p2"}, nil)
				So(err, ShouldNotBeNil)
			})

			Convey("When scores land", func() {
				reporter := uuid.New()
				_, err := svc.CreateEvent(ctx, scoring.CreateRequest{
					RoundID: round.ID, HoleNumber: 1, PlayerID: amy.String(),
					StrokeCount: 4, ReportedBy: reporter,
				})
				So(err, ShouldBeNil)

				Convey("Then standings resolve by name and par", func() {
					list := svc.Standings(ctx, round.ID)
					So(list, ShouldHaveLength, 1)
					So(list[0].PlayerName, ShouldEqual, "Amy")
					So(list[0].TotalStrokes, ShouldEqual, 4)
					So(list[0].ScoreRelativeToPar, ShouldEqual, 1)
				})

				Convey("And a companion snapshot appears for the round", func() {
					So(waitFor(func() bool {
						_, ok := svc.Snapshot(round.ID)
						return ok
					}), ShouldBeTrue)
					snap, _ := svc.Snapshot(round.ID)
					So(snap.CurrentHole, ShouldEqual, 1)
					So(snap.CurrentHolePar, ShouldEqual, 3)
				})

				Convey("And finishing without force reports the gap", func() {
					result, err := svc.FinishRound(ctx, round.ID, false)
					So(err, ShouldBeNil)
					So(result.Completed, ShouldBeFalse)
					So(result.Missing, ShouldEqual, 1)
				})

				Convey("When the final score completes the card", func() {
					_, err := svc.CreateEvent(ctx, scoring.CreateRequest{
						RoundID: round.ID, HoleNumber: 2, PlayerID: amy.String(),
						StrokeCount: 5, ReportedBy: reporter,
					})
					So(err, ShouldBeNil)

					got, _ := svc.GetRound(ctx, round.ID)
					So(got.Status, ShouldEqual, model.StatusAwaitingFinalization)

					Convey("Then finalizing completes the round and stops polling", func() {
						So(svc.FinalizeRound(ctx, round.ID), ShouldBeNil)
						got, _ := svc.GetRound(ctx, round.ID)
						So(got.Status, ShouldEqual, model.StatusCompleted)
						So(got.CompletedAt, ShouldNotBeNil)
						So(svc.GetStats()["polling"], ShouldEqual, false)
					})
				})

				Convey("And a manual sync drains the outbox", func() {
					So(svc.SyncNow(ctx), ShouldBeNil)
					stats := svc.GetStats()
					So(stats["status_synced"], ShouldEqual, 1)
					So(stats["sync_state"], ShouldEqual, "idle")
				})
			})
		})

		Convey("When forcing an early finish", func() {
			So(svc.StartRound(ctx, round.ID), ShouldBeNil)
			result, err := svc.FinishRound(ctx, round.ID, true)

			Convey("Then the round completes despite missing scores", func() {
				So(err, ShouldBeNil)
				So(result.Completed, ShouldBeTrue)
				got, _ := svc.GetRound(ctx, round.ID)
				So(got.Status, ShouldEqual, model.StatusCompleted)
			})
		})
	})
}

func TestServiceDefaultPar(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service configured with a default par of 5", t, func() {
		svc := service.New(
			service.WithDeviceID("test-device"),
			service.WithDefaultPar(5),
		)
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		courseID := uuid.New()
		So(svc.RegisterCourse(ctx, model.Course{
			ID:        courseID,
			Name:      "Unmapped Meadow",
			HoleCount: 1,
			CreatedAt: time.Now(),
		}), ShouldBeNil)

		amy := uuid.New()
		So(svc.RegisterPlayer(ctx, model.Player{ID: amy, DisplayName: "Amy", CreatedAt: time.Now()}), ShouldBeNil)

		round, err := svc.CreateRound(ctx, model.Round{
			CourseID:  courseID,
			PlayerIDs: []string{amy.String()},
			HoleCount: 1,
		})
		So(err, ShouldBeNil)
		So(svc.StartRound(ctx, round.ID), ShouldBeNil)

		Convey("When a score lands on a hole without course par data", func() {
			_, err := svc.CreateEvent(ctx, scoring.CreateRequest{
				RoundID: round.ID, HoleNumber: 1, PlayerID: amy.String(),
				StrokeCount: 5, ReportedBy: uuid.New(),
			})
			So(err, ShouldBeNil)

			Convey("Then standings score against the configured par", func() {
				list := svc.Standings(ctx, round.ID)
				So(list, ShouldHaveLength, 1)
				So(list[0].TotalStrokes, ShouldEqual, 5)
				So(list[0].ScoreRelativeToPar, ShouldEqual, 0)
			})

			Convey("And the companion snapshot carries the configured par", func() {
				So(waitFor(func() bool {
					_, ok := svc.Snapshot(round.ID)
					return ok
				}), ShouldBeTrue)
				snap, _ := svc.Snapshot(round.ID)
				So(snap.CurrentHolePar, ShouldEqual, 5)
			})
		})
	})
}

func TestServiceDiscrepancies(t *testing.T) {
	ctx := context.Background()

	Convey("Given an active round", t, func() {
		svc := service.New()
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		round, err := svc.CreateRound(ctx, model.Round{
			CourseID:  uuid.New(),
			PlayerIDs: []string{"p1"},
			HoleCount: 9,
		})
		So(err, ShouldBeNil)
		So(svc.StartRound(ctx, round.ID), ShouldBeNil)

		Convey("Then a round with no conflicts lists none", func() {
			list, err := svc.Discrepancies(ctx, round.ID, false)
			So(err, ShouldBeNil)
			So(list, ShouldBeEmpty)
		})

		Convey("Then resolving an unknown discrepancy fails", func() {
			_, err := svc.ResolveDiscrepancy(ctx, uuid.New(), 4, uuid.New())
			So(err, ShouldNotBeNil)
		})
	})
}
