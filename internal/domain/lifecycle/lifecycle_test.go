package lifecycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/birdie/internal/adapters/repository"
	"github.com/okian/birdie/internal/domain/lifecycle"
	"github.com/okian/birdie/internal/domain/model"
)

type fixture struct {
	rounds  *repository.MemRoundStore
	events  *repository.MemEventStore
	manager *lifecycle.Manager
	roundID uuid.UUID
}

func newFixture(ctx context.Context, players []string, holes int, status model.RoundStatus) *fixture {
	f := &fixture{
		rounds:  repository.NewMemRoundStore(),
		events:  repository.NewMemEventStore(),
		roundID: uuid.New(),
	}
	f.manager = lifecycle.NewManager(f.rounds, f.events)
	round := model.Round{
		ID:        f.roundID,
		PlayerIDs: players,
		HoleCount: holes,
		Status:    status,
		CreatedAt: time.Now(),
	}
	if err := f.rounds.Create(ctx, round); err != nil {
		panic(err)
	}
	return f
}

func (f *fixture) scoreAll(ctx context.Context, players []string, holes int) {
	for _, p := range players {
		for hole := 1; hole <= holes; hole++ {
			f.score(ctx, p, hole)
		}
	}
}

func (f *fixture) score(ctx context.Context, playerID string, hole int) {
	_ = f.events.Append(ctx, model.ScoreEvent{
		ID:          uuid.New(),
		RoundID:     f.roundID,
		HoleNumber:  hole,
		PlayerID:    playerID,
		StrokeCount: 3,
		ReportedBy:  uuid.New(),
		DeviceID:    "device-a",
		CreatedAt:   time.Now(),
	})
}

func (f *fixture) status(ctx context.Context) model.RoundStatus {
	round, err := f.rounds.Get(ctx, f.roundID)
	So(err, ShouldBeNil)
	return round.Status
}

func TestStart(t *testing.T) {
	ctx := context.Background()

	Convey("Given a round in setup", t, func() {
		f := newFixture(ctx, []string{"p1"}, 9, model.StatusSetup)

		Convey("When starting it", func() {
			So(f.manager.Start(ctx, f.roundID), ShouldBeNil)

			Convey("Then it becomes active with a start time", func() {
				round, err := f.rounds.Get(ctx, f.roundID)
				So(err, ShouldBeNil)
				So(round.Status, ShouldEqual, model.StatusActive)
				So(round.StartedAt, ShouldNotBeNil)
			})

			Convey("And starting again is rejected with both statuses named", func() {
				err := f.manager.Start(ctx, f.roundID)
				var transition *lifecycle.InvalidTransitionError
				So(errors.As(err, &transition), ShouldBeTrue)
				So(transition.Current, ShouldEqual, model.StatusActive)
			})
		})

		Convey("When starting an unknown round", func() {
			err := f.manager.Start(ctx, uuid.New())
			So(errors.Is(err, lifecycle.ErrRoundNotFound), ShouldBeTrue)
		})
	})
}

func TestCheckCompletion(t *testing.T) {
	ctx := context.Background()
	players := []string{"p1", "p2"}

	Convey("Given an active two-player two-hole round", t, func() {
		f := newFixture(ctx, players, 2, model.StatusActive)

		Convey("When three of four scores exist", func() {
			f.score(ctx, "p1", 1)
			f.score(ctx, "p1", 2)
			f.score(ctx, "p2", 1)
			result, err := f.manager.CheckCompletion(ctx, f.roundID)

			Convey("Then one missing score is reported and nothing transitions", func() {
				So(err, ShouldBeNil)
				So(result.Missing, ShouldEqual, 1)
				So(result.AwaitingFinalization, ShouldBeFalse)
				So(f.status(ctx), ShouldEqual, model.StatusActive)
			})
		})

		Convey("When the final score lands", func() {
			f.scoreAll(ctx, players, 2)
			result, err := f.manager.CheckCompletion(ctx, f.roundID)

			Convey("Then the round transitions to awaiting finalization", func() {
				So(err, ShouldBeNil)
				So(result.AwaitingFinalization, ShouldBeTrue)
				So(f.status(ctx), ShouldEqual, model.StatusAwaitingFinalization)
			})

			Convey("And a second check is a no-op", func() {
				_, err := f.manager.CheckCompletion(ctx, f.roundID)
				So(err, ShouldBeNil)
				again, err := f.manager.CheckCompletion(ctx, f.roundID)
				So(err, ShouldBeNil)
				So(again.AwaitingFinalization, ShouldBeFalse)
				So(f.status(ctx), ShouldEqual, model.StatusAwaitingFinalization)
			})
		})
	})
}

func TestFinish(t *testing.T) {
	ctx := context.Background()
	players := []string{"p1", "p2"}

	Convey("Given an active round with two unscored pairs", t, func() {
		f := newFixture(ctx, players, 2, model.StatusActive)
		f.score(ctx, "p1", 1)
		f.score(ctx, "p2", 1)

		Convey("When finishing without force", func() {
			result, err := f.manager.Finish(ctx, f.roundID, false)

			Convey("Then the missing count returns and the round stays active", func() {
				So(err, ShouldBeNil)
				So(result.Completed, ShouldBeFalse)
				So(result.Missing, ShouldEqual, 2)
				So(f.status(ctx), ShouldEqual, model.StatusActive)
			})
		})

		Convey("When finishing with force", func() {
			result, err := f.manager.Finish(ctx, f.roundID, true)

			Convey("Then the round completes despite missing scores", func() {
				So(err, ShouldBeNil)
				So(result.Completed, ShouldBeTrue)
				So(f.status(ctx), ShouldEqual, model.StatusCompleted)
			})
		})
	})

	Convey("Given a completed round", t, func() {
		f := newFixture(ctx, players, 1, model.StatusCompleted)

		Convey("When finishing it again", func() {
			_, err := f.manager.Finish(ctx, f.roundID, true)

			Convey("Then the transition is rejected", func() {
				var transition *lifecycle.InvalidTransitionError
				So(errors.As(err, &transition), ShouldBeTrue)
			})
		})
	})
}

func TestFinalize(t *testing.T) {
	ctx := context.Background()

	Convey("Given a round awaiting finalization", t, func() {
		f := newFixture(ctx, []string{"p1"}, 1, model.StatusAwaitingFinalization)
		f.score(ctx, "p1", 1)

		Convey("When finalizing", func() {
			So(f.manager.Finalize(ctx, f.roundID), ShouldBeNil)

			Convey("Then the round completes with a timestamp", func() {
				round, err := f.rounds.Get(ctx, f.roundID)
				So(err, ShouldBeNil)
				So(round.Status, ShouldEqual, model.StatusCompleted)
				So(round.CompletedAt, ShouldNotBeNil)
			})
		})
	})

	Convey("Given an active round", t, func() {
		f := newFixture(ctx, []string{"p1"}, 1, model.StatusActive)

		Convey("Then finalizing is rejected", func() {
			err := f.manager.Finalize(ctx, f.roundID)
			var transition *lifecycle.InvalidTransitionError
			So(errors.As(err, &transition), ShouldBeTrue)
		})
	})
}

func TestUpdateParticipants(t *testing.T) {
	ctx := context.Background()

	Convey("Given a round in setup", t, func() {
		f := newFixture(ctx, []string{"p1"}, 9, model.StatusSetup)

		Convey("When updating participants", func() {
			err := f.manager.UpdateParticipants(ctx, f.roundID, []string{"p1", "p2"}, []string{"Sam"})

			Convey("Then the lists persist", func() {
				So(err, ShouldBeNil)
				round, getErr := f.rounds.Get(ctx, f.roundID)
				So(getErr, ShouldBeNil)
				So(round.PlayerIDs, ShouldResemble, []string{"p1", "p2"})
				So(round.GuestNames, ShouldResemble, []string{"Sam"})
			})
		})
	})

	Convey("Given an active round", t, func() {
		f := newFixture(ctx, []string{"p1"}, 9, model.StatusActive)

		Convey("Then participant edits are frozen", func() {
			err := f.manager.UpdateParticipants(ctx, f.roundID, []string{"p1", "p2"}, nil)
			var frozen *lifecycle.ParticipantsFrozenError
			So(errors.As(err, &frozen), ShouldBeTrue)
			So(frozen.Status, ShouldEqual, model.StatusActive)
		})
	})
}
