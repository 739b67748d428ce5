package standings_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/birdie/internal/adapters/repository"
	"github.com/okian/birdie/internal/domain/model"
	"github.com/okian/birdie/internal/domain/standings"
)

func score(roundID uuid.UUID, playerID string, hole, strokes int, created time.Time) model.ScoreEvent {
	return model.ScoreEvent{
		ID:          uuid.New(),
		RoundID:     roundID,
		HoleNumber:  hole,
		PlayerID:    playerID,
		StrokeCount: strokes,
		ReportedBy:  uuid.New(),
		DeviceID:    "device-a",
		CreatedAt:   created,
	}
}

func TestCompute(t *testing.T) {
	base := time.Date(2026, 7, 4, 14, 0, 0, 0, time.UTC)
	roundID := uuid.New()
	round := model.Round{
		ID:        roundID,
		PlayerIDs: []string{"alice", "bob", "cara"},
		HoleCount: 3,
		Status:    model.StatusActive,
	}
	pars := map[int]int{1: 3, 2: 4, 3: 3}

	Convey("Given a round with mixed scores", t, func() {
		events := []model.ScoreEvent{
			score(roundID, "alice", 1, 3, base), // even
			score(roundID, "alice", 2, 4, base), // even
			score(roundID, "bob", 1, 2, base),   // -1
			score(roundID, "bob", 2, 4, base),   // even
			score(roundID, "cara", 1, 5, base),  // +2
		}

		Convey("When computing standings", func() {
			out := standings.Compute(round, events, pars, nil)

			Convey("Then players sort ascending by score to par", func() {
				So(out, ShouldHaveLength, 3)
				So(out[0].PlayerID, ShouldEqual, "bob")
				So(out[0].ScoreRelativeToPar, ShouldEqual, -1)
				So(out[1].PlayerID, ShouldEqual, "alice")
				So(out[2].PlayerID, ShouldEqual, "cara")
			})

			Convey("And only holes with resolved scores count", func() {
				So(out[2].HolesPlayed, ShouldEqual, 1)
				So(out[2].TotalStrokes, ShouldEqual, 5)
			})
		})

		Convey("When a correction changes a leaf", func() {
			corrected := events[4]
			replacement := score(roundID, "cara", 1, 3, base.Add(time.Minute))
			replacement.SupersedesEventID = &corrected.ID
			out := standings.Compute(round, append(events, replacement), pars, nil)

			Convey("Then the corrected score feeds the total", func() {
				var cara model.Standing
				for _, s := range out {
					if s.PlayerID == "cara" {
						cara = s
					}
				}
				So(cara.ScoreRelativeToPar, ShouldEqual, 0)
			})
		})
	})

	Convey("Given tied players", t, func() {
		tiedRound := model.Round{
			ID:        roundID,
			PlayerIDs: []string{"zoe", "amy", "ben"},
			HoleCount: 1,
		}
		events := []model.ScoreEvent{
			score(roundID, "zoe", 1, 3, base),
			score(roundID, "amy", 1, 3, base),
			score(roundID, "ben", 1, 4, base),
		}

		Convey("When computing standings", func() {
			out := standings.Compute(tiedRound, events, pars, nil)

			Convey("Then ties share a position and sort alphabetically", func() {
				So(out[0].PlayerName, ShouldEqual, "amy")
				So(out[0].Position, ShouldEqual, 1)
				So(out[1].PlayerName, ShouldEqual, "zoe")
				So(out[1].Position, ShouldEqual, 1)
				So(out[2].PlayerName, ShouldEqual, "ben")
				So(out[2].Position, ShouldEqual, 3)
			})
		})
	})

	Convey("Given guests in the round", t, func() {
		guestRound := model.Round{
			ID:         roundID,
			GuestNames: []string{"Sam"},
			HoleCount:  1,
		}
		events := []model.ScoreEvent{
			score(roundID, model.GuestPlayerID("Sam"), 1, 3, base),
		}

		Convey("Then guest names render without the pseudo-id prefix", func() {
			out := standings.Compute(guestRound, events, pars, nil)
			So(out, ShouldHaveLength, 1)
			So(out[0].PlayerName, ShouldEqual, "Sam")
		})
	})

	Convey("Given holes missing from the par map", t, func() {
		bare := model.Round{
			ID:        roundID,
			PlayerIDs: []string{"alice"},
			HoleCount: 2,
		}
		events := []model.ScoreEvent{
			score(roundID, "alice", 1, 4, base),
			score(roundID, "alice", 2, 4, base),
		}

		Convey("When computing with a configured default par", func() {
			out := standings.ComputeWithDefault(bare, events, nil, 4, nil)

			Convey("Then the configured par backfills every missing hole", func() {
				So(out, ShouldHaveLength, 1)
				So(out[0].ScoreRelativeToPar, ShouldEqual, 0)
			})
		})

		Convey("When the configured default is not positive", func() {
			out := standings.ComputeWithDefault(bare, events, nil, 0, nil)

			Convey("Then the package default of 3 applies", func() {
				So(out[0].ScoreRelativeToPar, ShouldEqual, 2)
			})
		})

		Convey("When computing without a configured default", func() {
			out := standings.Compute(bare, events, nil, nil)

			Convey("Then the package default of 3 applies", func() {
				So(out[0].ScoreRelativeToPar, ShouldEqual, 2)
			})
		})
	})

	Convey("Given an empty round", t, func() {
		out := standings.Compute(model.Round{HoleCount: 9}, nil, nil, nil)

		Convey("Then the result is empty, not an error", func() {
			So(out, ShouldBeEmpty)
		})
	})
}

func TestPositionChanges(t *testing.T) {
	Convey("Given two standings lists", t, func() {
		previous := []model.Standing{
			{PlayerID: "a", Position: 1},
			{PlayerID: "b", Position: 2},
		}
		next := []model.Standing{
			{PlayerID: "b", Position: 1},
			{PlayerID: "a", Position: 2},
			{PlayerID: "c", Position: 3},
		}

		Convey("Then only moved players appear in the diff", func() {
			changes := standings.PositionChanges(previous, next)
			So(changes, ShouldHaveLength, 2)
			So(changes["b"], ShouldResemble, standings.PositionChange{From: 2, To: 1})
			So(changes["a"], ShouldResemble, standings.PositionChange{From: 1, To: 2})
			_, ok := changes["c"]
			So(ok, ShouldBeFalse)
		})
	})
}

func TestTracker(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 7, 4, 14, 0, 0, 0, time.UTC)

	Convey("Given a tracker over seeded stores", t, func() {
		rounds := repository.NewMemRoundStore()
		events := repository.NewMemEventStore()
		courses := repository.NewMemCourseStore()
		players := repository.NewMemPlayerStore()

		roundID := uuid.New()
		round := model.Round{
			ID:        roundID,
			CourseID:  uuid.New(),
			PlayerIDs: []string{"p1", "p2"},
			HoleCount: 2,
			Status:    model.StatusActive,
		}
		So(rounds.Create(ctx, round), ShouldBeNil)
		So(events.Append(ctx, score(roundID, "p1", 1, 2, base)), ShouldBeNil)
		So(events.Append(ctx, score(roundID, "p2", 1, 4, base)), ShouldBeNil)

		tracker := standings.NewTracker(rounds, events, courses, players)

		Convey("When recomputing", func() {
			var gotTrigger standings.Trigger
			tracker.AddListener(func(id uuid.UUID, change standings.Change) {
				gotTrigger = change.Trigger
			})
			change := tracker.Recompute(ctx, roundID, standings.TriggerLocalScore)

			Convey("Then the change reports new standings and notifies listeners", func() {
				So(change.New, ShouldHaveLength, 2)
				So(change.New[0].PlayerID, ShouldEqual, "p1")
				So(gotTrigger, ShouldEqual, standings.TriggerLocalScore)
			})

			Convey("And Current returns the cached copy", func() {
				So(tracker.Current(roundID), ShouldHaveLength, 2)
			})
		})

		Convey("When the tracker carries a configured default par", func() {
			parTracker := standings.NewTracker(rounds, events, courses, players,
				standings.WithDefaultPar(5))
			change := parTracker.Recompute(ctx, roundID, standings.TriggerLocalScore)

			Convey("Then holes without course pars score against it", func() {
				So(change.New, ShouldHaveLength, 2)
				So(change.New[0].PlayerID, ShouldEqual, "p1")
				So(change.New[0].ScoreRelativeToPar, ShouldEqual, -3)
				So(change.New[1].ScoreRelativeToPar, ShouldEqual, -1)
			})
		})

		Convey("When recomputing an unknown round", func() {
			change := tracker.Recompute(ctx, uuid.New(), standings.TriggerRemoteSync)

			Convey("Then the previous standings survive and no error escapes", func() {
				So(change.New, ShouldBeEmpty)
				So(change.PositionChanges, ShouldBeEmpty)
			})
		})
	})
}
