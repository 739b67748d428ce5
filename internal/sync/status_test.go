package sync_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/birdie/internal/adapters/remote"
	enginesync "github.com/okian/birdie/internal/sync"
)

func TestStatusTable(t *testing.T) {
	Convey("Given an empty status table", t, func() {
		table := enginesync.NewStatusTable()

		Convey("When tracking a new record", func() {
			id := uuid.NewString()
			table.TrackPending(id, remote.TypeScoreEvent)

			Convey("Then it is pending and selectable", func() {
				entry, ok := table.Get(id)
				So(ok, ShouldBeTrue)
				So(entry.Status, ShouldEqual, enginesync.StatusPending)
				So(entry.RecordType, ShouldEqual, remote.TypeScoreEvent)
				So(table.Select(enginesync.StatusPending), ShouldHaveLength, 1)
			})

			Convey("And tracking the same id again does not reset progress", func() {
				table.MarkBatch([]string{id}, enginesync.StatusSynced, time.Now())
				table.TrackPending(id, remote.TypeScoreEvent)
				entry, _ := table.Get(id)
				So(entry.Status, ShouldEqual, enginesync.StatusSynced)
			})
		})

		Convey("When tracking a record that arrived already synced", func() {
			id := uuid.NewString()
			table.TrackSynced(id, remote.TypeScoreEvent)

			Convey("Then it never becomes push work", func() {
				So(table.Select(enginesync.StatusPending, enginesync.StatusFailed), ShouldBeEmpty)
				entry, _ := table.Get(id)
				So(entry.Status, ShouldEqual, enginesync.StatusSynced)
			})
		})

		Convey("When a batch moves through the pipeline", func() {
			ids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}
			for _, id := range ids {
				table.TrackPending(id, remote.TypeScoreEvent)
			}
			attempt := time.Now()
			table.MarkBatch(ids[:2], enginesync.StatusInFlight, attempt)

			Convey("Then selection by state reflects the split", func() {
				So(table.Select(enginesync.StatusPending), ShouldHaveLength, 1)
				So(table.Select(enginesync.StatusInFlight), ShouldHaveLength, 2)
				pending, inFlight, synced, failed := table.Counts()
				So(pending, ShouldEqual, 1)
				So(inFlight, ShouldEqual, 2)
				So(synced, ShouldEqual, 0)
				So(failed, ShouldEqual, 0)
			})

			Convey("And the attempt timestamp is recorded", func() {
				entry, _ := table.Get(ids[0])
				So(entry.LastAttempt.Equal(attempt), ShouldBeTrue)
			})
		})

		Convey("When failed entries are reset", func() {
			ids := []string{uuid.NewString(), uuid.NewString()}
			for _, id := range ids {
				table.TrackPending(id, remote.TypeScoreEvent)
			}
			table.MarkBatch(ids, enginesync.StatusFailed, time.Now())

			n := table.ResetFailed()

			Convey("Then they are pending again", func() {
				So(n, ShouldEqual, 2)
				So(table.Select(enginesync.StatusPending), ShouldHaveLength, 2)
				So(table.Select(enginesync.StatusFailed), ShouldBeEmpty)
			})

			Convey("And a second reset finds nothing", func() {
				So(table.ResetFailed(), ShouldEqual, 0)
			})
		})

		Convey("When marking ids the table never saw", func() {
			table.MarkBatch([]string{uuid.NewString()}, enginesync.StatusSynced, time.Now())

			Convey("Then nothing is invented", func() {
				pending, inFlight, synced, failed := table.Counts()
				So(pending+inFlight+synced+failed, ShouldEqual, 0)
			})
		})
	})
}
