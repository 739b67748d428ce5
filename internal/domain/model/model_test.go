package model_test

import (
	"testing"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/birdie/internal/domain/model"
)

func TestScoreEvent(t *testing.T) {
	Convey("Given score events", t, func() {
		Convey("Then an initial score is not a correction", func() {
			So(model.ScoreEvent{}.IsCorrection(), ShouldBeFalse)
		})

		Convey("Then a superseding event is a correction", func() {
			target := uuid.New()
			So(model.ScoreEvent{SupersedesEventID: &target}.IsCorrection(), ShouldBeTrue)
		})
	})
}

func TestGuestIdentity(t *testing.T) {
	Convey("Given guest pseudo-ids", t, func() {
		Convey("Then the id derives from the display name", func() {
			So(model.GuestPlayerID("Sam"), ShouldEqual, "guest:Sam")
		})

		Convey("Then the name round-trips", func() {
			name, ok := model.GuestName(model.GuestPlayerID("Sam"))
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "Sam")
		})

		Convey("Then registered ids are not guests", func() {
			_, ok := model.GuestName(uuid.NewString())
			So(ok, ShouldBeFalse)
		})
	})
}

func TestRoundParticipants(t *testing.T) {
	Convey("Given a round with players and guests", t, func() {
		r := model.Round{PlayerIDs: []string{"p1", "p2"}, GuestNames: []string{"Sam"}}

		Convey("Then participants unify both lists", func() {
			So(r.Participants(), ShouldResemble, []string{"p1", "p2", "guest:Sam"})
		})
	})
}

func TestFormattedScore(t *testing.T) {
	Convey("Given standings scores", t, func() {
		Convey("Then par renders as E", func() {
			So(model.Standing{ScoreRelativeToPar: 0}.FormattedScore(), ShouldEqual, "E")
		})

		Convey("Then over par carries a plus sign", func() {
			So(model.Standing{ScoreRelativeToPar: 2}.FormattedScore(), ShouldEqual, "+2")
		})

		Convey("Then under par is signed by the number itself", func() {
			So(model.Standing{ScoreRelativeToPar: -3}.FormattedScore(), ShouldEqual, "-3")
		})
	})
}
