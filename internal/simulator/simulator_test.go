package simulator_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/birdie/internal/simulator"
)

func TestConvergenceWithoutDisagreements(t *testing.T) {
	ctx := context.Background()

	Convey("Given four agreeing devices", t, func() {
		sim := simulator.New(simulator.Config{
			Devices: 4,
			Players: 3,
			Holes:   6,
			Seed:    1,
		}, nil)

		Convey("When the round plays out", func() {
			report, err := sim.Run(ctx)

			Convey("Then every device converges on one log", func() {
				So(err, ShouldBeNil)
				So(report.Converged, ShouldBeTrue)
				So(report.Failures, ShouldBeEmpty)
				So(report.Devices, ShouldEqual, 4)
				So(report.EventsTotal, ShouldEqual, 4*3*6)
			})

			Convey("And agreement produces zero discrepancies", func() {
				So(report.Discrepancies, ShouldEqual, 0)
			})
		})
	})
}

func TestConvergenceWithDisagreements(t *testing.T) {
	ctx := context.Background()

	Convey("Given devices that sometimes disagree", t, func() {
		sim := simulator.New(simulator.Config{
			Devices:      3,
			Players:      2,
			Holes:        9,
			DisagreeRate: 0.2,
			Seed:         7,
		}, nil)

		Convey("When the round plays out", func() {
			report, err := sim.Run(ctx)

			Convey("Then the logs still converge", func() {
				So(err, ShouldBeNil)
				So(report.Converged, ShouldBeTrue)
			})

			Convey("And the disagreements surface as discrepancies", func() {
				So(report.Discrepancies, ShouldBeGreaterThan, 0)
			})
		})
	})
}
