package sync_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	enginesync "github.com/okian/birdie/internal/sync"
)

// flipMonitor lets the test drive connectivity transitions.
type flipMonitor struct {
	ch chan bool
}

func newFlipMonitor() *flipMonitor {
	return &flipMonitor{ch: make(chan bool, 4)}
}

func (m *flipMonitor) Connected() bool      { return true }
func (m *flipMonitor) Updates() <-chan bool { return m.ch }

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

func TestSchedulerPolling(t *testing.T) {
	ctx := context.Background()

	Convey("Given a scheduler with a short poll interval", t, func() {
		f := newEngineFixture()
		sched := enginesync.NewScheduler(f.engine, f.client, enginesync.StaticMonitor{}, enginesync.NewMemSubscriptionStore(),
			enginesync.WithPollInterval(10*time.Millisecond))
		Reset(sched.Stop)

		Convey("When polling starts", func() {
			sched.StartPolling(ctx)

			Convey("Then sync cycles run on the ticker", func() {
				So(sched.Polling(), ShouldBeTrue)
				So(waitFor(func() bool { return f.client.FetchCalls() >= 2 }), ShouldBeTrue)
			})

			Convey("And a second start does not stack tickers", func() {
				sched.StartPolling(ctx)
				So(sched.Polling(), ShouldBeTrue)
				sched.StopPolling()
				So(sched.Polling(), ShouldBeFalse)
			})

			Convey("And stopping halts the cycles", func() {
				sched.StopPolling()
				So(sched.Polling(), ShouldBeFalse)
				calls := f.client.FetchCalls()
				time.Sleep(50 * time.Millisecond)
				So(f.client.FetchCalls(), ShouldEqual, calls)
			})
		})

		Convey("When polling never started", func() {
			Convey("Then stopping is safe", func() {
				sched.StopPolling()
				So(sched.Polling(), ShouldBeFalse)
			})
		})
	})
}

func TestSchedulerConnectivity(t *testing.T) {
	ctx := context.Background()

	Convey("Given failed records and a watched connection", t, func() {
		f := newEngineFixture()
		e := f.event("device-a", "p1", 1, 4, time.Now())
		f.appendLocal(ctx, e)
		f.client.SetOffline(true)
		So(f.engine.PushPending(ctx), ShouldNotBeNil)

		monitor := newFlipMonitor()
		sched := enginesync.NewScheduler(f.engine, f.client, monitor, enginesync.NewMemSubscriptionStore())
		sched.Start(ctx)
		Reset(sched.Stop)

		Convey("When connectivity returns", func() {
			f.client.SetOffline(false)
			monitor.ch <- true

			Convey("Then the failed record is pushed", func() {
				So(waitFor(func() bool {
					entry, ok := f.status.Get(e.ID.String())
					return ok && entry.Status == enginesync.StatusSynced
				}), ShouldBeTrue)
			})
		})

		Convey("When the connection drops again", func() {
			monitor.ch <- false

			Convey("Then nothing is retried", func() {
				time.Sleep(20 * time.Millisecond)
				entry, _ := f.status.Get(e.ID.String())
				So(entry.Status, ShouldEqual, enginesync.StatusFailed)
			})
		})
	})
}

func TestForegroundDiscovery(t *testing.T) {
	ctx := context.Background()

	Convey("Given a scheduler with a discovery cooldown", t, func() {
		f := newEngineFixture()
		sched := enginesync.NewScheduler(f.engine, f.client, enginesync.StaticMonitor{}, enginesync.NewMemSubscriptionStore(),
			enginesync.WithDiscoveryCooldown(time.Hour))

		Convey("When the app foregrounds", func() {
			ran, err := sched.ForegroundDiscovery(ctx)

			Convey("Then a sweep runs", func() {
				So(err, ShouldBeNil)
				So(ran, ShouldBeTrue)
				So(f.client.FetchCalls(), ShouldEqual, 1)
			})

			Convey("And an immediate second foreground is throttled", func() {
				ran, err := sched.ForegroundDiscovery(ctx)
				So(err, ShouldBeNil)
				So(ran, ShouldBeFalse)
				So(f.client.FetchCalls(), ShouldEqual, 1)
			})
		})
	})
}

func TestSetupSubscriptions(t *testing.T) {
	ctx := context.Background()

	Convey("Given a scheduler with a subscription store", t, func() {
		f := newEngineFixture()
		subs := enginesync.NewMemSubscriptionStore()
		sched := enginesync.NewScheduler(f.engine, f.client, enginesync.StaticMonitor{}, subs)

		Convey("When setting up twice", func() {
			So(sched.SetupSubscriptions(ctx), ShouldBeNil)
			So(sched.SetupSubscriptions(ctx), ShouldBeNil)

			Convey("Then exactly one subscription exists", func() {
				ids, err := f.client.ListSubscriptionIDs(ctx)
				So(err, ShouldBeNil)
				So(ids, ShouldHaveLength, 1)
				recorded, ok := subs.RecordedID(ctx)
				So(ok, ShouldBeTrue)
				So(recorded, ShouldEqual, ids[0])
			})
		})

		Convey("When the remote lost the recorded subscription", func() {
			So(sched.SetupSubscriptions(ctx), ShouldBeNil)
			recorded, _ := subs.RecordedID(ctx)
			So(f.client.DeleteSubscription(ctx, recorded), ShouldBeNil)

			Convey("Then setup registers a fresh one", func() {
				So(sched.SetupSubscriptions(ctx), ShouldBeNil)
				ids, _ := f.client.ListSubscriptionIDs(ctx)
				So(ids, ShouldHaveLength, 1)
				fresh, _ := subs.RecordedID(ctx)
				So(fresh, ShouldEqual, ids[0])
				So(fresh, ShouldNotEqual, recorded)
			})
		})

		Convey("When a remote notification arrives", func() {
			e := f.event("device-b", "p1", 1, 4, time.Now())
			f.seedRemote(ctx, e)

			Convey("Then a pull runs immediately", func() {
				So(sched.HandleRemoteNotification(ctx), ShouldBeNil)
				So(f.events.Contains(ctx, e.ID), ShouldBeTrue)
			})
		})
	})
}
