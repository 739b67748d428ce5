package sync

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/okian/birdie/internal/adapters/remote"
	"github.com/okian/birdie/pkg/logger"
)

// Monitor reports network connectivity. Updates delivers a value per
// transition; implementations send the current state on subscription so the
// scheduler never starts with a stale assumption.
type Monitor interface {
	Connected() bool
	Updates() <-chan bool
}

// StaticMonitor is an always-connected Monitor for tests and single-device
// deployments.
type StaticMonitor struct{}

func (StaticMonitor) Connected() bool      { return true }
func (StaticMonitor) Updates() <-chan bool { return make(chan bool) }

// SubscriptionStore remembers which change subscription this device has
// registered, so repeated setup calls stay idempotent across restarts.
type SubscriptionStore interface {
	RecordedID(ctx context.Context) (string, bool)
	Record(ctx context.Context, id string) error
}

// MemSubscriptionStore is the in-memory SubscriptionStore.
type MemSubscriptionStore struct {
	mu stdsync.Mutex
	id string
}

func NewMemSubscriptionStore() *MemSubscriptionStore {
	return &MemSubscriptionStore{}
}

func (s *MemSubscriptionStore) RecordedID(context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.id != ""
}

func (s *MemSubscriptionStore) Record(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	return nil
}

// Scheduler decides when the engine runs: periodic polling while a round is
// active, an immediate retry-and-push when connectivity returns, a pull when
// a remote change notification arrives, and a throttled discovery sweep on
// app foreground.
type Scheduler struct {
	engine  *Engine
	client  remote.Client
	monitor Monitor
	subs    SubscriptionStore

	pollInterval      time.Duration
	discoveryCooldown time.Duration

	mu            stdsync.Mutex
	pollCancel    context.CancelFunc
	lastDiscovery time.Time

	watchCancel context.CancelFunc
	wg          stdsync.WaitGroup

	log logger.Logger
}

// SchedulerOption applies a configuration option to the Scheduler.
type SchedulerOption func(*Scheduler)

// WithPollInterval sets the polling cadence.
func WithPollInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithDiscoveryCooldown sets the minimum spacing between foreground
// discovery sweeps.
func WithDiscoveryCooldown(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.discoveryCooldown = d
		}
	}
}

// WithSchedulerLogger sets a custom logger.
func WithSchedulerLogger(log logger.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}

// NewScheduler wires the scheduler. Call Start to begin watching
// connectivity; polling starts separately when a round goes active.
func NewScheduler(engine *Engine, client remote.Client, monitor Monitor, subs SubscriptionStore, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		engine:            engine,
		client:            client,
		monitor:           monitor,
		subs:              subs,
		pollInterval:      45 * time.Second,
		discoveryCooldown: 30 * time.Second,
		log:               logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the connectivity watcher. Each transition to connected
// triggers a retry of failed records followed by a push.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.watchCancel != nil {
		s.mu.Unlock()
		return
	}
	watchCtx, cancel := context.WithCancel(ctx)
	s.watchCancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		updates := s.monitor.Updates()
		for {
			select {
			case <-watchCtx.Done():
				return
			case connected, ok := <-updates:
				if !ok {
					return
				}
				if !connected {
					continue
				}
				s.log.Info(watchCtx, "connectivity restored")
				if err := s.engine.RetryFailed(watchCtx); err != nil {
					s.log.Warn(watchCtx, "retry after reconnect failed", logger.Error(err))
				}
			}
		}
	}()
}

// StartPolling begins periodic full sync cycles. Idempotent: a second call
// while polling is active is a no-op, so repeated round-activation signals
// never stack tickers.
func (s *Scheduler) StartPolling(ctx context.Context) {
	s.mu.Lock()
	if s.pollCancel != nil {
		s.mu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	s.pollCancel = cancel
	s.mu.Unlock()

	s.log.Info(ctx, "polling started", logger.Any("interval", s.pollInterval))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				if err := s.engine.Sync(pollCtx); err != nil {
					s.log.Warn(pollCtx, "poll cycle failed", logger.Error(err))
				}
			}
		}
	}()
}

// StopPolling halts periodic sync. Safe to call when polling is not active.
func (s *Scheduler) StopPolling() {
	s.mu.Lock()
	cancel := s.pollCancel
	s.pollCancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Polling reports whether periodic sync is currently running.
func (s *Scheduler) Polling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pollCancel != nil
}

// HandleRemoteNotification reacts to a remote change push by pulling
// immediately instead of waiting for the next poll tick.
func (s *Scheduler) HandleRemoteNotification(ctx context.Context) error {
	return s.engine.PullRecords(ctx)
}

// ForegroundDiscovery runs a full sync when the app returns to the
// foreground, at most once per cooldown window. Returns whether a sweep ran.
func (s *Scheduler) ForegroundDiscovery(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if !s.lastDiscovery.IsZero() && time.Since(s.lastDiscovery) < s.discoveryCooldown {
		s.mu.Unlock()
		return false, nil
	}
	s.lastDiscovery = time.Now()
	s.mu.Unlock()

	return true, s.engine.Sync(ctx)
}

// SetupSubscriptions ensures exactly one change subscription exists for score
// event records. The recorded id is verified against the remote list; a
// recorded id the remote no longer knows is re-registered.
func (s *Scheduler) SetupSubscriptions(ctx context.Context) error {
	if id, ok := s.subs.RecordedID(ctx); ok {
		existing, err := s.client.ListSubscriptionIDs(ctx)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if e == id {
				return nil
			}
		}
	}
	id, err := s.client.Subscribe(ctx, remote.TypeScoreEvent, "")
	if err != nil {
		return err
	}
	if err := s.subs.Record(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "subscription registered", logger.String("subscription_id", id))
	return nil
}

// Stop halts the connectivity watcher and polling and waits for goroutines to
// exit.
func (s *Scheduler) Stop() {
	s.StopPolling()
	s.mu.Lock()
	cancel := s.watchCancel
	s.watchCancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}
