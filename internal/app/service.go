// Package service provides the core application service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/birdie/internal/adapters/remote"
	"github.com/okian/birdie/internal/adapters/repository"
	"github.com/okian/birdie/internal/companion"
	"github.com/okian/birdie/internal/domain/dedupe"
	"github.com/okian/birdie/internal/domain/lifecycle"
	"github.com/okian/birdie/internal/domain/model"
	"github.com/okian/birdie/internal/domain/scoring"
	"github.com/okian/birdie/internal/domain/standings"
	enginesync "github.com/okian/birdie/internal/sync"
	"github.com/okian/birdie/pkg/logger"
)

// Service wires the scoring domain, replication engine and companion bridge
// behind one facade implementing the HTTP API dependencies.
type Service struct {
	mu sync.Mutex

	// Core components
	events        repository.EventStore
	rounds        repository.RoundStore
	courses       repository.CourseStore
	players       repository.PlayerStore
	discrepancies repository.DiscrepancyStore
	status        *enginesync.StatusTable
	engine        *enginesync.Engine
	scheduler     *enginesync.Scheduler
	tracker       *standings.Tracker
	scorer        *scoring.Service
	lifecycle     *lifecycle.Manager
	snapshotQueue companion.Queue
	snapshotCache *companion.Cache
	publisher     *companion.Publisher

	// Injected adapters
	client    remote.Client
	monitor   enginesync.Monitor
	transport companion.Transport

	// Configuration
	deviceID          string
	pollInterval      time.Duration
	discoveryCooldown time.Duration
	dedupeSize        int
	snapshotQueueSize int
	defaultPar        int
	remoteZone        string

	// currentHole tracks the furthest hole scored per round, feeding the
	// companion snapshot.
	currentHole map[uuid.UUID]int

	// State
	started bool
	runCtx  context.Context
	cancel  context.CancelFunc

	// Logging
	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDeviceID sets this device's identity for authored events.
func WithDeviceID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.deviceID = id
		}
	}
}

// WithRemoteClient injects the remote record store client.
func WithRemoteClient(c remote.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.client = c
		}
	}
}

// WithMonitor injects the connectivity monitor.
func WithMonitor(m enginesync.Monitor) Option {
	return func(s *Service) {
		if m != nil {
			s.monitor = m
		}
	}
}

// WithTransport injects the companion display transport.
func WithTransport(t companion.Transport) Option {
	return func(s *Service) {
		s.transport = t
	}
}

// WithPollInterval sets the periodic sync cadence.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithDiscoveryCooldown sets the foreground discovery throttle window.
func WithDiscoveryCooldown(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.discoveryCooldown = d
		}
	}
}

// WithDedupeSize sets the size of the pull deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSnapshotQueueSize bounds the companion snapshot queue.
func WithSnapshotQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.snapshotQueueSize = size
		}
	}
}

// WithDefaultPar sets the par assumed for holes missing from course data,
// used by standings computation and companion snapshots alike.
func WithDefaultPar(par int) Option {
	return func(s *Service) {
		if par > 0 {
			s.defaultPar = par
		}
	}
}

// WithRemoteZone selects the remote record zone.
func WithRemoteZone(zone string) Option {
	return func(s *Service) {
		s.remoteZone = zone
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		deviceID:          uuid.NewString(),
		pollInterval:      45 * time.Second,
		discoveryCooldown: 30 * time.Second,
		dedupeSize:        50_000,
		snapshotQueueSize: 256,
		defaultPar:        standings.DefaultPar,
		currentHole:       make(map[uuid.UUID]int),
		log:               logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.log.Info(ctx, "starting scoring service", logger.String("device_id", s.deviceID))

	s.events = repository.NewMemEventStore()
	s.rounds = repository.NewMemRoundStore()
	s.courses = repository.NewMemCourseStore()
	s.players = repository.NewMemPlayerStore()
	s.discrepancies = repository.NewMemDiscrepancyStore()
	s.status = enginesync.NewStatusTable()
	if s.client == nil {
		s.client = remote.NewMemClient()
	}
	if s.monitor == nil {
		s.monitor = enginesync.StaticMonitor{}
	}

	s.tracker = standings.NewTracker(s.rounds, s.events, s.courses, s.players,
		standings.WithDefaultPar(s.defaultPar),
		standings.WithLogger(s.log.Named("standings")))
	s.lifecycle = lifecycle.NewManager(s.rounds, s.events,
		lifecycle.WithLogger(s.log.Named("lifecycle")))
	s.scorer = scoring.NewService(
		s.events, s.rounds, s.discrepancies,
		s.status, s.tracker, s.lifecycle,
		s.deviceID,
		scoring.WithLogger(s.log.Named("scoring")),
	)
	s.engine = enginesync.NewEngine(
		s.client, s.events, s.discrepancies, s.status,
		enginesync.WithDeduper(dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))),
		enginesync.WithZone(s.remoteZone),
		enginesync.WithRecomputer(s.tracker),
		enginesync.WithCompletionChecker(s.lifecycle),
		enginesync.WithLogger(s.log.Named("engine")),
	)
	s.scheduler = enginesync.NewScheduler(
		s.engine, s.client, s.monitor, enginesync.NewMemSubscriptionStore(),
		enginesync.WithPollInterval(s.pollInterval),
		enginesync.WithDiscoveryCooldown(s.discoveryCooldown),
		enginesync.WithSchedulerLogger(s.log.Named("scheduler")),
	)

	s.snapshotQueue = companion.NewInMemoryQueue(companion.WithCapacity(s.snapshotQueueSize))
	s.snapshotCache = companion.NewCache()
	s.publisher = companion.NewPublisher(s.snapshotQueue, s.transport, s.snapshotCache,
		companion.WithPublisherLogger(s.log.Named("companion")))

	s.runCtx, s.cancel = context.WithCancel(context.Background())
	s.tracker.AddListener(s.onStandingsChange)
	go s.publisher.Run(s.runCtx)
	s.scheduler.Start(s.runCtx)
	if err := s.scheduler.SetupSubscriptions(s.runCtx); err != nil {
		s.log.Warn(ctx, "subscription setup failed", logger.Error(err))
	}

	s.started = true
	s.log.Info(ctx, "scoring service started")
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.log.Info(ctx, "stopping scoring service")

	s.scheduler.Stop()
	_ = s.snapshotQueue.Close()
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = s.publisher.Shutdown(shutdownCtx)
	s.cancel()

	s.started = false
	s.log.Info(ctx, "scoring service stopped")
}

// onStandingsChange feeds the companion bridge after every recompute.
func (s *Service) onStandingsChange(roundID uuid.UUID, change standings.Change) {
	s.mu.Lock()
	hole := s.currentHole[roundID]
	s.mu.Unlock()
	if hole == 0 {
		hole = 1
	}

	par := s.defaultPar
	if round, err := s.rounds.Get(context.Background(), roundID); err == nil {
		if pars := s.courses.Pars(context.Background(), round.CourseID); pars != nil {
			if p, ok := pars[hole]; ok {
				par = p
			}
		}
	}

	s.snapshotQueue.Enqueue(context.Background(), companion.Snapshot{
		RoundID:        roundID,
		Standings:      change.New,
		CurrentHole:    hole,
		CurrentHolePar: par,
		LastUpdatedAt:  time.Now(),
	})
}

// advanceHole records the furthest hole scored for a round.
func (s *Service) advanceHole(roundID uuid.UUID, hole int) {
	s.mu.Lock()
	if hole > s.currentHole[roundID] {
		s.currentHole[roundID] = hole
	}
	s.mu.Unlock()
}

// CreateEvent records an initial score.
func (s *Service) CreateEvent(ctx context.Context, req scoring.CreateRequest) (model.ScoreEvent, error) {
	event, err := s.scorer.CreateEvent(ctx, req)
	if err != nil {
		return model.ScoreEvent{}, err
	}
	s.advanceHole(req.RoundID, req.HoleNumber)
	return event, nil
}

// CreateCorrection records a correction superseding an earlier event.
func (s *Service) CreateCorrection(ctx context.Context, req scoring.CorrectionRequest) (model.ScoreEvent, error) {
	return s.scorer.CreateCorrection(ctx, req)
}

// ResolveDiscrepancy settles a conflict with an authoritative score.
func (s *Service) ResolveDiscrepancy(ctx context.Context, id uuid.UUID, strokeCount int, reportedBy uuid.UUID) (model.ScoreEvent, error) {
	return s.scorer.CreateResolution(ctx, id, strokeCount, reportedBy)
}

// CreateRound stores a new round in setup state.
func (s *Service) CreateRound(ctx context.Context, round model.Round) (model.Round, error) {
	if round.ID == uuid.Nil {
		round.ID = uuid.New()
	}
	round.Status = model.StatusSetup
	round.CreatedAt = time.Now()
	if err := s.rounds.Create(ctx, round); err != nil {
		return model.Round{}, fmt.Errorf("create round: %w", err)
	}
	return round, nil
}

// GetRound returns a round by id.
func (s *Service) GetRound(ctx context.Context, id uuid.UUID) (model.Round, error) {
	return s.rounds.Get(ctx, id)
}

// StartRound activates a round and begins periodic sync polling.
func (s *Service) StartRound(ctx context.Context, id uuid.UUID) error {
	if err := s.lifecycle.Start(ctx, id); err != nil {
		return err
	}
	s.scheduler.StartPolling(s.runCtx)
	return nil
}

// FinishRound completes a round; force overrides missing scores. Polling
// stops once no round remains active.
func (s *Service) FinishRound(ctx context.Context, id uuid.UUID, force bool) (lifecycle.FinishResult, error) {
	result, err := s.lifecycle.Finish(ctx, id, force)
	if err != nil {
		return result, err
	}
	if result.Completed {
		s.stopPollingIfIdle(ctx)
	}
	return result, nil
}

// FinalizeRound confirms a round awaiting finalization.
func (s *Service) FinalizeRound(ctx context.Context, id uuid.UUID) error {
	if err := s.lifecycle.Finalize(ctx, id); err != nil {
		return err
	}
	s.stopPollingIfIdle(ctx)
	return nil
}

// UpdateParticipants edits the participant lists of a setup-state round.
func (s *Service) UpdateParticipants(ctx context.Context, id uuid.UUID, playerIDs, guestNames []string) error {
	return s.lifecycle.UpdateParticipants(ctx, id, playerIDs, guestNames)
}

func (s *Service) stopPollingIfIdle(ctx context.Context) {
	active, err := s.rounds.ByStatus(ctx, model.StatusActive)
	if err != nil || len(active) > 0 {
		return
	}
	awaiting, err := s.rounds.ByStatus(ctx, model.StatusAwaitingFinalization)
	if err != nil || len(awaiting) > 0 {
		return
	}
	s.scheduler.StopPolling()
}

// Standings returns the cached standings for a round, computing them on
// first access.
func (s *Service) Standings(ctx context.Context, roundID uuid.UUID) []model.Standing {
	if current := s.tracker.Current(roundID); len(current) > 0 {
		return current
	}
	change := s.tracker.Recompute(ctx, roundID, standings.TriggerLocalScore)
	return change.New
}

// Discrepancies lists conflicts for a round.
func (s *Service) Discrepancies(ctx context.Context, roundID uuid.UUID, unresolvedOnly bool) ([]model.Discrepancy, error) {
	if unresolvedOnly {
		return s.discrepancies.Unresolved(ctx, roundID)
	}
	return s.discrepancies.ByRound(ctx, roundID)
}

// Snapshot returns the latest companion snapshot for a round.
func (s *Service) Snapshot(roundID uuid.UUID) (companion.Snapshot, bool) {
	return s.snapshotCache.Latest(roundID)
}

// SyncNow runs a full push-then-pull cycle.
func (s *Service) SyncNow(ctx context.Context) error {
	return s.engine.Sync(ctx)
}

// NotifyRemoteChange reacts to a remote change notification with an
// immediate pull.
func (s *Service) NotifyRemoteChange(ctx context.Context) error {
	return s.scheduler.HandleRemoteNotification(ctx)
}

// ForegroundDiscovery runs a throttled discovery sweep.
func (s *Service) ForegroundDiscovery(ctx context.Context) (bool, error) {
	return s.scheduler.ForegroundDiscovery(ctx)
}

// SyncState reports the engine's current state.
func (s *Service) SyncState() string {
	return string(s.engine.State())
}

// RegisterCourse adds a course to the local catalog.
func (s *Service) RegisterCourse(ctx context.Context, course model.Course) error {
	return s.courses.Create(ctx, course)
}

// RegisterPlayer adds a player to the local roster.
func (s *Service) RegisterPlayer(ctx context.Context, player model.Player) error {
	return s.players.Create(ctx, player)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":   started,
		"device_id": s.deviceID,
	}
	if started {
		pending, inFlight, synced, failed := s.status.Counts()
		stats["events"] = s.events.Count(ctx)
		stats["sync_state"] = string(s.engine.State())
		stats["polling"] = s.scheduler.Polling()
		stats["status_pending"] = pending
		stats["status_in_flight"] = inFlight
		stats["status_synced"] = synced
		stats["status_failed"] = failed
	}
	return stats
}
