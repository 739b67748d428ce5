// Package simulator drives N virtual devices against one shared remote store
// and verifies that their event logs, resolved scores and standings converge.
// Used by the simulate command for soak-style testing without real devices.
package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/okian/birdie/internal/adapters/remote"
	"github.com/okian/birdie/internal/adapters/repository"
	"github.com/okian/birdie/internal/domain/lifecycle"
	"github.com/okian/birdie/internal/domain/model"
	"github.com/okian/birdie/internal/domain/scoring"
	"github.com/okian/birdie/internal/domain/standings"
	enginesync "github.com/okian/birdie/internal/sync"
	"github.com/okian/birdie/pkg/logger"
)

// Config holds simulation parameters.
type Config struct {
	// Devices is the number of virtual devices writing concurrently.
	Devices int
	// Players is the number of participants in the simulated round.
	Players int
	// Holes is the hole count of the simulated round.
	Holes int
	// DisagreeRate is the probability (0..1) that a device reports a
	// different stroke count than its peers for a key, producing
	// discrepancies on purpose.
	DisagreeRate float64
	// SyncRounds caps how many full sync cycles run before convergence is
	// checked.
	SyncRounds int
	// Seed fixes the random source for reproducible runs.
	Seed int64
}

// Device is one virtual participant: its own local stores, scoring service
// and replication engine, sharing only the remote client with its peers.
type Device struct {
	ID       string
	Events   *repository.MemEventStore
	Rounds   *repository.MemRoundStore
	Discreps *repository.MemDiscrepancyStore
	Status   *enginesync.StatusTable
	Scorer   *scoring.Service
	Engine   *enginesync.Engine
	Tracker  *standings.Tracker
}

// Simulator owns the shared remote store and the device fleet.
type Simulator struct {
	cfg     Config
	client  *remote.MemClient
	devices []*Device
	round   model.Round
	rng     *rand.Rand
	log     logger.Logger
}

// New creates a simulator; zero-valued config fields get working defaults.
func New(cfg Config, log logger.Logger) *Simulator {
	if cfg.Devices < 1 {
		cfg.Devices = 4
	}
	if cfg.Players < 1 {
		cfg.Players = cfg.Devices
	}
	if cfg.Holes < 1 {
		cfg.Holes = 18
	}
	if cfg.SyncRounds < 1 {
		cfg.SyncRounds = 3
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Simulator{
		cfg:    cfg,
		client: remote.NewMemClient(),
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		log:    log,
	}
}

// Setup seeds every device with an identical active round.
func (s *Simulator) Setup(ctx context.Context) error {
	courseID := uuid.New()
	organizer := uuid.New()
	players := make([]string, s.cfg.Players)
	for i := range players {
		players[i] = uuid.NewString()
	}
	now := time.Now()
	started := now
	s.round = model.Round{
		ID:          uuid.New(),
		CourseID:    courseID,
		OrganizerID: organizer,
		PlayerIDs:   players,
		HoleCount:   s.cfg.Holes,
		Status:      model.StatusActive,
		CreatedAt:   now,
		StartedAt:   &started,
	}

	for i := 0; i < s.cfg.Devices; i++ {
		d, err := s.newDevice(ctx, fmt.Sprintf("device-%d", i))
		if err != nil {
			return err
		}
		s.devices = append(s.devices, d)
	}
	return nil
}

func (s *Simulator) newDevice(ctx context.Context, id string) (*Device, error) {
	events := repository.NewMemEventStore()
	rounds := repository.NewMemRoundStore()
	courses := repository.NewMemCourseStore()
	players := repository.NewMemPlayerStore()
	discreps := repository.NewMemDiscrepancyStore()
	status := enginesync.NewStatusTable()

	if err := rounds.Create(ctx, s.round); err != nil {
		return nil, fmt.Errorf("seed round on %s: %w", id, err)
	}

	tracker := standings.NewTracker(rounds, events, courses, players)
	lm := lifecycle.NewManager(rounds, events)
	scorer := scoring.NewService(events, rounds, discreps, status, tracker, lm, id)
	engine := enginesync.NewEngine(s.client, events, discreps, status,
		enginesync.WithRecomputer(tracker),
		enginesync.WithLogger(s.log.Named(id)),
	)
	return &Device{
		ID:       id,
		Events:   events,
		Rounds:   rounds,
		Discreps: discreps,
		Status:   status,
		Scorer:   scorer,
		Engine:   engine,
		Tracker:  tracker,
	}, nil
}

// Run plays the round: every device reports every player's score on every
// hole, then the fleet syncs until the logs stop growing.
func (s *Simulator) Run(ctx context.Context) (Report, error) {
	if err := s.Setup(ctx); err != nil {
		return Report{}, err
	}

	expectedDisagreements := 0
	for hole := 1; hole <= s.cfg.Holes; hole++ {
		for _, playerID := range s.round.PlayerIDs {
			agreed := 2 + s.rng.Intn(4)
			for _, d := range s.devices {
				strokes := agreed
				if s.cfg.DisagreeRate > 0 && s.rng.Float64() < s.cfg.DisagreeRate {
					strokes = agreed + 1
					expectedDisagreements++
				}
				_, err := d.Scorer.CreateEvent(ctx, scoring.CreateRequest{
					RoundID:     s.round.ID,
					HoleNumber:  hole,
					PlayerID:    playerID,
					StrokeCount: strokes,
					ReportedBy:  s.round.OrganizerID,
				})
				if err != nil {
					return Report{}, fmt.Errorf("score on %s: %w", d.ID, err)
				}
			}
		}
	}

	// Sync cycles; every device pushes its log and pulls everyone else's.
	for i := 0; i < s.cfg.SyncRounds; i++ {
		for _, d := range s.devices {
			if err := d.Engine.Sync(ctx); err != nil {
				return Report{}, fmt.Errorf("sync on %s: %w", d.ID, err)
			}
		}
	}

	return s.verify(ctx, expectedDisagreements)
}
