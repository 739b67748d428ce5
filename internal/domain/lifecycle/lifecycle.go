// Package lifecycle enforces the round state machine:
//
//	setup → active → awaitingFinalization → completed
//
// with a direct active → completed edge for forced early termination.
// Completion detection counts (participant, hole) pairs without a resolved
// leaf score, so it shares leaf resolution with standings and every device
// reaches the same verdict over the same event set.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/birdie/internal/adapters/repository"
	"github.com/okian/birdie/internal/domain/model"
	"github.com/okian/birdie/internal/domain/resolve"
	"github.com/okian/birdie/pkg/logger"
	"github.com/okian/birdie/pkg/metrics"
)

// CompletionResult is the outcome of CheckCompletion.
type CompletionResult struct {
	// Missing counts (participant, hole) pairs without a resolved score.
	Missing int
	// AwaitingFinalization is true when this call performed the
	// active → awaitingFinalization transition.
	AwaitingFinalization bool
}

// FinishResult is the outcome of Finish.
type FinishResult struct {
	// Missing is non-zero when force was false and unscored holes remain;
	// the round was left untouched.
	Missing int
	// Completed is true when the round transitioned to completed.
	Completed bool
}

// Manager drives round lifecycle transitions over the round and event
// stores. Callers serialize access; the manager holds no locks of its own.
type Manager struct {
	rounds repository.RoundStore
	events repository.EventStore
	log    logger.Logger
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager creates a lifecycle manager.
func NewManager(rounds repository.RoundStore, events repository.EventStore, opts ...Option) *Manager {
	m := &Manager{rounds: rounds, events: events, log: logger.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start transitions the round from setup to active and records the start
// time.
func (m *Manager) Start(ctx context.Context, roundID uuid.UUID) error {
	round, err := m.fetch(ctx, roundID)
	if err != nil {
		return err
	}
	if !round.IsSetup() {
		return &InvalidTransitionError{Current: round.Status, Expected: string(model.StatusSetup)}
	}
	now := time.Now()
	round.Status = model.StatusActive
	round.StartedAt = &now
	if err := m.rounds.Update(ctx, round); err != nil {
		return fmt.Errorf("persist round start: %w", err)
	}
	m.log.Info(ctx, "round started", logger.String("round_id", roundID.String()))
	return nil
}

// CheckCompletion counts missing scores and, when none remain on an active
// round, performs the active → awaitingFinalization transition. Calling it
// on a round already past active is a no-op reporting nothing missing, so a
// second invocation after the transition changes nothing.
func (m *Manager) CheckCompletion(ctx context.Context, roundID uuid.UUID) (CompletionResult, error) {
	round, err := m.fetch(ctx, roundID)
	if err != nil {
		return CompletionResult{}, err
	}
	if !round.IsActive() {
		return CompletionResult{}, nil
	}
	missing, err := m.missingScores(ctx, round)
	if err != nil {
		return CompletionResult{}, err
	}
	if missing > 0 {
		return CompletionResult{Missing: missing}, nil
	}
	round.Status = model.StatusAwaitingFinalization
	if err := m.rounds.Update(ctx, round); err != nil {
		return CompletionResult{}, fmt.Errorf("persist completion: %w", err)
	}
	m.log.Info(ctx, "round awaiting finalization", logger.String("round_id", roundID.String()))
	return CompletionResult{AwaitingFinalization: true}, nil
}

// Finish ends the round early. Without force, missing scores abort the
// transition and are reported; with force (or nothing missing) the round
// moves straight to completed. Valid only from active or
// awaitingFinalization.
func (m *Manager) Finish(ctx context.Context, roundID uuid.UUID, force bool) (FinishResult, error) {
	round, err := m.fetch(ctx, roundID)
	if err != nil {
		return FinishResult{}, err
	}
	if !round.IsActive() && !round.IsAwaitingFinalization() {
		return FinishResult{}, &InvalidTransitionError{
			Current:  round.Status,
			Expected: fmt.Sprintf("%s or %s", model.StatusActive, model.StatusAwaitingFinalization),
		}
	}
	missing, err := m.missingScores(ctx, round)
	if err != nil {
		return FinishResult{}, err
	}
	if !force && missing > 0 {
		return FinishResult{Missing: missing}, nil
	}
	if err := m.complete(ctx, round); err != nil {
		return FinishResult{}, err
	}
	return FinishResult{Completed: true}, nil
}

// Finalize confirms a fully scored round, transitioning
// awaitingFinalization → completed.
func (m *Manager) Finalize(ctx context.Context, roundID uuid.UUID) error {
	round, err := m.fetch(ctx, roundID)
	if err != nil {
		return err
	}
	if !round.IsAwaitingFinalization() {
		return &InvalidTransitionError{Current: round.Status, Expected: string(model.StatusAwaitingFinalization)}
	}
	return m.complete(ctx, round)
}

// UpdateParticipants replaces the round's participant lists. Allowed only
// while the round is still in setup.
func (m *Manager) UpdateParticipants(ctx context.Context, roundID uuid.UUID, playerIDs, guestNames []string) error {
	round, err := m.fetch(ctx, roundID)
	if err != nil {
		return err
	}
	if !round.IsSetup() {
		return &ParticipantsFrozenError{Status: round.Status}
	}
	round.PlayerIDs = append([]string(nil), playerIDs...)
	round.GuestNames = append([]string(nil), guestNames...)
	if err := m.rounds.Update(ctx, round); err != nil {
		return fmt.Errorf("persist participants: %w", err)
	}
	return nil
}

// MissingScores returns the current missing-score count for a round.
func (m *Manager) MissingScores(ctx context.Context, roundID uuid.UUID) (int, error) {
	round, err := m.fetch(ctx, roundID)
	if err != nil {
		return 0, err
	}
	return m.missingScores(ctx, round)
}

func (m *Manager) complete(ctx context.Context, round model.Round) error {
	now := time.Now()
	round.Status = model.StatusCompleted
	round.CompletedAt = &now
	if err := m.rounds.Update(ctx, round); err != nil {
		return fmt.Errorf("persist round completion: %w", err)
	}
	metrics.RecordRoundCompleted()
	m.log.Info(ctx, "round completed", logger.String("round_id", round.ID.String()))
	return nil
}

func (m *Manager) missingScores(ctx context.Context, round model.Round) (int, error) {
	events, err := m.events.ByRound(ctx, round.ID)
	if err != nil {
		return 0, fmt.Errorf("load events: %w", err)
	}
	missing := 0
	for _, playerID := range round.Participants() {
		for hole := 1; hole <= round.HoleCount; hole++ {
			if !resolve.HasResolved(playerID, hole, events) {
				missing++
			}
		}
	}
	return missing, nil
}

func (m *Manager) fetch(ctx context.Context, roundID uuid.UUID) (model.Round, error) {
	round, err := m.rounds.Get(ctx, roundID)
	if err != nil {
		if errors.Is(err, repository.ErrRoundNotFound) {
			return model.Round{}, fmt.Errorf("%w: %s", ErrRoundNotFound, roundID)
		}
		return model.Round{}, err
	}
	return round, nil
}
