package standings

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/birdie/internal/adapters/repository"
	"github.com/okian/birdie/internal/domain/model"
	"github.com/okian/birdie/pkg/logger"
	"github.com/okian/birdie/pkg/metrics"
)

// Trigger identifies what caused a standings recomputation, so consumers can
// distinguish local edits from replicated ones.
type Trigger string

const (
	TriggerLocalScore         Trigger = "local_score"
	TriggerRemoteSync         Trigger = "remote_sync"
	TriggerConflictResolution Trigger = "conflict_resolution"
)

// Change is the result of one recomputation.
type Change struct {
	Previous []model.Standing
	New      []model.Standing
	Trigger  Trigger
	// PositionChanges holds only players whose position moved.
	PositionChanges map[string]PositionChange
}

// Listener receives every standings change for a round.
type Listener func(roundID uuid.UUID, change Change)

// Tracker keeps the latest standings per round and recomputes them wholesale
// on demand. Callers serialize access from the interactive side; the
// replication engine dispatches its recomputes through the same instance, so
// the tracker carries its own lock.
type Tracker struct {
	mu         sync.Mutex
	current    map[uuid.UUID][]model.Standing
	rounds     repository.RoundStore
	events     repository.EventStore
	courses    repository.CourseStore
	players    repository.PlayerStore
	listeners  []Listener
	defaultPar int
	log        logger.Logger
}

// NewTracker creates a tracker over the given stores.
func NewTracker(rounds repository.RoundStore, events repository.EventStore, courses repository.CourseStore, players repository.PlayerStore, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		current:    make(map[uuid.UUID][]model.Standing),
		rounds:     rounds,
		events:     events,
		courses:    courses,
		players:    players,
		defaultPar: DefaultPar,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TrackerOption applies a configuration option to the Tracker.
type TrackerOption func(*Tracker)

// WithDefaultPar sets the par assumed for holes missing from course data.
func WithDefaultPar(par int) TrackerOption {
	return func(t *Tracker) {
		if par > 0 {
			t.defaultPar = par
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) TrackerOption {
	return func(t *Tracker) {
		if log != nil {
			t.log = log
		}
	}
}

// AddListener registers a listener invoked after every recompute. Must be
// called before the tracker is shared across goroutines.
func (t *Tracker) AddListener(l Listener) {
	t.listeners = append(t.listeners, l)
}

// Recompute rebuilds the standings for roundID and returns the change.
// Failures to load the round leave the previous standings in place; the
// tracker never propagates an error.
func (t *Tracker) Recompute(ctx context.Context, roundID uuid.UUID, trigger Trigger) Change {
	t.mu.Lock()
	previous := t.current[roundID]

	round, err := t.rounds.Get(ctx, roundID)
	if err != nil {
		t.mu.Unlock()
		t.log.Warn(ctx, "recompute skipped: round not found", logger.String("round_id", roundID.String()))
		return Change{Previous: previous, New: previous, Trigger: trigger, PositionChanges: map[string]PositionChange{}}
	}
	events, err := t.events.ByRound(ctx, roundID)
	if err != nil {
		events = nil
	}
	pars := t.courses.Pars(ctx, round.CourseID)

	next := ComputeWithDefault(round, events, pars, t.defaultPar, func(playerID string) string {
		return t.players.DisplayName(ctx, playerID)
	})
	changes := PositionChanges(previous, next)
	t.current[roundID] = next
	change := Change{Previous: previous, New: next, Trigger: trigger, PositionChanges: changes}
	listeners := t.listeners
	tracked := len(t.current)
	t.mu.Unlock()

	metrics.RecordStandingsRecompute(string(trigger))
	metrics.UpdateTrackedRounds(tracked)
	for _, l := range listeners {
		l(roundID, change)
	}
	return change
}

// Current returns the latest computed standings for a round; nil when the
// round has never been recomputed.
func (t *Tracker) Current(roundID uuid.UUID) []model.Standing {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.Standing(nil), t.current[roundID]...)
}
