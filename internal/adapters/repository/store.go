// Package repository defines the local stores backing the event log, round
// table, course catalog and discrepancy table, plus in-memory
// implementations.
//
// Records are plain values held in indexed tables keyed by id; the stores
// own them outright and hand out copies, never shared pointers. The event
// store is append-only by construction: it has no update or delete surface.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/okian/birdie/internal/domain/model"
)

// EventStore holds the append-only score event log.
type EventStore interface {
	// Append inserts a new event. Returns ErrDuplicateEvent when an event
	// with the same id already exists; the stored copy is never overwritten.
	Append(ctx context.Context, event model.ScoreEvent) error

	// Get returns the event with the given id or ErrEventNotFound.
	Get(ctx context.Context, id uuid.UUID) (model.ScoreEvent, error)

	// ByRound returns all events for a round in unspecified order.
	ByRound(ctx context.Context, roundID uuid.UUID) ([]model.ScoreEvent, error)

	// ByKey returns all events for a (round, player, hole) key.
	ByKey(ctx context.Context, roundID uuid.UUID, playerID string, hole int) ([]model.ScoreEvent, error)

	// Contains reports whether an event with the given id exists.
	Contains(ctx context.Context, id uuid.UUID) bool

	// Count returns the total number of stored events.
	Count(ctx context.Context) int
}

// RoundStore holds round records.
type RoundStore interface {
	// Create inserts a new round. Returns ErrDuplicateRound on id collision.
	Create(ctx context.Context, round model.Round) error

	// Get returns the round with the given id or ErrRoundNotFound.
	Get(ctx context.Context, id uuid.UUID) (model.Round, error)

	// Update replaces the stored round. Returns ErrRoundNotFound when the
	// id is unknown.
	Update(ctx context.Context, round model.Round) error

	// ByStatus returns all rounds currently in the given status.
	ByStatus(ctx context.Context, status model.RoundStatus) ([]model.Round, error)
}

// CourseStore holds the minimal course catalog standings need for pars.
type CourseStore interface {
	Create(ctx context.Context, course model.Course) error
	Get(ctx context.Context, id uuid.UUID) (model.Course, error)

	// Pars returns the hole->par map for a course; nil when unknown.
	Pars(ctx context.Context, id uuid.UUID) map[int]int
}

// PlayerStore holds registered players for display-name resolution.
type PlayerStore interface {
	Create(ctx context.Context, player model.Player) error
	Get(ctx context.Context, id uuid.UUID) (model.Player, error)

	// DisplayName resolves a player id string to a display name, falling
	// back to the id itself for unknown players and unwrapping guest
	// pseudo-ids.
	DisplayName(ctx context.Context, playerID string) string
}

// DiscrepancyStore holds detected score conflicts awaiting resolution.
type DiscrepancyStore interface {
	Create(ctx context.Context, d model.Discrepancy) error
	Get(ctx context.Context, id uuid.UUID) (model.Discrepancy, error)

	// ByRound returns all discrepancies for a round.
	ByRound(ctx context.Context, roundID uuid.UUID) ([]model.Discrepancy, error)

	// Unresolved returns unresolved discrepancies for a round.
	Unresolved(ctx context.Context, roundID uuid.UUID) ([]model.Discrepancy, error)

	// Covers reports whether an unresolved discrepancy already references
	// the given event pair, preventing duplicates under repeated delivery.
	Covers(ctx context.Context, a, b uuid.UUID) bool

	// Resolve marks the discrepancy resolved by the given authoritative
	// event. Returns ErrDiscrepancyNotFound for unknown ids.
	Resolve(ctx context.Context, id, resolvedBy uuid.UUID) error
}
