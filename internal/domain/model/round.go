package model

import (
	"time"

	"github.com/google/uuid"
)

// RoundStatus is the lifecycle state of a round.
type RoundStatus string

// Round lifecycle states. A round is created in StatusSetup, moves to
// StatusActive on explicit start, to StatusAwaitingFinalization automatically
// once every (participant, hole) pair has a resolved score, and to
// StatusCompleted on confirmation or forced early finish.
const (
	StatusSetup                RoundStatus = "setup"
	StatusActive               RoundStatus = "active"
	StatusAwaitingFinalization RoundStatus = "awaitingFinalization"
	StatusCompleted            RoundStatus = "completed"
)

// Round is a multi-hole scoring session shared by several devices.
// The participant lists (PlayerIDs, GuestNames) may only change while the
// round is in StatusSetup; the lifecycle manager enforces this.
type Round struct {
	ID          uuid.UUID
	CourseID    uuid.UUID
	OrganizerID uuid.UUID
	// PlayerIDs holds registered player ids as strings.
	PlayerIDs []string
	// GuestNames holds round-scoped guest labels with no persistent identity.
	GuestNames  []string
	HoleCount   int
	Status      RoundStatus
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// Participants returns registered player ids followed by guest pseudo-ids,
// the unified identifier list used by completion detection and standings.
func (r Round) Participants() []string {
	all := make([]string, 0, len(r.PlayerIDs)+len(r.GuestNames))
	all = append(all, r.PlayerIDs...)
	for _, name := range r.GuestNames {
		all = append(all, GuestPlayerID(name))
	}
	return all
}

func (r Round) IsSetup() bool  { return r.Status == StatusSetup }
func (r Round) IsActive() bool { return r.Status == StatusActive }

// IsAwaitingFinalization reports whether all scores are in and the round is
// waiting for explicit confirmation.
func (r Round) IsAwaitingFinalization() bool { return r.Status == StatusAwaitingFinalization }

func (r Round) IsCompleted() bool { return r.Status == StatusCompleted }

// Course is a minimal catalog entry carrying the per-hole par values
// standings aggregation needs. Catalog CRUD lives outside this module.
type Course struct {
	ID        uuid.UUID
	Name      string
	HoleCount int
	// Pars maps 1-based hole number to par. Holes absent from the map fall
	// back to the configured default par.
	Pars      map[int]int
	CreatedAt time.Time
}

// Player is a registered participant with a stable identity.
type Player struct {
	ID          uuid.UUID
	DisplayName string
	Aliases     []string
	CreatedAt   time.Time
}
