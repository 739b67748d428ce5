package model

import (
	"time"

	"github.com/google/uuid"
)

// DiscrepancyStatus is the resolution state of a Discrepancy.
type DiscrepancyStatus string

const (
	// DiscrepancyUnresolved means the conflict awaits a human decision.
	DiscrepancyUnresolved DiscrepancyStatus = "unresolved"
	// DiscrepancyResolved means an authoritative event settled the conflict.
	DiscrepancyResolved DiscrepancyStatus = "resolved"
)

// Discrepancy records a detected disagreement between two score events from
// different devices for the same (round, player, hole). Created only by the
// pull pipeline's conflict classification; resolved externally by creating a
// new authoritative, non-superseding event.
type Discrepancy struct {
	ID         uuid.UUID
	RoundID    uuid.UUID
	PlayerID   string
	HoleNumber int
	// EventID1 and EventID2 reference the two conflicting score events.
	EventID1 uuid.UUID
	EventID2 uuid.UUID
	Status   DiscrepancyStatus
	// ResolvedByEventID is nil until resolution.
	ResolvedByEventID *uuid.UUID
	CreatedAt         time.Time
}

// Involves reports whether both given event ids are the pair this
// discrepancy tracks, in either order.
func (d Discrepancy) Involves(a, b uuid.UUID) bool {
	return (d.EventID1 == a && d.EventID2 == b) || (d.EventID1 == b && d.EventID2 == a)
}
