// Package model contains domain value types passed between layers.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScoreEvent is an immutable score entry for one player on one hole of a
// round. Corrections never mutate an existing event; they create a new event
// whose SupersedesEventID points at the replaced one. The event log is
// append-only: stores expose no update or delete operations for events.
type ScoreEvent struct {
	ID      uuid.UUID
	RoundID uuid.UUID
	// HoleNumber is 1-based.
	HoleNumber int
	// PlayerID is a Player id string for registered players or a guest
	// pseudo-id ("guest:{name}") for round-scoped guests.
	PlayerID string
	// StrokeCount is the score, 1-10.
	StrokeCount int
	// SupersedesEventID is nil for initial scores and set for corrections.
	SupersedesEventID *uuid.UUID
	// ReportedBy is the player who entered this score on their device.
	ReportedBy uuid.UUID
	// DeviceID identifies the originating device, used by conflict
	// classification.
	DeviceID  string
	CreatedAt time.Time
}

// IsCorrection reports whether the event supersedes an earlier one.
func (e ScoreEvent) IsCorrection() bool {
	return e.SupersedesEventID != nil
}

const guestPrefix = "guest:"

// GuestPlayerID derives the deterministic pseudo-id for a guest display name.
func GuestPlayerID(name string) string {
	return guestPrefix + name
}

// GuestName returns the display name behind a guest pseudo-id, or ("", false)
// for registered player ids.
func GuestName(playerID string) (string, bool) {
	if !strings.HasPrefix(playerID, guestPrefix) {
		return "", false
	}
	return playerID[len(guestPrefix):], true
}
