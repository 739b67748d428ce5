// Package conflict classifies a newly arrived score event against the
// existing events sharing its (round, player, hole) key.
//
// Pure and stateless: it never touches a store, only the event slices passed
// in. Invoked by the pull pipeline after inserting remote events.
package conflict

import (
	"github.com/google/uuid"

	"github.com/okian/birdie/internal/domain/model"
)

// Kind is the classification of an incoming event.
type Kind int

const (
	// NoConflict means no other event exists for the key.
	NoConflict Kind = iota
	// Correction means the incoming event supersedes an event that
	// originated from the same device.
	Correction
	// SilentMerge means a different device independently reported the same
	// stroke count; no human resolution is required.
	SilentMerge
	// Discrepancy means devices disagree: either differing stroke counts
	// for independent initial scores, or a cross-device supersession.
	Discrepancy
)

// String returns the classification name for logs and metrics labels.
func (k Kind) String() string {
	switch k {
	case NoConflict:
		return "no_conflict"
	case Correction:
		return "correction"
	case SilentMerge:
		return "silent_merge"
	case Discrepancy:
		return "discrepancy"
	default:
		return "unknown"
	}
}

// Result carries the classification and, for discrepancies, the two
// conflicting event ids so a Discrepancy record can be created.
type Result struct {
	Kind            Kind
	ExistingEventID uuid.UUID
	IncomingEventID uuid.UUID
}

// Classify evaluates incoming against events sharing its
// (round, player, hole) key. The peer slice may include the incoming event
// itself and unrelated events; both are filtered out.
//
// Classification order matters: a same-device correction is recognised
// before any cross-device comparison, and a cross-device supersession is
// never auto-accepted. Any number of same-score initial events from distinct
// devices classifies as a silent merge.
func Classify(incoming model.ScoreEvent, peers []model.ScoreEvent) Result {
	var others []model.ScoreEvent
	for _, e := range peers {
		if e.ID == incoming.ID {
			continue
		}
		if e.RoundID != incoming.RoundID || e.PlayerID != incoming.PlayerID || e.HoleNumber != incoming.HoleNumber {
			continue
		}
		others = append(others, e)
	}

	if len(others) == 0 {
		return Result{Kind: NoConflict}
	}

	if incoming.SupersedesEventID != nil {
		// Locate the superseded event to learn its origin device. When the
		// target has not arrived yet, fall back to the first peer's device.
		targetDevice := others[0].DeviceID
		for _, e := range others {
			if e.ID == *incoming.SupersedesEventID {
				targetDevice = e.DeviceID
				break
			}
		}
		if targetDevice == incoming.DeviceID {
			return Result{Kind: Correction}
		}
		return Result{
			Kind:            Discrepancy,
			ExistingEventID: others[0].ID,
			IncomingEventID: incoming.ID,
		}
	}

	// Incoming is an initial score. Compare against the first initial score
	// from a different device.
	for _, e := range others {
		if e.SupersedesEventID != nil || e.DeviceID == incoming.DeviceID {
			continue
		}
		if e.StrokeCount == incoming.StrokeCount {
			return Result{Kind: SilentMerge}
		}
		return Result{
			Kind:            Discrepancy,
			ExistingEventID: e.ID,
			IncomingEventID: incoming.ID,
		}
	}

	// Only same-device peers or corrections exist; nothing competes.
	return Result{Kind: NoConflict}
}
