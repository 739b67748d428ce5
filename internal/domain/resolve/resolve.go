// Package resolve selects the currently effective score event for a
// (player, hole) pair out of the append-only event log.
//
// An event is a leaf when no other event's supersedes reference points at it.
// Correction chains normally collapse to a single leaf; concurrent
// uncoordinated writes from different devices can leave several simultaneous
// leaves, which is expected. The selection among multiple leaves must be
// deterministic and order-independent because completion detection and
// standings totals on every device depend on agreeing over the same event
// set.
package resolve

import "github.com/okian/birdie/internal/domain/model"

// Current returns the effective event for playerID on hole, or false when no
// event exists. With several concurrent leaves the one with the earliest
// creation timestamp wins; equal timestamps fall back to the smaller id
// string so the choice is total.
func Current(playerID string, hole int, events []model.ScoreEvent) (model.ScoreEvent, bool) {
	superseded := make(map[string]struct{})
	var matched []model.ScoreEvent
	for _, e := range events {
		if e.PlayerID != playerID || e.HoleNumber != hole {
			continue
		}
		matched = append(matched, e)
		if e.SupersedesEventID != nil {
			superseded[e.SupersedesEventID.String()] = struct{}{}
		}
	}

	var best model.ScoreEvent
	found := false
	for _, e := range matched {
		if _, ok := superseded[e.ID.String()]; ok {
			continue // not a leaf
		}
		if !found || earlier(e, best) {
			best = e
			found = true
		}
	}
	return best, found
}

// HasResolved reports whether any leaf exists for playerID on hole.
func HasResolved(playerID string, hole int, events []model.ScoreEvent) bool {
	_, ok := Current(playerID, hole, events)
	return ok
}

func earlier(a, b model.ScoreEvent) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}
