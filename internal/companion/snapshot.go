// Package companion bridges live standings to paired low-power displays. The
// main app side serializes compact snapshots and hands them to a transport;
// the display side decodes them, tolerating fields older senders omit, and
// renders a staleness hint when updates stop arriving.
package companion

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/birdie/internal/domain/model"
)

// StalenessThreshold is how old a snapshot may be before the display flags it.
const StalenessThreshold = 30 * time.Second

// defaultHolePar backfills snapshots from senders that predate the
// currentHolePar field.
const defaultHolePar = 3

// Snapshot is the compact state pushed to a companion display.
type Snapshot struct {
	RoundID        uuid.UUID        `json:"roundID"`
	Standings      []model.Standing `json:"standings"`
	CurrentHole    int              `json:"currentHole"`
	CurrentHolePar int              `json:"currentHolePar"`
	LastUpdatedAt  time.Time        `json:"lastUpdatedAt"`
}

// Encode serializes the snapshot for the transport.
func (s Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot parses a wire snapshot. A payload without currentHolePar
// decodes with the default par so older senders stay compatible.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	return DecodeSnapshotWithDefault(data, defaultHolePar)
}

// DecodeSnapshotWithDefault parses a wire snapshot, backfilling a missing
// currentHolePar with the given par. Non-positive pars fall back to the
// package default.
func DecodeSnapshotWithDefault(data []byte, defaultPar int) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if defaultPar < 1 {
		defaultPar = defaultHolePar
	}
	if s.CurrentHolePar == 0 {
		s.CurrentHolePar = defaultPar
	}
	return s, nil
}

// Stale reports whether the snapshot is older than the staleness threshold
// at the given time.
func (s Snapshot) Stale(now time.Time) bool {
	return now.Sub(s.LastUpdatedAt) > StalenessThreshold
}

// AgeText renders a human staleness hint like "45s ago" or "2m ago"; empty
// while the snapshot is fresh.
func (s Snapshot) AgeText(now time.Time) string {
	age := now.Sub(s.LastUpdatedAt)
	if age <= StalenessThreshold {
		return ""
	}
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	return fmt.Sprintf("%dm ago", int(age.Minutes()))
}
