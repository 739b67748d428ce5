// Package sync owns replication between the local event log and the remote
// record store: the per-record status table, the push/pull engine with its
// reentrancy guard, and the scheduler that decides when the engine runs.
package sync

import (
	"sync"
	"time"
)

// Status is a record's position in the replication pipeline:
//
//	pending → inFlight → {synced | failed}
//
// with failed eligible for reset back to pending.
type Status string

const (
	// StatusPending means written locally, not yet pushed.
	StatusPending Status = "pending"
	// StatusInFlight means a push has been dispatched and the remote save is
	// outstanding. Entries already inFlight are skipped by concurrent push
	// invocations; this is the reentrancy guard.
	StatusInFlight Status = "inFlight"
	// StatusSynced means the record round-tripped with the remote store.
	StatusSynced Status = "synced"
	// StatusFailed means the last push attempt failed; eligible for retry.
	StatusFailed Status = "failed"
)

// StatusEntry tracks one outbound or inbound record. Local-only, never
// replicated; the table can be dropped and rebuilt because the remote store
// stays authoritative.
type StatusEntry struct {
	RecordID    string
	RecordType  string
	Status      Status
	LastAttempt time.Time
	CreatedAt   time.Time
}

// StatusTable is the in-memory sync status store. It carries its own lock
// because the interactive write path tracks new entries while the engine
// flips statuses from the replication domain.
type StatusTable struct {
	mu      sync.Mutex
	entries map[string]*StatusEntry
}

// NewStatusTable creates an empty status table.
func NewStatusTable() *StatusTable {
	return &StatusTable{entries: make(map[string]*StatusEntry)}
}

// TrackPending registers a locally created record awaiting push. Re-tracking
// an existing id is a no-op.
func (t *StatusTable) TrackPending(recordID, recordType string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[recordID]; ok {
		return
	}
	t.entries[recordID] = &StatusEntry{
		RecordID:   recordID,
		RecordType: recordType,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}
}

// TrackSynced registers a record that arrived via pull; it is already in the
// remote store by definition.
func (t *StatusTable) TrackSynced(recordID, recordType string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[recordID]; ok {
		return
	}
	t.entries[recordID] = &StatusEntry{
		RecordID:   recordID,
		RecordType: recordType,
		Status:     StatusSynced,
		CreatedAt:  time.Now(),
	}
}

// Get returns a copy of the entry for recordID.
func (t *StatusTable) Get(recordID string) (StatusEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[recordID]
	if !ok {
		return StatusEntry{}, false
	}
	return *e, true
}

// Select returns copies of all entries currently in any of the given states.
func (t *StatusTable) Select(states ...Status) []StatusEntry {
	want := make(map[Status]struct{}, len(states))
	for _, s := range states {
		want[s] = struct{}{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []StatusEntry
	for _, e := range t.entries {
		if _, ok := want[e.Status]; ok {
			out = append(out, *e)
		}
	}
	return out
}

// MarkBatch flips every listed record to status and stamps the attempt time.
// The flip is atomic with respect to Select, so a concurrent push invocation
// observes either none or all of a batch transition.
func (t *StatusTable) MarkBatch(recordIDs []string, status Status, attempt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range recordIDs {
		if e, ok := t.entries[id]; ok {
			e.Status = status
			e.LastAttempt = attempt
		}
	}
}

// ResetFailed flips every failed entry back to pending and returns how many
// were reset.
func (t *StatusTable) ResetFailed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, e := range t.entries {
		if e.Status == StatusFailed {
			e.Status = StatusPending
			n++
		}
	}
	return n
}

// Counts returns the table composition by status.
func (t *StatusTable) Counts() (pending, inFlight, synced, failed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.entries {
		switch e.Status {
		case StatusPending:
			pending++
		case StatusInFlight:
			inFlight++
		case StatusSynced:
			synced++
		case StatusFailed:
			failed++
		}
	}
	return pending, inFlight, synced, failed
}
