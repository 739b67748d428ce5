// Package dedupe tracks already-processed remote record ids so the pull
// pipeline can skip records it has seen in earlier cycles without decoding
// them again.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen record ids for at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it if
	// not. Returns true when id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes id from the seen set so it can be reprocessed. Used
	// when a record was marked seen but its local insert failed.
	Unrecord(ctx context.Context, id string)

	// Size returns the current number of tracked ids.
	Size() int
}

// inMemoryDeduper implements Deduper with a map plus a FIFO ring of ids for
// bounded eviction. maxSize <= 0 disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string
	head    int
	maxSize int
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		seen:    make(map[string]struct{}),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[id] = struct{}{}
	if d.maxSize > 0 {
		d.order = append(d.order, id)
	}
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, id)
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// evictOldest drops the oldest still-tracked id. Entries removed by Unrecord
// are skipped. Must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	for d.head < len(d.order) {
		id := d.order[d.head]
		d.head++
		if _, ok := d.seen[id]; ok {
			delete(d.seen, id)
			break
		}
	}
	// Compact once the consumed prefix dominates the ring.
	if d.head > len(d.order)/2 {
		d.order = append(d.order[:0], d.order[d.head:]...)
		d.head = 0
	}
}
