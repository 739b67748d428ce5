package companion

import (
	"context"
	"sync"

	"github.com/okian/birdie/pkg/metrics"
)

const defaultQueueCapacity = 256

// Queue provides non-blocking enqueue and channel-based dequeue of snapshots.
// Enqueue never blocks the standings listener that feeds it: a full queue
// drops the snapshot, because a newer one always follows.
type Queue interface {
	// Enqueue adds a snapshot. Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, s Snapshot) bool

	// Dequeue returns a channel receiving snapshots as they become
	// available. Closed when the queue closes.
	Dequeue(ctx context.Context) <-chan Snapshot

	// Len returns the current number of queued snapshots.
	Len(ctx context.Context) int

	// Close shuts the queue down; no further enqueues are accepted.
	Close() error
}

// InMemoryQueue implements Queue over a buffered channel.
type InMemoryQueue struct {
	snapshots chan Snapshot
	mu        sync.RWMutex
	closed    bool
}

// QueueOption applies a configuration option to the queue.
type QueueOption func(*queueConfig)

type queueConfig struct {
	capacity int
}

// WithCapacity sets the queue capacity.
func WithCapacity(n int) QueueOption {
	return func(c *queueConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// NewInMemoryQueue creates an in-memory snapshot queue.
func NewInMemoryQueue(opts ...QueueOption) *InMemoryQueue {
	cfg := queueConfig{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &InMemoryQueue{snapshots: make(chan Snapshot, cfg.capacity)}
}

// Enqueue adds a snapshot without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s Snapshot) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordSnapshotDropped()
		return false
	}
	select {
	case q.snapshots <- s:
		return true
	case <-ctx.Done():
		metrics.RecordSnapshotDropped()
		return false
	default:
		metrics.RecordSnapshotDropped()
		return false
	}
}

// Dequeue returns the consumer channel.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Snapshot {
	out := make(chan Snapshot)
	go func() {
		defer close(out)
		for s := range q.snapshots {
			select {
			case out <- s:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued snapshots.
func (q *InMemoryQueue) Len(context.Context) int {
	return len(q.snapshots)
}

// Close shuts the queue down.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.snapshots)
	q.closed = true
	return nil
}
