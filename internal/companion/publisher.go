package companion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/birdie/pkg/logger"
	"github.com/okian/birdie/pkg/metrics"
)

const publisherShutdownTimeout = 5 * time.Second

// Transport delivers an encoded snapshot to the paired display. Delivery is
// best-effort; a failed send is logged and the snapshot dropped, never
// retried, because the next standings change produces a fresher one.
type Transport interface {
	Send(ctx context.Context, roundID uuid.UUID, payload []byte) error
}

// Cache remembers the latest snapshot per round. Read by the display-facing
// API so a reconnecting display can catch up without waiting for a change.
type Cache struct {
	mu     sync.RWMutex
	latest map[uuid.UUID]Snapshot
}

// NewCache creates an empty snapshot cache.
func NewCache() *Cache {
	return &Cache{latest: make(map[uuid.UUID]Snapshot)}
}

// Put stores the snapshot as the latest for its round.
func (c *Cache) Put(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest[s.RoundID] = s
}

// Latest returns the most recent snapshot for a round.
func (c *Cache) Latest(roundID uuid.UUID) (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.latest[roundID]
	return s, ok
}

// Publisher drains the snapshot queue into the cache and transport.
type Publisher struct {
	queue     Queue
	transport Transport
	cache     *Cache

	shutdown chan struct{}
	done     chan struct{}

	log logger.Logger
}

// PublisherOption applies a configuration option to the Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets a custom logger.
func WithPublisherLogger(log logger.Logger) PublisherOption {
	return func(p *Publisher) {
		if log != nil {
			p.log = log
		}
	}
}

// NewPublisher creates a publisher over the queue. transport may be nil when
// no display is paired; snapshots still land in the cache.
func NewPublisher(queue Queue, transport Transport, cache *Cache, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		queue:     queue,
		transport: transport,
		cache:     cache,
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run drains the queue until ctx is canceled or the queue closes.
func (p *Publisher) Run(ctx context.Context) {
	defer close(p.done)

	snapshots := p.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case s, ok := <-snapshots:
			if !ok {
				return
			}
			p.publish(ctx, s)
		}
	}
}

// Shutdown stops the publisher, waiting for the loop to exit.
func (p *Publisher) Shutdown(ctx context.Context) error {
	close(p.shutdown)
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("publisher shutdown timed out: %w", ctx.Err())
	case <-time.After(publisherShutdownTimeout):
		return fmt.Errorf("publisher shutdown timed out after %s", publisherShutdownTimeout)
	}
}

func (p *Publisher) publish(ctx context.Context, s Snapshot) {
	p.cache.Put(s)
	metrics.RecordSnapshotPublished()

	if p.transport == nil {
		return
	}
	payload, err := s.Encode()
	if err != nil {
		p.log.Error(ctx, "snapshot encode failed", logger.Error(err))
		return
	}
	if err := p.transport.Send(ctx, s.RoundID, payload); err != nil {
		p.log.Warn(ctx, "snapshot send failed",
			logger.String("round_id", s.RoundID.String()),
			logger.Error(err))
	}
}
