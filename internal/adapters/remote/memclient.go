package remote

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// MemClient is an in-process Client used by the simulator, by single-node
// deployments without a remote backend, and by tests. Records are upserted
// by (type, name); subscriptions are tracked by id.
//
// SetOffline flips every subsequent call to the network-class failure so
// partial-connectivity behavior can be exercised.
type MemClient struct {
	mu            sync.RWMutex
	records       map[string]Record // keyed by type "/" name
	subscriptions map[string]string // id -> record type
	offline       atomic.Bool

	saves   atomic.Int64
	fetches atomic.Int64
}

// NewMemClient creates an empty in-memory remote store.
func NewMemClient() *MemClient {
	return &MemClient{
		records:       make(map[string]Record),
		subscriptions: make(map[string]string),
	}
}

// SetOffline toggles simulated connectivity loss.
func (c *MemClient) SetOffline(offline bool) {
	c.offline.Store(offline)
}

// SaveCalls returns the number of Save invocations, used to assert the
// push pipeline's at-most-once guarantee.
func (c *MemClient) SaveCalls() int64 { return c.saves.Load() }

// FetchCalls returns the number of Fetch invocations.
func (c *MemClient) FetchCalls() int64 { return c.fetches.Load() }

func (c *MemClient) Save(ctx context.Context, records []Record) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.saves.Add(1)
	if c.offline.Load() {
		return nil, fmt.Errorf("save: %w", ErrNetworkUnavailable)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	saved := make([]Record, 0, len(records))
	for _, rec := range records {
		c.records[rec.Type+"/"+rec.Name] = cloneRecord(rec)
		saved = append(saved, rec)
	}
	return saved, nil
}

func (c *MemClient) Fetch(ctx context.Context, q Query, _ string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.fetches.Add(1)
	if c.offline.Load() {
		return nil, fmt.Errorf("fetch: %w", ErrNetworkUnavailable)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Record
	for _, rec := range c.records {
		if rec.Type == q.RecordType {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

func (c *MemClient) Subscribe(ctx context.Context, recordType, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.offline.Load() {
		return "", fmt.Errorf("subscribe: %w", ErrNetworkUnavailable)
	}
	id := uuid.NewString()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[id] = recordType
	return id, nil
}

func (c *MemClient) ListSubscriptionIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.offline.Load() {
		return nil, fmt.Errorf("list subscriptions: %w", ErrNetworkUnavailable)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.subscriptions))
	for id := range c.subscriptions {
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *MemClient) DeleteSubscription(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.offline.Load() {
		return fmt.Errorf("delete subscription: %w", ErrNetworkUnavailable)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.subscriptions[id]; !ok {
		return ErrSubscriptionNotFound
	}
	delete(c.subscriptions, id)
	return nil
}

func cloneRecord(rec Record) Record {
	out := Record{Type: rec.Type, Name: rec.Name, Fields: make(map[string]any, len(rec.Fields))}
	for k, v := range rec.Fields {
		out.Fields[k] = v
	}
	return out
}
