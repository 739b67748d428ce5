// Package remote defines the wire record shape and the remote record store
// client the replication engine depends on. The engine never performs
// network transport itself; a Client implementation is injected.
package remote

import "context"

// Record is the wire shape exchanged with the remote store. Name is the
// record's unique identity (a uuid string); Type tags the record kind.
type Record struct {
	Type   string
	Name   string
	Fields map[string]any
}

// Query selects records by type; Predicate is an opaque filter expression
// interpreted by the implementation ("" matches everything).
type Query struct {
	RecordType string
	Predicate  string
}

// Client is the remote record store. All calls may fail with either a
// network-class error (errors.Is(err, ErrNetworkUnavailable)) or any other
// error; the engine treats the two families differently.
type Client interface {
	// Save batch-upserts records and returns the saved copies.
	Save(ctx context.Context, records []Record) ([]Record, error)

	// Fetch returns all records matching the query in zone ("" for the
	// default zone).
	Fetch(ctx context.Context, q Query, zone string) ([]Record, error)

	// Subscribe registers a change subscription for the record type and
	// returns its id.
	Subscribe(ctx context.Context, recordType, predicate string) (string, error)

	// ListSubscriptionIDs returns all existing subscription ids.
	ListSubscriptionIDs(ctx context.Context) ([]string, error)

	// DeleteSubscription removes a subscription.
	DeleteSubscription(ctx context.Context, id string) error
}
