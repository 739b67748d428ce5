package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/birdie/internal/adapters/remote"
	"github.com/okian/birdie/internal/adapters/repository"
	"github.com/okian/birdie/internal/domain/conflict"
	"github.com/okian/birdie/internal/domain/dedupe"
	"github.com/okian/birdie/internal/domain/lifecycle"
	"github.com/okian/birdie/internal/domain/model"
	"github.com/okian/birdie/internal/domain/standings"
	"github.com/okian/birdie/pkg/logger"
	"github.com/okian/birdie/pkg/metrics"
)

// Recomputer is implemented by the standings tracker; the engine dispatches a
// recompute per touched round after a pull cycle.
type Recomputer interface {
	Recompute(ctx context.Context, roundID uuid.UUID, trigger standings.Trigger) standings.Change
}

// CompletionChecker re-evaluates round completion after remote events land.
type CompletionChecker interface {
	CheckCompletion(ctx context.Context, roundID uuid.UUID) (lifecycle.CompletionResult, error)
}

// Engine replicates score events between the local log and the remote record
// store. Push and pull critical sections run under one mutex; the interactive
// write path only touches the status table, which carries its own lock, so
// score entry never blocks on a network call.
type Engine struct {
	mu stdsync.Mutex

	client   remote.Client
	events   repository.EventStore
	discreps repository.DiscrepancyStore
	status   *StatusTable
	deduper  dedupe.Deduper
	states   *stateHub

	recomputer Recomputer
	completion CompletionChecker

	zone string
	log  logger.Logger
}

// NewEngine wires the replication engine. The status table is shared with the
// scoring service, which registers freshly appended events as pending.
func NewEngine(client remote.Client, events repository.EventStore, discreps repository.DiscrepancyStore, status *StatusTable, opts ...Option) *Engine {
	e := &Engine{
		client:   client,
		events:   events,
		discreps: discreps,
		status:   status,
		deduper:  dedupe.NewInMemoryDeduper(),
		states:   newStateHub(),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the engine's current state.
func (e *Engine) State() State {
	return e.states.get()
}

// Subscribe returns a channel receiving future state transitions. Delivery is
// best-effort; a full buffer drops the update rather than blocking the engine.
func (e *Engine) Subscribe() <-chan State {
	return e.states.subscribe()
}

// PushPending uploads every pending and failed score event. Entries are
// flipped to inFlight before the network call so a concurrent invocation
// selects an empty batch instead of re-sending the same records.
//
// On success the batch becomes synced. A network failure marks the batch
// failed and the engine offline; any other failure marks it failed and the
// engine errored. Failed entries stay eligible for the next push.
func (e *Engine) PushPending(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	candidates := e.status.Select(StatusPending, StatusFailed)
	if len(candidates) == 0 {
		e.setState(StateIdle)
		return nil
	}

	var (
		ids     []string
		records []remote.Record
		orphans []string
	)
	for _, entry := range candidates {
		if entry.RecordType != remote.TypeScoreEvent {
			continue
		}
		id, err := uuid.Parse(entry.RecordID)
		if err != nil {
			orphans = append(orphans, entry.RecordID)
			continue
		}
		event, err := e.events.Get(ctx, id)
		if err != nil {
			orphans = append(orphans, entry.RecordID)
			continue
		}
		ids = append(ids, entry.RecordID)
		records = append(records, remote.EncodeScoreEvent(event))
	}
	if len(orphans) > 0 {
		// Tracked entries whose event cannot be loaded will never push; park
		// them as failed instead of retrying forever.
		e.status.MarkBatch(orphans, StatusFailed, time.Now())
		e.log.Warn(ctx, "push skipped unresolvable entries", logger.Int("count", len(orphans)))
	}
	if len(records) == 0 {
		e.publishStatusGauges()
		e.setState(StateIdle)
		return nil
	}

	e.setState(StateSyncing)
	now := time.Now()
	e.status.MarkBatch(ids, StatusInFlight, now)
	e.publishStatusGauges()

	if _, err := e.client.Save(ctx, records); err != nil {
		e.status.MarkBatch(ids, StatusFailed, time.Now())
		e.publishStatusGauges()
		if remote.IsNetworkError(err) {
			metrics.RecordPushFailure("network")
			e.setState(StateOffline)
		} else {
			metrics.RecordPushFailure("other")
			e.setState(StateError)
		}
		e.log.Warn(ctx, "push failed", logger.Int("batch", len(records)), logger.Error(err))
		return fmt.Errorf("%w: %v", ErrPushFailed, err)
	}

	e.status.MarkBatch(ids, StatusSynced, time.Now())
	e.publishStatusGauges()
	metrics.RecordEventsPushed(len(records))
	e.setState(StateIdle)
	e.log.Info(ctx, "push completed", logger.Int("batch", len(records)))
	return nil
}

// RetryFailed resets failed entries to pending and pushes. Invoked when
// connectivity returns.
func (e *Engine) RetryFailed(ctx context.Context) error {
	n := e.status.ResetFailed()
	if n > 0 {
		e.log.Info(ctx, "retrying failed records", logger.Int("count", n))
	}
	return e.PushPending(ctx)
}

// PullRecords fetches all remote score events, inserts the ones not yet seen
// locally, classifies each insert against its (round, player, hole) peers,
// and recomputes standings for every touched round.
//
// A fetch failure aborts the cycle without touching local state; already
// applied data is never rolled back because inserts are append-only.
func (e *Engine) PullRecords(ctx context.Context) error {
	e.mu.Lock()

	e.setState(StateSyncing)
	recs, err := e.client.Fetch(ctx, remote.Query{RecordType: remote.TypeScoreEvent}, e.zone)
	if err != nil {
		if remote.IsNetworkError(err) {
			metrics.RecordPullFailure("network")
			e.setState(StateOffline)
		} else {
			metrics.RecordPullFailure("other")
			e.setState(StateError)
		}
		e.mu.Unlock()
		e.log.Warn(ctx, "pull failed", logger.Error(err))
		return fmt.Errorf("%w: %v", ErrPullFailed, err)
	}

	touched := make(map[uuid.UUID]struct{})
	inserted := 0
	for _, rec := range recs {
		if e.deduper.SeenAndRecord(ctx, rec.Name) {
			continue
		}
		event, ok := remote.DecodeScoreEvent(rec)
		if !ok {
			metrics.RecordMalformedRecord()
			e.log.Warn(ctx, "skipping malformed record", logger.String("record", rec.Name))
			continue
		}
		if err := e.events.Append(ctx, event); err != nil {
			if errors.Is(err, repository.ErrDuplicateEvent) {
				metrics.RecordRemoteDuplicate()
				e.status.TrackSynced(rec.Name, remote.TypeScoreEvent)
				continue
			}
			// Insert failed for another reason; forget the id so a later
			// cycle retries it.
			e.deduper.Unrecord(ctx, rec.Name)
			e.log.Warn(ctx, "insert failed", logger.String("record", rec.Name), logger.Error(err))
			continue
		}
		e.status.TrackSynced(rec.Name, remote.TypeScoreEvent)
		metrics.RecordEventPulled()
		inserted++
		touched[event.RoundID] = struct{}{}
		e.classify(ctx, event)
	}
	e.publishStatusGauges()
	e.setState(StateIdle)
	e.mu.Unlock()

	// Recomputes run outside the critical section; the tracker has its own
	// lock and listeners may be slow.
	for roundID := range touched {
		if e.recomputer != nil {
			e.recomputer.Recompute(ctx, roundID, standings.TriggerRemoteSync)
		}
		if e.completion != nil {
			if _, err := e.completion.CheckCompletion(ctx, roundID); err != nil {
				e.log.Warn(ctx, "completion check failed", logger.String("round_id", roundID.String()), logger.Error(err))
			}
		}
	}
	if inserted > 0 {
		e.log.Info(ctx, "pull completed", logger.Int("inserted", inserted), logger.Int("fetched", len(recs)))
	}
	return nil
}

// Sync runs a full cycle: push local work, then pull remote work.
func (e *Engine) Sync(ctx context.Context) error {
	if err := e.PushPending(ctx); err != nil {
		return err
	}
	return e.PullRecords(ctx)
}

// classify evaluates a freshly inserted remote event against its key peers
// and records the outcome. Silent merges only count a metric; discrepancies
// create a record unless one already covers the same event pair.
func (e *Engine) classify(ctx context.Context, event model.ScoreEvent) {
	peers, err := e.events.ByKey(ctx, event.RoundID, event.PlayerID, event.HoleNumber)
	if err != nil {
		return
	}
	result := conflict.Classify(event, peers)
	metrics.RecordClassification(result.Kind.String())

	switch result.Kind {
	case conflict.SilentMerge:
		metrics.RecordSilentMerge()
		e.log.Debug(ctx, "silent merge",
			logger.String("player_id", event.PlayerID),
			logger.Int("hole", event.HoleNumber))
	case conflict.Discrepancy:
		if e.discreps.Covers(ctx, result.ExistingEventID, result.IncomingEventID) {
			return
		}
		d := model.Discrepancy{
			ID:         uuid.New(),
			RoundID:    event.RoundID,
			PlayerID:   event.PlayerID,
			HoleNumber: event.HoleNumber,
			EventID1:   result.ExistingEventID,
			EventID2:   result.IncomingEventID,
			Status:     model.DiscrepancyUnresolved,
			CreatedAt:  time.Now(),
		}
		if err := e.discreps.Create(ctx, d); err != nil {
			e.log.Warn(ctx, "discrepancy create failed", logger.Error(err))
			return
		}
		metrics.RecordDiscrepancyDetected()
		e.log.Info(ctx, "discrepancy detected",
			logger.String("player_id", event.PlayerID),
			logger.Int("hole", event.HoleNumber),
			logger.String("event_id_1", result.ExistingEventID.String()),
			logger.String("event_id_2", result.IncomingEventID.String()))
	}
}

func (e *Engine) setState(s State) {
	prev := e.states.set(s)
	if prev != s {
		metrics.UpdateSyncState(string(s))
	}
}

func (e *Engine) publishStatusGauges() {
	pending, inFlight, synced, failed := e.status.Counts()
	metrics.UpdateStatusEntries(pending, inFlight, synced, failed)
}
