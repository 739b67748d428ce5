// Package scoring is the event-creation boundary: the only sanctioned write
// path into the append-only event log. It validates input, appends the
// event, queues it for replication, and kicks standings recompute plus
// completion detection.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/birdie/internal/adapters/remote"
	"github.com/okian/birdie/internal/adapters/repository"
	"github.com/okian/birdie/internal/domain/lifecycle"
	"github.com/okian/birdie/internal/domain/model"
	"github.com/okian/birdie/internal/domain/standings"
	"github.com/okian/birdie/pkg/logger"
	"github.com/okian/birdie/pkg/metrics"
)

// Stroke count bounds enforced at creation.
const (
	MinStrokeCount = 1
	MaxStrokeCount = 10
)

// Outbox queues a newly created record for replication.
type Outbox interface {
	TrackPending(recordID, recordType string)
}

// Recomputer rebuilds standings after a log mutation.
type Recomputer interface {
	Recompute(ctx context.Context, roundID uuid.UUID, trigger standings.Trigger) standings.Change
}

// CompletionChecker re-evaluates round completion after a score lands.
type CompletionChecker interface {
	CheckCompletion(ctx context.Context, roundID uuid.UUID) (lifecycle.CompletionResult, error)
}

// CreateRequest carries the fields for a new initial score.
type CreateRequest struct {
	RoundID     uuid.UUID
	HoleNumber  int
	PlayerID    string
	StrokeCount int
	ReportedBy  uuid.UUID
}

// CorrectionRequest carries the fields for a correction event.
type CorrectionRequest struct {
	CreateRequest
	// SupersedesEventID references the event being corrected.
	SupersedesEventID uuid.UUID
}

// Service creates immutable score events.
type Service struct {
	events        repository.EventStore
	rounds        repository.RoundStore
	discrepancies repository.DiscrepancyStore
	outbox        Outbox
	recomputer    Recomputer
	completion    CompletionChecker
	deviceID      string
	log           logger.Logger
	now           func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the timestamp source; tests use it to pin CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a scoring service for the given origin device.
func NewService(
	events repository.EventStore,
	rounds repository.RoundStore,
	discrepancies repository.DiscrepancyStore,
	outbox Outbox,
	recomputer Recomputer,
	completion CompletionChecker,
	deviceID string,
	opts ...Option,
) *Service {
	s := &Service{
		events:        events,
		rounds:        rounds,
		discrepancies: discrepancies,
		outbox:        outbox,
		recomputer:    recomputer,
		completion:    completion,
		deviceID:      deviceID,
		log:           logger.Nop(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEvent validates and appends an initial score event.
func (s *Service) CreateEvent(ctx context.Context, req CreateRequest) (model.ScoreEvent, error) {
	round, err := s.validate(ctx, req)
	if err != nil {
		return model.ScoreEvent{}, err
	}
	return s.append(ctx, round, req, nil)
}

// CreateCorrection validates and appends a correction event superseding an
// earlier one for the same (round, player, hole).
func (s *Service) CreateCorrection(ctx context.Context, req CorrectionRequest) (model.ScoreEvent, error) {
	round, err := s.validate(ctx, req.CreateRequest)
	if err != nil {
		return model.ScoreEvent{}, err
	}
	target, err := s.events.Get(ctx, req.SupersedesEventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return model.ScoreEvent{}, fmt.Errorf("%w: %s", ErrSupersededEventNotFound, req.SupersedesEventID)
		}
		return model.ScoreEvent{}, err
	}
	if target.RoundID != req.RoundID || target.PlayerID != req.PlayerID || target.HoleNumber != req.HoleNumber {
		return model.ScoreEvent{}, ErrSupersededEventMismatch
	}
	supersedes := req.SupersedesEventID
	return s.append(ctx, round, req.CreateRequest, &supersedes)
}

// CreateResolution settles a discrepancy: it appends a new authoritative,
// non-superseding event and marks the discrepancy resolved by it.
func (s *Service) CreateResolution(ctx context.Context, discrepancyID uuid.UUID, strokeCount int, reportedBy uuid.UUID) (model.ScoreEvent, error) {
	d, err := s.discrepancies.Get(ctx, discrepancyID)
	if err != nil {
		if errors.Is(err, repository.ErrDiscrepancyNotFound) {
			return model.ScoreEvent{}, fmt.Errorf("%w: %s", ErrDiscrepancyNotFound, discrepancyID)
		}
		return model.ScoreEvent{}, err
	}
	if d.Status == model.DiscrepancyResolved {
		return model.ScoreEvent{}, ErrDiscrepancyAlreadySettled
	}
	req := CreateRequest{
		RoundID:     d.RoundID,
		HoleNumber:  d.HoleNumber,
		PlayerID:    d.PlayerID,
		StrokeCount: strokeCount,
		ReportedBy:  reportedBy,
	}
	round, err := s.validate(ctx, req)
	if err != nil {
		return model.ScoreEvent{}, err
	}
	event, err := s.append(ctx, round, req, nil)
	if err != nil {
		return model.ScoreEvent{}, err
	}
	if err := s.discrepancies.Resolve(ctx, discrepancyID, event.ID); err != nil {
		return model.ScoreEvent{}, fmt.Errorf("mark discrepancy resolved: %w", err)
	}
	metrics.RecordDiscrepancyResolved()
	s.recomputer.Recompute(ctx, d.RoundID, standings.TriggerConflictResolution)
	return event, nil
}

func (s *Service) validate(ctx context.Context, req CreateRequest) (model.Round, error) {
	if req.StrokeCount < MinStrokeCount || req.StrokeCount > MaxStrokeCount {
		return model.Round{}, fmt.Errorf("%w: got %d", ErrInvalidStrokeCount, req.StrokeCount)
	}
	if req.HoleNumber < 1 {
		return model.Round{}, fmt.Errorf("%w: got %d", ErrInvalidHoleNumber, req.HoleNumber)
	}
	round, err := s.rounds.Get(ctx, req.RoundID)
	if err != nil {
		if errors.Is(err, repository.ErrRoundNotFound) {
			return model.Round{}, fmt.Errorf("%w: %s", ErrRoundNotFound, req.RoundID)
		}
		return model.Round{}, err
	}
	if req.HoleNumber > round.HoleCount {
		return model.Round{}, fmt.Errorf("%w: hole %d of %d", ErrInvalidHoleNumber, req.HoleNumber, round.HoleCount)
	}
	if !round.IsActive() && !round.IsAwaitingFinalization() {
		return model.Round{}, fmt.Errorf("%w: status %q", ErrRoundNotActive, round.Status)
	}
	return round, nil
}

func (s *Service) append(ctx context.Context, round model.Round, req CreateRequest, supersedes *uuid.UUID) (model.ScoreEvent, error) {
	event := model.ScoreEvent{
		ID:                uuid.New(),
		RoundID:           req.RoundID,
		HoleNumber:        req.HoleNumber,
		PlayerID:          req.PlayerID,
		StrokeCount:       req.StrokeCount,
		SupersedesEventID: supersedes,
		ReportedBy:        req.ReportedBy,
		DeviceID:          s.deviceID,
		CreatedAt:         s.now(),
	}
	if err := s.events.Append(ctx, event); err != nil {
		return model.ScoreEvent{}, fmt.Errorf("append event: %w", err)
	}
	metrics.RecordEventAppended()
	s.outbox.TrackPending(event.ID.String(), remote.TypeScoreEvent)
	s.log.Debug(ctx, "score event created",
		logger.String("event_id", event.ID.String()),
		logger.String("player_id", event.PlayerID),
		logger.Int("hole", event.HoleNumber),
		logger.Int("strokes", event.StrokeCount),
		logger.Bool("correction", supersedes != nil),
	)

	s.recomputer.Recompute(ctx, round.ID, standings.TriggerLocalScore)
	if _, err := s.completion.CheckCompletion(ctx, round.ID); err != nil {
		// Completion failure must not lose the already-appended event.
		s.log.Warn(ctx, "completion check failed", logger.Error(err))
	}
	return event, nil
}
