package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/birdie/internal/domain/model"
)

// MemEventStore is the in-memory EventStore: an arena of events keyed by id
// plus a per-round index.
type MemEventStore struct {
	mu      sync.RWMutex
	events  map[uuid.UUID]model.ScoreEvent
	byRound map[uuid.UUID][]uuid.UUID
}

// NewMemEventStore creates an empty in-memory event log.
func NewMemEventStore() *MemEventStore {
	return &MemEventStore{
		events:  make(map[uuid.UUID]model.ScoreEvent),
		byRound: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (s *MemEventStore) Append(_ context.Context, event model.ScoreEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; ok {
		return ErrDuplicateEvent
	}
	s.events[event.ID] = event
	s.byRound[event.RoundID] = append(s.byRound[event.RoundID], event.ID)
	return nil
}

func (s *MemEventStore) Get(_ context.Context, id uuid.UUID) (model.ScoreEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return model.ScoreEvent{}, ErrEventNotFound
	}
	return e, nil
}

func (s *MemEventStore) ByRound(_ context.Context, roundID uuid.UUID) ([]model.ScoreEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byRound[roundID]
	out := make([]model.ScoreEvent, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.events[id])
	}
	return out, nil
}

func (s *MemEventStore) ByKey(_ context.Context, roundID uuid.UUID, playerID string, hole int) ([]model.ScoreEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ScoreEvent
	for _, id := range s.byRound[roundID] {
		e := s.events[id]
		if e.PlayerID == playerID && e.HoleNumber == hole {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemEventStore) Contains(_ context.Context, id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.events[id]
	return ok
}

func (s *MemEventStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// MemRoundStore is the in-memory RoundStore.
type MemRoundStore struct {
	mu     sync.RWMutex
	rounds map[uuid.UUID]model.Round
}

// NewMemRoundStore creates an empty round store.
func NewMemRoundStore() *MemRoundStore {
	return &MemRoundStore{rounds: make(map[uuid.UUID]model.Round)}
}

func (s *MemRoundStore) Create(_ context.Context, round model.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rounds[round.ID]; ok {
		return ErrDuplicateRound
	}
	s.rounds[round.ID] = cloneRound(round)
	return nil
}

func (s *MemRoundStore) Get(_ context.Context, id uuid.UUID) (model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rounds[id]
	if !ok {
		return model.Round{}, ErrRoundNotFound
	}
	return cloneRound(r), nil
}

func (s *MemRoundStore) Update(_ context.Context, round model.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rounds[round.ID]; !ok {
		return ErrRoundNotFound
	}
	s.rounds[round.ID] = cloneRound(round)
	return nil
}

func (s *MemRoundStore) ByStatus(_ context.Context, status model.RoundStatus) ([]model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Round
	for _, r := range s.rounds {
		if r.Status == status {
			out = append(out, cloneRound(r))
		}
	}
	return out, nil
}

// cloneRound copies slice fields so callers never share backing arrays with
// the store.
func cloneRound(r model.Round) model.Round {
	out := r
	out.PlayerIDs = append([]string(nil), r.PlayerIDs...)
	out.GuestNames = append([]string(nil), r.GuestNames...)
	return out
}

// MemCourseStore is the in-memory CourseStore.
type MemCourseStore struct {
	mu      sync.RWMutex
	courses map[uuid.UUID]model.Course
}

// NewMemCourseStore creates an empty course catalog.
func NewMemCourseStore() *MemCourseStore {
	return &MemCourseStore{courses: make(map[uuid.UUID]model.Course)}
}

func (s *MemCourseStore) Create(_ context.Context, course model.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[course.ID] = cloneCourse(course)
	return nil
}

func (s *MemCourseStore) Get(_ context.Context, id uuid.UUID) (model.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courses[id]
	if !ok {
		return model.Course{}, ErrCourseNotFound
	}
	return cloneCourse(c), nil
}

func (s *MemCourseStore) Pars(_ context.Context, id uuid.UUID) map[int]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courses[id]
	if !ok {
		return nil
	}
	pars := make(map[int]int, len(c.Pars))
	for hole, par := range c.Pars {
		pars[hole] = par
	}
	return pars
}

func cloneCourse(c model.Course) model.Course {
	out := c
	out.Pars = make(map[int]int, len(c.Pars))
	for hole, par := range c.Pars {
		out.Pars[hole] = par
	}
	return out
}

// MemPlayerStore is the in-memory PlayerStore.
type MemPlayerStore struct {
	mu      sync.RWMutex
	players map[uuid.UUID]model.Player
}

// NewMemPlayerStore creates an empty player store.
func NewMemPlayerStore() *MemPlayerStore {
	return &MemPlayerStore{players: make(map[uuid.UUID]model.Player)}
}

func (s *MemPlayerStore) Create(_ context.Context, player model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player
	return nil
}

func (s *MemPlayerStore) Get(_ context.Context, id uuid.UUID) (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return model.Player{}, ErrPlayerNotFound
	}
	return p, nil
}

func (s *MemPlayerStore) DisplayName(_ context.Context, playerID string) string {
	if name, ok := model.GuestName(playerID); ok {
		return name
	}
	id, err := uuid.Parse(playerID)
	if err != nil {
		return playerID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.players[id]; ok {
		return p.DisplayName
	}
	return playerID
}

// MemDiscrepancyStore is the in-memory DiscrepancyStore.
type MemDiscrepancyStore struct {
	mu            sync.RWMutex
	discrepancies map[uuid.UUID]model.Discrepancy
}

// NewMemDiscrepancyStore creates an empty discrepancy store.
func NewMemDiscrepancyStore() *MemDiscrepancyStore {
	return &MemDiscrepancyStore{discrepancies: make(map[uuid.UUID]model.Discrepancy)}
}

func (s *MemDiscrepancyStore) Create(_ context.Context, d model.Discrepancy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discrepancies[d.ID] = d
	return nil
}

func (s *MemDiscrepancyStore) Get(_ context.Context, id uuid.UUID) (model.Discrepancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.discrepancies[id]
	if !ok {
		return model.Discrepancy{}, ErrDiscrepancyNotFound
	}
	return d, nil
}

func (s *MemDiscrepancyStore) ByRound(_ context.Context, roundID uuid.UUID) ([]model.Discrepancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Discrepancy
	for _, d := range s.discrepancies {
		if d.RoundID == roundID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *MemDiscrepancyStore) Unresolved(_ context.Context, roundID uuid.UUID) ([]model.Discrepancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Discrepancy
	for _, d := range s.discrepancies {
		if d.RoundID == roundID && d.Status == model.DiscrepancyUnresolved {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *MemDiscrepancyStore) Covers(_ context.Context, a, b uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.discrepancies {
		if d.Status == model.DiscrepancyUnresolved && d.Involves(a, b) {
			return true
		}
	}
	return false
}

func (s *MemDiscrepancyStore) Resolve(_ context.Context, id, resolvedBy uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.discrepancies[id]
	if !ok {
		return ErrDiscrepancyNotFound
	}
	d.Status = model.DiscrepancyResolved
	d.ResolvedByEventID = &resolvedBy
	s.discrepancies[id] = d
	return nil
}
