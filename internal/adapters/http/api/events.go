package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/birdie/internal/domain/model"
	"github.com/okian/birdie/internal/domain/scoring"
)

// EventsHandler handles score event creation.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

type scoreRequest struct {
	RoundID     string `json:"round_id"`
	HoleNumber  int    `json:"hole_number"`
	PlayerID    string `json:"player_id"`
	StrokeCount int    `json:"stroke_count"`
	ReportedBy  string `json:"reported_by"`
}

type correctionRequest struct {
	scoreRequest
	SupersedesEventID string `json:"supersedes_event_id"`
}

func (r scoreRequest) validate() error {
	switch {
	case strings.TrimSpace(r.RoundID) == "":
		return errors.New("missing round_id")
	case strings.TrimSpace(r.PlayerID) == "":
		return errors.New("missing player_id")
	case strings.TrimSpace(r.ReportedBy) == "":
		return errors.New("missing reported_by")
	}
	return nil
}

func (r scoreRequest) toCreate() (scoring.CreateRequest, error) {
	roundID, err := uuid.Parse(r.RoundID)
	if err != nil {
		return scoring.CreateRequest{}, fmt.Errorf("invalid round_id: %w", err)
	}
	reportedBy, err := uuid.Parse(r.ReportedBy)
	if err != nil {
		return scoring.CreateRequest{}, fmt.Errorf("invalid reported_by: %w", err)
	}
	return scoring.CreateRequest{
		RoundID:     roundID,
		HoleNumber:  r.HoleNumber,
		PlayerID:    r.PlayerID,
		StrokeCount: r.StrokeCount,
		ReportedBy:  reportedBy,
	}, nil
}

type eventResponse struct {
	EventID      string `json:"event_id"`
	IsCorrection bool   `json:"is_correction"`
}

func newEventResponse(e model.ScoreEvent) eventResponse {
	return eventResponse{EventID: e.ID.String(), IsCorrection: e.IsCorrection()}
}

// HandlePostEvent handles POST /events requests.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	create, err := req.toCreate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	event, err := h.deps.CreateEvent(r.Context(), create)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEventResponse(event))
}

// HandlePostCorrection handles POST /corrections requests.
func (h *EventsHandler) HandlePostCorrection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req correctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	create, err := req.toCreate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	supersedes, err := uuid.Parse(req.SupersedesEventID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid supersedes_event_id: %w", err))
		return
	}
	event, err := h.deps.CreateCorrection(r.Context(), scoring.CorrectionRequest{
		CreateRequest:     create,
		SupersedesEventID: supersedes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEventResponse(event))
}
