package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/birdie/internal/domain/model"
)

// RoundsHandler handles round creation and lifecycle transitions.
type RoundsHandler struct {
	deps Dependencies
}

// NewRoundsHandler creates a new rounds handler.
func NewRoundsHandler(deps Dependencies) *RoundsHandler {
	return &RoundsHandler{deps: deps}
}

type createRoundRequest struct {
	CourseID    string   `json:"course_id"`
	OrganizerID string   `json:"organizer_id"`
	PlayerIDs   []string `json:"player_ids"`
	GuestNames  []string `json:"guest_names"`
	HoleCount   int      `json:"hole_count"`
}

type participantsRequest struct {
	PlayerIDs  []string `json:"player_ids"`
	GuestNames []string `json:"guest_names"`
}

type roundResponse struct {
	ID          string     `json:"id"`
	CourseID    string     `json:"course_id"`
	OrganizerID string     `json:"organizer_id"`
	PlayerIDs   []string   `json:"player_ids"`
	GuestNames  []string   `json:"guest_names"`
	HoleCount   int        `json:"hole_count"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type finishResponse struct {
	Completed     bool `json:"completed"`
	MissingScores int  `json:"missing_scores"`
}

func newRoundResponse(r model.Round) roundResponse {
	return roundResponse{
		ID:          r.ID.String(),
		CourseID:    r.CourseID.String(),
		OrganizerID: r.OrganizerID.String(),
		PlayerIDs:   r.PlayerIDs,
		GuestNames:  r.GuestNames,
		HoleCount:   r.HoleCount,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}
}

// HandleRounds handles POST /rounds requests.
func (h *RoundsHandler) HandleRounds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req createRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid course_id: %w", err))
		return
	}
	organizerID, err := uuid.Parse(req.OrganizerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid organizer_id: %w", err))
		return
	}
	if req.HoleCount < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("hole_count must be positive"))
		return
	}
	round, err := h.deps.CreateRound(r.Context(), model.Round{
		CourseID:    courseID,
		OrganizerID: organizerID,
		PlayerIDs:   req.PlayerIDs,
		GuestNames:  req.GuestNames,
		HoleCount:   req.HoleCount,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newRoundResponse(round))
}

// HandleRound dispatches /rounds/{id} and /rounds/{id}/{action} requests.
func (h *RoundsHandler) HandleRound(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/rounds/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 2)
	id, err := uuid.Parse(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid round id: %w", err))
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		round, err := h.deps.GetRound(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newRoundResponse(round))
		return
	}

	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	switch parts[1] {
	case "start":
		if err := h.deps.StartRound(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
	case "finish":
		force := r.URL.Query().Get("force") == "true"
		result, err := h.deps.FinishRound(r.Context(), id, force)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, finishResponse{Completed: result.Completed, MissingScores: result.Missing})
		return
	case "finalize":
		if err := h.deps.FinalizeRound(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
	case "participants":
		var req participantsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
			return
		}
		if err := h.deps.UpdateParticipants(r.Context(), id, req.PlayerIDs, req.GuestNames); err != nil {
			writeDomainError(w, err)
			return
		}
	default:
		http.NotFound(w, r)
		return
	}

	round, err := h.deps.GetRound(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRoundResponse(round))
}
