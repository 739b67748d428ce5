package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/birdie/internal/domain/model"
)

// DiscrepanciesHandler handles conflict listing and resolution.
type DiscrepanciesHandler struct {
	deps Dependencies
}

// NewDiscrepanciesHandler creates a new discrepancies handler.
func NewDiscrepanciesHandler(deps Dependencies) *DiscrepanciesHandler {
	return &DiscrepanciesHandler{deps: deps}
}

type discrepancyResponse struct {
	ID                string    `json:"id"`
	RoundID           string    `json:"round_id"`
	PlayerID          string    `json:"player_id"`
	HoleNumber        int       `json:"hole_number"`
	EventID1          string    `json:"event_id_1"`
	EventID2          string    `json:"event_id_2"`
	Status            string    `json:"status"`
	ResolvedByEventID string    `json:"resolved_by_event_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type resolveRequest struct {
	StrokeCount int    `json:"stroke_count"`
	ReportedBy  string `json:"reported_by"`
}

func newDiscrepancyResponse(d model.Discrepancy) discrepancyResponse {
	resp := discrepancyResponse{
		ID:         d.ID.String(),
		RoundID:    d.RoundID.String(),
		PlayerID:   d.PlayerID,
		HoleNumber: d.HoleNumber,
		EventID1:   d.EventID1.String(),
		EventID2:   d.EventID2.String(),
		Status:     string(d.Status),
		CreatedAt:  d.CreatedAt,
	}
	if d.ResolvedByEventID != nil {
		resp.ResolvedByEventID = d.ResolvedByEventID.String()
	}
	return resp
}

// HandleGetDiscrepancies handles GET /discrepancies?round_id=...&unresolved=true.
func (h *DiscrepanciesHandler) HandleGetDiscrepancies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	roundID, err := uuid.Parse(r.URL.Query().Get("round_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid round_id: %w", err))
		return
	}
	unresolvedOnly := r.URL.Query().Get("unresolved") == "true"
	list, err := h.deps.Discrepancies(r.Context(), roundID, unresolvedOnly)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]discrepancyResponse, 0, len(list))
	for _, d := range list {
		out = append(out, newDiscrepancyResponse(d))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleResolve handles POST /discrepancies/{id}/resolve requests.
func (h *DiscrepanciesHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/discrepancies/"), "/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[1] != "resolve" {
		http.NotFound(w, r)
		return
	}
	id, err := uuid.Parse(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid discrepancy id: %w", err))
		return
	}
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	reportedBy, err := uuid.Parse(req.ReportedBy)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid reported_by: %w", err))
		return
	}
	event, err := h.deps.ResolveDiscrepancy(r.Context(), id, req.StrokeCount, reportedBy)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventResponse(event))
}
