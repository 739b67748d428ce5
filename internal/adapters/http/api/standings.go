package api

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// StandingsHandler handles standings read requests.
type StandingsHandler struct {
	deps Dependencies
}

// NewStandingsHandler creates a new standings handler.
func NewStandingsHandler(deps Dependencies) *StandingsHandler {
	return &StandingsHandler{deps: deps}
}

// HandleGetStandings handles GET /standings?round_id=... requests.
func (h *StandingsHandler) HandleGetStandings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	roundID, err := uuid.Parse(r.URL.Query().Get("round_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid round_id: %w", err))
		return
	}
	standings := h.deps.Standings(r.Context(), roundID)
	writeJSON(w, http.StatusOK, standings)
}
