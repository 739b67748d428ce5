package api

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// SnapshotHandler serves the latest companion snapshot per round.
type SnapshotHandler struct {
	deps Dependencies
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(deps Dependencies) *SnapshotHandler {
	return &SnapshotHandler{deps: deps}
}

// HandleGetSnapshot handles GET /snapshot?round_id=... requests.
func (h *SnapshotHandler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	roundID, err := uuid.Parse(r.URL.Query().Get("round_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid round_id: %w", err))
		return
	}
	snapshot, ok := h.deps.Snapshot(roundID)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("no snapshot for round %s", roundID))
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}
