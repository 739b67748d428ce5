package api

import "net/http"

// SyncHandler exposes replication controls: manual sync, remote change
// notifications, foreground discovery and state inspection.
type SyncHandler struct {
	deps Dependencies
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(deps Dependencies) *SyncHandler {
	return &SyncHandler{deps: deps}
}

type syncStateResponse struct {
	State string `json:"state"`
}

type discoveryResponse struct {
	Ran bool `json:"ran"`
}

// HandleSyncNow handles POST /sync/now requests.
func (h *SyncHandler) HandleSyncNow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.SyncNow(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "sync_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, syncStateResponse{State: h.deps.SyncState()})
}

// HandleNotification handles POST /sync/notification requests, the hook a
// remote change push lands on.
func (h *SyncHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.NotifyRemoteChange(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "sync_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, syncStateResponse{State: h.deps.SyncState()})
}

// HandleForeground handles POST /sync/foreground requests. The response
// reports whether a sweep actually ran or the cooldown suppressed it.
func (h *SyncHandler) HandleForeground(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ran, err := h.deps.ForegroundDiscovery(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "sync_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, discoveryResponse{Ran: ran})
}

// HandleState handles GET /sync/state requests.
func (h *SyncHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, syncStateResponse{State: h.deps.SyncState()})
}
