// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/okian/birdie/internal/companion"
	"github.com/okian/birdie/internal/domain/lifecycle"
	"github.com/okian/birdie/internal/domain/model"
	"github.com/okian/birdie/internal/domain/scoring"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Score entry.
	CreateEvent(ctx context.Context, req scoring.CreateRequest) (model.ScoreEvent, error)
	CreateCorrection(ctx context.Context, req scoring.CorrectionRequest) (model.ScoreEvent, error)
	ResolveDiscrepancy(ctx context.Context, id uuid.UUID, strokeCount int, reportedBy uuid.UUID) (model.ScoreEvent, error)

	// Round lifecycle.
	CreateRound(ctx context.Context, round model.Round) (model.Round, error)
	GetRound(ctx context.Context, id uuid.UUID) (model.Round, error)
	StartRound(ctx context.Context, id uuid.UUID) error
	FinishRound(ctx context.Context, id uuid.UUID, force bool) (lifecycle.FinishResult, error)
	FinalizeRound(ctx context.Context, id uuid.UUID) error
	UpdateParticipants(ctx context.Context, id uuid.UUID, playerIDs, guestNames []string) error

	// Read side.
	Standings(ctx context.Context, roundID uuid.UUID) []model.Standing
	Discrepancies(ctx context.Context, roundID uuid.UUID, unresolvedOnly bool) ([]model.Discrepancy, error)
	Snapshot(roundID uuid.UUID) (companion.Snapshot, bool)

	// Replication control.
	SyncNow(ctx context.Context) error
	NotifyRemoteChange(ctx context.Context) error
	ForegroundDiscovery(ctx context.Context) (bool, error)
	SyncState() string
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler        *HealthHandler
	statsHandler         *StatsHandler
	eventsHandler        *EventsHandler
	roundsHandler        *RoundsHandler
	standingsHandler     *StandingsHandler
	discrepanciesHandler *DiscrepanciesHandler
	snapshotHandler      *SnapshotHandler
	syncHandler          *SyncHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:        NewHealthHandler(),
		statsHandler:         NewStatsHandler(statsProvider),
		eventsHandler:        NewEventsHandler(deps),
		roundsHandler:        NewRoundsHandler(deps),
		standingsHandler:     NewStandingsHandler(deps),
		discrepanciesHandler: NewDiscrepanciesHandler(deps),
		snapshotHandler:      NewSnapshotHandler(deps),
		syncHandler:          NewSyncHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/corrections", MetricsMiddleware(s.eventsHandler.HandlePostCorrection, "corrections"))
	mux.HandleFunc("/rounds", MetricsMiddleware(s.roundsHandler.HandleRounds, "rounds"))
	mux.HandleFunc("/rounds/", MetricsMiddleware(s.roundsHandler.HandleRound, "round"))
	mux.HandleFunc("/standings", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))
	mux.HandleFunc("/discrepancies", MetricsMiddleware(s.discrepanciesHandler.HandleGetDiscrepancies, "discrepancies"))
	mux.HandleFunc("/discrepancies/", MetricsMiddleware(s.discrepanciesHandler.HandleResolve, "discrepancy_resolve"))
	mux.HandleFunc("/snapshot", MetricsMiddleware(s.snapshotHandler.HandleGetSnapshot, "snapshot"))
	mux.HandleFunc("/sync/now", MetricsMiddleware(s.syncHandler.HandleSyncNow, "sync_now"))
	mux.HandleFunc("/sync/notification", MetricsMiddleware(s.syncHandler.HandleNotification, "sync_notification"))
	mux.HandleFunc("/sync/foreground", MetricsMiddleware(s.syncHandler.HandleForeground, "sync_foreground"))
	mux.HandleFunc("/sync/state", MetricsMiddleware(s.syncHandler.HandleState, "sync_state"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
