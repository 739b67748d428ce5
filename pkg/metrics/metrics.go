// Package metrics provides Prometheus metrics for the scoring and
// replication engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  prometheus.Registerer

	// Event log
	eventsAppended  prometheus.Counter
	eventsPulled    prometheus.Counter
	eventsPushed    prometheus.Counter
	remoteDuplicate prometheus.Counter
	malformedRecord prometheus.Counter

	// Conflict classification
	silentMerges           prometheus.Counter
	discrepanciesDetected  prometheus.Counter
	discrepanciesResolved  prometheus.Counter
	classificationsByKind  *prometheus.CounterVec

	// Replication pipeline
	pushFailures  *prometheus.CounterVec
	pullFailures  *prometheus.CounterVec
	syncState     *prometheus.GaugeVec
	statusEntries *prometheus.GaugeVec

	// Standings
	standingsRecomputes *prometheus.CounterVec
	trackedRounds       prometheus.Gauge

	// Rounds
	roundsCompleted prometheus.Counter

	// Companion bridge
	snapshotsPublished prometheus.Counter
	snapshotsDropped   prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance backed by a custom registry so the default
// Go collectors never collide.
var (
	customRegistry = prometheus.NewRegistry()  //nolint:gochecknoglobals // singleton registry
	globalManager  *Manager                    //nolint:gochecknoglobals // singleton manager
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "birdie",
		subsystem: "scoring",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initialize()
	return m
}

func (m *Manager) initialize() {
	auto := promauto.With(m.registry)

	m.eventsAppended = auto.NewCounter(m.counterOpts("events_appended_total",
		"Score events appended to the local log"))
	m.eventsPulled = auto.NewCounter(m.counterOpts("events_pulled_total",
		"Remote score events inserted by the pull pipeline"))
	m.eventsPushed = auto.NewCounter(m.counterOpts("events_pushed_total",
		"Score events confirmed saved by the push pipeline"))
	m.remoteDuplicate = auto.NewCounter(m.counterOpts("remote_duplicates_total",
		"Remote records skipped because they were already present locally"))
	m.malformedRecord = auto.NewCounter(m.counterOpts("malformed_records_total",
		"Remote records that failed to decode"))

	m.silentMerges = auto.NewCounter(m.counterOpts("silent_merges_total",
		"Same-score independent writes merged without resolution"))
	m.discrepanciesDetected = auto.NewCounter(m.counterOpts("discrepancies_detected_total",
		"Conflicting scores requiring human resolution"))
	m.discrepanciesResolved = auto.NewCounter(m.counterOpts("discrepancies_resolved_total",
		"Discrepancies settled by an authoritative event"))
	m.classificationsByKind = auto.NewCounterVec(m.counterOpts("classifications_total",
		"Conflict classifications by kind"), []string{"kind"})

	m.pushFailures = auto.NewCounterVec(m.counterOpts("push_failures_total",
		"Push pipeline failures by class"), []string{"class"})
	m.pullFailures = auto.NewCounterVec(m.counterOpts("pull_failures_total",
		"Pull pipeline failures by class"), []string{"class"})
	m.syncState = auto.NewGaugeVec(m.gaugeOpts("sync_state",
		"Current engine state (1 for the active state)"), []string{"state"})
	m.statusEntries = auto.NewGaugeVec(m.gaugeOpts("status_entries",
		"Sync status table entries by status"), []string{"status"})

	m.standingsRecomputes = auto.NewCounterVec(m.counterOpts("standings_recomputes_total",
		"Standings recomputations by trigger"), []string{"trigger"})
	m.trackedRounds = auto.NewGauge(m.gaugeOpts("tracked_rounds",
		"Rounds with cached standings"))

	m.roundsCompleted = auto.NewCounter(m.counterOpts("rounds_completed_total",
		"Rounds transitioned to completed"))

	m.snapshotsPublished = auto.NewCounter(m.counterOpts("snapshots_published_total",
		"Companion snapshots delivered to the cache/transport"))
	m.snapshotsDropped = auto.NewCounter(m.counterOpts("snapshots_dropped_total",
		"Companion snapshots dropped by queue backpressure"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.buckets,
	}, []string{"endpoint", "method", "status_code"})
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
}

// Package-level helpers on the global manager.

func RecordEventAppended() { globalManager.eventsAppended.Inc() }
func RecordEventPulled() { globalManager.eventsPulled.Inc() }

// RecordEventsPushed counts a successfully saved push batch.
func RecordEventsPushed(n int) { globalManager.eventsPushed.Add(float64(n)) }

func RecordRemoteDuplicate() { globalManager.remoteDuplicate.Inc() }
func RecordMalformedRecord() { globalManager.malformedRecord.Inc() }

func RecordSilentMerge() { globalManager.silentMerges.Inc() }
func RecordDiscrepancyDetected() { globalManager.discrepanciesDetected.Inc() }
func RecordDiscrepancyResolved() { globalManager.discrepanciesResolved.Inc() }

// RecordClassification counts a conflict classification outcome.
func RecordClassification(kind string) {
	globalManager.classificationsByKind.WithLabelValues(kind).Inc()
}

// RecordPushFailure counts a push failure; class is "network" or "other".
func RecordPushFailure(class string) {
	globalManager.pushFailures.WithLabelValues(class).Inc()
}

// RecordPullFailure counts a pull failure; class is "network" or "other".
func RecordPullFailure(class string) {
	globalManager.pullFailures.WithLabelValues(class).Inc()
}

// SyncStateNames enumerates the states the engine reports.
var SyncStateNames = []string{"idle", "syncing", "offline", "error"} //nolint:gochecknoglobals // fixed label set

// UpdateSyncState sets the active engine state gauge.
func UpdateSyncState(state string) {
	for _, name := range SyncStateNames {
		v := 0.0
		if name == state {
			v = 1.0
		}
		globalManager.syncState.WithLabelValues(name).Set(v)
	}
}

// UpdateStatusEntries reports the status table composition.
func UpdateStatusEntries(pending, inFlight, synced, failed int) {
	globalManager.statusEntries.WithLabelValues("pending").Set(float64(pending))
	globalManager.statusEntries.WithLabelValues("inFlight").Set(float64(inFlight))
	globalManager.statusEntries.WithLabelValues("synced").Set(float64(synced))
	globalManager.statusEntries.WithLabelValues("failed").Set(float64(failed))
}

// RecordStandingsRecompute counts a recompute by its trigger tag.
func RecordStandingsRecompute(trigger string) {
	globalManager.standingsRecomputes.WithLabelValues(trigger).Inc()
}

func UpdateTrackedRounds(n int) { globalManager.trackedRounds.Set(float64(n)) }
func RecordRoundCompleted() { globalManager.roundsCompleted.Inc() }
func RecordSnapshotPublished() { globalManager.snapshotsPublished.Inc() }
func RecordSnapshotDropped() { globalManager.snapshotsDropped.Inc() }

// RecordHTTPRequest counts a request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes a request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// GetRegistry exposes the custom registry for the /metrics endpoint.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
