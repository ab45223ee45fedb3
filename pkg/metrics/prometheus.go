// Package metrics provides Prometheus metrics for the arena PvP service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the arena service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Matchmaking metrics
	queueDepth   *prometheus.GaugeVec
	queueJoins   *prometheus.CounterVec
	queueLeaves  *prometheus.CounterVec
	queueWait    *prometheus.HistogramVec
	matchesFound *prometheus.CounterVec
	scanDuration prometheus.Histogram

	// Match lifecycle metrics
	matchesStarted prometheus.Counter
	matchesEnded   *prometheus.CounterVec
	liveMatches    prometheus.Gauge
	killsRecorded  prometheus.Counter
	killsDropped   prometheus.Counter
	killsDuplicate prometheus.Counter

	// Rating and ranking metrics
	ratingDelta          prometheus.Histogram
	rankingSize          *prometheus.GaugeVec
	rankingUpdateLatency prometheus.Histogram
	trackedPlayers       prometheus.Gauge

	// Settlement pipeline metrics
	resultsQueueSize    prometheus.Gauge
	resultsQueueDropped prometheus.Counter
	settlementLatency   prometheus.Histogram
	settlementErrors    prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "arena",
		subsystem:        "pvp",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // metric registration is one long block by nature
	auto := promauto.With(m.registry)

	m.queueDepth = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_depth",
		Help:      "Players currently waiting per mode",
	}, []string{"mode"})

	m.queueJoins = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_joins_total",
		Help:      "Total queue join operations per mode",
	}, []string{"mode"})

	m.queueLeaves = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_leaves_total",
		Help:      "Total explicit queue leave operations per mode",
	}, []string{"mode"})

	m.queueWait = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_wait_seconds",
		Help:      "Wait time between enqueue and match assembly",
		Buckets:   []float64{1, 5, 10, 20, 30, 60, 120, 300},
	}, []string{"mode"})

	m.matchesFound = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_found_total",
		Help:      "Matches assembled by the queue scan per mode",
	}, []string{"mode"})

	m.scanDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scan_duration_milliseconds",
		Help:      "Duration of one full matchmaking scan",
		Buckets:   m.histogramBuckets,
	})

	m.matchesStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_started_total",
		Help:      "Matches moved to in-progress",
	})

	m.matchesEnded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_ended_total",
		Help:      "Matches ended, labeled by outcome (team1, team2, draw)",
	}, []string{"outcome"})

	m.liveMatches = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "live_matches",
		Help:      "Matches currently in progress",
	})

	m.killsRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "kills_recorded_total",
		Help:      "Kill events applied to a live match",
	})

	m.killsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "kills_dropped_total",
		Help:      "Kill events ignored because the match was not in progress",
	})

	m.killsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "kills_duplicate_total",
		Help:      "Kill events dropped by the idempotency cache",
	})

	m.ratingDelta = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rating_delta",
		Help:      "Absolute Elo delta applied per finished match",
		Buckets:   []float64{1, 5, 10, 15, 20, 25, 30, 40},
	})

	m.rankingSize = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_size",
		Help:      "Rows in the ranking table per mode",
	}, []string{"mode"})

	m.rankingUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_update_latency_milliseconds",
		Help:      "Latency of a ranking upsert including the table resort",
		Buckets:   m.histogramBuckets,
	})

	m.trackedPlayers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_players",
		Help:      "Distinct (player, mode) rating records",
	})

	m.resultsQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "results_queue_size",
		Help:      "Finished matches waiting for settlement",
	})

	m.resultsQueueDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "results_queue_dropped_total",
		Help:      "Results refused because the settlement queue was full",
	})

	m.settlementLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "settlement_latency_milliseconds",
		Help:      "Latency of settling one finished match",
		Buckets:   m.histogramBuckets,
	})

	m.settlementErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "settlement_errors_total",
		Help:      "Failed settlement attempts",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method, and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration by endpoint, method, and status code",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated heap bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Matchmaking helpers.

// UpdateQueueDepth sets the waiting-player gauge for a mode.
func UpdateQueueDepth(mode string, depth int) {
	globalManager.queueDepth.WithLabelValues(mode).Set(float64(depth))
}

// RecordQueueJoin counts one queue join for a mode.
func RecordQueueJoin(mode string) {
	globalManager.queueJoins.WithLabelValues(mode).Inc()
}

// RecordQueueLeave counts one explicit queue leave for a mode.
func RecordQueueLeave(mode string) {
	globalManager.queueLeaves.WithLabelValues(mode).Inc()
}

// RecordQueueWait observes the wait of a matched candidate.
func RecordQueueWait(mode string, seconds float64) {
	globalManager.queueWait.WithLabelValues(mode).Observe(seconds)
}

// RecordMatchFound counts one assembled match for a mode.
func RecordMatchFound(mode string) {
	globalManager.matchesFound.WithLabelValues(mode).Inc()
}

// RecordScanDuration observes one matchmaking scan.
func RecordScanDuration(ms float64) {
	globalManager.scanDuration.Observe(ms)
}

// Match lifecycle helpers.

// RecordMatchStarted counts one started match.
func RecordMatchStarted() {
	globalManager.matchesStarted.Inc()
}

// RecordMatchEnded counts one ended match by outcome.
func RecordMatchEnded(outcome string) {
	globalManager.matchesEnded.WithLabelValues(outcome).Inc()
}

// UpdateLiveMatches sets the in-progress match gauge.
func UpdateLiveMatches(count int) {
	globalManager.liveMatches.Set(float64(count))
}

// RecordKillApplied counts one applied kill event.
func RecordKillApplied() {
	globalManager.killsRecorded.Inc()
}

// RecordKillDropped counts one kill event ignored outside InProgress.
func RecordKillDropped() {
	globalManager.killsDropped.Inc()
}

// RecordKillDuplicate counts one kill event caught by the deduper.
func RecordKillDuplicate() {
	globalManager.killsDuplicate.Inc()
}

// Rating and ranking helpers.

// RecordRatingDelta observes the magnitude of an applied Elo delta.
func RecordRatingDelta(delta int) {
	if delta < 0 {
		delta = -delta
	}
	globalManager.ratingDelta.Observe(float64(delta))
}

// UpdateRankingSize sets the table-size gauge for a mode.
func UpdateRankingSize(mode string, size int) {
	globalManager.rankingSize.WithLabelValues(mode).Set(float64(size))
}

// RecordRankingUpdateLatency observes one upsert-and-resort.
func RecordRankingUpdateLatency(ms float64) {
	globalManager.rankingUpdateLatency.Observe(ms)
}

// UpdateTrackedPlayers sets the rating-record gauge.
func UpdateTrackedPlayers(count int) {
	globalManager.trackedPlayers.Set(float64(count))
}

// Settlement helpers.

// UpdateResultsQueueSize sets the settlement backlog gauge.
func UpdateResultsQueueSize(size int) {
	globalManager.resultsQueueSize.Set(float64(size))
}

// RecordResultsQueueDropped counts one refused result.
func RecordResultsQueueDropped() {
	globalManager.resultsQueueDropped.Inc()
}

// RecordSettlementLatency observes one settlement.
func RecordSettlementLatency(ms float64) {
	globalManager.settlementLatency.Observe(ms)
}

// RecordSettlementError counts one failed settlement.
func RecordSettlementError() {
	globalManager.settlementErrors.Inc()
}

// HTTP helpers.

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// System helpers.

// UpdateSystemMemoryUsage sets the heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry used for /healthz scraping.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
