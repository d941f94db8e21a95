// Package metrics provides Prometheus metrics for the pitchduel service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Game lifecycle
	gamesCreated   *prometheus.CounterVec
	gamesJoined    prometheus.Counter
	gamesCompleted *prometheus.CounterVec
	pitchesThrown  *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	roomsByStatus  *prometheus.GaugeVec
	mutateLatency  prometheus.Histogram

	// Result recording
	resultsEnqueued    prometheus.Counter
	resultsDuplicate   prometheus.Counter
	resultsDropped     *prometheus.CounterVec
	resultsRecorded    prometheus.Counter
	recorderErrors     prometheus.Counter
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	workerCount        prometheus.Gauge
	workerLatency      prometheus.Histogram
	standingsPlayers   prometheus.Gauge
	standingsLatency   *prometheus.HistogramVec
	standingsSnapshots prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton collectors

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pitchduel",
		subsystem:        "game",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.gamesCreated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "games_created_total",
		Help: "Games created, by game type",
	}, []string{"game_type"})

	m.gamesJoined = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "games_joined_total",
		Help: "Games that received a guest and became active",
	})

	m.gamesCompleted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "games_completed_total",
		Help: "Games that reached the win threshold, by game type",
	}, []string{"game_type"})

	m.pitchesThrown = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "pitches_thrown_total",
		Help: "Accepted pitches, by outcome label",
	}, []string{"label"})

	m.rejections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rejections_total",
		Help: "Rejected game operations, by operation and reason",
	}, []string{"operation", "reason"})

	m.roomsByStatus = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rooms",
		Help: "Rooms currently held by the registry, by status",
	}, []string{"status"})

	m.mutateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "room_mutation_duration_milliseconds",
		Help:    "Time spent inside a room's exclusive section",
		Buckets: m.histogramBuckets,
	})

	m.resultsEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "recorder",
		Name: "results_enqueued_total",
		Help: "Match results handed to the recorder queue",
	})

	m.resultsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "recorder",
		Name: "results_duplicate_total",
		Help: "Match results ignored because the game was already recorded",
	})

	m.resultsDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "recorder",
		Name: "results_dropped_total",
		Help: "Match results that could not be enqueued, by reason",
	}, []string{"reason"})

	m.resultsRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "recorder",
		Name: "results_recorded_total",
		Help: "Match results applied to the standings store",
	})

	m.recorderErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "recorder",
		Name: "errors_total",
		Help: "Standings updates that failed",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "recorder",
		Name: "queue_size",
		Help: "Results waiting in the recorder queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "recorder",
		Name: "queue_capacity",
		Help: "Maximum recorder queue capacity",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "recorder",
		Name: "worker_count",
		Help: "Recorder workers running",
	})

	m.workerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "recorder",
		Name:    "worker_processing_duration_milliseconds",
		Help:    "Time to apply one result to the standings store",
		Buckets: m.histogramBuckets,
	})

	m.standingsPlayers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "standings",
		Name: "players",
		Help: "Players tracked by the standings store",
	})

	m.standingsLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "standings",
		Name:    "operation_duration_milliseconds",
		Help:    "Standings store operation latency",
		Buckets: m.histogramBuckets,
	}, []string{"store", "operation"})

	m.standingsSnapshots = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "standings",
		Name: "snapshots_total",
		Help: "Leaderboard snapshots published by the in-memory store",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name: "requests_total",
		Help: "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name:    "request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name: "errors_total",
		Help: "HTTP error responses by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system",
		Name: "memory_usage_bytes",
		Help: "Heap bytes allocated",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system",
		Name: "goroutines",
		Help: "Number of goroutines",
	})
}

// RecordGameCreated counts a new waiting room.
func RecordGameCreated(gameType string) {
	globalManager.gamesCreated.WithLabelValues(gameType).Inc()
}

// RecordGameJoined counts a room that became active.
func RecordGameJoined() {
	globalManager.gamesJoined.Inc()
}

// RecordGameCompleted counts a room that reached the win threshold.
func RecordGameCompleted(gameType string) {
	globalManager.gamesCompleted.WithLabelValues(gameType).Inc()
}

// RecordPitch counts an accepted pitch by its outcome label.
func RecordPitch(label string) {
	globalManager.pitchesThrown.WithLabelValues(label).Inc()
}

// RecordRejection counts a precondition failure.
func RecordRejection(operation, reason string) {
	globalManager.rejections.WithLabelValues(operation, reason).Inc()
}

// UpdateRooms sets the room gauge for one status.
func UpdateRooms(status string, count int) {
	globalManager.roomsByStatus.WithLabelValues(status).Set(float64(count))
}

// RecordMutationLatency observes time spent holding a room lock.
func RecordMutationLatency(latencyMs float64) {
	globalManager.mutateLatency.Observe(latencyMs)
}

func RecordResultEnqueued() { globalManager.resultsEnqueued.Inc() }

func RecordResultDuplicate() { globalManager.resultsDuplicate.Inc() }

// RecordResultDropped counts a result lost to backpressure or shutdown.
func RecordResultDropped(reason string) {
	globalManager.resultsDropped.WithLabelValues(reason).Inc()
}

func RecordResultRecorded() { globalManager.resultsRecorded.Inc() }

func RecordRecorderError() { globalManager.recorderErrors.Inc() }

func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerLatency observes the time one worker spent on one result.
func RecordWorkerLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

func UpdateStandingsPlayers(count int) { globalManager.standingsPlayers.Set(float64(count)) }

// RecordStandingsLatency observes a standings store call.
func RecordStandingsLatency(store, operation string, latencyMs float64) {
	globalManager.standingsLatency.WithLabelValues(store, operation).Observe(latencyMs)
}

func IncrementStandingsSnapshots() { globalManager.standingsSnapshots.Inc() }

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request's duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint counts an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the registry that backs /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
