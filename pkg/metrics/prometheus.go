// Package metrics provides Prometheus metrics for the live battle listener.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the listener.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Feed ingestion
	eventsReceived  *prometheus.CounterVec
	eventsDuplicate prometheus.Counter
	decisions       *prometheus.CounterVec
	dedupeSize      prometheus.Gauge

	// Connection supervisor
	connectionState prometheus.Gauge
	reconnects      *prometheus.CounterVec
	backoffSeconds  prometheus.Gauge

	// Battle state
	lifecycleTransitions *prometheus.CounterVec
	slotScore            *prometheus.GaugeVec
	giftValue            *prometheus.CounterVec

	// Control API
	controlCalls   *prometheus.CounterVec
	controlLatency *prometheus.HistogramVec

	// Command queue
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueDropped  prometheus.Counter

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Process
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level recorders

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure rebuilds the package-level collectors on a fresh registry, so
// options such as the namespace apply to every recorder. Call it at startup,
// before any component records or captures GetRegistry.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(registry))...)
	customRegistry = registry
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "livebattle",
		subsystem:        "listener",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
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

	m.eventsReceived = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_received_total",
		Help:      "Feed events received, by kind",
	}, []string{"kind"})

	m.eventsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_duplicate_total",
		Help:      "Feed events suppressed by the dedupe window",
	})

	m.decisions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "decisions_total",
		Help:      "Classifier decisions, by action and rule",
	}, []string{"action", "rule"})

	m.dedupeSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dedupe_window_size",
		Help:      "Idempotency keys currently held in the dedupe window",
	})

	m.connectionState = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "connection_state",
		Help:      "Feed connection state: 0 disconnected, 1 connecting, 2 connected",
	})

	m.reconnects = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconnects_total",
		Help:      "Feed reconnect waits, by failure class",
	}, []string{"reason"})

	m.backoffSeconds = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "backoff_seconds",
		Help:      "Most recent reconnect wait in seconds",
	})

	m.lifecycleTransitions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lifecycle_transitions_total",
		Help:      "Battle start/end transitions, by outcome (triggered or suppressed)",
	}, []string{"transition", "outcome"})

	m.slotScore = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "slot_score",
		Help:      "Locally tracked cumulative score per slot",
	}, []string{"slot"})

	m.giftValue = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "gift_value_total",
		Help:      "Monetary gift value attributed to each slot",
	}, []string{"slot"})

	m.controlCalls = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "control_calls_total",
		Help:      "Battle Control API calls, by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	m.controlLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "control_call_latency_milliseconds",
		Help:      "Battle Control API call latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "command_queue_size",
		Help:      "Outbound commands waiting for the dispatcher",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "command_queue_capacity",
		Help:      "Maximum outbound commands held before dropping",
	})

	m.queueDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "command_queue_dropped_total",
		Help:      "Outbound commands dropped because the queue was full or closed",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Heap bytes allocated",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordEventReceived counts an inbound feed event.
func RecordEventReceived(kind string) {
	globalManager.eventsReceived.WithLabelValues(kind).Inc()
}

// RecordEventDuplicate counts a suppressed duplicate.
func RecordEventDuplicate() {
	globalManager.eventsDuplicate.Inc()
}

// RecordDecision counts a classifier decision.
func RecordDecision(action, rule string) {
	globalManager.decisions.WithLabelValues(action, rule).Inc()
}

// UpdateDedupeSize sets the dedupe window size.
func UpdateDedupeSize(size int64) {
	globalManager.dedupeSize.Set(float64(size))
}

// UpdateConnectionState sets the supervisor state (0, 1, 2).
func UpdateConnectionState(state int) {
	globalManager.connectionState.Set(float64(state))
}

// RecordReconnect counts a reconnect wait and records its length.
func RecordReconnect(reason string, waitSeconds float64) {
	globalManager.reconnects.WithLabelValues(reason).Inc()
	globalManager.backoffSeconds.Set(waitSeconds)
}

// RecordLifecycle counts a start/end transition attempt.
func RecordLifecycle(transition, outcome string) {
	globalManager.lifecycleTransitions.WithLabelValues(transition, outcome).Inc()
}

// UpdateSlotScore sets the local cumulative score for a slot.
func UpdateSlotScore(slot string, score int64) {
	globalManager.slotScore.WithLabelValues(slot).Set(float64(score))
}

// RecordGiftValue adds attributed gift value for a slot.
func RecordGiftValue(slot string, value int64) {
	if value <= 0 {
		return
	}
	globalManager.giftValue.WithLabelValues(slot).Add(float64(value))
}

// RecordControlCall counts a control API call and observes its latency.
func RecordControlCall(endpoint string, ok bool, latencyMs float64) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	globalManager.controlCalls.WithLabelValues(endpoint, outcome).Inc()
	globalManager.controlLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// UpdateQueueSize sets the command queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the command queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueDropped counts a dropped command.
func RecordQueueDropped() {
	globalManager.queueDropped.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the heap allocation in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
