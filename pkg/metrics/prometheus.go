// Package metrics provides Prometheus metrics for the event match relay and client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Relay store
	ingestTotal    *prometheus.CounterVec
	overwrites     prometheus.Counter
	records        prometheus.Gauge
	attendeesTotal prometheus.Counter
	lookups        *prometheus.CounterVec

	// Write-behind mirror
	mirrorWrites        *prometheus.CounterVec
	mirrorLatency       prometheus.Histogram
	mirrorQueueSize     prometheus.Gauge
	mirrorQueueCapacity prometheus.Gauge
	mirrorWorkers       prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByComponent   *prometheus.CounterVec

	// Client orchestrator
	submissions  *prometheus.CounterVec
	pollAttempts *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "eventmatch",
		subsystem:        "relay",
		histogramBuckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.ingestTotal = auto.NewCounterVec(
		m.counterOpts("ingest_total", "Webhook pushes by outcome (stored, invalid, error)"),
		[]string{"outcome"},
	)
	m.overwrites = auto.NewCounter(m.counterOpts("ingest_overwrites_total", "Pushes that replaced an existing key"))
	m.records = auto.NewGauge(m.gaugeOpts("records", "Number of keys currently held by the relay store"))
	m.attendeesTotal = auto.NewCounter(m.counterOpts("attendees_received_total", "Attendee rows received across all pushes"))
	m.lookups = auto.NewCounterVec(
		m.counterOpts("lookups_total", "Record lookups by kind (latest, key, list) and outcome"),
		[]string{"kind", "outcome"},
	)

	m.mirrorWrites = auto.NewCounterVec(
		m.counterOpts("mirror_writes_total", "File mirror writes by outcome (ok, failed, dropped)"),
		[]string{"outcome"},
	)
	m.mirrorLatency = auto.NewHistogram(m.histogramOpts("mirror_write_latency_milliseconds", "File mirror write latency"))
	m.mirrorQueueSize = auto.NewGauge(m.gaugeOpts("mirror_queue_size", "Pending mirror jobs"))
	m.mirrorQueueCapacity = auto.NewGauge(m.gaugeOpts("mirror_queue_capacity", "Mirror queue bound"))
	m.mirrorWorkers = auto.NewGauge(m.gaugeOpts("mirror_workers", "Running mirror workers"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "HTTP errors by endpoint, method and error type"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and error type"),
		[]string{"component", "error_type"},
	)

	m.submissions = auto.NewCounterVec(
		m.counterOpts("client_submissions_total", "Client submissions by outcome (accepted, failed)"),
		[]string{"outcome"},
	)
	m.pollAttempts = auto.NewCounterVec(
		m.counterOpts("client_poll_attempts_total", "Client poll attempts by outcome (ready, pending, timeout)"),
		[]string{"outcome"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_milliseconds",
		Help:        "Average GC pause in milliseconds",
		ConstLabels: m.constLabels,
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100},
	})
}

// Relay store.

// RecordIngest counts a webhook push with the given outcome.
func RecordIngest(outcome string) { globalManager.ingestTotal.WithLabelValues(outcome).Inc() }

// RecordOverwrite counts a push that replaced an existing key.
func RecordOverwrite() { globalManager.overwrites.Inc() }

// RecordAttendees adds n received attendee rows.
func RecordAttendees(n int) { globalManager.attendeesTotal.Add(float64(n)) }

// UpdateRecordCount sets the number of stored keys.
func UpdateRecordCount(n int) { globalManager.records.Set(float64(n)) }

// RecordLookup counts a read against the store.
func RecordLookup(kind, outcome string) { globalManager.lookups.WithLabelValues(kind, outcome).Inc() }

// Mirror.

// RecordMirrorWrite counts a mirror write with the given outcome.
func RecordMirrorWrite(outcome string) { globalManager.mirrorWrites.WithLabelValues(outcome).Inc() }

// RecordMirrorLatency observes one mirror write latency.
func RecordMirrorLatency(latencyMs float64) { globalManager.mirrorLatency.Observe(latencyMs) }

// UpdateMirrorQueueSize sets pending mirror jobs.
func UpdateMirrorQueueSize(n int) { globalManager.mirrorQueueSize.Set(float64(n)) }

// UpdateMirrorQueueCapacity sets the mirror queue bound.
func UpdateMirrorQueueCapacity(n int) { globalManager.mirrorQueueCapacity.Set(float64(n)) }

// UpdateMirrorWorkers sets the running mirror worker count.
func UpdateMirrorWorkers(n int) { globalManager.mirrorWorkers.Set(float64(n)) }

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an HTTP error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByComponent records an error by component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// Client.

// RecordSubmission counts a client submission outcome.
func RecordSubmission(outcome string) { globalManager.submissions.WithLabelValues(outcome).Inc() }

// RecordPollAttempt counts a client poll outcome.
func RecordPollAttempt(outcome string) { globalManager.pollAttempts.WithLabelValues(outcome).Inc() }

// System.

// UpdateSystemMemoryUsage sets heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
