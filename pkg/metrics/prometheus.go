// Package metrics provides Prometheus metrics for the talentradar
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingest metrics
	recordsFetched *prometheus.CounterVec
	fetchErrors    *prometheus.CounterVec
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter

	// Resolution metrics
	pairComparisons  prometheus.Counter
	matchesFound     prometheus.Counter
	clustersFormed   prometheus.Gauge
	duplicateHandles prometheus.Counter

	// Scoring metrics
	profilesScored  prometheus.Counter
	scoringDuration prometheus.Histogram

	// Run metrics
	pipelineRuns     prometheus.Counter
	pipelineFailures prometheus.Counter
	pipelineDuration prometheus.Histogram
	lastRunUnix      prometheus.Gauge
	profilesTotal    prometheus.Gauge

	// HTTP metrics (daemon mode)
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "talentradar",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recordsFetched = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_fetched_total",
		Help:      "Raw records returned by each ingest source",
	}, []string{"source"})

	m.fetchErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_errors_total",
		Help:      "Ingest fetch failures by source",
	}, []string{"source"})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_cache_hits_total",
		Help:      "HTTP fetch cache hits",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_cache_misses_total",
		Help:      "HTTP fetch cache misses",
	})

	m.pairComparisons = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pair_comparisons_total",
		Help:      "Pairwise similarity comparisons performed by the matcher",
	})

	m.matchesFound = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_found_total",
		Help:      "Record pairs at or above the match threshold",
	})

	m.clustersFormed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "clusters_formed",
		Help:      "Identity clusters formed in the latest run",
	})

	m.duplicateHandles = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_handles_dropped_total",
		Help:      "Same-platform duplicates dropped during aggregation",
	})

	m.profilesScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profiles_scored_total",
		Help:      "Canonical profiles scored",
	})

	m.scoringDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_duration_seconds",
		Help:      "Wall time of the scoring stage per run",
		Buckets:   m.histogramBuckets,
	})

	m.pipelineRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Completed pipeline runs",
	})

	m.pipelineFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_failures_total",
		Help:      "Pipeline runs that ended in error",
	})

	m.pipelineDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Wall time of whole pipeline runs",
		Buckets:   m.histogramBuckets,
	})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last successful run",
	})

	m.profilesTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profiles_total",
		Help:      "Canonical profiles in the latest leaderboard",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Admin HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "Admin HTTP request duration by endpoint, method and status",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// Package-level helpers against the global manager.

func RecordFetched(source string, n int) {
	globalManager.recordsFetched.WithLabelValues(source).Add(float64(n))
}

func RecordFetchError(source string) {
	globalManager.fetchErrors.WithLabelValues(source).Inc()
}

func RecordCacheHit()  { globalManager.cacheHits.Inc() }
func RecordCacheMiss() { globalManager.cacheMisses.Inc() }

func RecordPairComparisons(n int) {
	globalManager.pairComparisons.Add(float64(n))
}

func RecordMatches(n int) {
	globalManager.matchesFound.Add(float64(n))
}

func UpdateClustersFormed(n int) {
	globalManager.clustersFormed.Set(float64(n))
}

func RecordDuplicateHandles(n int) {
	globalManager.duplicateHandles.Add(float64(n))
}

func RecordProfilesScored(n int) {
	globalManager.profilesScored.Add(float64(n))
}

func RecordScoringDuration(seconds float64) {
	globalManager.scoringDuration.Observe(seconds)
}

func RecordPipelineRun()     { globalManager.pipelineRuns.Inc() }
func RecordPipelineFailure() { globalManager.pipelineFailures.Inc() }

func RecordPipelineDuration(seconds float64) {
	globalManager.pipelineDuration.Observe(seconds)
}

func UpdateLastRunUnix(ts float64) {
	globalManager.lastRunUnix.Set(ts)
}

func UpdateProfilesTotal(n int) {
	globalManager.profilesTotal.Set(float64(n))
}

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(seconds)
}

// GetRegistry returns the custom registry serving /healthz metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
