package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds the service metrics. Its Observe* methods satisfy the
// recorder interfaces of the public data gateway, the facts collector and
// the narrative generator.
type AppMetrics struct {
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	PublicDataRequestsTotal   CounterVec
	PublicDataRequestDuration HistogramVec

	FactsCollectionsTotal CounterVec
	FactsBuildingAttempts HistogramVec
	FactsCacheTotal       CounterVec

	NarrativeTotal CounterVec

	ReportsCreatedTotal CounterVec
	PersistenceTotal    CounterVec

	ArchiveTotal    CounterVec
	ArchiveDuration HistogramVec
}

var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultUpstreamDurationBuckets = []float64{.05, .1, .25, .5, 1, 2, 4, 8, 16}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	m.PublicDataRequestsTotal = collector.RegisterCounter("publicdata_requests_total", "Public data API requests", "endpoint", "outcome")
	m.PublicDataRequestDuration = collector.RegisterHistogram("publicdata_request_duration_seconds", "Public data API request duration", DefaultUpstreamDurationBuckets, "endpoint")

	m.FactsCollectionsTotal = collector.RegisterCounter("facts_collections_total", "External facts collections by building status", "status")
	m.FactsBuildingAttempts = collector.RegisterHistogram("facts_building_attempts", "Building lookup attempts per collection", []float64{0, 1, 2, 3, 5, 8}, "status")
	m.FactsCacheTotal = collector.RegisterCounter("facts_cache_total", "External facts cache lookups", "result")

	m.NarrativeTotal = collector.RegisterCounter("narrative_generations_total", "Narrative generation attempts", "backend", "outcome")

	m.ReportsCreatedTotal = collector.RegisterCounter("reports_created_total", "Analysis reports created", "scenario", "narrative_source")
	m.PersistenceTotal = collector.RegisterCounter("report_persistence_total", "Report persistence attempts", "outcome")

	m.ArchiveTotal = collector.RegisterCounter("report_archive_total", "Report archive attempts by the worker", "outcome")
	m.ArchiveDuration = collector.RegisterHistogram("report_archive_duration_seconds", "Report archive duration", DefaultUpstreamDurationBuckets)

	return m
}

// RecordHTTPRequest records one finished request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (m *AppMetrics) ObservePublicDataRequest(endpoint, outcome string, d time.Duration) {
	m.PublicDataRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.PublicDataRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *AppMetrics) ObserveFactsCollection(status string, attempts int) {
	m.FactsCollectionsTotal.WithLabelValues(status).Inc()
	m.FactsBuildingAttempts.WithLabelValues(status).Observe(float64(attempts))
}

func (m *AppMetrics) ObserveFactsCache(result string) {
	m.FactsCacheTotal.WithLabelValues(result).Inc()
}

func (m *AppMetrics) ObserveNarrative(backend, outcome string) {
	m.NarrativeTotal.WithLabelValues(backend, outcome).Inc()
}

// ObserveReport counts a created report.
func (m *AppMetrics) ObserveReport(scenario, narrativeSource string) {
	m.ReportsCreatedTotal.WithLabelValues(scenario, narrativeSource).Inc()
}

// ObservePersistence counts a persistence attempt; outcome is saved, skipped or failed.
func (m *AppMetrics) ObservePersistence(outcome string) {
	m.PersistenceTotal.WithLabelValues(outcome).Inc()
}

// ObserveArchive records one worker archive attempt.
func (m *AppMetrics) ObserveArchive(outcome string, d time.Duration) {
	m.ArchiveTotal.WithLabelValues(outcome).Inc()
	m.ArchiveDuration.WithLabelValues().Observe(d.Seconds())
}

//Personal.AI order the ending
