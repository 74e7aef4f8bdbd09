package prometheus

import (
	"strconv"
	"time"
)

// Bucket layouts.
var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultAnalysisDurationBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30}
	DefaultDBDurationBuckets       = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// Observation outcomes recorded by RecordObservations.
const (
	OutcomeAccepted  = "accepted"
	OutcomeSkipped   = "skipped"
	OutcomeDegraded  = "degraded"
	OutcomeDuplicate = "duplicate"
)

// AppMetrics holds every metric family the service records.  All Record
// methods are safe on a nil receiver, which disables recording.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Pipeline
	ObservationsTotal CounterVec
	AnalysesTotal     CounterVec
	AnalysisDuration  HistogramVec
	CohortSize        HistogramVec

	// Infrastructure
	CacheHitsTotal       CounterVec
	CacheMissesTotal     CounterVec
	DBQueryDuration      HistogramVec
	MessagesTotal        CounterVec
	MessageDuration      HistogramVec
	ExportsTotal         CounterVec
	IndexOperationsTotal CounterVec

	// Health
	ErrorsTotal       CounterVec
	HealthCheckStatus GaugeVec
}

// NewAppMetrics registers all families on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:   collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code"),
		HTTPRequestDuration: collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path"),
		HTTPActiveRequests:  collector.RegisterGauge("http_active_requests", "In-flight HTTP requests"),

		ObservationsTotal: collector.RegisterCounter("observations_total", "Raw observations by merge outcome", "outcome"),
		AnalysesTotal:     collector.RegisterCounter("analyses_total", "Completed cohort analyses", "industry", "fragmentation_level"),
		AnalysisDuration:  collector.RegisterHistogram("analysis_duration_seconds", "Analysis duration", DefaultAnalysisDurationBuckets, "operation"),
		CohortSize:        collector.RegisterHistogram("cohort_businesses", "Canonical businesses per analysed cohort", []float64{1, 5, 10, 25, 50, 100, 250, 1000}, "industry"),

		CacheHitsTotal:       collector.RegisterCounter("cache_hits_total", "Cache hits", "cache"),
		CacheMissesTotal:     collector.RegisterCounter("cache_misses_total", "Cache misses", "cache"),
		DBQueryDuration:      collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation", "status"),
		MessagesTotal:        collector.RegisterCounter("mq_messages_total", "Kafka messages by outcome", "topic", "status"),
		MessageDuration:      collector.RegisterHistogram("mq_process_duration_seconds", "Kafka message processing duration", DefaultAnalysisDurationBuckets, "topic"),
		ExportsTotal:         collector.RegisterCounter("report_exports_total", "Report exports to object storage", "status"),
		IndexOperationsTotal: collector.RegisterCounter("index_operations_total", "Search index operations", "operation", "status"),

		ErrorsTotal:       collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code"),
		HealthCheckStatus: collector.RegisterGauge("health_check_status", "Dependency health (1=up, 0=down)", "component"),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordHTTPRequest records one finished request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordObservations records the outcome counts of one merge.
func (m *AppMetrics) RecordObservations(accepted, skipped, degraded, duplicates int) {
	if m == nil {
		return
	}
	m.ObservationsTotal.WithLabelValues(OutcomeAccepted).Add(float64(accepted))
	m.ObservationsTotal.WithLabelValues(OutcomeSkipped).Add(float64(skipped))
	m.ObservationsTotal.WithLabelValues(OutcomeDegraded).Add(float64(degraded))
	m.ObservationsTotal.WithLabelValues(OutcomeDuplicate).Add(float64(duplicates))
}

// RecordAnalysis records one analysed cohort.
func (m *AppMetrics) RecordAnalysis(industry, level string, businesses int, d time.Duration) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(industry, level).Inc()
	m.AnalysisDuration.WithLabelValues("cohort").Observe(d.Seconds())
	m.CohortSize.WithLabelValues(industry).Observe(float64(businesses))
}

// RecordDuration records the duration of a named operation.
func (m *AppMetrics) RecordDuration(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.AnalysisDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordCacheAccess records a hit or a miss.
func (m *AppMetrics) RecordCacheAccess(cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// RecordDBQuery records a query duration.
func (m *AppMetrics) RecordDBQuery(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(operation, status(err)).Observe(d.Seconds())
}

// RecordMessage records one consumed message.  status is one of ok, retry,
// dlq or error.
func (m *AppMetrics) RecordMessage(topic, st string, d time.Duration) {
	if m == nil {
		return
	}
	m.MessagesTotal.WithLabelValues(topic, st).Inc()
	m.MessageDuration.WithLabelValues(topic).Observe(d.Seconds())
}

// RecordExport records one report export attempt.
func (m *AppMetrics) RecordExport(err error) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(status(err)).Inc()
}

// RecordIndexOperation records one search index call.
func (m *AppMetrics) RecordIndexOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.IndexOperationsTotal.WithLabelValues(operation, status(err)).Inc()
}

// RecordError counts an error by component and code.
func (m *AppMetrics) RecordError(component, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}

// SetHealth records a dependency's health.
func (m *AppMetrics) SetHealth(component string, up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

//Personal.AI order the ending
