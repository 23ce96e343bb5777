package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Pipeline metrics
	PipelineRunsTotal   *prometheus.CounterVec
	PipelineRunDuration *prometheus.HistogramVec
	PipelineRowsFailed  *prometheus.CounterVec
	SimulatedDaysTotal  prometheus.Counter

	// Upstream API metrics
	UpstreamAPICalls    *prometheus.CounterVec
	UpstreamAPIDuration *prometheus.HistogramVec
	UpstreamAPIFailures *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		PipelineRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_runs_total",
				Help: "Total number of performance pipeline runs",
			},
			[]string{"status", "source"},
		),

		PipelineRunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeline_run_duration_seconds",
				Help:    "Performance pipeline run duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"source"},
		),

		PipelineRowsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_rows_failed_total",
				Help: "Total number of upstream rows dropped or degraded during reconciliation",
			},
			[]string{"reason"},
		),

		SimulatedDaysTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "simulated_days_total",
				Help: "Total number of fallback-generated daily records",
			},
		),

		UpstreamAPICalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_api_calls_total",
				Help: "Total number of upstream insights API calls",
			},
			[]string{"status"},
		),

		UpstreamAPIDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upstream_api_duration_seconds",
				Help:    "Upstream insights API call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),

		UpstreamAPIFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_api_failures_total",
				Help: "Total number of upstream insights API failures",
			},
			[]string{"error_type"},
		),
	}
}

// HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Pipeline run metrics
func (m *Metrics) RecordPipelineRun(status, source string, duration time.Duration) {
	m.PipelineRunsTotal.WithLabelValues(status, source).Inc()
	m.PipelineRunDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// Row-level reconciliation failures
func (m *Metrics) RecordRowFailure(reason string) {
	m.PipelineRowsFailed.WithLabelValues(reason).Inc()
}

// Fallback generator output
func (m *Metrics) RecordSimulatedDays(count int) {
	m.SimulatedDaysTotal.Add(float64(count))
}

// Upstream API call metrics
func (m *Metrics) RecordUpstreamCall(status string, duration time.Duration) {
	m.UpstreamAPICalls.WithLabelValues(status).Inc()
	m.UpstreamAPIDuration.WithLabelValues("insights").Observe(duration.Seconds())
}

// Upstream API failure metrics
func (m *Metrics) RecordUpstreamFailure(errorType string) {
	m.UpstreamAPIFailures.WithLabelValues(errorType).Inc()
}

// HTTP requests in flight counter
func (m *Metrics) IncHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// HTTP requests in flight counter
func (m *Metrics) DecHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}
