package pipeline

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sanspareilsmyn/mfreport/internal/report"
)

const (
	endpointCount = "count"
	endpointPage  = "page"

	reportStatusOK      = "ok"
	reportStatusPartial = "partial"
	reportStatusFailed  = "failed"
)

// Metrics holds the run's Prometheus collectors. Each pipeline owns a registry
// so runs and tests never share state.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests          *prometheus.CounterVec
	apiRequestDuration   *prometheus.HistogramVec
	recordingsFetched    *prometheus.CounterVec
	recordingsDispatched *prometheus.CounterVec
	recordingsDropped    *prometheus.CounterVec
	reportSessions       *prometheus.GaugeVec
	reportRows           *prometheus.GaugeVec
	reports              *prometheus.CounterVec
	lastRunTimestamp     prometheus.Gauge
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		apiRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mfreport_api_requests_total",
				Help: "Requests sent to the recordings endpoint by endpoint and response status class.",
			},
			[]string{"endpoint", "class"},
		),
		apiRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mfreport_api_request_duration_seconds",
				Help:    "Latency of requests to the recordings endpoint.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		recordingsFetched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mfreport_recordings_fetched_total",
				Help: "Recordings collected from the source per website.",
			},
			[]string{"website_id"},
		),
		recordingsDispatched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mfreport_recordings_dispatched_total",
				Help: "Recordings folded into a report row per website.",
			},
			[]string{"website_id"},
		),
		recordingsDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mfreport_recordings_dropped_total",
				Help: "Recordings that did not reach a row, by reason.",
			},
			[]string{"website_id", "reason"}, // reason: out_of_range, unparseable, malformed
		),
		reportSessions: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mfreport_report_sessions",
				Help: "Sessions counted over the whole report range in the last run.",
			},
			[]string{"website_id"},
		),
		reportRows: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mfreport_report_rows",
				Help: "Data rows written to the report file in the last run.",
			},
			[]string{"website_id"},
		),
		reports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mfreport_reports_total",
				Help: "Reports processed by outcome.",
			},
			[]string{"status"},
		),
		lastRunTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mfreport_last_run_timestamp_seconds",
				Help: "Unix time the last run finished.",
			},
		),
	}
}

// Registry exposes the collectors, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeRequest(endpoint, class string, elapsed time.Duration) {
	m.apiRequests.WithLabelValues(endpoint, class).Inc()
	m.apiRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) observeReport(websiteID string, stats report.Stats, sessions int64, rows int) {
	m.recordingsFetched.WithLabelValues(websiteID).Add(float64(stats.Received))
	m.recordingsDispatched.WithLabelValues(websiteID).Add(float64(stats.Dispatched))
	m.recordingsDropped.WithLabelValues(websiteID, "out_of_range").Add(float64(stats.OutOfRange))
	m.recordingsDropped.WithLabelValues(websiteID, "unparseable").Add(float64(stats.Unparseable))
	m.recordingsDropped.WithLabelValues(websiteID, "malformed").Add(float64(stats.Malformed))
	m.reportSessions.WithLabelValues(websiteID).Set(float64(sessions))
	m.reportRows.WithLabelValues(websiteID).Set(float64(rows))
}

func (m *Metrics) observeOutcome(status string) {
	m.reports.WithLabelValues(status).Inc()
}

// WriteTextfile stamps the run time and writes every collector to path in
// the text exposition format, for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	m.lastRunTimestamp.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrWritingMetrics, err)
	}
	return nil
}
