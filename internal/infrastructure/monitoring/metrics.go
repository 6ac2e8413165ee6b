package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for one pipeline run. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Tabular metrics
	RowsTotal       *prometheus.CounterVec
	RecordsExported prometheus.Gauge

	// Fetch metrics
	FetchesTotal  *prometheus.CounterVec
	FetchDuration prometheus.Histogram

	// Reconciliation metrics
	UpsertsTotal   *prometheus.CounterVec
	EntitiesStored prometheus.Gauge

	// Run metrics
	RunDuration prometheus.Gauge
	LastRun     prometheus.Gauge
	startTime   time.Time
}

// NewMetrics creates a metrics collector on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "temples_rows_total",
				Help: "Input rows read, by outcome",
			},
			[]string{"outcome"},
		),
		RecordsExported: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "temples_records_exported",
				Help: "Records written to the export",
			},
		),

		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "temples_fetches_total",
				Help: "Document fetches, by status class",
			},
			[]string{"status"},
		),
		FetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "temples_fetch_duration_seconds",
				Help:    "Document fetch latency",
				Buckets: prometheus.DefBuckets,
			},
		),

		UpsertsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "temples_upserts_total",
				Help: "Reconciliation upserts, by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		EntitiesStored: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "temples_entities",
				Help: "Canonical entities in the store",
			},
		),

		RunDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "temples_run_duration_seconds",
				Help: "Wall time of the last run",
			},
		),
		LastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "temples_last_run_timestamp_seconds",
				Help: "Unix time the last run finished",
			},
		),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRow counts one input row with outcome "accepted" or "filtered".
func (m *Metrics) RecordRow(outcome string) {
	if m == nil {
		return
	}
	m.RowsTotal.WithLabelValues(outcome).Inc()
}

// SetRecordsExported sets the size of the export.
func (m *Metrics) SetRecordsExported(n int) {
	if m == nil {
		return
	}
	m.RecordsExported.Set(float64(n))
}

// RecordFetch records a fetch. A zero status means the request failed
// before a response arrived.
func (m *Metrics) RecordFetch(status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(StatusClass(status)).Inc()
	m.FetchDuration.Observe(duration.Seconds())
}

// RecordUpsert counts one reconciliation outcome for a source.
func (m *Metrics) RecordUpsert(source, outcome string) {
	if m == nil {
		return
	}
	m.UpsertsTotal.WithLabelValues(source, outcome).Inc()
}

// SetEntities sets the canonical store size.
func (m *Metrics) SetEntities(n int) {
	if m == nil {
		return
	}
	m.EntitiesStored.Set(float64(n))
}

// Finish stamps the run duration and completion time.
func (m *Metrics) Finish() {
	if m == nil {
		return
	}
	m.RunDuration.Set(time.Since(m.startTime).Seconds())
	m.LastRun.SetToCurrentTime()
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

// StatusClass maps an HTTP status to "2xx", "4xx" and so on, or "error"
// when there was no response.
func StatusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
