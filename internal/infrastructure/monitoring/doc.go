/*
Package monitoring collects run metrics with Prometheus.

Each run owns a private registry so tests and repeated runs in one process
never collide. The CLI dumps the registry to a node-exporter textfile when
--metrics-file is set.

# Metrics

  - temples_rows_total{outcome}: tabular rows accepted or filtered
  - temples_records_exported: export size
  - temples_fetches_total{status}: fetches by status class
  - temples_fetch_duration_seconds: fetch latency
  - temples_upserts_total{source,outcome}: reconciliation outcomes
  - temples_entities: canonical store size
  - temples_run_duration_seconds, temples_last_run_timestamp_seconds

# Usage

	metrics := monitoring.NewMetrics()
	metrics.RecordFetch(200, elapsed)
	metrics.Finish()
	if err := metrics.WriteTextfile("/var/lib/node_exporter/temples.prom"); err != nil {
		return err
	}
*/
package monitoring
