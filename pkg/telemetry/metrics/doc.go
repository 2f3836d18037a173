// Package metrics provides Prometheus instrumentation for callisto.
//
// The Collector owns a private registry and groups metrics by
// subsystem: batch processing (counts, durations, payload sizes by
// operation and tier), memory governance (usage, adaptive thresholds,
// cleanup counts, worker sizing), and named locks (acquisitions,
// timeouts, hold durations). A CardinalityLimiter caps the number of
// unique label sets so unbounded client input cannot blow up the
// registry.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordBatch("redact", "locked", "success", duration, 3)
//	http.Handle("/metrics", collector.Handler())
package metrics
