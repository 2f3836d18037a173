package metrics

import (
	"mercator-hq/callisto/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// MemoryMetrics tracks the memory governor.
//
// Metrics:
//   - callisto_memory_usage_percent: Current memory usage
//   - callisto_memory_threshold_percent: Adaptive thresholds by kind
//   - callisto_memory_cleanups_total: Cleanup passes by kind
//   - callisto_batch_workers: Worker count chosen for the last batch
//   - callisto_buffering_total: Buffering decisions by location
type MemoryMetrics struct {
	usagePercent   prometheus.Gauge
	thresholds     *prometheus.GaugeVec
	cleanupsTotal  *prometheus.CounterVec
	workerCount    prometheus.Gauge
	bufferingTotal *prometheus.CounterVec
}

// NewMemoryMetrics creates and registers memory metrics with the provided registry.
func NewMemoryMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *MemoryMetrics {
	mm := &MemoryMetrics{
		usagePercent: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "memory_usage_percent",
				Help:      "Current system memory usage as a percent of total",
			},
		),

		thresholds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "memory_threshold_percent",
				Help:      "Adaptive memory thresholds by kind (soft, critical, batch)",
			},
			[]string{"kind"},
		),

		cleanupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "memory_cleanups_total",
				Help:      "Memory cleanup passes by kind (soft, emergency)",
			},
			[]string{"kind"},
		),

		workerCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "workers",
				Help:      "Worker count chosen for the most recent batch",
			},
		),

		bufferingTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "buffering_total",
				Help:      "Intermediate result buffering decisions by location (memory, disk)",
			},
			[]string{"location"},
		),
	}

	registry.MustRegister(
		mm.usagePercent,
		mm.thresholds,
		mm.cleanupsTotal,
		mm.workerCount,
		mm.bufferingTotal,
	)

	return mm
}

// UpdateUsage updates the memory usage gauge.
func (mm *MemoryMetrics) UpdateUsage(usagePercent float64) {
	mm.usagePercent.Set(usagePercent)
}

// UpdateThresholds updates the adaptive threshold gauges.
func (mm *MemoryMetrics) UpdateThresholds(soft, critical, batch float64) {
	mm.thresholds.WithLabelValues("soft").Set(soft)
	mm.thresholds.WithLabelValues("critical").Set(critical)
	mm.thresholds.WithLabelValues("batch").Set(batch)
}

// RecordCleanup records a cleanup pass.
func (mm *MemoryMetrics) RecordCleanup(kind string) {
	mm.cleanupsTotal.WithLabelValues(kind).Inc()
}

// UpdateWorkerCount updates the worker count gauge.
func (mm *MemoryMetrics) UpdateWorkerCount(workers int) {
	mm.workerCount.Set(float64(workers))
}

// RecordBuffering records a buffering decision.
func (mm *MemoryMetrics) RecordBuffering(location string) {
	mm.bufferingTotal.WithLabelValues(location).Inc()
}
