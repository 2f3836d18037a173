package metrics

import (
	"time"

	"mercator-hq/callisto/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// BatchMetrics tracks metrics for the batch processing pipeline.
//
// Metrics:
//   - callisto_batches_total: Batch count by operation, tier, status
//   - callisto_batch_duration_seconds: Batch duration histogram
//   - callisto_files_total: Per-file outcome count
//   - callisto_file_duration_seconds: Per-file duration histogram
//   - callisto_payload_bytes: Batch payload size histogram
//   - callisto_rejections_total: Batches rejected before processing
//   - callisto_engine_degradations_total: Hybrid engine-set reductions
type BatchMetrics struct {
	batchesTotal      *prometheus.CounterVec
	batchDuration     *prometheus.HistogramVec
	batchFiles        *prometheus.HistogramVec
	filesTotal        *prometheus.CounterVec
	fileDuration      *prometheus.HistogramVec
	payloadBytes      *prometheus.HistogramVec
	rejectionsTotal   *prometheus.CounterVec
	degradationsTotal *prometheus.CounterVec
}

// NewBatchMetrics creates and registers batch metrics with the provided registry.
func NewBatchMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *BatchMetrics {
	bm := &BatchMetrics{
		batchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "batches_total",
				Help:      "Total number of document batches processed",
			},
			[]string{"operation", "tier", "status"},
		),

		batchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "batch_duration_seconds",
				Help:      "Duration of batch processing in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"operation", "tier"},
		),

		batchFiles: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "batch_files",
				Help:      "Number of files per batch",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
			},
			[]string{"operation"},
		),

		filesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "files_total",
				Help:      "Total number of files processed",
			},
			[]string{"operation", "status"},
		),

		fileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "file_duration_seconds",
				Help:      "Duration of per-file processing in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"operation"},
		),

		payloadBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "payload_bytes",
				Help:      "Total batch payload size in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to 256MB
			},
			[]string{"operation"},
		),

		rejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rejections_total",
				Help:      "Batches rejected before processing",
			},
			[]string{"reason"},
		),

		degradationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "engine_degradations_total",
				Help:      "Hybrid batches run with a reduced engine set",
			},
			[]string{"level"},
		),
	}

	registry.MustRegister(
		bm.batchesTotal,
		bm.batchDuration,
		bm.batchFiles,
		bm.filesTotal,
		bm.fileDuration,
		bm.payloadBytes,
		bm.rejectionsTotal,
		bm.degradationsTotal,
	)

	return bm
}

// RecordBatch records metrics for a completed batch.
func (bm *BatchMetrics) RecordBatch(operation, tier, status string, duration time.Duration, files int) {
	bm.batchesTotal.WithLabelValues(operation, tier, status).Inc()
	bm.batchDuration.WithLabelValues(operation, tier).Observe(duration.Seconds())
	if files > 0 {
		bm.batchFiles.WithLabelValues(operation).Observe(float64(files))
	}
}

// RecordFile records the outcome of a single file.
func (bm *BatchMetrics) RecordFile(operation, status string, duration time.Duration) {
	bm.filesTotal.WithLabelValues(operation, status).Inc()
	bm.fileDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordPayloadSize records the payload size of a batch.
func (bm *BatchMetrics) RecordPayloadSize(operation string, sizeBytes int64) {
	if sizeBytes > 0 {
		bm.payloadBytes.WithLabelValues(operation).Observe(float64(sizeBytes))
	}
}

// RecordRejection records a batch rejected before processing.
func (bm *BatchMetrics) RecordRejection(reason string) {
	bm.rejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordEngineDegradation records a hybrid batch run with fewer engines.
func (bm *BatchMetrics) RecordEngineDegradation(level string) {
	bm.degradationsTotal.WithLabelValues(level).Inc()
}
