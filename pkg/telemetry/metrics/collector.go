package metrics

import (
	"fmt"
	"sync"
	"time"

	"mercator-hq/callisto/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the orchestrator for all Prometheus metrics in callisto.
// It manages metric registration and provides a unified interface for
// recording metrics across the batch pipeline, the memory monitor, and
// the lock registry.
//
// The collector is designed for low overhead on the hot path:
//   - Pre-allocated metric instances
//   - Cardinality limits to keep label sets bounded
//   - Histogram buckets sized for document batch workloads
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Batch pipeline metrics
	batchMetrics *BatchMetrics

	// Memory governance metrics
	memoryMetrics *MemoryMetrics

	// Named lock metrics
	lockMetrics *LockMetrics

	// Cardinality tracking
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil a fresh
// private registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "callisto",
//		Subsystem: "batch",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "callisto"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "batch"
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(10000),
	}

	c.batchMetrics = NewBatchMetrics(cfg, registry)
	c.memoryMetrics = NewMemoryMetrics(cfg, registry)
	c.lockMetrics = NewLockMetrics(cfg, registry)

	return c
}

// RecordBatch records metrics for a completed batch.
//
// Parameters:
//   - operation: batch operation ("detect", "redact", "extract", "hybrid")
//   - tier: processing tier ("direct", "locked", "emergency")
//   - status: outcome ("success", "partial", "error", "exhausted")
//   - duration: total batch duration
//   - files: number of files in the batch
func (c *Collector) RecordBatch(operation, tier, status string, duration time.Duration, files int) {
	if !c.config.Enabled {
		return
	}

	labelSet := fmt.Sprintf("batch:%s:%s:%s", operation, tier, status)
	if !c.cardinalityLimiter.Allow(labelSet) {
		operation = "other"
	}

	c.batchMetrics.RecordBatch(operation, tier, status, duration, files)
}

// RecordFile records the outcome of a single file within a batch.
func (c *Collector) RecordFile(operation, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.batchMetrics.RecordFile(operation, status, duration)
}

// RecordPayloadSize records the total payload size of a batch in bytes.
func (c *Collector) RecordPayloadSize(operation string, sizeBytes int64) {
	if !c.config.Enabled {
		return
	}

	c.batchMetrics.RecordPayloadSize(operation, sizeBytes)
}

// RecordRejection records a batch rejected before processing.
//
// Parameters:
//   - reason: rejection reason ("validation", "payload_too_large", "exhausted")
func (c *Collector) RecordRejection(reason string) {
	if !c.config.Enabled {
		return
	}

	c.batchMetrics.RecordRejection(reason)
}

// RecordEngineDegradation records a hybrid batch running with a reduced
// engine set.
func (c *Collector) RecordEngineDegradation(level string) {
	if !c.config.Enabled {
		return
	}

	c.batchMetrics.RecordEngineDegradation(level)
}

// UpdateMemoryUsage updates the memory usage gauge (percent of total).
func (c *Collector) UpdateMemoryUsage(usagePercent float64) {
	if !c.config.Enabled {
		return
	}

	c.memoryMetrics.UpdateUsage(usagePercent)
}

// UpdateMemoryThresholds updates the adaptive threshold gauges.
func (c *Collector) UpdateMemoryThresholds(soft, critical, batch float64) {
	if !c.config.Enabled {
		return
	}

	c.memoryMetrics.UpdateThresholds(soft, critical, batch)
}

// RecordCleanup records a memory cleanup pass.
//
// Parameters:
//   - kind: "soft" or "emergency"
func (c *Collector) RecordCleanup(kind string) {
	if !c.config.Enabled {
		return
	}

	c.memoryMetrics.RecordCleanup(kind)
}

// UpdateWorkerCount updates the gauge tracking the worker count chosen
// for the most recent batch.
func (c *Collector) UpdateWorkerCount(workers int) {
	if !c.config.Enabled {
		return
	}

	c.memoryMetrics.UpdateWorkerCount(workers)
}

// RecordBuffering records a buffering decision for an intermediate result.
//
// Parameters:
//   - location: "memory" or "disk"
func (c *Collector) RecordBuffering(location string) {
	if !c.config.Enabled {
		return
	}

	c.memoryMetrics.RecordBuffering(location)
}

// RecordLockAcquisition records a successful lock acquisition and the
// time spent waiting for it.
func (c *Collector) RecordLockAcquisition(name string, wait time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.lockMetrics.RecordAcquisition(name, wait)
}

// RecordLockTimeout records a lock acquisition that timed out.
func (c *Collector) RecordLockTimeout(name string) {
	if !c.config.Enabled {
		return
	}

	c.lockMetrics.RecordTimeout(name)
}

// RecordLockHold records how long a lock was held once released.
func (c *Collector) RecordLockHold(name string, held time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.lockMetrics.RecordHold(name, held)
}

// UpdateLockWaiters updates the gauge of goroutines waiting on a lock.
func (c *Collector) UpdateLockWaiters(name string, waiters int) {
	if !c.config.Enabled {
		return
	}

	c.lockMetrics.UpdateWaiters(name, waiters)
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the
// specified maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if the cardinality limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
