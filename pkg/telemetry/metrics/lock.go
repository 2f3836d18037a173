package metrics

import (
	"time"

	"mercator-hq/callisto/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// LockMetrics tracks the named lock registry.
//
// Metrics:
//   - callisto_lock_acquisitions_total: Successful acquisitions by lock
//   - callisto_lock_timeouts_total: Timed-out acquisitions by lock
//   - callisto_lock_wait_seconds: Time spent waiting to acquire
//   - callisto_lock_hold_seconds: Time locks were held
//   - callisto_lock_waiters: Goroutines currently waiting
type LockMetrics struct {
	acquisitionsTotal *prometheus.CounterVec
	timeoutsTotal     *prometheus.CounterVec
	waitDuration      *prometheus.HistogramVec
	holdDuration      *prometheus.HistogramVec
	waiters           *prometheus.GaugeVec
}

// NewLockMetrics creates and registers lock metrics with the provided registry.
func NewLockMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *LockMetrics {
	lm := &LockMetrics{
		acquisitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "lock_acquisitions_total",
				Help:      "Successful lock acquisitions",
			},
			[]string{"name"},
		),

		timeoutsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "lock_timeouts_total",
				Help:      "Lock acquisitions that timed out",
			},
			[]string{"name"},
		),

		waitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "lock_wait_seconds",
				Help:      "Time spent waiting to acquire a lock",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0},
			},
			[]string{"name"},
		),

		holdDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "lock_hold_seconds",
				Help:      "Time a lock was held before release",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"name"},
		),

		waiters: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "lock_waiters",
				Help:      "Goroutines currently waiting on a lock",
			},
			[]string{"name"},
		),
	}

	registry.MustRegister(
		lm.acquisitionsTotal,
		lm.timeoutsTotal,
		lm.waitDuration,
		lm.holdDuration,
		lm.waiters,
	)

	return lm
}

// RecordAcquisition records a successful acquisition and its wait time.
func (lm *LockMetrics) RecordAcquisition(name string, wait time.Duration) {
	lm.acquisitionsTotal.WithLabelValues(name).Inc()
	lm.waitDuration.WithLabelValues(name).Observe(wait.Seconds())
}

// RecordTimeout records a timed-out acquisition.
func (lm *LockMetrics) RecordTimeout(name string) {
	lm.timeoutsTotal.WithLabelValues(name).Inc()
}

// RecordHold records how long a lock was held.
func (lm *LockMetrics) RecordHold(name string, held time.Duration) {
	lm.holdDuration.WithLabelValues(name).Observe(held.Seconds())
}

// UpdateWaiters updates the waiter gauge for a lock.
func (lm *LockMetrics) UpdateWaiters(name string, waiters int) {
	lm.waiters.WithLabelValues(name).Set(float64(waiters))
}
