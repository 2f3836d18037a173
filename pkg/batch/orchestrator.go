package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/callisto/pkg/align"
	"mercator-hq/callisto/pkg/audit"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/detect"
	"mercator-hq/callisto/pkg/document"
	"mercator-hq/callisto/pkg/extract"
	"mercator-hq/callisto/pkg/locking"
	"mercator-hq/callisto/pkg/memwatch"
	"mercator-hq/callisto/pkg/sanitize"
	"mercator-hq/callisto/pkg/telemetry/logging"
	"mercator-hq/callisto/pkg/telemetry/metrics"
	"mercator-hq/callisto/pkg/telemetry/tracing"
)

// Tier names as reported in BatchResult.Tier.
const (
	TierDirect    = "direct"
	TierLocked    = "locked"
	TierEmergency = "emergency"
)

// errMemoryPressure makes a direct-tier attempt fail under critical memory
// pressure so the batch queues behind the lock instead of piling on.
var errMemoryPressure = errors.New("critical memory pressure, deferring to locked tier")

// Settings is the orchestrator's reloadable configuration snapshot.
// UpdateConfig swaps the whole snapshot atomically; in-flight batches keep
// the snapshot they started with.
type Settings struct {
	Batch  config.BatchConfig
	Detect config.DetectConfig
}

// Options carries the orchestrator's collaborators. Lock, Monitor, Engines,
// Extractor, Aligner, Mutator, and Logger are required; Metrics, Tracer,
// and Recorder may be nil to disable that concern.
type Options struct {
	Lock      *locking.Lock
	Monitor   *memwatch.Monitor
	Engines   *detect.Registry
	Extractor extract.Extractor
	Aligner   *align.Aligner
	Mutator   *align.Mutator
	Logger    *logging.Logger
	Metrics   *metrics.Collector
	Tracer    *tracing.Tracer
	Recorder  *audit.Recorder
}

// Orchestrator runs batch operations through the tiered degradation
// pipeline. One instance is constructed at process start and shared by
// every request; it owns the batch lock reference and never mutates its
// collaborators.
type Orchestrator struct {
	settings atomic.Pointer[Settings]

	lock      *locking.Lock
	monitor   *memwatch.Monitor
	engines   *detect.Registry
	extractor extract.Extractor
	aligner   *align.Aligner
	mutator   *align.Mutator
	logger    *logging.Logger
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	recorder  *audit.Recorder
}

// New creates an Orchestrator with the given settings and collaborators.
func New(settings Settings, opts Options) *Orchestrator {
	o := &Orchestrator{
		lock:      opts.Lock,
		monitor:   opts.Monitor,
		engines:   opts.Engines,
		extractor: opts.Extractor,
		aligner:   opts.Aligner,
		mutator:   opts.Mutator,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		tracer:    opts.Tracer,
		recorder:  opts.Recorder,
	}
	o.settings.Store(&settings)
	return o
}

// UpdateConfig replaces the settings snapshot. Batches already running keep
// their original snapshot.
func (o *Orchestrator) UpdateConfig(settings Settings) {
	o.settings.Store(&settings)
}

// Snapshot returns the current settings.
func (o *Orchestrator) Snapshot() Settings {
	return *o.settings.Load()
}

// Process runs one batch operation end to end. It returns an error only
// for caller mistakes (bad request shape, unknown engine); every resource
// outcome, including total exhaustion, is expressed as a BatchResult.
func (o *Orchestrator) Process(ctx context.Context, req *Request) (*document.BatchResult, error) {
	settings := *o.settings.Load()

	if err := req.Validate(settings.Batch.MaxFileBytes); err != nil {
		if o.metrics != nil {
			o.metrics.RecordRejection("validation")
		}
		return nil, err
	}

	operationID := uuid.NewString()
	ctx = logging.WithOperationID(ctx, operationID)

	plan, err := o.planEngines(req, settings)
	if err != nil {
		if o.metrics != nil {
			o.metrics.RecordRejection("unknown_engine")
		}
		return nil, err
	}

	var span trace.Span
	if o.tracer != nil {
		ctx, span = o.tracer.Start(ctx, "batch.process",
			trace.WithAttributes(tracing.BatchAttributes(operationID, string(req.Operation), "", len(req.Files))...))
		defer span.End()
	}
	if o.metrics != nil {
		o.metrics.RecordPayloadSize(string(req.Operation), req.TotalBytes())
	}

	started := time.Now()
	result := o.dispatch(ctx, req, plan, settings, operationID)
	elapsed := time.Since(started)
	result.Summary.TotalTime = elapsed.Milliseconds()

	if span != nil {
		tracing.SetBatchOutcome(span, result.LockUsed, result.EmergencyMode, result.Engines)
		if result.Exhausted() {
			tracing.SetError(span, sanitize.ErrExhausted)
		}
	}
	o.observe(req, result, elapsed)
	return result, nil
}

// dispatch walks the tiers in strict degradation order: direct for small
// batches, locked for everything else, emergency on lock timeout, and the
// retry-after floor when even emergency cannot run.
func (o *Orchestrator) dispatch(ctx context.Context, req *Request, plan enginePlan, settings Settings, operationID string) *document.BatchResult {
	log := o.logger.With("operation_id", operationID, "operation", string(req.Operation), "files", len(req.Files))

	if len(req.Files) <= settings.Batch.DirectMaxFiles {
		result, err := o.run(ctx, req, plan, settings, runParams{
			operationID: operationID,
			tier:        TierDirect,
		})
		if err == nil {
			return result
		}
		log.Warn("direct tier failed, falling back to locked tier", "error", err)
	}

	timeout := settings.Batch.DefaultLockTimeout
	if req.Operation == OpDetect {
		timeout = settings.Batch.DetectLockTimeout
	}

	waitStart := time.Now()
	var result *document.BatchResult
	acquired, err := o.lock.WithLock(ctx, operationID, timeout, func(ctx context.Context) error {
		if o.metrics != nil {
			o.metrics.RecordLockAcquisition(o.lock.Name(), time.Since(waitStart))
		}
		holdStart := time.Now()
		defer func() {
			if o.metrics != nil {
				o.metrics.RecordLockHold(o.lock.Name(), time.Since(holdStart))
			}
		}()

		var runErr error
		result, runErr = o.run(ctx, req, plan, settings, runParams{
			operationID: operationID,
			tier:        TierLocked,
			lockUsed:    true,
		})
		return runErr
	})
	if acquired {
		if err == nil {
			return result
		}
		log.Error("locked tier failed", "error", err)
		return o.floor(req, settings, operationID, false)
	}

	if o.metrics != nil {
		o.metrics.RecordLockTimeout(o.lock.Name())
	}
	log.Warn("lock acquisition timed out, entering emergency tier",
		"lock", o.lock.Name(), "timeout", timeout, "waited", time.Since(waitStart))

	result, err = o.run(ctx, req, plan.emergency(), settings, runParams{
		operationID:     operationID,
		tier:            TierEmergency,
		emergency:       true,
		timeoutRecovery: true,
	})
	if err == nil {
		return result
	}
	log.Error("emergency tier failed", "error", err)
	return o.floor(req, settings, operationID, true)
}

// floor is the absolute bottom of the degradation ladder: a
// 503-equivalent result with a retry hint. Never an error.
func (o *Orchestrator) floor(req *Request, settings Settings, operationID string, timeoutRecovery bool) *document.BatchResult {
	if o.metrics != nil {
		o.metrics.RecordRejection("exhausted")
	}
	return &document.BatchResult{
		OperationID:     operationID,
		Operation:       string(req.Operation),
		Tier:            TierEmergency,
		EmergencyMode:   true,
		TimeoutRecovery: timeoutRecovery,
		RetryAfter:      settings.Batch.RetryAfter,
		Summary: document.BatchSummary{
			TotalFiles: len(req.Files),
			Failed:     len(req.Files),
		},
	}
}

// observe emits the batch-level metrics and the audit record once the
// outcome is settled. Both sinks are optional and fire-and-forget.
func (o *Orchestrator) observe(req *Request, result *document.BatchResult, elapsed time.Duration) {
	status := "success"
	if result.Summary.Failed > 0 {
		status = "partial"
	}
	if result.Exhausted() || result.Summary.Successful == 0 {
		status = "error"
	}

	if o.metrics != nil {
		o.metrics.RecordBatch(string(req.Operation), result.Tier, status, elapsed, result.Summary.TotalFiles)
		if result.EmergencyMode {
			level := "workers"
			if result.MinimumEngines {
				level = "engines"
			}
			o.metrics.RecordEngineDegradation(level)
		}
	}

	if o.recorder != nil {
		entityCount := 0
		for i := range result.FileResults {
			entityCount += result.FileResults[i].EntityCount
		}
		record := &audit.Record{
			OperationID:    result.OperationID,
			Operation:      result.Operation,
			Tier:           result.Tier,
			LockUsed:       result.LockUsed,
			EmergencyMode:  result.EmergencyMode,
			Engines:        result.Engines,
			FileCount:      result.Summary.TotalFiles,
			SucceededFiles: result.Summary.Successful,
			FailedFiles:    result.Summary.Failed,
			EntityCount:    entityCount,
			DurationMS:     elapsed.Milliseconds(),
		}
		if result.Exhausted() {
			record.Error = "exhausted"
		}
		o.recorder.Record(record)
	}
}
