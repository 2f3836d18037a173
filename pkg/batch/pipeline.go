package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mercator-hq/callisto/pkg/align"
	"mercator-hq/callisto/pkg/detect"
	"mercator-hq/callisto/pkg/document"
	"mercator-hq/callisto/pkg/memwatch"
	"mercator-hq/callisto/pkg/sanitize"
)

// enginePlan is the resolved engine set for one batch, fixed before tier
// selection. Degradation only ever shrinks it.
type enginePlan struct {
	engines        []detect.Engine
	names          []string
	minimumEngines bool
}

// emergency prunes the plan to its cheapest engine. A single-engine plan
// passes through unchanged and unflagged.
func (p enginePlan) emergency() enginePlan {
	if len(p.engines) <= 1 {
		return p
	}
	cheapest := detect.Cheapest(p.engines)
	return enginePlan{
		engines:        []detect.Engine{cheapest},
		names:          []string{cheapest.Name()},
		minimumEngines: true,
	}
}

// planEngines resolves the request's engine names against the registry and
// applies the payload-size degradation axis for hybrid detection. Engines
// come back wrapped with the per-call timeout. Extract batches carry no
// engines at all.
func (o *Orchestrator) planEngines(req *Request, settings Settings) (enginePlan, error) {
	if req.Operation == OpExtract {
		return enginePlan{}, nil
	}

	names := req.Engines
	if len(names) == 0 {
		names = settings.Detect.DefaultEngines
	}
	engines, err := o.engines.Get(names)
	if err != nil {
		return enginePlan{}, err
	}

	minimum := false
	if req.Operation == OpHybrid && len(engines) > 1 {
		total := req.TotalBytes()
		switch {
		case total <= settings.Batch.HybridFullPayload:
			// Full engine set.
		case total <= settings.Batch.HybridReducedPayload:
			sorted := detect.SortByCost(engines)
			dropped := sorted[len(sorted)-1]
			engines = sorted[:len(sorted)-1]
			o.logger.Info("hybrid payload degradation: dropped most expensive engine",
				"dropped", dropped.Name(), "total_bytes", total)
		default:
			cheapest := detect.Cheapest(engines)
			engines = []detect.Engine{cheapest}
			minimum = true
			o.logger.Info("hybrid payload degradation: cheapest engine only",
				"engine", cheapest.Name(), "total_bytes", total)
		}
	}

	plan := enginePlan{
		engines:        make([]detect.Engine, 0, len(engines)),
		names:          make([]string, 0, len(engines)),
		minimumEngines: minimum,
	}
	for _, e := range engines {
		plan.names = append(plan.names, e.Name())
		plan.engines = append(plan.engines, detect.WithTimeout(e, settings.Detect.EngineTimeout))
	}
	return plan, nil
}

// runParams fixes the tier-dependent execution facts for one attempt.
type runParams struct {
	operationID     string
	tier            string
	lockUsed        bool
	emergency       bool
	timeoutRecovery bool
}

// run executes every file of the batch at the clamped parallelism and
// gathers results in input order. It fails as a whole only when it cannot
// start at all: a canceled context, or critical memory pressure on the
// unlocked direct tier.
func (o *Orchestrator) run(ctx context.Context, req *Request, plan enginePlan, settings Settings, params runParams) (*document.BatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if params.tier == TierDirect && o.monitor.Pressure() == memwatch.PressureCritical {
		return nil, errMemoryPressure
	}

	workers := o.monitor.OptimalWorkers(len(req.Files), req.TotalBytes())
	if req.MaxWorkers > 0 && req.MaxWorkers < workers {
		workers = req.MaxWorkers
	}
	if params.emergency {
		workers = 1
	}
	if o.metrics != nil {
		o.metrics.UpdateWorkerCount(workers)
	}

	o.logger.InfoContext(ctx, "batch started",
		"tier", params.tier,
		"workers", workers,
		"files", len(req.Files),
		"engines", plan.names,
	)

	// Results are index-addressed so file_results order always matches
	// the input order, whatever order workers finish in.
	results := make([]document.FileResult, len(req.Files))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = o.processFile(ctx, req, plan, req.Files[i])
			}
		}()
	}

dispatch:
	for i := range req.Files {
		select {
		case indexes <- i:
		case <-ctx.Done():
			// Files never handed to a worker fail in place; in-flight
			// files run to completion against the canceled context.
			results[i] = document.FileResult{
				File:   req.Files[i].Name,
				Status: document.StatusError,
				Error:  sanitize.FileError(ctx.Err()),
			}
			for j := i + 1; j < len(req.Files); j++ {
				results[j] = document.FileResult{
					File:   req.Files[j].Name,
					Status: document.StatusError,
					Error:  sanitize.FileError(ctx.Err()),
				}
			}
			break dispatch
		}
	}
	close(indexes)
	wg.Wait()

	result := &document.BatchResult{
		OperationID:     params.operationID,
		Operation:       string(req.Operation),
		Tier:            params.tier,
		LockUsed:        params.lockUsed,
		EmergencyMode:   params.emergency,
		TimeoutRecovery: params.timeoutRecovery,
		MinimumEngines:  plan.minimumEngines,
		Engines:         plan.names,
		FileResults:     results,
		Summary: document.BatchSummary{
			TotalFiles: len(req.Files),
			Workers:    workers,
		},
	}
	for i := range results {
		if results[i].Status == document.StatusSuccess {
			result.Summary.Successful++
		} else {
			result.Summary.Failed++
		}
	}
	return result, nil
}

// processFile runs the per-file pipeline: extract, reconstruct, detect per
// page, merge, relocate onto geometry, and optionally mutate. Failures are
// contained to this file's result entry.
func (o *Orchestrator) processFile(ctx context.Context, req *Request, plan enginePlan, file document.InputFile) (result document.FileResult) {
	started := time.Now()
	result.File = file.Name

	defer func() {
		elapsed := time.Since(started)
		result.Duration = elapsed.Milliseconds()
		if r := recover(); r != nil {
			o.logger.ErrorContext(ctx, "file processing panicked",
				"file", file.Name, "panic", fmt.Sprint(r))
			result = document.FileResult{
				File:     file.Name,
				Status:   document.StatusError,
				Error:    string(sanitize.CategoryInternal),
				Duration: elapsed.Milliseconds(),
			}
		}
		if o.metrics != nil {
			o.metrics.RecordFile(string(req.Operation), string(result.Status), elapsed)
		}
	}()

	doc, err := o.extractor.Extract(ctx, file.Content)
	if err != nil {
		result.Status = document.StatusError
		result.Error = sanitize.FileError(err)
		o.logger.WarnContext(ctx, "extraction failed", "file", file.Name, "error", err)
		return result
	}

	if req.Operation == OpExtract {
		result.Text = make([]string, 0, len(doc.Pages))
		for _, page := range doc.Pages {
			text, _ := o.aligner.Reconstruct(page.Words)
			result.Text = append(result.Text, text)
		}
		result.Status = document.StatusSuccess
		return result
	}

	mapping := &document.RedactionMapping{Pages: make([]document.PageRedaction, 0, len(doc.Pages))}
	for _, page := range doc.Pages {
		text, pageMapping := o.aligner.Reconstruct(page.Words)

		var spans []document.EntitySpan
		for _, engine := range plan.engines {
			found, err := engine.Detect(ctx, text, req.EntityTypes)
			if err != nil {
				result.Status = document.StatusError
				result.Error = sanitize.FileError(err)
				o.logger.WarnContext(ctx, "detection failed",
					"file", file.Name, "page", page.Number, "engine", engine.Name(), "error", err)
				return result
			}
			spans = append(spans, found...)
		}

		merged := align.MergeOverlapping(spans)
		items := make([]document.SensitiveItem, 0, len(merged))
		for _, span := range merged {
			item, ok := o.aligner.Locate(span, pageMapping)
			if !ok {
				o.logger.DebugContext(ctx, "span maps to no geometry",
					"file", file.Name, "page", page.Number, "start", span.Start, "end", span.End)
				continue
			}
			items = append(items, item)
		}
		mapping.Pages = append(mapping.Pages, document.PageRedaction{Page: page.Number, Sensitive: items})
	}

	if req.Operation == OpRedact && len(req.RemovePhrases) > 0 {
		mapping = o.mutator.Apply(doc, mapping, req.RemovePhrases)
	}

	result.Status = document.StatusSuccess
	result.Mapping = mapping
	result.EntityCount = mapping.ItemCount()
	return result
}
