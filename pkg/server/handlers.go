package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"mercator-hq/callisto/pkg/batch"
	"mercator-hq/callisto/pkg/document"
	"mercator-hq/callisto/pkg/locking"
	"mercator-hq/callisto/pkg/sanitize"
	"mercator-hq/callisto/pkg/telemetry/logging"
)

// batchRequest is the wire shape of a batch submission. File content is
// base64 in JSON, matching the interchange format the extractor consumes.
type batchRequest struct {
	Files         []document.InputFile `json:"files"`
	EntityTypes   []string             `json:"entity_types,omitempty"`
	Engines       []string             `json:"engines,omitempty"`
	MaxWorkers    int                  `json:"max_workers,omitempty"`
	RemovePhrases []string             `json:"remove_phrases,omitempty"`
}

// BatchHandler serves one batch operation endpoint.
type BatchHandler struct {
	operation    batch.Operation
	orchestrator *batch.Orchestrator
	sanitizer    *sanitize.Sanitizer
	logger       *logging.Logger
}

// NewBatchHandler creates the handler for one operation.
func NewBatchHandler(op batch.Operation, o *batch.Orchestrator, s *sanitize.Sanitizer, l *logging.Logger) *BatchHandler {
	return &BatchHandler{operation: op, orchestrator: o, sanitizer: s, logger: l}
}

func (h *BatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := logging.GetRequestID(ctx)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var wire batchRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeSafeError(w, h.sanitizer,
				fmt.Errorf("request body over %d bytes: %w", tooLarge.Limit, document.ErrFileTooLarge),
				correlationID)
			return
		}
		writeSafeError(w, h.sanitizer,
			fmt.Errorf("decoding batch request: %w: %v", document.ErrBadPayload, err),
			correlationID)
		return
	}

	result, err := h.orchestrator.Process(ctx, &batch.Request{
		Operation:     h.operation,
		Files:         wire.Files,
		EntityTypes:   wire.EntityTypes,
		Engines:       wire.Engines,
		MaxWorkers:    wire.MaxWorkers,
		RemovePhrases: wire.RemovePhrases,
	})
	if err != nil {
		writeSafeError(w, h.sanitizer, err, correlationID)
		return
	}

	status := http.StatusOK
	if result.Exhausted() {
		status = http.StatusServiceUnavailable
		w.Header().Set("Retry-After", fmt.Sprintf("%d", result.RetryAfter))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.ErrorContext(ctx, "encoding batch result", "error", err)
	}
}

// LocksHandler reports the diagnostic state of every registered lock.
type LocksHandler struct {
	registry *locking.Registry
}

// NewLocksHandler creates the lock diagnostics handler.
func NewLocksHandler(registry *locking.Registry) *LocksHandler {
	return &LocksHandler{registry: registry}
}

func (h *LocksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Locks []locking.Info `json:"locks"`
	}{Locks: h.registry.Report()})
}
