package document

// FileStatus is the terminal state of one file within a batch.
type FileStatus string

const (
	// StatusSuccess indicates the file was fully processed.
	StatusSuccess FileStatus = "success"

	// StatusError indicates the file failed; sibling files are unaffected.
	StatusError FileStatus = "error"
)

// InputFile is one file submitted to a batch operation. Content is the raw
// payload handed to the extractor; the orchestrator treats it as opaque.
type InputFile struct {
	// Name is the client-supplied file name, used for correlation only.
	Name string `json:"name"`

	// Content is the raw file payload.
	Content []byte `json:"content"`
}

// Size returns the payload size in bytes.
func (f InputFile) Size() int64 { return int64(len(f.Content)) }

// FileResult is the outcome for a single file in a batch. Failures carry
// only a sanitized category message, never raw error text.
type FileResult struct {
	// File is the client-supplied file name.
	File string `json:"file"`

	// Status is "success" or "error".
	Status FileStatus `json:"status"`

	// Error holds the safe failure category when Status is "error".
	Error string `json:"error,omitempty"`

	// Mapping is the located-entities deliverable for detect/redact/hybrid
	// operations. Nil on failure and for extract-only operations.
	Mapping *RedactionMapping `json:"redaction_mapping,omitempty"`

	// Text is the reconstructed page text for extract operations,
	// one entry per page.
	Text []string `json:"text,omitempty"`

	// EntityCount is the number of sensitive items located in the file.
	EntityCount int `json:"entity_count"`

	// Duration is how long this file took to process, in milliseconds.
	Duration int64 `json:"duration_ms"`
}

// BatchSummary aggregates counters for one batch operation. TotalTime is
// wall-clock milliseconds for the whole batch.
type BatchSummary struct {
	TotalFiles int   `json:"total_files"`
	Successful int   `json:"successful"`
	Failed     int   `json:"failed"`
	TotalTime  int64 `json:"total_time_ms"`

	// Workers is the parallelism the batch actually ran at.
	Workers int `json:"workers"`
}

// BatchResult is the envelope returned for every batch operation. It is
// always produced, whatever tier the orchestrator degraded to; callers
// never see a raw error instead of a BatchResult.
type BatchResult struct {
	// OperationID correlates this batch across logs, lock diagnostics,
	// audit records, and the response.
	OperationID string `json:"operation_id"`

	// Operation is the requested operation: detect, redact, extract, hybrid.
	Operation string `json:"operation"`

	// Tier is the degradation level the batch executed at:
	// "direct", "locked", or "emergency".
	Tier string `json:"tier"`

	// LockUsed reports whether the batch ran under the shared batch lock.
	LockUsed bool `json:"lock_used"`

	// EmergencyMode is set when parallelism or engine selection was
	// forcibly reduced due to lock contention or payload size.
	EmergencyMode bool `json:"emergency_mode,omitempty"`

	// TimeoutRecovery is set when the emergency tier was entered because
	// lock acquisition timed out.
	TimeoutRecovery bool `json:"timeout_recovery,omitempty"`

	// MinimumEngines is set when hybrid detection was reduced to its
	// cheapest single engine.
	MinimumEngines bool `json:"minimum_engines,omitempty"`

	// Engines lists the detection engines that actually ran.
	Engines []string `json:"engines,omitempty"`

	// RetryAfter is populated only on total exhaustion (the 503-equivalent
	// floor): the suggested wait before resubmitting, in seconds.
	RetryAfter int `json:"retry_after,omitempty"`

	Summary BatchSummary `json:"batch_summary"`

	// FileResults holds one entry per input file, in input order.
	FileResults []FileResult `json:"file_results"`
}

// Exhausted reports whether this result is the 503-equivalent floor where
// even the emergency tier failed.
func (r *BatchResult) Exhausted() bool { return r.RetryAfter > 0 }
