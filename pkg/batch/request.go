package batch

import (
	"fmt"
	"strings"

	"mercator-hq/callisto/pkg/document"
)

// Operation identifies the kind of work a batch performs.
type Operation string

const (
	// OpDetect locates sensitive entities and returns their coordinates.
	OpDetect Operation = "detect"
	// OpRedact detects entities and rewrites matched text in place.
	OpRedact Operation = "redact"
	// OpExtract returns reconstructed plain text per page.
	OpExtract Operation = "extract"
	// OpHybrid runs detection across multiple engines with payload-aware
	// engine degradation.
	OpHybrid Operation = "hybrid"
)

// KnownOperations lists every accepted operation, in display order.
var KnownOperations = []Operation{OpDetect, OpRedact, OpExtract, OpHybrid}

// Valid reports whether op is one of the known operations.
func (op Operation) Valid() bool {
	switch op {
	case OpDetect, OpRedact, OpExtract, OpHybrid:
		return true
	}
	return false
}

// Request describes one batch submission.
type Request struct {
	// Operation selects the pipeline to run. Required.
	Operation Operation

	// Files carries the documents to process, in the order the caller
	// wants them reported back.
	Files []document.InputFile

	// EntityTypes restricts detection to the named entity types. Empty
	// means every type the engines support.
	EntityTypes []string

	// Engines names the detection engines to run. Empty means the
	// configured defaults. Ignored for extract.
	Engines []string

	// MaxWorkers caps parallelism below the memory-derived optimum
	// when positive. Zero means no caller cap.
	MaxWorkers int

	// RemovePhrases lists phrases to strip from redact results after
	// detection. Ignored for other operations.
	RemovePhrases []string
}

// Validate checks the request shape before any resources are acquired.
// Failures here are caller errors and map to 4xx responses.
func (r *Request) Validate(maxFileBytes int64) error {
	if !r.Operation.Valid() {
		names := make([]string, len(KnownOperations))
		for i, op := range KnownOperations {
			names[i] = string(op)
		}
		return fmt.Errorf("unknown operation %q (expected one of %s)", r.Operation, strings.Join(names, ", "))
	}
	if err := document.ValidateFiles(r.Files, maxFileBytes); err != nil {
		return err
	}
	if r.MaxWorkers < 0 {
		return fmt.Errorf("max_workers must not be negative, got %d", r.MaxWorkers)
	}
	return nil
}

// TotalBytes sums the payload sizes of every file in the request.
func (r *Request) TotalBytes() int64 {
	var total int64
	for i := range r.Files {
		total += r.Files[i].Size()
	}
	return total
}
