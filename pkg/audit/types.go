package audit

import (
	"context"
	"fmt"
	"time"
)

// Record is one audit trail entry for a completed batch operation.
type Record struct {
	// ID uniquely identifies this record.
	ID string `json:"id"`

	// OperationID is the batch operation id returned to the client.
	OperationID string `json:"operation_id"`

	// Operation is the batch operation type ("detect", "redact",
	// "extract", "hybrid").
	Operation string `json:"operation"`

	// Tier is the processing tier the batch ran under.
	Tier string `json:"tier"`

	// LockUsed reports whether the batch held the detection lock.
	LockUsed bool `json:"lock_used"`

	// EmergencyMode reports whether the batch ran after a lock timeout.
	EmergencyMode bool `json:"emergency_mode"`

	// Engines lists the detection engines that actually ran.
	Engines []string `json:"engines,omitempty"`

	// FileCount is the number of files submitted.
	FileCount int `json:"file_count"`

	// SucceededFiles is the number of files that completed.
	SucceededFiles int `json:"succeeded_files"`

	// FailedFiles is the number of files that errored.
	FailedFiles int `json:"failed_files"`

	// EntityCount is the total number of entities found.
	EntityCount int `json:"entity_count"`

	// DurationMS is the wall-clock batch duration in milliseconds.
	DurationMS int64 `json:"duration_ms"`

	// Error holds the batch-level error, if any.
	Error string `json:"error,omitempty"`

	// CreatedAt is when the record was created.
	CreatedAt time.Time `json:"created_at"`
}

// Query filters audit records.
type Query struct {
	// OperationID filters by exact operation id.
	OperationID string

	// Operation filters by operation type.
	Operation string

	// Tier filters by processing tier.
	Tier string

	// Since excludes records created before this time.
	Since time.Time

	// Until excludes records created after this time.
	Until time.Time

	// Limit caps the number of returned records. 0 means 100.
	Limit int

	// Offset skips the first N matching records.
	Offset int
}

// Store persists audit records.
type Store interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query returns records matching the query, newest first.
	Query(ctx context.Context, query Query) ([]*Record, error)

	// DeleteOlderThan removes records created before the cutoff and
	// returns the number deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// StorageError wraps a backend failure with the backend and operation
// that produced it.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage %s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// newStorageError builds a StorageError.
func newStorageError(backend, op string, err error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Err: err}
}
