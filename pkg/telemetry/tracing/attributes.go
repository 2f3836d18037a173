package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on callisto spans.
const (
	AttrOperationID = "callisto.operation_id"
	AttrOperation   = "callisto.operation"
	AttrTier        = "callisto.tier"
	AttrFileCount   = "callisto.file_count"
	AttrFileName    = "callisto.file"
	AttrEngines     = "callisto.engines"
	AttrEmergency   = "callisto.emergency_mode"
	AttrLockUsed    = "callisto.lock_used"
	AttrEntityCount = "callisto.entity_count"
)

// BatchAttributes returns the standard attribute set for a batch span.
func BatchAttributes(operationID, operation, tier string, fileCount int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrOperationID, operationID),
		attribute.String(AttrOperation, operation),
		attribute.String(AttrTier, tier),
		attribute.Int(AttrFileCount, fileCount),
	}
}

// FileAttributes returns the standard attribute set for a per-file span.
func FileAttributes(operationID, name string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrOperationID, operationID),
		attribute.String(AttrFileName, name),
	}
}

// SetBatchOutcome annotates a batch span with its final disposition.
func SetBatchOutcome(span trace.Span, lockUsed, emergency bool, engines []string) {
	span.SetAttributes(
		attribute.Bool(AttrLockUsed, lockUsed),
		attribute.Bool(AttrEmergency, emergency),
		attribute.StringSlice(AttrEngines, engines),
	)
}
