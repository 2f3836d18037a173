package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// OperationIDKey is the context key for batch operation ids.
	OperationIDKey contextKey = "operation_id"

	// RequestIDKey is the context key for HTTP request ids.
	RequestIDKey contextKey = "request_id"

	// FileNameKey is the context key for the file being processed.
	FileNameKey contextKey = "file"

	// TierKey is the context key for the processing tier.
	TierKey contextKey = "tier"
)

// WithOperationID adds a batch operation id to the context.
func WithOperationID(ctx context.Context, operationID string) context.Context {
	return context.WithValue(ctx, OperationIDKey, operationID)
}

// GetOperationID retrieves the batch operation id from the context.
func GetOperationID(ctx context.Context) string {
	if operationID, ok := ctx.Value(OperationIDKey).(string); ok {
		return operationID
	}
	return ""
}

// WithRequestID adds a request id to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request id from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithFileName adds the name of the file being processed to the context.
func WithFileName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, FileNameKey, name)
}

// GetFileName retrieves the file name from the context.
func GetFileName(ctx context.Context) string {
	if name, ok := ctx.Value(FileNameKey).(string); ok {
		return name
	}
	return ""
}

// WithTier adds the processing tier to the context.
func WithTier(ctx context.Context, tier string) context.Context {
	return context.WithValue(ctx, TierKey, tier)
}

// GetTier retrieves the processing tier from the context.
func GetTier(ctx context.Context) string {
	if tier, ok := ctx.Value(TierKey).(string); ok {
		return tier
	}
	return ""
}

// extractContextFields pulls known fields out of the context as
// alternating key/value log arguments.
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if operationID := GetOperationID(ctx); operationID != "" {
		fields = append(fields, string(OperationIDKey), operationID)
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, string(RequestIDKey), requestID)
	}
	if name := GetFileName(ctx); name != "" {
		fields = append(fields, string(FileNameKey), name)
	}
	if tier := GetTier(ctx); tier != "" {
		fields = append(fields, string(TierKey), tier)
	}

	return fields
}
