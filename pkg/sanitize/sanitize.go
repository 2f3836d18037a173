// Package sanitize converts internal errors into safe, user-facing
// responses. Every externally surfaced failure routes through here: clients
// receive a fixed category message and a correlation id, never raw error
// text, file paths, or detector internals. The raw error is logged
// server-side against the same correlation id.
package sanitize

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"mercator-hq/callisto/pkg/detect"
	"mercator-hq/callisto/pkg/document"
)

// Category is the coarse failure classification exposed to clients.
type Category string

const (
	CategoryValidation Category = "validation_error"
	CategoryTooLarge   Category = "payload_too_large"
	CategoryTimeout    Category = "processing_timeout"
	CategoryExhausted  Category = "service_exhausted"
	CategoryInternal   Category = "internal_error"
)

// messages maps each category to its fixed client-facing text.
var messages = map[Category]string{
	CategoryValidation: "the request payload failed validation",
	CategoryTooLarge:   "the request payload exceeds the permitted size",
	CategoryTimeout:    "processing exceeded the permitted time",
	CategoryExhausted:  "the service is at capacity, retry later",
	CategoryInternal:   "an internal error occurred",
}

// SafeResponse is the JSON error body returned to clients.
type SafeResponse struct {
	Error         string   `json:"error"`
	Category      Category `json:"category"`
	CorrelationID string   `json:"correlation_id"`
	RetryAfter    int      `json:"retry_after,omitempty"`
}

// Sanitizer classifies errors and produces safe responses. It holds only a
// logger and is safe for concurrent use.
type Sanitizer struct {
	logger *slog.Logger
}

// New creates a Sanitizer.
func New() *Sanitizer {
	return &Sanitizer{logger: slog.Default().With("component", "sanitize")}
}

// ToSafeResponse classifies err and returns the response body and HTTP
// status to send. correlationID ties the response to server-side logs; an
// empty id gets a fresh one. The raw error never reaches the payload.
func (s *Sanitizer) ToSafeResponse(err error, correlationID string) (SafeResponse, int) {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	category, status := classify(err)

	s.logger.Error("request failed",
		"correlation_id", correlationID,
		"category", string(category),
		"error", err,
	)

	resp := SafeResponse{
		Error:         messages[category],
		Category:      category,
		CorrelationID: correlationID,
	}
	if category == CategoryExhausted {
		resp.RetryAfter = 30
	}
	return resp, status
}

func classify(err error) (Category, int) {
	switch {
	case errors.Is(err, document.ErrFileTooLarge):
		return CategoryTooLarge, http.StatusRequestEntityTooLarge
	case errors.Is(err, document.ErrNoFiles),
		errors.Is(err, document.ErrBadPayload),
		errors.Is(err, document.ErrEmptyFile),
		errors.Is(err, document.ErrUnnamedFile),
		errors.Is(err, document.ErrBadGeometry),
		errors.Is(err, document.ErrBadSpan),
		errors.Is(err, document.ErrBadScore),
		errors.Is(err, detect.ErrUnknownEngine):
		return CategoryValidation, http.StatusBadRequest
	case errors.Is(err, detect.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout, http.StatusGatewayTimeout
	case errors.Is(err, ErrExhausted):
		return CategoryExhausted, http.StatusServiceUnavailable
	default:
		return CategoryInternal, http.StatusInternalServerError
	}
}

// ErrExhausted marks total exhaustion: even the emergency processing tier
// failed. Surfaced as a 503 with a retry hint.
var ErrExhausted = errors.New("all processing tiers exhausted")

// FileError returns the safe per-file failure string for a batch result
// entry. Per-file failures are isolated, so only the category is recorded.
func FileError(err error) string {
	category, _ := classify(err)
	return string(category)
}
