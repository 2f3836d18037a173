package sanitize

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"mercator-hq/callisto/pkg/detect"
	"mercator-hq/callisto/pkg/document"
)

func TestToSafeResponse_Classification(t *testing.T) {
	s := New()

	tests := []struct {
		name         string
		err          error
		wantCategory Category
		wantStatus   int
	}{
		{"no_files", document.ErrNoFiles, CategoryValidation, http.StatusBadRequest},
		{"wrapped_validation", fmt.Errorf("file %q: %w", "a.pdf", document.ErrEmptyFile), CategoryValidation, http.StatusBadRequest},
		{"too_large", document.ErrFileTooLarge, CategoryTooLarge, http.StatusRequestEntityTooLarge},
		{"unknown_engine", detect.ErrUnknownEngine, CategoryValidation, http.StatusBadRequest},
		{"detector_timeout", detect.ErrTimeout, CategoryTimeout, http.StatusGatewayTimeout},
		{"exhausted", ErrExhausted, CategoryExhausted, http.StatusServiceUnavailable},
		{"unknown_internal", errors.New("sql: database is locked at /var/lib/x.db"), CategoryInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, status := s.ToSafeResponse(tt.err, "corr-1")
			if resp.Category != tt.wantCategory {
				t.Errorf("category = %s, want %s", resp.Category, tt.wantCategory)
			}
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if resp.CorrelationID != "corr-1" {
				t.Errorf("correlation id = %q", resp.CorrelationID)
			}
		})
	}
}

func TestToSafeResponse_NeverLeaksRawError(t *testing.T) {
	s := New()
	raw := errors.New("open /var/data/secret/batch-193/cv_john_smith.pdf: permission denied")

	resp, _ := s.ToSafeResponse(raw, "corr-2")
	if strings.Contains(resp.Error, "secret") || strings.Contains(resp.Error, "john_smith") {
		t.Errorf("raw error leaked into response: %q", resp.Error)
	}
	if resp.Error != messages[CategoryInternal] {
		t.Errorf("message = %q, want fixed category text", resp.Error)
	}
}

func TestToSafeResponse_GeneratesCorrelationID(t *testing.T) {
	s := New()
	resp, _ := s.ToSafeResponse(errors.New("x"), "")
	if resp.CorrelationID == "" {
		t.Error("missing generated correlation id")
	}
}

func TestToSafeResponse_ExhaustedCarriesRetryAfter(t *testing.T) {
	s := New()
	resp, status := s.ToSafeResponse(fmt.Errorf("tier floor: %w", ErrExhausted), "corr-3")
	if status != http.StatusServiceUnavailable {
		t.Errorf("status = %d", status)
	}
	if resp.RetryAfter <= 0 {
		t.Error("503 response must carry retry_after")
	}
}

func TestFileError(t *testing.T) {
	if got := FileError(detect.ErrTimeout); got != string(CategoryTimeout) {
		t.Errorf("FileError = %q", got)
	}
	if got := FileError(errors.New("raw detail")); got != string(CategoryInternal) {
		t.Errorf("FileError = %q", got)
	}
}
