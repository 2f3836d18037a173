package tracing

import (
	"context"
	"errors"
	"testing"

	"mercator-hq/callisto/pkg/config"
)

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil) should return an error")
	}
}

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(&config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if tracer.Enabled() {
		t.Error("Enabled() = true, want false")
	}

	// Noop tracer must still produce usable spans.
	ctx, span := tracer.Start(context.Background(), "batch.process")
	if span == nil {
		t.Fatal("Start() returned nil span")
	}
	span.End()

	if err := tracer.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() on disabled tracer error = %v", err)
	}
}

func TestTraceID_NoSpan(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("TraceID on empty context = %q, want empty", got)
	}
}

func TestSetError_NilError(t *testing.T) {
	tracer, err := New(&config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, span := tracer.Start(context.Background(), "op")
	defer span.End()

	// Must not panic on either branch.
	SetError(span, nil)
	SetError(span, errors.New("boom"))
	SetStatus(span, nil)
	SetStatus(span, errors.New("boom"))
}

func TestBatchAttributes(t *testing.T) {
	attrs := BatchAttributes("op-1", "redact", "locked", 3)
	if len(attrs) != 4 {
		t.Fatalf("got %d attributes, want 4", len(attrs))
	}
	if string(attrs[0].Key) != AttrOperationID {
		t.Errorf("first attribute key = %s, want %s", attrs[0].Key, AttrOperationID)
	}
	if attrs[3].Value.AsInt64() != 3 {
		t.Errorf("file_count = %d, want 3", attrs[3].Value.AsInt64())
	}
}
