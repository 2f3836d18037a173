package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/align"
	"mercator-hq/callisto/pkg/batch"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/detect"
	"mercator-hq/callisto/pkg/document"
	"mercator-hq/callisto/pkg/extract"
	"mercator-hq/callisto/pkg/locking"
	"mercator-hq/callisto/pkg/memwatch"
	"mercator-hq/callisto/pkg/sanitize"
	"mercator-hq/callisto/pkg/telemetry/health"
	"mercator-hq/callisto/pkg/telemetry/logging"
)

// ============================================================================
// Test Fixtures
// ============================================================================

type fakeSampler struct {
	mu    sync.Mutex
	total float64
	avail float64
}

func (f *fakeSampler) Sample() (float64, float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total, f.avail, nil
}

func testServer(t *testing.T) (*Server, *locking.Registry) {
	t.Helper()

	logger, err := logging.New(logging.Config{Level: "error", Format: "text", Writer: io.Discard})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	t.Cleanup(func() { logger.Shutdown() })

	registry := detect.NewRegistry()
	registry.Register(detect.NewPatternEngine())
	registry.Freeze()

	aligner := align.New(align.DefaultConfig())
	locks := locking.NewRegistry()

	orchestrator := batch.New(batch.Settings{
		Batch: config.BatchConfig{
			DirectMaxFiles:       2,
			DetectLockTimeout:    time.Second,
			DefaultLockTimeout:   time.Second,
			MaxFileBytes:         10 << 20,
			HybridFullPayload:    1 << 20,
			HybridReducedPayload: 2 << 20,
			RetryAfter:           30,
		},
		Detect: config.DetectConfig{
			EngineTimeout:  5 * time.Second,
			DefaultEngines: []string{"pattern"},
		},
	}, batch.Options{
		Lock:      locks.Get("batch-processing", locking.PriorityHigh),
		Monitor:   memwatch.New(memwatch.DefaultConfig(), &fakeSampler{total: 16384, avail: 12288}),
		Engines:   registry,
		Extractor: extract.NewJSONExtractor(),
		Aligner:   aligner,
		Mutator:   align.NewMutator(aligner),
		Logger:    logger,
	})

	srv := New(&config.ServerConfig{
		ListenAddress:   "127.0.0.1:0",
		ReadTimeout:     time.Minute,
		WriteTimeout:    time.Minute,
		IdleTimeout:     time.Minute,
		ShutdownTimeout: 5 * time.Second,
		MaxBodyBytes:    5 << 20,
		RequestTimeout:  time.Minute,
	}, Options{
		Orchestrator: orchestrator,
		Sanitizer:    sanitize.New(),
		Logger:       logger,
		Locks:        locks,
		Checker:      health.New(time.Second),
		Build:        BuildInfo{Version: "test", Commit: "none", BuildTime: "none"},
	})
	return srv, locks
}

// wireBody marshals a one-page document containing an email address into
// the batch request wire format.
func wireBody(t *testing.T, names ...string) []byte {
	t.Helper()

	doc := document.Document{Pages: []document.Page{{
		Number: 1,
		Words: []document.Word{
			{Text: "Contact", X0: 10, Y0: 50, X1: 55, Y1: 62},
			{Text: "jane@example.com", X0: 60, Y0: 50, X1: 160, Y1: 62},
		},
	}}}
	content, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal document: %v", err)
	}

	var files []document.InputFile
	for _, name := range names {
		files = append(files, document.InputFile{Name: name, Content: content})
	}
	body, err := json.Marshal(struct {
		Files []document.InputFile `json:"files"`
	}{files})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return body
}

// ============================================================================
// Batch Endpoint Tests
// ============================================================================

func TestBatchDetectEndpoint(t *testing.T) {
	srv, _ := testServer(t)
	handler := srv.Routes()

	req := httptest.NewRequest(http.MethodPost, "/v1/batch/detect", bytes.NewReader(wireBody(t, "a.json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("response missing request id header")
	}

	var result document.BatchResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Summary.Successful != 1 {
		t.Errorf("successful = %d, want 1", result.Summary.Successful)
	}
	if result.FileResults[0].EntityCount != 1 {
		t.Errorf("entity_count = %d, want 1 (the email address)", result.FileResults[0].EntityCount)
	}
	if result.LockUsed {
		t.Error("lock_used = true for a single file")
	}
	// A sub-minute in-process batch must report sub-minute durations.
	// Raw nanoseconds leaking into the _ms fields would be ~10^6 larger.
	if result.Summary.TotalTime > 60_000 {
		t.Errorf("total_time_ms = %d, not a millisecond count", result.Summary.TotalTime)
	}
	if d := result.FileResults[0].Duration; d > 60_000 {
		t.Errorf("duration_ms = %d, not a millisecond count", d)
	}
}

func TestBatchEndpoint_LargerBatchTakesLock(t *testing.T) {
	srv, _ := testServer(t)
	handler := srv.Routes()

	req := httptest.NewRequest(http.MethodPost, "/v1/batch/detect",
		bytes.NewReader(wireBody(t, "a.json", "b.json", "c.json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result document.BatchResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.LockUsed {
		t.Error("lock_used = false for a 3-file batch")
	}
	if result.Summary.TotalFiles != 3 {
		t.Errorf("total_files = %d, want 3", result.Summary.TotalFiles)
	}
}

func TestBatchEndpoint_MethodNotAllowed(t *testing.T) {
	srv, _ := testServer(t)
	handler := srv.Routes()

	req := httptest.NewRequest(http.MethodGet, "/v1/batch/detect", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestBatchEndpoint_MalformedBody(t *testing.T) {
	srv, _ := testServer(t)
	handler := srv.Routes()

	req := httptest.NewRequest(http.MethodPost, "/v1/batch/detect", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp sanitize.SafeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Category != sanitize.CategoryValidation {
		t.Errorf("category = %q, want validation", resp.Category)
	}
	if resp.CorrelationID == "" {
		t.Error("error response missing correlation id")
	}
	if strings.Contains(resp.Error, "json") {
		t.Errorf("error leaks parser detail: %q", resp.Error)
	}
}

func TestBatchEndpoint_NoFiles(t *testing.T) {
	srv, _ := testServer(t)
	handler := srv.Routes()

	req := httptest.NewRequest(http.MethodPost, "/v1/batch/redact", strings.NewReader(`{"files":[]}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestBatchEndpoint_BodyTooLarge(t *testing.T) {
	srv, _ := testServer(t)
	srv.config.MaxBodyBytes = 64
	handler := srv.Routes()

	req := httptest.NewRequest(http.MethodPost, "/v1/batch/detect", bytes.NewReader(wireBody(t, "a.json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

// ============================================================================
// Operational Endpoint Tests
// ============================================================================

func TestLocksEndpoint(t *testing.T) {
	srv, locks := testServer(t)
	handler := srv.Routes()

	// Hold the lock so the report shows an owner.
	lock := locks.Get("batch-processing", locking.PriorityHigh)
	if !lock.Acquire(context.Background(), "diagnostic-test", time.Second) {
		t.Fatal("could not acquire lock")
	}
	defer lock.Release("diagnostic-test")

	req := httptest.NewRequest(http.MethodGet, "/v1/locks", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var report struct {
		Locks []locking.Info `json:"locks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Locks) != 1 {
		t.Fatalf("locks = %d, want 1", len(report.Locks))
	}
	if !report.Locks[0].Held || report.Locks[0].Owner != "diagnostic-test" {
		t.Errorf("lock info = %+v, want held by diagnostic-test", report.Locks[0])
	}
}

func TestProbeEndpoints(t *testing.T) {
	srv, _ := testServer(t)
	handler := srv.Routes()

	for _, path := range []string{"/healthz", "/readyz", "/version"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

// ============================================================================
// Middleware Tests
// ============================================================================

func TestRequestIDMiddleware_EchoesClientID(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := logging.GetRequestID(r.Context()); got != "client-id-42" {
			t.Errorf("context request id = %q", got)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-id-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "client-id-42" {
		t.Errorf("response request id = %q", got)
	}
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("no request id generated")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	logger, err := logging.New(logging.Config{Level: "error", Format: "text", Writer: io.Discard})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	defer logger.Shutdown()

	handler := RecoveryMiddleware(logger, sanitize.New())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp sanitize.SafeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Contains(resp.Error, "exploded") {
		t.Errorf("panic detail leaked: %q", resp.Error)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	handler := CORSMiddleware(DefaultCORSConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight reached the inner handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/v1/batch/detect", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://example.com" {
		t.Errorf("allow-origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("allow-methods missing")
	}
}

func TestTimeoutMiddleware_CancelsSlowHandlers(t *testing.T) {
	handler := TimeoutMiddleware(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
			t.Error("handler context never canceled")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
}
