package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "audit.db")

	store, err := NewSQLiteStore(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStore_StoreAndQuery(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	record := &Record{
		ID:             "rec-1",
		OperationID:    "op-1",
		Operation:      "hybrid",
		Tier:           "locked",
		LockUsed:       true,
		EmergencyMode:  false,
		Engines:        []string{"pattern", "context"},
		FileCount:      4,
		SucceededFiles: 3,
		FailedFiles:    1,
		EntityCount:    12,
		DurationMS:     840,
		Error:          "",
		CreatedAt:      now,
	}

	if err := store.Store(ctx, record); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := store.Query(ctx, Query{OperationID: "op-1"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}

	r := got[0]
	if r.Operation != "hybrid" || r.Tier != "locked" || !r.LockUsed {
		t.Errorf("round-tripped record mismatch: %+v", r)
	}
	if len(r.Engines) != 2 || r.Engines[0] != "pattern" {
		t.Errorf("engines = %v, want [pattern context]", r.Engines)
	}
	if r.FailedFiles != 1 || r.EntityCount != 12 {
		t.Errorf("counts mismatch: %+v", r)
	}
}

func TestSQLiteStore_QueryFilters(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i, tier := range []string{"direct", "locked", "emergency"} {
		record := testRecord("op", "redact", tier, now.Add(time.Duration(i)*time.Minute))
		record.OperationID = tier
		if err := store.Store(ctx, record); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	got, err := store.Query(ctx, Query{Tier: "emergency"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 1 || got[0].OperationID != "emergency" {
		t.Errorf("unexpected filtered records: %+v", got)
	}

	all, err := store.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d records, want 3", len(all))
	}
	// Newest first.
	if all[0].OperationID != "emergency" {
		t.Errorf("first record = %s, want emergency (newest)", all[0].OperationID)
	}
}

func TestSQLiteStore_DeleteOlderThan(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	store.Store(ctx, testRecord("op-old", "detect", "direct", now.AddDate(0, 0, -100)))
	store.Store(ctx, testRecord("op-new", "detect", "direct", now))

	deleted, err := store.DeleteOlderThan(ctx, now.AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestSQLiteStore_Ping(t *testing.T) {
	store := newTestSQLiteStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestSQLiteStore_ReopenPreservesData(t *testing.T) {
	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "audit.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	store.Store(ctx, testRecord("op-1", "detect", "direct", time.Now().UTC()))
	store.Close()

	reopened, err := NewSQLiteStore(cfg)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	count, err := reopened.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() after reopen = %d, want 1", count)
	}
}
