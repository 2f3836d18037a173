package locking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLock_AcquireRelease(t *testing.T) {
	l := NewLock("test", PriorityMedium)
	ctx := context.Background()

	if !l.Acquire(ctx, "op-1", time.Second) {
		t.Fatal("acquire on free lock should succeed")
	}
	info := l.Snapshot()
	if !info.Held || info.Owner != "op-1" || info.Depth != 1 {
		t.Errorf("snapshot = %+v", info)
	}

	l.Release("op-1")
	if l.Snapshot().Held {
		t.Error("lock should be free after release")
	}
}

func TestLock_SnapshotHeldForIsMilliseconds(t *testing.T) {
	l := NewLock("test", PriorityMedium)
	if !l.Acquire(context.Background(), "op-1", time.Second) {
		t.Fatal("acquire on free lock should succeed")
	}
	defer l.Release("op-1")

	time.Sleep(20 * time.Millisecond)

	held := l.Snapshot().HeldFor
	if held < 10 || held > 5000 {
		t.Errorf("held_for_ms = %d, want a plain millisecond count near 20", held)
	}
}

func TestLock_TimeoutIsNormalOutcome(t *testing.T) {
	l := NewLock("test", PriorityHigh)
	ctx := context.Background()

	if !l.Acquire(ctx, "holder", time.Second) {
		t.Fatal("setup acquire failed")
	}
	defer l.Release("holder")

	start := time.Now()
	if l.Acquire(ctx, "waiter", 50*time.Millisecond) {
		t.Fatal("contended acquire should time out")
	}
	elapsed := time.Since(start)
	if elapsed < 40*time.Millisecond || elapsed > 500*time.Millisecond {
		t.Errorf("timeout took %v, want ~50ms", elapsed)
	}
	if l.Snapshot().Timeouts != 1 {
		t.Errorf("timeouts = %d, want 1", l.Snapshot().Timeouts)
	}
}

func TestLock_Reentrant(t *testing.T) {
	l := NewLock("test", PriorityLow)
	ctx := context.Background()

	if !l.Acquire(ctx, "op-1", time.Second) {
		t.Fatal("first acquire failed")
	}
	// Same owner re-acquires without blocking.
	if !l.Acquire(ctx, "op-1", time.Millisecond) {
		t.Fatal("reentrant acquire should not block")
	}
	if d := l.Snapshot().Depth; d != 2 {
		t.Errorf("depth = %d, want 2", d)
	}

	// One release keeps the lock held for other owners.
	l.Release("op-1")
	if l.Acquire(ctx, "op-2", 20*time.Millisecond) {
		t.Fatal("lock leaked to other owner before depth reached zero")
	}

	l.Release("op-1")
	if !l.Acquire(ctx, "op-2", time.Second) {
		t.Fatal("lock should be free after final release")
	}
	l.Release("op-2")
}

func TestLock_ReleaseByNonOwnerIgnored(t *testing.T) {
	l := NewLock("test", PriorityMedium)
	ctx := context.Background()

	l.Acquire(ctx, "op-1", time.Second)
	l.Release("intruder")

	info := l.Snapshot()
	if !info.Held || info.Owner != "op-1" {
		t.Errorf("non-owner release corrupted state: %+v", info)
	}
	l.Release("op-1")
}

func TestLock_ContextCancellation(t *testing.T) {
	l := NewLock("test", PriorityMedium)
	l.Acquire(context.Background(), "holder", time.Second)
	defer l.Release("holder")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if l.Acquire(ctx, "waiter", 5*time.Second) {
		t.Fatal("cancelled acquire should return false")
	}
}

func TestLock_WithLock(t *testing.T) {
	l := NewLock("test", PriorityMedium)
	ctx := context.Background()

	ran := false
	ok, err := l.WithLock(ctx, "op-1", time.Second, func(context.Context) error {
		ran = true
		if l.Snapshot().Owner != "op-1" {
			t.Error("fn should run under the lock")
		}
		return nil
	})
	if !ok || err != nil || !ran {
		t.Errorf("ok=%v err=%v ran=%v", ok, err, ran)
	}
	if l.Snapshot().Held {
		t.Error("lock should be released after fn returns")
	}
}

func TestLock_WithLockReleasesOnError(t *testing.T) {
	l := NewLock("test", PriorityMedium)
	want := errors.New("boom")

	ok, err := l.WithLock(context.Background(), "op-1", time.Second, func(context.Context) error {
		return want
	})
	if !ok || !errors.Is(err, want) {
		t.Errorf("ok=%v err=%v", ok, err)
	}
	if l.Snapshot().Held {
		t.Error("lock should be released after fn error")
	}
}

func TestLock_WithLockReleasesOnPanic(t *testing.T) {
	l := NewLock("test", PriorityMedium)

	func() {
		defer func() { _ = recover() }()
		_, _ = l.WithLock(context.Background(), "op-1", time.Second, func(context.Context) error {
			panic("boom")
		})
	}()

	if l.Snapshot().Held {
		t.Error("lock should be released after fn panic")
	}
}

func TestLock_WithLockTimeoutSkipsFn(t *testing.T) {
	l := NewLock("test", PriorityMedium)
	l.Acquire(context.Background(), "holder", time.Second)
	defer l.Release("holder")

	ran := false
	ok, err := l.WithLock(context.Background(), "waiter", 20*time.Millisecond, func(context.Context) error {
		ran = true
		return nil
	})
	if ok || err != nil || ran {
		t.Errorf("ok=%v err=%v ran=%v, want false/nil/false", ok, err, ran)
	}
}

func TestLock_MutualExclusion(t *testing.T) {
	l := NewLock("test", PriorityCritical)
	ctx := context.Background()

	var mu sync.Mutex
	inside := 0
	maxInside := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			owner := string(rune('a' + id))
			for j := 0; j < 20; j++ {
				if !l.Acquire(ctx, owner, 5*time.Second) {
					continue
				}
				mu.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				mu.Unlock()

				mu.Lock()
				inside--
				mu.Unlock()
				l.Release(owner)
			}
		}(i)
	}
	wg.Wait()

	if maxInside > 1 {
		t.Errorf("mutual exclusion violated: %d holders at once", maxInside)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	a := r.Get("batch_processing", PriorityHigh)
	b := r.Get("batch_processing", PriorityLow)
	if a != b {
		t.Error("Get should return the same lock instance per name")
	}
	if a.Priority() != PriorityHigh {
		t.Error("priority of existing lock should not change")
	}

	r.Get("cache_maintenance", PriorityLow)
	report := r.Report()
	if len(report) != 2 {
		t.Fatalf("report has %d locks, want 2", len(report))
	}
	if report[0].Name != "batch_processing" || report[1].Name != "cache_maintenance" {
		t.Errorf("report not sorted by name: %+v", report)
	}
}
