package locking

import (
	"context"
	"testing"
	"time"
)

// BenchmarkLock_Uncontended measures acquire/release with no contention.
func BenchmarkLock_Uncontended(b *testing.B) {
	l := NewLock("bench", PriorityMedium)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		l.Acquire(ctx, "owner", time.Second)
		l.Release("owner")
	}
}

// BenchmarkLock_Reentrant measures nested acquisition by the same owner.
func BenchmarkLock_Reentrant(b *testing.B) {
	l := NewLock("bench", PriorityMedium)
	ctx := context.Background()
	l.Acquire(ctx, "owner", time.Second)
	defer l.Release("owner")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		l.Acquire(ctx, "owner", time.Second)
		l.Release("owner")
	}
}

// BenchmarkLock_Snapshot measures the diagnostic snapshot path.
func BenchmarkLock_Snapshot(b *testing.B) {
	l := NewLock("bench", PriorityMedium)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = l.Snapshot()
	}
}
