// Package locking provides the named, timeout-bounded lock used as the
// admission-control primitive for batch processing.
//
// A Lock is a mutex with three additions over sync.Mutex:
//
//   - Acquisition is always bounded by a caller-supplied timeout or by
//     context cancellation; there is no unbounded blocking path. A timed-out
//     acquisition is a normal control-flow outcome (false), not an error.
//   - The same logical owner may re-acquire without blocking. An internal
//     depth counter tracks nesting and the lock is released to other owners
//     only when depth returns to zero.
//   - Each lock carries a name and a priority label for observability. The
//     priority does not preempt or reorder waiters; it only appears in the
//     active-lock report.
//
// Locks are created through a Registry owned by the service object and
// passed by reference; there is no package-level singleton. The Registry
// produces the active-lock report surfaced on /v1/locks.
//
// # Usage
//
//	lock := registry.Get("batch_processing", locking.PriorityHigh)
//	ok, err := lock.WithLock(ctx, opID, 10*time.Second, func(ctx context.Context) error {
//		return processBatch(ctx)
//	})
//	if !ok {
//		// contended past timeout: degrade, don't fail
//	}
package locking
