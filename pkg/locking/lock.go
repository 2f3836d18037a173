package locking

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Priority classifies a lock for observability. It carries no scheduling
// weight: waiters are served in whatever order the runtime wakes them.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Lock is a named, reentrant, timeout-bounded mutex. The zero value is not
// usable; create locks through a Registry or NewLock.
type Lock struct {
	name     string
	priority Priority

	// sem holds one token when the lock is free.
	sem chan struct{}

	// state guards owner bookkeeping; it is held only for short,
	// non-blocking sections and never while waiting on sem.
	state      sync.Mutex
	owner      string
	depth      int
	acquiredAt time.Time

	waiters      atomic.Int64
	acquisitions atomic.Int64
	timeouts     atomic.Int64

	logger *slog.Logger
}

// NewLock creates a free lock with the given name and priority label.
func NewLock(name string, priority Priority) *Lock {
	l := &Lock{
		name:     name,
		priority: priority,
		sem:      make(chan struct{}, 1),
		logger:   slog.Default().With("component", "locking", "lock", name),
	}
	l.sem <- struct{}{}
	return l
}

// Name returns the lock's resource name.
func (l *Lock) Name() string { return l.name }

// Priority returns the informational priority label.
func (l *Lock) Priority() Priority { return l.priority }

// Acquire attempts to take the lock for owner, waiting at most timeout.
// It returns true on success and false when the timeout elapses or ctx is
// cancelled first. A false return is normal control flow, not a failure.
//
// If owner already holds the lock the call succeeds immediately and
// increments the reentrancy depth; Release must be called once per
// successful Acquire.
func (l *Lock) Acquire(ctx context.Context, owner string, timeout time.Duration) bool {
	l.state.Lock()
	if l.depth > 0 && l.owner == owner {
		l.depth++
		l.state.Unlock()
		return true
	}
	l.state.Unlock()

	l.waiters.Add(1)
	defer l.waiters.Add(-1)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-l.sem:
		l.state.Lock()
		l.owner = owner
		l.depth = 1
		l.acquiredAt = time.Now()
		l.state.Unlock()
		l.acquisitions.Add(1)
		return true
	case <-timer.C:
		l.timeouts.Add(1)
		l.logger.Debug("acquisition timed out", "owner", owner, "timeout", timeout)
		return false
	case <-ctx.Done():
		l.timeouts.Add(1)
		l.logger.Debug("acquisition cancelled", "owner", owner)
		return false
	}
}

// Release gives up one level of ownership. The lock becomes available to
// other owners only when the reentrancy depth returns to zero. A release by
// a non-owner is a programming error and is logged and ignored rather than
// corrupting lock state.
func (l *Lock) Release(owner string) {
	l.state.Lock()
	defer l.state.Unlock()

	if l.depth == 0 || l.owner != owner {
		l.logger.Warn("release by non-owner ignored", "owner", owner, "holder", l.owner)
		return
	}

	l.depth--
	if l.depth == 0 {
		l.owner = ""
		l.acquiredAt = time.Time{}
		l.sem <- struct{}{}
	}
}

// WithLock runs fn under the lock, guaranteeing release on every exit path
// including panics and cancellation inside fn. The first return value
// reports whether the lock was acquired: on timeout or cancellation it is
// (false, nil) and fn never runs.
func (l *Lock) WithLock(ctx context.Context, owner string, timeout time.Duration, fn func(context.Context) error) (bool, error) {
	if !l.Acquire(ctx, owner, timeout) {
		return false, nil
	}
	defer l.Release(owner)
	return true, fn(ctx)
}

// Info is a point-in-time snapshot of one lock for the active-lock report.
type Info struct {
	Name     string   `json:"name"`
	Priority Priority `json:"priority"`
	Held     bool     `json:"held"`
	Owner    string   `json:"owner,omitempty"`
	HeldFor  int64    `json:"held_for_ms,omitempty"`
	Depth    int      `json:"depth,omitempty"`
	Waiters  int64    `json:"waiters"`

	Acquisitions int64 `json:"acquisitions"`
	Timeouts     int64 `json:"timeouts"`
}

// Snapshot returns the lock's current diagnostic state.
func (l *Lock) Snapshot() Info {
	l.state.Lock()
	info := Info{
		Name:     l.name,
		Priority: l.priority,
		Held:     l.depth > 0,
		Owner:    l.owner,
		Depth:    l.depth,
	}
	if l.depth > 0 {
		info.HeldFor = time.Since(l.acquiredAt).Milliseconds()
	}
	l.state.Unlock()

	info.Waiters = l.waiters.Load()
	info.Acquisitions = l.acquisitions.Load()
	info.Timeouts = l.timeouts.Load()
	return info
}
