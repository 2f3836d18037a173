package health

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Status is the health state of a component or of the service overall.
type Status string

const (
	// StatusOK is a passing component check or a live process.
	StatusOK Status = "ok"

	// StatusUnhealthy is a component check that failed or timed out.
	StatusUnhealthy Status = "unhealthy"

	// StatusReady means every registered component check passed.
	StatusReady Status = "ready"

	// StatusDegraded means at least one component check failed; the
	// instance should be taken out of rotation.
	StatusDegraded Status = "degraded"
)

// CheckFunc probes one component. A nil return means healthy; the error
// text becomes the component's message in the readiness report.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of one component check.
type CheckResult struct {
	Status Status `json:"status"`

	// Message carries the failure detail when Status is unhealthy.
	Message string `json:"message,omitempty"`

	// Duration is how long the check took, in milliseconds.
	Duration int64 `json:"duration_ms,omitempty"`
}

// HealthStatus is the aggregate probe response: the overall status plus,
// for readiness, the per-component results.
type HealthStatus struct {
	Status    Status                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// ErrCheckTimeout is returned when a component check exceeds the
// per-check timeout.
var ErrCheckTimeout = errors.New("health check timeout")

// Checker runs named component checks concurrently, each bounded by a
// shared per-check timeout.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc

	checkTimeout time.Duration
}

// New creates a Checker. A zero timeout defaults to 5 seconds per check.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout == 0 {
		checkTimeout = 5 * time.Second
	}
	return &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
	}
}

// RegisterCheck adds a component check, replacing any existing check
// with the same name.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// UnregisterCheck removes a named component check.
func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// CheckLiveness reports the process alive. It never runs component
// checks and must stay fast; it backs the Kubernetes liveness probe.
func (c *Checker) CheckLiveness(ctx context.Context) HealthStatus {
	return HealthStatus{Status: StatusOK, Timestamp: time.Now()}
}

// CheckReadiness runs every registered component check concurrently and
// aggregates the results. Any unhealthy component degrades the overall
// status. With no checks registered the service is ready by definition.
func (c *Checker) CheckReadiness(ctx context.Context) HealthStatus {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	status := HealthStatus{
		Status:    StatusReady,
		Checks:    make(map[string]CheckResult, len(checks)),
		Timestamp: time.Now(),
	}
	if len(checks) == 0 {
		return status
	}

	type namedResult struct {
		name   string
		result CheckResult
	}
	outcomes := make(chan namedResult, len(checks))
	for name, check := range checks {
		go func(name string, check CheckFunc) {
			outcomes <- namedResult{name: name, result: c.runCheck(ctx, check)}
		}(name, check)
	}

	for range checks {
		o := <-outcomes
		status.Checks[o.name] = o.result
		if o.result.Status == StatusUnhealthy {
			status.Status = StatusDegraded
		}
	}
	return status
}

// runCheck executes one component check under the per-check timeout.
// The check function runs in its own goroutine so a check that ignores
// its context cannot stall the readiness probe.
func (c *Checker) runCheck(ctx context.Context, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()
	errChan := make(chan error, 1)
	go func() {
		errChan <- check(checkCtx)
	}()

	select {
	case err := <-errChan:
		return checkOutcome(err, time.Since(start))
	case <-checkCtx.Done():
		return checkOutcome(ErrCheckTimeout, time.Since(start))
	}
}

func checkOutcome(err error, elapsed time.Duration) CheckResult {
	result := CheckResult{Status: StatusOK, Duration: elapsed.Milliseconds()}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Message = err.Error()
	}
	return result
}

// ListChecks returns the names of all registered component checks.
func (c *Checker) ListChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	return names
}

// CheckCount returns the number of registered component checks.
func (c *Checker) CheckCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.checks)
}
