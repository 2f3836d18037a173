package health

import (
	"context"
	"fmt"
)

// MemoryCheck builds a readiness check from a usage sampler. The
// sampler returns the current memory usage and the critical threshold,
// both as percentages; the check fails once usage reaches the
// threshold, which takes the instance out of rotation before the
// orchestrator starts refusing batches.
func MemoryCheck(sample func() (usage, critical float64)) CheckFunc {
	return func(ctx context.Context) error {
		usage, critical := sample()
		if usage >= critical {
			return fmt.Errorf("memory usage %.1f%% at or above critical threshold %.1f%%", usage, critical)
		}
		return nil
	}
}

// PingCheck builds a readiness check from any component exposing a
// context-aware ping, such as the audit store.
func PingCheck(ping func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) error {
		if err := ping(ctx); err != nil {
			return fmt.Errorf("ping failed: %w", err)
		}
		return nil
	}
}
