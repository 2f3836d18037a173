// Package memwatch implements the memory monitor that drives parallelism
// and buffering decisions for batch processing.
//
// A Monitor runs one dedicated background goroutine that samples system
// memory (via /proc/meminfo) on a fixed interval, tracks peak usage, and
// triggers tiered cleanups when usage crosses adaptive thresholds:
//
//   - soft threshold: run a garbage collection pass and clear registered
//     application caches; the GC pass is more aggressive once usage passes
//     the midpoint between soft and critical.
//   - critical threshold: always run the most aggressive collection, clear
//     caches, and return freed memory to the OS.
//
// Thresholds adapt to total system RAM (small hosts get lower thresholds,
// large hosts slightly higher ones) and tighten further when the host is
// already under pressure at computation time. They are recomputed
// periodically, not on every sample.
//
// Callers read decisions, never raw samples:
//
//   - OptimalWorkers clamps a batch's parallelism by CPU count, pressure
//     tier, and projected per-worker memory. It is monotonic: rising
//     pressure never increases the returned worker count.
//   - ShouldBuffer decides whether a payload of a given size may be held in
//     memory or must spill to disk; the in-memory cap shrinks as pressure
//     rises.
//
// The monitor's internal mutex is private to its own stat updates; request
// paths never contend on it. Readers receive value-copy snapshots.
package memwatch
