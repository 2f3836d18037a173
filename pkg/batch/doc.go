// Package batch implements the resource-governed orchestration layer
// that turns a list of input files into a BatchResult without ever
// letting contention, memory pressure, or a single bad file take down
// the whole batch.
//
// # Processing tiers
//
// Every batch executes at exactly one of three tiers, degrading in
// order and never upgrading mid-request:
//
//   - direct: batches of at most two files run immediately, without
//     requesting the shared batch lock.
//   - locked: larger batches (and direct batches that failed) attempt
//     the shared lock with an operation-specific timeout and run at
//     full clamped parallelism while holding it.
//   - emergency: entered only when lock acquisition times out. The
//     batch runs unlocked at a single worker, and hybrid detection is
//     pruned to its cheapest engine.
//
// If even the emergency attempt fails, the orchestrator returns a
// 503-equivalent BatchResult carrying retry_after and the operation id
// rather than an error.
//
// Hybrid detection carries a second, independent degradation axis keyed
// off total payload size: small payloads run every requested engine,
// mid-size payloads drop the most expensive engine, and large payloads
// run only the cheapest. Both axes can apply to the same batch.
//
// Worker parallelism is clamped by the memory monitor on every batch,
// results are written into an index-addressed slice so file_results
// order always equals input order, and per-file failures are isolated:
// one bad file produces one error entry and touches nothing else.
package batch
