// Package health provides liveness and readiness checking for callisto.
//
// The Checker runs named component checks concurrently with a per-check
// timeout and aggregates them into an overall status. Liveness is a
// trivial process-alive probe; readiness runs the registered checks and
// degrades when any fails. Check constructors for the memory governor
// and the audit store are provided so the server can wire them up
// without import cycles.
package health
