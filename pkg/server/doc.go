// Package server provides the HTTP surface for batch document operations.
//
// The surface is deliberately thin: four batch endpoints that decode a file
// list, hand it to the orchestrator, and encode the BatchResult, plus the
// operational endpoints (health probes, metrics, lock diagnostics,
// version). All failure responses route through the sanitizer so clients
// only ever see category messages and correlation ids.
//
// Middleware chain, outermost first: recovery, request id, logging, CORS,
// body limit, request timeout.
package server
