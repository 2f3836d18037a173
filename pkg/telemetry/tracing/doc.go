// Package tracing provides OpenTelemetry distributed tracing for
// callisto. Spans are exported over OTLP gRPC with a configurable head
// sampling ratio; when tracing is disabled a noop tracer is returned so
// instrumentation points in the batch pipeline cost almost nothing.
//
// The orchestrator opens a span per batch and one per file, so a slow
// batch can be broken down into alignment, detection, and redaction
// time in any OTLP-compatible backend.
package tracing
