// Callisto is a batch document PII detection and redaction service.
//
// It accepts batches of extracted documents, locates sensitive entities in
// their positioned text, and returns redaction mappings that tie every
// finding back to page geometry. Processing degrades under contention and
// memory pressure instead of failing: small batches run directly, larger
// batches serialize behind a shared lock, and lock timeouts drop the batch
// to a single-worker emergency mode.
//
// Usage:
//
//	# Start the server with the default configuration
//	callisto run
//
//	# Start with a custom configuration file
//	callisto run --config /etc/callisto/config.yaml
//
//	# Validate a configuration file without starting
//	callisto validate --config /etc/callisto/config.yaml
//
//	# Show version information
//	callisto version
package main

func main() {
	Execute()
}
