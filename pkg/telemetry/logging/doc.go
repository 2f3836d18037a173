// Package logging provides structured logging for callisto built on
// log/slog, with automatic PII redaction and async buffered output.
//
// The service processes documents that contain exactly the kind of data
// that must never leak into log streams, so the Logger redacts emails,
// phone numbers, and national id numbers from log fields by default.
// Context helpers carry the operation id and request id through the
// batch pipeline so every log line can be correlated with the batch
// that produced it.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//		Level:     "info",
//		Format:    "json",
//		RedactPII: true,
//	})
//	if err != nil {
//		return err
//	}
//	defer logger.Shutdown()
//
//	ctx = logging.WithOperationID(ctx, opID)
//	logger.InfoContext(ctx, "batch accepted", "files", len(files))
package logging
