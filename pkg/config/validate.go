package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the field (e.g. "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every validation failure in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate checks the entire configuration, collecting every failure
// rather than stopping at the first.
func Validate(cfg *Config) error {
	var errs []FieldError

	if cfg.Server.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "must not be empty"})
	}
	if cfg.Server.RequestTimeout <= cfg.Batch.DetectLockTimeout {
		errs = append(errs, FieldError{"server.request_timeout",
			"must exceed batch.detect_lock_timeout or every detect batch times out at the lock"})
	}

	if cfg.Batch.DirectMaxFiles < 1 {
		errs = append(errs, FieldError{"batch.direct_max_files", "must be at least 1"})
	}
	if cfg.Batch.DetectLockTimeout <= 0 {
		errs = append(errs, FieldError{"batch.detect_lock_timeout", "must be positive"})
	}
	if cfg.Batch.DefaultLockTimeout <= 0 {
		errs = append(errs, FieldError{"batch.default_lock_timeout", "must be positive"})
	}
	if cfg.Batch.HybridReducedPayload < cfg.Batch.HybridFullPayload {
		errs = append(errs, FieldError{"batch.hybrid_reduced_payload",
			"must be at least batch.hybrid_full_payload"})
	}
	if cfg.Batch.MaxFileBytes < 0 {
		errs = append(errs, FieldError{"batch.max_file_bytes", "must not be negative"})
	}

	if cfg.Memory.CheckInterval <= 0 {
		errs = append(errs, FieldError{"memory.check_interval", "must be positive"})
	}
	if cfg.Memory.MaxWorkers < 1 {
		errs = append(errs, FieldError{"memory.max_workers", "must be at least 1"})
	}

	if cfg.Align.MaxLineHeight <= 0 {
		errs = append(errs, FieldError{"align.max_line_height", "must be positive"})
	}

	if cfg.Detect.EngineTimeout <= 0 {
		errs = append(errs, FieldError{"detect.engine_timeout", "must be positive"})
	}

	switch cfg.Audit.Backend {
	case "sqlite", "memory":
	default:
		errs = append(errs, FieldError{"audit.backend",
			fmt.Sprintf("unknown backend %q, expected sqlite or memory", cfg.Audit.Backend)})
	}
	if cfg.Audit.Enabled && cfg.Audit.Backend == "sqlite" && cfg.Audit.SQLitePath == "" {
		errs = append(errs, FieldError{"audit.sqlite_path", "must not be empty for the sqlite backend"})
	}
	if cfg.Audit.RetentionDays < 1 {
		errs = append(errs, FieldError{"audit.retention_days", "must be at least 1"})
	}
	if cfg.Audit.RetentionSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Audit.RetentionSchedule); err != nil {
			errs = append(errs, FieldError{"audit.retention_schedule", err.Error()})
		}
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level",
			fmt.Sprintf("unknown level %q", cfg.Telemetry.Logging.Level)})
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format",
			fmt.Sprintf("unknown format %q", cfg.Telemetry.Logging.Format)})
	}
	if sr := cfg.Telemetry.Tracing.SampleRate; sr < 0 || sr > 1 {
		errs = append(errs, FieldError{"telemetry.tracing.sample_rate", "must be in [0, 1]"})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
