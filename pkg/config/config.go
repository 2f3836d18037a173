package config

import "time"

// Config is the root configuration structure for Callisto. It contains all
// sections for the HTTP server, batch orchestration, memory monitoring,
// alignment, detection engines, audit storage, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server"`

	// Batch contains batch orchestration configuration: tier selection,
	// lock timeouts, and degradation cutoffs.
	Batch BatchConfig `yaml:"batch"`

	// Memory contains memory monitor configuration.
	Memory MemoryConfig `yaml:"memory"`

	// Align contains text-to-geometry alignment tunables.
	Align AlignConfig `yaml:"align"`

	// Detect contains detection engine configuration.
	Detect DetectConfig `yaml:"detect"`

	// Audit contains configuration for compliance record storage and
	// retention.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains observability configuration: logging, metrics,
	// and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8089"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 60s (batch uploads can be large)
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response
	// writes.
	// Default: 120s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes limits the total request body size.
	// Default: 104857600 (100MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// RequestTimeout bounds one batch request end to end. It must exceed
	// the longest lock timeout plus expected per-file processing time.
	// Default: 10m
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// BatchConfig contains batch orchestration tunables.
type BatchConfig struct {
	// DirectMaxFiles is the largest batch that runs on the direct tier,
	// without requesting the batch lock.
	// Default: 2
	DirectMaxFiles int `yaml:"direct_max_files"`

	// DetectLockTimeout bounds lock acquisition for detect operations.
	// Detection tolerates longer waits than the other operations.
	// Default: 30s
	DetectLockTimeout time.Duration `yaml:"detect_lock_timeout"`

	// DefaultLockTimeout bounds lock acquisition for redact, extract, and
	// hybrid operations.
	// Default: 10s
	DefaultLockTimeout time.Duration `yaml:"default_lock_timeout"`

	// MaxFileBytes limits one file's payload. Zero disables the check.
	// Default: 52428800 (50MB)
	MaxFileBytes int64 `yaml:"max_file_bytes"`

	// HybridFullPayload is the total payload size up to which hybrid
	// detection runs every requested engine.
	// Default: 1048576 (1MB)
	HybridFullPayload int64 `yaml:"hybrid_full_payload"`

	// HybridReducedPayload is the total payload size up to which hybrid
	// detection drops one engine; above it only the cheapest engine runs.
	// Default: 2097152 (2MB)
	HybridReducedPayload int64 `yaml:"hybrid_reduced_payload"`

	// RetryAfter is the retry hint attached to total-exhaustion results,
	// in seconds.
	// Default: 30
	RetryAfter int `yaml:"retry_after"`
}

// MemoryConfig contains memory monitor tunables.
type MemoryConfig struct {
	// CheckInterval is the sampling period of the background monitor.
	// Default: 5s
	CheckInterval time.Duration `yaml:"check_interval"`

	// RecomputeEvery is how many samples pass between threshold
	// recomputations.
	// Default: 60
	RecomputeEvery int `yaml:"recompute_every"`

	// MaxWorkers caps batch parallelism before pressure scaling.
	// Default: 8
	MaxWorkers int `yaml:"max_workers"`
}

// AlignConfig contains text-to-geometry mapping tunables.
type AlignConfig struct {
	// PadTop is added to a word's top edge before line grouping.
	// Default: 2
	PadTop float64 `yaml:"pad_top"`

	// PadBottom is added to a word's bottom edge before line grouping.
	// Default: -2
	PadBottom float64 `yaml:"pad_bottom"`

	// MaxLineHeight caps the height of each returned line box.
	// Default: 40
	MaxLineHeight float64 `yaml:"max_line_height"`
}

// DetectConfig contains detection engine configuration.
type DetectConfig struct {
	// EngineTimeout bounds one engine call on one page.
	// Default: 60s
	EngineTimeout time.Duration `yaml:"engine_timeout"`

	// DefaultEngines are the engines used when a request names none.
	// Default: ["pattern"]
	DefaultEngines []string `yaml:"default_engines"`
}

// AuditConfig contains compliance record storage configuration.
type AuditConfig struct {
	// Enabled enables audit recording.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	// Default: "data/audit.db"
	SQLitePath string `yaml:"sqlite_path"`

	// AsyncBuffer is the size of the async write channel.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// RetentionDays is how long records are kept.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// RetentionSchedule is the cron expression for retention pruning.
	// Default: "0 3 * * *" (daily at 03:00)
	RetentionSchedule string `yaml:"retention_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// RedactPII enables masking of emails, phone numbers, and national
	// ids in log output. This service handles sensitive documents, so
	// redaction defaults on.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`

	// BufferSize is the async log buffer size in entries.
	// Default: 10000
	BufferSize int `yaml:"buffer_size"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "callisto"
	Namespace string `yaml:"namespace"`

	// Subsystem is the secondary metric name prefix.
	// Default: "batch"
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS on the exporter connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// SampleRate is the head sampling ratio in [0, 1].
	// Default: 0.1
	SampleRate float64 `yaml:"sample_rate"`

	// ServiceName identifies this service in exported spans.
	// Default: "callisto"
	ServiceName string `yaml:"service_name"`
}
