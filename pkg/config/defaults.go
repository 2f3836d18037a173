package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8089"
	DefaultReadTimeout     = 60 * time.Second
	DefaultWriteTimeout    = 120 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodyBytes    = int64(100 << 20)
	DefaultRequestTimeout  = 10 * time.Minute

	// Batch defaults
	DefaultDirectMaxFiles       = 2
	DefaultDetectLockTimeout    = 30 * time.Second
	DefaultDefaultLockTimeout   = 10 * time.Second
	DefaultMaxFileBytes         = int64(50 << 20)
	DefaultHybridFullPayload    = int64(1 << 20)
	DefaultHybridReducedPayload = int64(2 << 20)
	DefaultRetryAfter           = 30

	// Memory defaults
	DefaultMemoryCheckInterval  = 5 * time.Second
	DefaultMemoryRecomputeEvery = 60
	DefaultMemoryMaxWorkers     = 8

	// Align defaults
	DefaultAlignPadTop        = 2.0
	DefaultAlignPadBottom     = -2.0
	DefaultAlignMaxLineHeight = 40.0

	// Detect defaults
	DefaultEngineTimeout = 60 * time.Second

	// Audit defaults
	DefaultAuditEnabled           = true
	DefaultAuditBackend           = "sqlite"
	DefaultAuditSQLitePath        = "data/audit.db"
	DefaultAuditAsyncBuffer       = 1000
	DefaultAuditRetentionDays     = 90
	DefaultAuditRetentionSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultLogBufferSize    = 10000
	DefaultMetricsNamespace = "callisto"
	DefaultMetricsSubsystem = "batch"
	DefaultTracingEndpoint  = "localhost:4317"
	DefaultTracingSample    = 0.1
	DefaultTracingService   = "callisto"
)

// ApplyDefaults fills zero-valued fields with their defaults. Boolean
// fields that default to true are handled by DefaultConfig instead, since
// an explicit false is indistinguishable from an unset field after
// unmarshalling; yaml loading starts from DefaultConfig.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}

	if cfg.Batch.DirectMaxFiles == 0 {
		cfg.Batch.DirectMaxFiles = DefaultDirectMaxFiles
	}
	if cfg.Batch.DetectLockTimeout == 0 {
		cfg.Batch.DetectLockTimeout = DefaultDetectLockTimeout
	}
	if cfg.Batch.DefaultLockTimeout == 0 {
		cfg.Batch.DefaultLockTimeout = DefaultDefaultLockTimeout
	}
	if cfg.Batch.MaxFileBytes == 0 {
		cfg.Batch.MaxFileBytes = DefaultMaxFileBytes
	}
	if cfg.Batch.HybridFullPayload == 0 {
		cfg.Batch.HybridFullPayload = DefaultHybridFullPayload
	}
	if cfg.Batch.HybridReducedPayload == 0 {
		cfg.Batch.HybridReducedPayload = DefaultHybridReducedPayload
	}
	if cfg.Batch.RetryAfter == 0 {
		cfg.Batch.RetryAfter = DefaultRetryAfter
	}

	if cfg.Memory.CheckInterval == 0 {
		cfg.Memory.CheckInterval = DefaultMemoryCheckInterval
	}
	if cfg.Memory.RecomputeEvery == 0 {
		cfg.Memory.RecomputeEvery = DefaultMemoryRecomputeEvery
	}
	if cfg.Memory.MaxWorkers == 0 {
		cfg.Memory.MaxWorkers = DefaultMemoryMaxWorkers
	}

	if cfg.Align.PadTop == 0 {
		cfg.Align.PadTop = DefaultAlignPadTop
	}
	if cfg.Align.PadBottom == 0 {
		cfg.Align.PadBottom = DefaultAlignPadBottom
	}
	if cfg.Align.MaxLineHeight == 0 {
		cfg.Align.MaxLineHeight = DefaultAlignMaxLineHeight
	}

	if cfg.Detect.EngineTimeout == 0 {
		cfg.Detect.EngineTimeout = DefaultEngineTimeout
	}
	if len(cfg.Detect.DefaultEngines) == 0 {
		cfg.Detect.DefaultEngines = []string{"pattern"}
	}

	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.SQLitePath == "" {
		cfg.Audit.SQLitePath = DefaultAuditSQLitePath
	}
	if cfg.Audit.AsyncBuffer == 0 {
		cfg.Audit.AsyncBuffer = DefaultAuditAsyncBuffer
	}
	if cfg.Audit.RetentionDays == 0 {
		cfg.Audit.RetentionDays = DefaultAuditRetentionDays
	}
	if cfg.Audit.RetentionSchedule == "" {
		cfg.Audit.RetentionSchedule = DefaultAuditRetentionSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Logging.BufferSize == 0 {
		cfg.Telemetry.Logging.BufferSize = DefaultLogBufferSize
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.SampleRate == 0 {
		cfg.Telemetry.Tracing.SampleRate = DefaultTracingSample
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
}

// DefaultConfig returns a fully defaulted configuration, including the
// boolean fields that default to true.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Audit.Enabled = DefaultAuditEnabled
	cfg.Telemetry.Logging.RedactPII = true
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Telemetry.Tracing.Insecure = true
	ApplyDefaults(cfg)
	return cfg
}
