package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. Fields absent from the file keep their defaults;
// boolean fields that default to true must be set explicitly to disable.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention CALLISTO_SECTION_FIELD (e.g. CALLISTO_SERVER_LISTEN_ADDRESS)
// and always take precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString("CALLISTO_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	setDuration("CALLISTO_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	setDuration("CALLISTO_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	setDuration("CALLISTO_SERVER_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	setInt64("CALLISTO_SERVER_MAX_BODY_BYTES", &cfg.Server.MaxBodyBytes)

	setInt("CALLISTO_BATCH_DIRECT_MAX_FILES", &cfg.Batch.DirectMaxFiles)
	setDuration("CALLISTO_BATCH_DETECT_LOCK_TIMEOUT", &cfg.Batch.DetectLockTimeout)
	setDuration("CALLISTO_BATCH_DEFAULT_LOCK_TIMEOUT", &cfg.Batch.DefaultLockTimeout)
	setInt64("CALLISTO_BATCH_MAX_FILE_BYTES", &cfg.Batch.MaxFileBytes)

	setDuration("CALLISTO_MEMORY_CHECK_INTERVAL", &cfg.Memory.CheckInterval)
	setInt("CALLISTO_MEMORY_MAX_WORKERS", &cfg.Memory.MaxWorkers)

	setDuration("CALLISTO_DETECT_ENGINE_TIMEOUT", &cfg.Detect.EngineTimeout)

	setString("CALLISTO_AUDIT_BACKEND", &cfg.Audit.Backend)
	setString("CALLISTO_AUDIT_SQLITE_PATH", &cfg.Audit.SQLitePath)
	setBool("CALLISTO_AUDIT_ENABLED", &cfg.Audit.Enabled)

	setString("CALLISTO_LOG_LEVEL", &cfg.Telemetry.Logging.Level)
	setString("CALLISTO_LOG_FORMAT", &cfg.Telemetry.Logging.Format)
	setBool("CALLISTO_LOG_REDACT_PII", &cfg.Telemetry.Logging.RedactPII)
	setBool("CALLISTO_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	setBool("CALLISTO_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	setString("CALLISTO_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
}

func setString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func setInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func setInt64(key string, dst *int64) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			*dst = i
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
