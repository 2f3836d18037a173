package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/align"
	"mercator-hq/callisto/pkg/audit"
	"mercator-hq/callisto/pkg/batch"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/detect"
	"mercator-hq/callisto/pkg/extract"
	"mercator-hq/callisto/pkg/locking"
	"mercator-hq/callisto/pkg/memwatch"
	"mercator-hq/callisto/pkg/sanitize"
	"mercator-hq/callisto/pkg/server"
	"mercator-hq/callisto/pkg/telemetry/health"
	"mercator-hq/callisto/pkg/telemetry/logging"
	"mercator-hq/callisto/pkg/telemetry/metrics"
	"mercator-hq/callisto/pkg/telemetry/tracing"
)

// batchLockName is the single shared lock every batch tier contends on.
const batchLockName = "batch-processing"

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Callisto batch service",
	Long: `Start the Callisto server with the specified configuration.

The server exposes the batch endpoints (detect, redact, extract, hybrid),
lock diagnostics, health probes, metrics, and version information.

Examples:
  # Start with default config
  callisto run

  # Start with custom config
  callisto run --config /etc/callisto/config.yaml

  # Override listen address
  callisto run --listen 0.0.0.0:8089

  # Validate config without starting the server
  callisto run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Telemetry.Logging.Level,
		Format:     cfg.Telemetry.Logging.Format,
		RedactPII:  cfg.Telemetry.Logging.RedactPII,
		BufferSize: cfg.Telemetry.Logging.BufferSize,
	})
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer logger.Shutdown()

	// Library packages log through slog.Default; align it with the
	// configured level and format.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel(cfg.Telemetry.Logging.Level),
	})))

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Metrics.
	var collector *metrics.Collector
	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
		metricsHandler = collector.Handler()
	}

	// Tracing.
	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown", "error", err)
		}
	}()

	// Memory monitor.
	sampler, err := memwatch.NewProcfsSampler()
	if err != nil {
		return fmt.Errorf("initializing memory sampler: %w", err)
	}
	monitor := memwatch.New(memwatch.Config{
		CheckInterval:  cfg.Memory.CheckInterval,
		RecomputeEvery: cfg.Memory.RecomputeEvery,
		MaxWorkers:     cfg.Memory.MaxWorkers,
	}, sampler)
	monitor.Start()
	defer monitor.Stop()

	// Detection engines.
	engines := detect.NewRegistry()
	engines.Register(detect.NewPatternEngine())
	engines.Freeze()
	logger.Info("detection engines registered", "engines", engines.Names())

	// Batch lock.
	locks := locking.NewRegistry()
	lock := locks.Get(batchLockName, locking.PriorityHigh)

	// Audit trail.
	var recorder *audit.Recorder
	var pruner *audit.Pruner
	var store audit.Store
	if cfg.Audit.Enabled {
		store, err = openAuditStore(cfg)
		if err != nil {
			return fmt.Errorf("opening audit store: %w", err)
		}
		defer store.Close()

		recorder = audit.NewRecorder(store, &audit.RecorderConfig{
			Enabled:     true,
			AsyncBuffer: cfg.Audit.AsyncBuffer,
		})
		defer func() {
			if err := recorder.Close(); err != nil {
				logger.Warn("audit recorder close", "error", err)
			}
		}()

		pruner = audit.NewPruner(store, &audit.RetentionConfig{
			RetentionDays: cfg.Audit.RetentionDays,
			Schedule:      cfg.Audit.RetentionSchedule,
		})
		if err := pruner.Start(ctx); err != nil {
			return fmt.Errorf("starting retention pruner: %w", err)
		}
		defer pruner.Stop()
	}

	// Alignment and orchestration.
	aligner := align.New(align.Config{
		PadTop:        cfg.Align.PadTop,
		PadBottom:     cfg.Align.PadBottom,
		MaxLineHeight: cfg.Align.MaxLineHeight,
	})
	orchestrator := batch.New(batch.Settings{
		Batch:  cfg.Batch,
		Detect: cfg.Detect,
	}, batch.Options{
		Lock:      lock,
		Monitor:   monitor,
		Engines:   engines,
		Extractor: extract.NewJSONExtractor(),
		Aligner:   aligner,
		Mutator:   align.NewMutator(aligner),
		Logger:    logger,
		Metrics:   collector,
		Tracer:    tracer,
		Recorder:  recorder,
	})

	// Config hot reload: batch and detect settings apply to new requests;
	// server and telemetry settings need a restart.
	watcher := config.NewWatcher(cfgFile, 0)
	go func() {
		err := watcher.Watch(ctx, func(newCfg *config.Config) {
			orchestrator.UpdateConfig(batch.Settings{
				Batch:  newCfg.Batch,
				Detect: newCfg.Detect,
			})
			logger.Info("batch settings reloaded")
		})
		if err != nil && ctx.Err() == nil {
			logger.Warn("config watcher stopped", "error", err)
		}
	}()

	// Health checks.
	checker := health.New(5 * time.Second)
	checker.RegisterCheck("memory", health.MemoryCheck(func() (float64, float64) {
		snap := monitor.Snapshot()
		return snap.CurrentUsage, snap.CriticalThreshold
	}))
	if store != nil {
		checker.RegisterCheck("audit", health.PingCheck(store.Ping))
	}

	srv := server.New(&cfg.Server, server.Options{
		Orchestrator:   orchestrator,
		Sanitizer:      sanitize.New(),
		Logger:         logger,
		Locks:          locks,
		Checker:        checker,
		MetricsHandler: metricsHandler,
		Build: server.BuildInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildTime: BuildDate,
		},
	})

	printBanner(cfg)
	return srv.Start(ctx)
}

// openAuditStore selects the audit backend from configuration.
func openAuditStore(cfg *config.Config) (audit.Store, error) {
	switch cfg.Audit.Backend {
	case "memory":
		return audit.NewMemoryStore(), nil
	case "sqlite", "":
		return audit.NewSQLiteStore(&audit.SQLiteConfig{
			Path: cfg.Audit.SQLitePath,
		})
	default:
		return nil, fmt.Errorf("unknown audit backend %q", cfg.Audit.Backend)
	}
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Callisto %s\n", Version)
	fmt.Printf("  listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("  direct tier up to %d files, lock timeouts %s/%s\n",
		cfg.Batch.DirectMaxFiles, cfg.Batch.DetectLockTimeout, cfg.Batch.DefaultLockTimeout)
	fmt.Printf("  audit: %s (enabled=%v)\n", cfg.Audit.Backend, cfg.Audit.Enabled)
}
