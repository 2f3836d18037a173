package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"mercator-hq/callisto/pkg/batch"
	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/locking"
	"mercator-hq/callisto/pkg/sanitize"
	"mercator-hq/callisto/pkg/telemetry/health"
	"mercator-hq/callisto/pkg/telemetry/logging"
)

// BuildInfo identifies the running binary on the version endpoint.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Options carries the server's collaborators. Orchestrator, Sanitizer,
// Logger, and Locks are required; Checker and MetricsHandler may be nil,
// which disables their routes' content (probes fall back to a bare
// checker, metrics to 404).
type Options struct {
	Orchestrator   *batch.Orchestrator
	Sanitizer      *sanitize.Sanitizer
	Logger         *logging.Logger
	Locks          *locking.Registry
	Checker        *health.Checker
	MetricsHandler http.Handler
	CORS           *CORSConfig
	Build          BuildInfo
}

// Server is the batch service's HTTP server.
type Server struct {
	config *config.ServerConfig
	opts   Options

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once

	mu        sync.Mutex
	isRunning bool
}

// New creates the server. Start runs it.
func New(cfg *config.ServerConfig, opts Options) *Server {
	if opts.Checker == nil {
		opts.Checker = health.New(0)
	}
	return &Server{
		config:       cfg,
		opts:         opts,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until the context is canceled, a
// termination signal arrives, or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.Routes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("starting server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.opts.Logger.Info("context canceled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.opts.Logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully drains the server. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		running := s.isRunning
		s.mu.Unlock()
		if !running {
			return
		}

		s.opts.Logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.opts.Logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.opts.Logger.Info("server stopped")
	})

	return shutdownErr
}

// Stop requests shutdown from outside the Start goroutine.
func (s *Server) Stop() {
	close(s.shutdownChan)
}

// Routes builds the full handler: endpoints plus the middleware chain.
// Exported so tests can drive the surface through httptest.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	for _, op := range batch.KnownOperations {
		mux.Handle("/v1/batch/"+string(op),
			NewBatchHandler(op, s.opts.Orchestrator, s.opts.Sanitizer, s.opts.Logger))
	}

	mux.Handle("/v1/locks", NewLocksHandler(s.opts.Locks))
	mux.HandleFunc("/healthz", s.opts.Checker.LivenessHandler())
	mux.HandleFunc("/readyz", s.opts.Checker.ReadinessHandler())
	mux.HandleFunc("/version", health.VersionHandler(s.opts.Build.Version, s.opts.Build.Commit, s.opts.Build.BuildTime))
	if s.opts.MetricsHandler != nil {
		mux.Handle("/metrics", s.opts.MetricsHandler)
	}

	cors := s.opts.CORS
	if cors == nil {
		cors = DefaultCORSConfig()
	}

	var handler http.Handler = mux
	handler = TimeoutMiddleware(s.config.RequestTimeout)(handler)
	handler = BodyLimitMiddleware(s.config.MaxBodyBytes)(handler)
	handler = CORSMiddleware(cors)(handler)
	handler = LoggingMiddleware(s.opts.Logger)(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(s.opts.Logger, s.opts.Sanitizer)(handler)
	return handler
}
