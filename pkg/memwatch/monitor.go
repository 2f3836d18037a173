package memwatch

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/procfs"
)

// Sampler reports system memory in megabytes. The production implementation
// reads /proc/meminfo; tests substitute a fake to simulate pressure.
type Sampler interface {
	Sample() (totalMB, availableMB float64, err error)
}

// ProcfsSampler samples system memory from /proc/meminfo.
type ProcfsSampler struct {
	fs procfs.FS
}

// NewProcfsSampler mounts the default proc filesystem.
func NewProcfsSampler() (*ProcfsSampler, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, fmt.Errorf("mounting procfs: %w", err)
	}
	return &ProcfsSampler{fs: fs}, nil
}

// Sample returns total and available system memory in MB.
func (s *ProcfsSampler) Sample() (float64, float64, error) {
	mi, err := s.fs.Meminfo()
	if err != nil {
		return 0, 0, fmt.Errorf("reading meminfo: %w", err)
	}
	if mi.MemTotal == nil || mi.MemAvailable == nil {
		return 0, 0, fmt.Errorf("meminfo missing MemTotal or MemAvailable")
	}
	// meminfo reports kB.
	return float64(*mi.MemTotal) / 1024, float64(*mi.MemAvailable) / 1024, nil
}

// Snapshot is a point-in-time view of the monitor's state. All percentages
// are in [0, 100].
type Snapshot struct {
	CurrentUsage float64 `json:"current_usage_percent"`
	PeakUsage    float64 `json:"peak_usage_percent"`
	AvailableMB  float64 `json:"available_mb"`
	TotalMB      float64 `json:"total_mb"`

	SoftThreshold     float64 `json:"soft_threshold"`
	CriticalThreshold float64 `json:"critical_threshold"`
	BatchThreshold    float64 `json:"batch_threshold"`

	Cleanups          int64 `json:"cleanups"`
	EmergencyCleanups int64 `json:"emergency_cleanups"`
}

// Config tunes the monitor's sampling loop.
type Config struct {
	// CheckInterval is the sampling period.
	// Default: 5s.
	CheckInterval time.Duration `yaml:"check_interval"`

	// RecomputeEvery is how many samples pass between threshold
	// recomputations.
	// Default: 60.
	RecomputeEvery int `yaml:"recompute_every"`

	// MaxWorkers caps the base worker count before pressure scaling.
	// Default: 8.
	MaxWorkers int `yaml:"max_workers"`
}

// DefaultConfig returns the monitor defaults.
func DefaultConfig() Config {
	return Config{
		CheckInterval:  5 * time.Second,
		RecomputeEvery: 60,
		MaxWorkers:     8,
	}
}

// Monitor continuously samples memory and serves sizing decisions. Create
// with New, then Start the sampling loop; Stop before process exit.
type Monitor struct {
	cfg     Config
	sampler Sampler
	logger  *slog.Logger

	// mu guards snap and caches. It is private to the monitor's own stat
	// updates and is never exposed to request-path callers.
	mu   sync.Mutex
	snap Snapshot

	caches map[string]func()

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New creates a Monitor using the given sampler. The monitor performs one
// synchronous sample and threshold computation so decisions are valid
// before Start is called.
func New(cfg Config, sampler Sampler) *Monitor {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultConfig().CheckInterval
	}
	if cfg.RecomputeEvery <= 0 {
		cfg.RecomputeEvery = DefaultConfig().RecomputeEvery
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultConfig().MaxWorkers
	}

	m := &Monitor{
		cfg:     cfg,
		sampler: sampler,
		logger:  slog.Default().With("component", "memwatch"),
		caches:  make(map[string]func()),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	m.sample()
	m.recomputeThresholds()
	return m
}

// Start launches the background sampling loop.
func (m *Monitor) Start() {
	go m.loop()
}

// Stop terminates the sampling loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	<-m.done
}

// Snapshot returns a copy of the monitor's current state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// RegisterCache registers a clearable application cache. The clear function
// is invoked during threshold cleanups and must be safe to call at any
// time from the monitor goroutine.
func (m *Monitor) RegisterCache(name string, clear func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches[name] = clear
}

func (m *Monitor) loop() {
	defer close(m.done)

	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()

	iterations := 0
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sample()
			m.maybeCleanup()

			iterations++
			if iterations%m.cfg.RecomputeEvery == 0 {
				m.recomputeThresholds()
			}
		}
	}
}

// sample reads the sampler and updates usage stats. Sampler failures keep
// the previous snapshot so decisions stay conservative rather than wrong.
func (m *Monitor) sample() {
	total, available, err := m.sampler.Sample()
	if err != nil || total <= 0 {
		m.logger.Warn("memory sample failed", "error", err)
		return
	}

	usage := (total - available) / total * 100

	m.mu.Lock()
	m.snap.TotalMB = total
	m.snap.AvailableMB = available
	m.snap.CurrentUsage = usage
	if usage > m.snap.PeakUsage {
		m.snap.PeakUsage = usage
	}
	m.mu.Unlock()
}
