package memwatch

import (
	"sync"
	"testing"
	"time"
)

// fakeSampler simulates a host with fixed total and adjustable available
// memory.
type fakeSampler struct {
	mu    sync.Mutex
	total float64
	avail float64
}

func (f *fakeSampler) Sample() (float64, float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total, f.avail, nil
}

func (f *fakeSampler) set(avail float64) {
	f.mu.Lock()
	f.avail = avail
	f.mu.Unlock()
}

func newTestMonitor(totalMB, availMB float64) (*Monitor, *fakeSampler) {
	s := &fakeSampler{total: totalMB, avail: availMB}
	return New(DefaultConfig(), s), s
}

// ============================================================================
// Threshold Tests
// ============================================================================

func TestAdaptiveThresholds_RAMBuckets(t *testing.T) {
	tests := []struct {
		name         string
		totalMB      float64
		usage        float64
		wantSoft     float64
		wantCritical float64
		wantBatch    float64
	}{
		{"tiny_host_2gb", 2048, 30, 60, 75, 50},
		{"small_host_8gb", 8192, 30, 70, 85, 60},
		{"standard_host_16gb", 16384, 30, 80, 90, 70},
		{"large_host_32gb", 32768, 30, 85, 95, 75},
		{"already_pressured", 16384, 75, 70, 80, 60},
		{"tiny_and_pressured", 2048, 75, 50, 65, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			soft, critical, batch := adaptiveThresholds(tt.totalMB, tt.usage)
			if soft != tt.wantSoft || critical != tt.wantCritical || batch != tt.wantBatch {
				t.Errorf("got (%v, %v, %v), want (%v, %v, %v)",
					soft, critical, batch, tt.wantSoft, tt.wantCritical, tt.wantBatch)
			}
		})
	}
}

func TestAdaptiveThresholds_BatchFloor(t *testing.T) {
	// Even the tightest configuration keeps the batch threshold at 50.
	_, _, batch := adaptiveThresholds(1024, 95)
	if batch != 50 {
		t.Errorf("batch = %v, want floor 50", batch)
	}
}

func TestMonitor_InitialSnapshot(t *testing.T) {
	m, _ := newTestMonitor(16384, 8192)

	snap := m.Snapshot()
	if snap.CurrentUsage != 50 {
		t.Errorf("usage = %v, want 50", snap.CurrentUsage)
	}
	if snap.SoftThreshold != 80 || snap.CriticalThreshold != 90 {
		t.Errorf("thresholds = %v/%v, want 80/90", snap.SoftThreshold, snap.CriticalThreshold)
	}
	if snap.PeakUsage != 50 {
		t.Errorf("peak = %v, want 50", snap.PeakUsage)
	}
}

func TestMonitor_PeakTracking(t *testing.T) {
	m, s := newTestMonitor(16384, 8192)

	s.set(2048) // 87.5% usage
	m.sample()
	s.set(12288) // back down to 25%
	m.sample()

	snap := m.Snapshot()
	if snap.CurrentUsage != 25 {
		t.Errorf("usage = %v, want 25", snap.CurrentUsage)
	}
	if snap.PeakUsage != 87.5 {
		t.Errorf("peak = %v, want 87.5", snap.PeakUsage)
	}
}

// ============================================================================
// Pressure / Sizing Tests
// ============================================================================

func TestMonitor_PressureTiers(t *testing.T) {
	tests := []struct {
		name    string
		totalMB float64
		availMB float64
		want    Pressure
	}{
		// 16GB host: thresholds 80/90, batch 70.
		{"low", 16384, 11469, PressureLow}, // ~30% usage
		// 2GB host: thresholds 60/75, batch 50.
		{"moderate", 2048, 922, PressureModerate}, // ~55% usage
		{"high", 2048, 700, PressureHigh},         // ~66% usage
		{"critical", 2048, 300, PressureCritical}, // ~85% usage
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestMonitor(tt.totalMB, tt.availMB)
			if got := m.Pressure(); got != tt.want {
				t.Errorf("pressure = %v, want %v (snapshot %+v)", got, tt.want, m.Snapshot())
			}
		})
	}
}

func TestOptimalWorkers_Bounds(t *testing.T) {
	m, _ := newTestMonitor(16384, 11469)

	for _, fileCount := range []int{1, 2, 5, 100} {
		got := m.OptimalWorkers(fileCount, int64(fileCount)*1000)
		if got < 1 || got > fileCount {
			t.Errorf("fileCount=%d: workers = %d, outside [1,%d]", fileCount, got, fileCount)
		}
	}

	if got := m.OptimalWorkers(0, 0); got != 1 {
		t.Errorf("zero files: workers = %d, want 1", got)
	}
}

func TestOptimalWorkers_MonotonicUnderPressure(t *testing.T) {
	// Same host profile, rising pressure: worker count must never increase.
	configs := []struct {
		name    string
		totalMB float64
		availMB float64
	}{
		{"low", 2048, 1600},      // ~22%
		{"moderate", 2048, 922},  // ~55%
		{"high", 2048, 700},      // ~66%
		{"critical", 2048, 300},  // ~85%
	}

	prev := int(^uint(0) >> 1)
	for _, cfg := range configs {
		m, _ := newTestMonitor(cfg.totalMB, cfg.availMB)
		got := m.OptimalWorkers(100, 0)
		if got > prev {
			t.Errorf("%s: workers = %d, increased from %d under higher pressure", cfg.name, got, prev)
		}
		prev = got
	}

	mc, _ := newTestMonitor(2048, 300)
	if got := mc.OptimalWorkers(100, 0); got != 1 {
		t.Errorf("critical pressure: workers = %d, want 1", got)
	}
}

func TestOptimalWorkers_MemoryBound(t *testing.T) {
	// Low pressure, but files averaging 400MB project 1.2GB per worker
	// against a 1.28GB budget: the memory bound forces a serial batch.
	m, _ := newTestMonitor(2048, 1600)
	if got := m.OptimalWorkers(10, 4000<<20); got != 1 {
		t.Errorf("workers = %d, want 1 under memory bound", got)
	}
}

func TestShouldBuffer(t *testing.T) {
	low, _ := newTestMonitor(16384, 11469)
	if !low.ShouldBuffer(10 << 20) {
		t.Error("10MB should buffer under low pressure")
	}
	if low.ShouldBuffer(30 << 20) {
		t.Error("30MB exceeds the 25MB low-pressure cap")
	}

	moderate, _ := newTestMonitor(2048, 922)
	if !moderate.ShouldBuffer(4 << 20) {
		t.Error("4MB should buffer under moderate pressure")
	}
	if moderate.ShouldBuffer(10 << 20) {
		t.Error("10MB exceeds the 5MB moderate-pressure cap")
	}

	critical, _ := newTestMonitor(2048, 300)
	if !critical.ShouldBuffer(512 << 10) {
		t.Error("512KB should buffer under critical pressure")
	}
	if critical.ShouldBuffer(2 << 20) {
		t.Error("2MB exceeds the 1MB critical-pressure cap")
	}
}

// ============================================================================
// Cleanup Tests
// ============================================================================

func TestMonitor_CleanupTiers(t *testing.T) {
	m, s := newTestMonitor(2048, 1600)
	cleared := 0
	m.RegisterCache("detector", func() { cleared++ })

	// Low usage: no cleanup.
	m.maybeCleanup()
	if snap := m.Snapshot(); snap.Cleanups != 0 {
		t.Errorf("low usage triggered %d cleanups", snap.Cleanups)
	}

	// Past soft (60 on a 2GB host): soft cleanup with cache clear.
	s.set(700)
	m.sample()
	m.maybeCleanup()
	snap := m.Snapshot()
	if snap.Cleanups != 1 || snap.EmergencyCleanups != 0 {
		t.Errorf("soft tier: cleanups=%d emergency=%d", snap.Cleanups, snap.EmergencyCleanups)
	}
	if cleared != 1 {
		t.Errorf("cache cleared %d times, want 1", cleared)
	}

	// Past critical: emergency cleanup counted separately.
	s.set(200)
	m.sample()
	m.maybeCleanup()
	snap = m.Snapshot()
	if snap.EmergencyCleanups != 1 {
		t.Errorf("critical tier: emergency=%d, want 1", snap.EmergencyCleanups)
	}
	if cleared != 2 {
		t.Errorf("cache cleared %d times, want 2", cleared)
	}
}

func TestMonitor_CleanupSurvivesPanickingCache(t *testing.T) {
	m, s := newTestMonitor(2048, 200)
	m.RegisterCache("bad", func() { panic("cache exploded") })

	s.set(200)
	m.sample()
	m.maybeCleanup() // must not propagate the panic
}

// ============================================================================
// Lifecycle Tests
// ============================================================================

func TestMonitor_StartStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckInterval = 5 * time.Millisecond
	s := &fakeSampler{total: 16384, avail: 8192}
	m := New(cfg, s)

	m.Start()
	time.Sleep(30 * time.Millisecond)
	s.set(4096)
	time.Sleep(30 * time.Millisecond)
	m.Stop()

	// The loop observed the changed sample.
	if snap := m.Snapshot(); snap.CurrentUsage != 75 {
		t.Errorf("usage = %v, want 75 after loop samples", snap.CurrentUsage)
	}
}

func TestProcfsSampler(t *testing.T) {
	s, err := NewProcfsSampler()
	if err != nil {
		t.Skipf("procfs unavailable: %v", err)
	}
	total, avail, err := s.Sample()
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if total <= 0 || avail <= 0 || avail > total {
		t.Errorf("implausible sample: total=%v avail=%v", total, avail)
	}
}
