package memwatch

import (
	"runtime"
	"runtime/debug"
)

// maybeCleanup runs the tiered cleanup policy against the latest sample.
// Cleanups never propagate panics out of the monitor goroutine.
func (m *Monitor) maybeCleanup() {
	m.mu.Lock()
	usage := m.snap.CurrentUsage
	soft := m.snap.SoftThreshold
	critical := m.snap.CriticalThreshold
	m.mu.Unlock()

	switch {
	case critical > 0 && usage >= critical:
		m.emergencyCleanup(usage)
	case soft > 0 && usage >= soft:
		aggressive := usage >= (soft+critical)/2
		m.softCleanup(usage, aggressive)
	}
}

// softCleanup runs a collection pass and clears application caches. Past
// the soft/critical midpoint the pass also returns freed pages to the OS.
func (m *Monitor) softCleanup(usage float64, aggressive bool) {
	defer m.recovered("soft cleanup")

	if aggressive {
		debug.FreeOSMemory()
	} else {
		runtime.GC()
	}
	m.clearCaches()

	m.mu.Lock()
	m.snap.Cleanups++
	m.mu.Unlock()

	m.logger.Info("soft cleanup executed", "usage", usage, "aggressive", aggressive)
}

// emergencyCleanup is the critical-tier path: the most aggressive
// collection, cache clears, and native memory release, always.
func (m *Monitor) emergencyCleanup(usage float64) {
	defer m.recovered("emergency cleanup")

	runtime.GC()
	debug.FreeOSMemory()
	m.clearCaches()

	m.mu.Lock()
	m.snap.Cleanups++
	m.snap.EmergencyCleanups++
	m.mu.Unlock()

	m.logger.Warn("emergency cleanup executed", "usage", usage)
}

func (m *Monitor) clearCaches() {
	m.mu.Lock()
	clears := make([]func(), 0, len(m.caches))
	for _, c := range m.caches {
		clears = append(clears, c)
	}
	m.mu.Unlock()

	for _, clear := range clears {
		clear()
	}
}

func (m *Monitor) recovered(what string) {
	if r := recover(); r != nil {
		m.logger.Error("panic during "+what, "panic", r)
	}
}
