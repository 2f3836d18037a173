package memwatch

import "runtime"

// Pressure is the monitor's coarse pressure tier, derived from current
// usage against the adaptive thresholds.
type Pressure string

const (
	PressureLow      Pressure = "low"
	PressureModerate Pressure = "moderate"
	PressureHigh     Pressure = "high"
	PressureCritical Pressure = "critical"
)

// In-memory buffering caps per pressure tier. Each is the lesser of a fixed
// cap and a share of currently available memory.
const (
	bufferCapLowBytes      = 25 << 20
	bufferCapModerateBytes = 5 << 20
	bufferCapCriticalBytes = 1 << 20

	bufferShareLow      = 0.20
	bufferShareModerate = 0.10
	bufferShareCritical = 0.05

	// Projected per-worker footprint is three times the average file
	// size: raw payload, reconstruction, and detector working set.
	workerMemoryFactor = 3

	// Workers may claim at most this share of available memory.
	workerMemoryBudget = 0.8
)

// Pressure returns the current pressure tier.
func (m *Monitor) Pressure() Pressure {
	snap := m.Snapshot()
	return pressureOf(snap)
}

func pressureOf(s Snapshot) Pressure {
	switch {
	case s.CriticalThreshold > 0 && s.CurrentUsage >= s.CriticalThreshold:
		return PressureCritical
	case s.SoftThreshold > 0 && s.CurrentUsage >= s.SoftThreshold:
		return PressureHigh
	case s.BatchThreshold > 0 && s.CurrentUsage >= s.BatchThreshold:
		return PressureModerate
	default:
		return PressureLow
	}
}

// OptimalWorkers returns the worker count for a batch of fileCount files
// totalling totalBytes. The result is always in [1, fileCount] and never
// increases as memory pressure rises.
//
// The base count is min(NumCPU-1, MaxWorkers), scaled down by pressure
// tier (critical runs serially, high at a third, moderate at half). When
// totalBytes is known, workers are further capped so that their projected
// combined footprint stays within 80% of available memory.
func (m *Monitor) OptimalWorkers(fileCount int, totalBytes int64) int {
	if fileCount <= 0 {
		return 1
	}

	snap := m.Snapshot()

	base := runtime.NumCPU() - 1
	if base > m.cfg.MaxWorkers {
		base = m.cfg.MaxWorkers
	}
	if base < 1 {
		base = 1
	}

	workers := base
	switch pressureOf(snap) {
	case PressureCritical:
		workers = 1
	case PressureHigh:
		workers = base / 3
	case PressureModerate:
		workers = base / 2
	}
	if workers < 1 {
		workers = 1
	}

	if totalBytes > 0 {
		avgFileBytes := totalBytes / int64(fileCount)
		memoryPerWorker := workerMemoryFactor * avgFileBytes
		if memoryPerWorker > 0 {
			budget := int64(snap.AvailableMB * workerMemoryBudget * 1024 * 1024)
			memoryBound := int(budget / memoryPerWorker)
			if memoryBound < workers {
				workers = memoryBound
			}
		}
	}

	if workers > fileCount {
		workers = fileCount
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// ShouldBuffer reports whether a payload of sizeBytes may be held fully in
// memory. Above the tier's cap the caller must spill to disk instead. The
// cap shrinks from 25MB under low pressure to 1MB under critical pressure,
// and never exceeds the tier's share of available memory.
func (m *Monitor) ShouldBuffer(sizeBytes int64) bool {
	snap := m.Snapshot()
	availableBytes := snap.AvailableMB * 1024 * 1024

	var limit float64
	switch pressureOf(snap) {
	case PressureCritical, PressureHigh:
		limit = min(bufferCapCriticalBytes, availableBytes*bufferShareCritical)
	case PressureModerate:
		limit = min(bufferCapModerateBytes, availableBytes*bufferShareModerate)
	default:
		limit = min(bufferCapLowBytes, availableBytes*bufferShareLow)
	}

	return float64(sizeBytes) <= limit
}
