package memwatch

// Threshold policy constants. Base thresholds are adjusted by total-RAM
// bucket, tightened under existing pressure, and clamped to the floor and
// ceiling pairs.
const (
	baseSoft     = 80.0
	baseCritical = 90.0

	floorSoft     = 60.0
	floorCritical = 75.0

	ceilSoft     = 85.0
	ceilCritical = 95.0

	// pressuredAt is the usage level past which thresholds tighten a
	// further 10 points at computation time.
	pressuredAt = 70.0
)

// adaptiveThresholds derives soft/critical/batch thresholds from total
// system RAM and current usage.
//
// RAM buckets: hosts under 4GB run 20/15 points lower, 4-8GB hosts 10/5
// lower, hosts over 16GB 5/5 higher. Results clamp to [60,85] soft and
// [75,95] critical. When usage already exceeds 70% both thresholds drop a
// further 10 points. The batch admission threshold trails soft by 10 with
// a floor of 50.
func adaptiveThresholds(totalMB, currentUsage float64) (soft, critical, batch float64) {
	soft, critical = baseSoft, baseCritical

	totalGB := totalMB / 1024
	switch {
	case totalGB < 4:
		soft -= 20
		critical -= 15
	case totalGB <= 8:
		soft -= 10
		critical -= 5
	case totalGB > 16:
		soft += 5
		critical += 5
	}

	soft = clamp(soft, floorSoft, ceilSoft)
	critical = clamp(critical, floorCritical, ceilCritical)

	if currentUsage > pressuredAt {
		soft -= 10
		critical -= 10
	}

	batch = soft - 10
	if batch < 50 {
		batch = 50
	}
	return soft, critical, batch
}

func (m *Monitor) recomputeThresholds() {
	m.mu.Lock()
	total, usage := m.snap.TotalMB, m.snap.CurrentUsage
	m.mu.Unlock()

	soft, critical, batch := adaptiveThresholds(total, usage)

	m.mu.Lock()
	changed := soft != m.snap.SoftThreshold || critical != m.snap.CriticalThreshold
	m.snap.SoftThreshold = soft
	m.snap.CriticalThreshold = critical
	m.snap.BatchThreshold = batch
	m.mu.Unlock()

	if changed {
		m.logger.Info("memory thresholds recomputed",
			"total_mb", total,
			"soft", soft,
			"critical", critical,
			"batch", batch,
		)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
