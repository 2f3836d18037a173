package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BenchmarkCollector_RecordBatch measures the hot-path cost of batch recording.
// Target: <50µs per update
func BenchmarkCollector_RecordBatch(b *testing.B) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		collector.RecordBatch("redact", "locked", "success", 250*time.Millisecond, 5)
	}
}

// BenchmarkCollector_RecordFile measures per-file recording cost.
func BenchmarkCollector_RecordFile(b *testing.B) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		collector.RecordFile("redact", "success", 50*time.Millisecond)
	}
}

// BenchmarkCollector_Disabled measures the no-op cost when metrics are off.
func BenchmarkCollector_Disabled(b *testing.B) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		collector.RecordBatch("redact", "locked", "success", 250*time.Millisecond, 5)
	}
}

// BenchmarkCardinalityLimiter_Allow measures the limiter on an existing set.
func BenchmarkCardinalityLimiter_Allow(b *testing.B) {
	cl := NewCardinalityLimiter(10000)
	for i := 0; i < 100; i++ {
		cl.Allow(fmt.Sprintf("label-%d", i))
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		cl.Allow("label-50")
	}
}
