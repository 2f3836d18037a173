package align

import (
	"sort"

	"mercator-hq/callisto/pkg/document"
)

// MergeOverlapping reconciles spans from one or more detectors. Spans are
// sorted by start offset; a single pass folds any span whose start falls at
// or before the running span's end into the running span, extending its end
// and keeping the higher score. Non-overlapping spans pass through
// unmerged, in their post-sort order.
func MergeOverlapping(spans []document.EntitySpan) []document.EntitySpan {
	if len(spans) <= 1 {
		return spans
	}

	sorted := make([]document.EntitySpan, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	out := make([]document.EntitySpan, 0, len(sorted))
	running := sorted[0]

	for _, s := range sorted[1:] {
		if s.Start <= running.End {
			if s.End > running.End {
				running.End = s.End
			}
			// Optimistic confidence: the merged span keeps the
			// highest score any contributor reported.
			if s.Score > running.Score {
				running.Score = s.Score
			}
			continue
		}
		out = append(out, running)
		running = s
	}
	return append(out, running)
}
