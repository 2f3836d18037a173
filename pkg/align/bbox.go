package align

import (
	"math"
	"sort"

	"mercator-hq/callisto/pkg/document"
)

// MapToBoxes converts a character span in reconstructed text into one
// bounding box per visual line.
//
// Mapping entries are selected when their text range touches [start, end]
// (a word ending exactly at start, or starting exactly at end, is included).
// Selected words get the configured asymmetric padding, are grouped into
// visual lines by padded top edge, and each line is collapsed to its union
// envelope. Line heights are capped at MaxLineHeight by truncating the
// bottom edge. Lines are returned ordered top to bottom.
//
// A span that touches no mapping entry returns nil; that is a logged miss,
// not an error.
func (a *Aligner) MapToBoxes(mapping Mapping, start, end int) []document.BoundingBox {
	lines := make(map[float64]document.BoundingBox)

	for _, entry := range mapping {
		if entry.End < start || entry.Start > end {
			continue
		}

		box := entry.Word.Box()
		box.Y0 += a.cfg.PadTop
		box.Y1 += a.cfg.PadBottom
		if box.Y1 < box.Y0 {
			box.Y1 = box.Y0
		}

		key := math.Round(box.Y0)
		if existing, ok := lines[key]; ok {
			lines[key] = existing.Union(box)
		} else {
			lines[key] = box
		}
	}

	if len(lines) == 0 {
		a.logger.Debug("no words overlap span", "start", start, "end", end)
		return nil
	}

	keys := make([]float64, 0, len(lines))
	for k := range lines {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	out := make([]document.BoundingBox, 0, len(keys))
	for _, k := range keys {
		box := lines[k]
		if box.Height() > a.cfg.MaxLineHeight {
			box.Y1 = box.Y0 + a.cfg.MaxLineHeight
		}
		out = append(out, box)
	}
	return out
}

// MergeBoxes unions per-line boxes into a single composite envelope while
// preserving the per-line list. Returns the zero box for empty input.
func MergeBoxes(boxes []document.BoundingBox) (composite document.BoundingBox, lines []document.BoundingBox) {
	if len(boxes) == 0 {
		return document.BoundingBox{}, nil
	}
	composite = boxes[0]
	for _, b := range boxes[1:] {
		composite = composite.Union(b)
	}
	return composite, boxes
}

// Locate produces a SensitiveItem from a detected span: boxes for every
// line the span touches plus the composite envelope. Returns false when the
// span maps to no geometry.
func (a *Aligner) Locate(span document.EntitySpan, mapping Mapping) (document.SensitiveItem, bool) {
	boxes := a.MapToBoxes(mapping, span.Start, span.End)
	if len(boxes) == 0 {
		return document.SensitiveItem{}, false
	}
	composite, lines := MergeBoxes(boxes)
	return document.SensitiveItem{
		Type:  span.Type,
		Start: span.Start,
		End:   span.End,
		Score: span.Score,
		Text:  span.Text,
		BBox:  composite,
		Boxes: lines,
	}, true
}
