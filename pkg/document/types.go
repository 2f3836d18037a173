package document

import "strings"

// BoundingBox is an axis-aligned rectangle in document coordinate space.
type BoundingBox struct {
	// X0 is the left edge.
	X0 float64 `json:"x0"`

	// Y0 is the top edge.
	Y0 float64 `json:"y0"`

	// X1 is the right edge.
	X1 float64 `json:"x1"`

	// Y1 is the bottom edge.
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the box.
func (b BoundingBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box.
func (b BoundingBox) Height() float64 { return b.Y1 - b.Y0 }

// Union returns the smallest box covering both b and other.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	out := b
	if other.X0 < out.X0 {
		out.X0 = other.X0
	}
	if other.Y0 < out.Y0 {
		out.Y0 = other.Y0
	}
	if other.X1 > out.X1 {
		out.X1 = other.X1
	}
	if other.Y1 > out.Y1 {
		out.Y1 = other.Y1
	}
	return out
}

// Word is a single positioned token on a page. Words are immutable once
// produced by the extractor; geometry is in document coordinate space.
type Word struct {
	// Text is the raw token text as extracted, whitespace preserved.
	Text string `json:"text"`

	// X0, Y0, X1, Y1 are the word's bounding box edges.
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Box returns the word geometry as a BoundingBox.
func (w Word) Box() BoundingBox {
	return BoundingBox{X0: w.X0, Y0: w.Y0, X1: w.X1, Y1: w.Y1}
}

// Empty reports whether the word's text trims to nothing. Empty words carry
// no alignable content and are excluded from text reconstruction.
func (w Word) Empty() bool {
	return strings.TrimSpace(w.Text) == ""
}

// Page is one page of a document: a page number and its positioned words in
// reading order as emitted by the extractor.
type Page struct {
	// Number is the 1-based page number.
	Number int `json:"page"`

	// Words are the positioned words on the page, in reading order.
	Words []Word `json:"words"`
}

// Document is the extractor's full output for one file.
type Document struct {
	Pages []Page `json:"pages"`
}

// EntitySpan is one detected entity in a page's reconstructed text.
// Offsets are relative to that page's reconstruction; spans are ephemeral
// and live only for the duration of one request.
type EntitySpan struct {
	// Type is the entity category (e.g. "PERSON", "EMAIL_ADDRESS").
	Type string `json:"entity_type"`

	// Start and End delimit the span as [Start, End) offsets into the
	// page's reconstructed text.
	Start int `json:"start"`
	End   int `json:"end"`

	// Score is the detector confidence in [0, 1].
	Score float64 `json:"score"`

	// Text is the original matched text, when the detector provides it.
	Text string `json:"original_text,omitempty"`

	// Engine identifies which detection engine produced the span.
	Engine string `json:"engine,omitempty"`
}

// Length returns the span length in the reconstructed text.
func (e EntitySpan) Length() int { return e.End - e.Start }

// Overlaps reports whether e and other cover at least one common offset,
// treating adjacent spans (e.End == other.Start) as overlapping for merge
// purposes.
func (e EntitySpan) Overlaps(other EntitySpan) bool {
	return other.Start <= e.End && e.Start <= other.End
}

// SensitiveItem is an EntitySpan relocated onto page geometry: the composite
// bounding box plus one box per visual line for entities that wrap.
type SensitiveItem struct {
	Type  string  `json:"entity_type"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Score float64 `json:"score"`
	Text  string  `json:"original_text,omitempty"`

	// BBox is the composite envelope covering every line box.
	BBox BoundingBox `json:"bbox"`

	// Boxes holds one box per visual line, ordered top to bottom. For a
	// single-line entity it contains exactly one element equal to BBox.
	Boxes []BoundingBox `json:"boxes,omitempty"`
}

// PageRedaction collects the sensitive items found on one page.
type PageRedaction struct {
	Page      int             `json:"page"`
	Sensitive []SensitiveItem `json:"sensitive"`
}

// RedactionMapping is the final per-document deliverable: every page with
// its located sensitive items. Owned by the orchestrator for the duration
// of one request.
type RedactionMapping struct {
	Pages []PageRedaction `json:"pages"`
}

// ItemCount returns the total number of sensitive items across all pages.
func (m *RedactionMapping) ItemCount() int {
	n := 0
	for _, p := range m.Pages {
		n += len(p.Sensitive)
	}
	return n
}
