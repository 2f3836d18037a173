package align

import (
	"strings"
	"testing"

	"mercator-hq/callisto/pkg/document"
)

// word builds a test word on a single line at the given x range.
func word(text string, x0, x1 float64) document.Word {
	return document.Word{Text: text, X0: x0, Y0: 100, X1: x1, Y1: 112}
}

// ============================================================================
// Reconstruct Tests
// ============================================================================

func TestReconstruct_RejoinsExactly(t *testing.T) {
	tests := []struct {
		name  string
		words []string
	}{
		{"simple", []string{"John", "Smith", "lives", "here"}},
		{"single", []string{"hello"}},
		{"with_empties", []string{"a", "", "  ", "b", "\t", "c"}},
		{"all_empty", []string{"", "   "}},
		{"none", nil},
	}

	a := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words := make([]document.Word, len(tt.words))
			for i, w := range tt.words {
				words[i] = word(w, float64(i*20), float64(i*20+15))
			}

			text, mapping := a.Reconstruct(words)

			// Rejoining mapped word texts with single spaces must
			// reproduce the full text exactly.
			parts := make([]string, len(mapping))
			nonEmpty := 0
			for i, e := range mapping {
				parts[i] = e.Word.Text
			}
			for _, w := range tt.words {
				if strings.TrimSpace(w) != "" {
					nonEmpty++
				}
			}
			if joined := strings.Join(parts, " "); joined != text {
				t.Errorf("rejoined = %q, text = %q", joined, text)
			}
			if len(mapping) != nonEmpty {
				t.Errorf("mapping length = %d, want %d non-empty words", len(mapping), nonEmpty)
			}
		})
	}
}

func TestReconstruct_OffsetsStrictlyIncreasing(t *testing.T) {
	a := New(DefaultConfig())
	words := []document.Word{
		word("alpha", 0, 30), word("beta", 35, 60), word("gamma", 65, 95),
	}
	text, mapping := a.Reconstruct(words)

	for i, e := range mapping {
		if text[e.Start:e.End] != e.Word.Text {
			t.Errorf("entry %d: text[%d:%d] = %q, want %q", i, e.Start, e.End, text[e.Start:e.End], e.Word.Text)
		}
		if i > 0 && mapping[i-1].End >= e.Start {
			t.Errorf("entry %d start %d not after previous end %d", i, e.Start, mapping[i-1].End)
		}
	}
}

// ============================================================================
// Occurrences Tests
// ============================================================================

func TestOccurrences_Overlapping(t *testing.T) {
	got := Occurrences("abababa", "aba")
	want := []document.EntitySpan{{Start: 0, End: 3}, {Start: 2, End: 5}, {Start: 4, End: 7}}

	if len(got) != len(want) {
		t.Fatalf("got %d occurrences, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Start != want[i].Start || got[i].End != want[i].End {
			t.Errorf("occurrence %d = (%d,%d), want (%d,%d)", i, got[i].Start, got[i].End, want[i].Start, want[i].End)
		}
	}
}

func TestOccurrences_Edge(t *testing.T) {
	if got := Occurrences("hello world", ""); got != nil {
		t.Errorf("empty needle should match nowhere, got %+v", got)
	}
	if got := Occurrences("hello world", "   "); got != nil {
		t.Errorf("whitespace needle should match nowhere, got %+v", got)
	}
	if got := Occurrences("hello", "Hello"); got != nil {
		t.Errorf("matching is case-sensitive, got %+v", got)
	}
	if got := Occurrences("hello", "  hello  "); len(got) != 1 || got[0].Start != 0 {
		t.Errorf("needle should be trimmed before matching, got %+v", got)
	}
}

// ============================================================================
// MapToBoxes Tests
// ============================================================================

func TestMapToBoxes_NoOverlapReturnsNil(t *testing.T) {
	a := New(DefaultConfig())
	_, mapping := a.Reconstruct([]document.Word{word("hello", 0, 30)})

	if got := a.MapToBoxes(mapping, 100, 120); got != nil {
		t.Errorf("expected nil for non-overlapping span, got %+v", got)
	}
}

func TestMapToBoxes_SingleLine(t *testing.T) {
	a := New(DefaultConfig())
	words := []document.Word{word("John", 10, 40), word("Smith", 45, 85)}
	text, mapping := a.Reconstruct(words)

	if text != "John Smith" {
		t.Fatalf("text = %q", text)
	}
	boxes := a.MapToBoxes(mapping, 0, len(text))
	if len(boxes) != 1 {
		t.Fatalf("expected 1 line box, got %d", len(boxes))
	}
	b := boxes[0]
	if b.X0 != 10 || b.X1 != 85 {
		t.Errorf("x range = [%v,%v], want [10,85]", b.X0, b.X1)
	}
	// Padding: top +2, bottom -2.
	if b.Y0 != 102 || b.Y1 != 110 {
		t.Errorf("y range = [%v,%v], want [102,110]", b.Y0, b.Y1)
	}
}

func TestMapToBoxes_MultiLine(t *testing.T) {
	a := New(DefaultConfig())
	words := []document.Word{
		{Text: "John", X0: 400, Y0: 100, X1: 440, Y1: 112},
		{Text: "Smith", X0: 10, Y0: 120, X1: 55, Y1: 132},
	}
	_, mapping := a.Reconstruct(words)

	boxes := a.MapToBoxes(mapping, 0, 10)
	if len(boxes) != 2 {
		t.Fatalf("expected 2 line boxes, got %d", len(boxes))
	}
	if boxes[0].Y0 >= boxes[1].Y0 {
		t.Errorf("lines not ordered top to bottom: %v then %v", boxes[0].Y0, boxes[1].Y0)
	}
}

func TestMapToBoxes_HeightCap(t *testing.T) {
	cfg := DefaultConfig()
	a := New(cfg)
	words := []document.Word{{Text: "tall", X0: 0, Y0: 100, X1: 30, Y1: 300}}
	_, mapping := a.Reconstruct(words)

	boxes := a.MapToBoxes(mapping, 0, 4)
	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d", len(boxes))
	}
	if h := boxes[0].Height(); h > cfg.MaxLineHeight {
		t.Errorf("height %v exceeds cap %v", h, cfg.MaxLineHeight)
	}
}

func TestMapToBoxes_BoundaryTouchIncluded(t *testing.T) {
	a := New(DefaultConfig())
	words := []document.Word{word("ab", 0, 20), word("cd", 25, 45)}
	_, mapping := a.Reconstruct(words)
	// "ab cd": span (2,2) touches the end of "ab" (end offset 2).
	boxes := a.MapToBoxes(mapping, 2, 2)
	if len(boxes) == 0 {
		t.Error("span touching a word boundary should map to that word")
	}
}

// ============================================================================
// MergeBoxes Tests
// ============================================================================

func TestMergeBoxes(t *testing.T) {
	boxes := []document.BoundingBox{
		{X0: 10, Y0: 10, X1: 50, Y1: 20},
		{X0: 5, Y0: 30, X1: 70, Y1: 40},
	}
	composite, lines := MergeBoxes(boxes)
	want := document.BoundingBox{X0: 5, Y0: 10, X1: 70, Y1: 40}
	if composite != want {
		t.Errorf("composite = %+v, want %+v", composite, want)
	}
	if len(lines) != 2 {
		t.Errorf("lines = %d, want 2", len(lines))
	}

	if c, l := MergeBoxes(nil); c != (document.BoundingBox{}) || l != nil {
		t.Error("empty input should return zero box and nil lines")
	}
}

// ============================================================================
// MergeOverlapping Tests
// ============================================================================

func TestMergeOverlapping(t *testing.T) {
	tests := []struct {
		name string
		in   []document.EntitySpan
		want []document.EntitySpan
	}{
		{
			name: "overlap_merges_with_max_score",
			in: []document.EntitySpan{
				{Type: "PERSON", Start: 0, End: 10, Score: 0.7},
				{Type: "PERSON", Start: 8, End: 15, Score: 0.9},
			},
			want: []document.EntitySpan{{Type: "PERSON", Start: 0, End: 15, Score: 0.9}},
		},
		{
			name: "adjacent_merges",
			in: []document.EntitySpan{
				{Start: 0, End: 5, Score: 0.5},
				{Start: 5, End: 9, Score: 0.4},
			},
			want: []document.EntitySpan{{Start: 0, End: 9, Score: 0.5}},
		},
		{
			name: "disjoint_preserved_in_order",
			in: []document.EntitySpan{
				{Start: 0, End: 3, Score: 0.5},
				{Start: 10, End: 14, Score: 0.6},
			},
			want: []document.EntitySpan{
				{Start: 0, End: 3, Score: 0.5},
				{Start: 10, End: 14, Score: 0.6},
			},
		},
		{
			name: "unsorted_input",
			in: []document.EntitySpan{
				{Start: 10, End: 14, Score: 0.6},
				{Start: 0, End: 12, Score: 0.5},
			},
			want: []document.EntitySpan{{Start: 0, End: 14, Score: 0.6}},
		},
		{
			name: "contained_span",
			in: []document.EntitySpan{
				{Start: 0, End: 20, Score: 0.5},
				{Start: 5, End: 10, Score: 0.95},
			},
			want: []document.EntitySpan{{Start: 0, End: 20, Score: 0.95}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeOverlapping(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d spans, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i].Start != tt.want[i].Start || got[i].End != tt.want[i].End || got[i].Score != tt.want[i].Score {
					t.Errorf("span %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMergeOverlapping_SmallInputs(t *testing.T) {
	if got := MergeOverlapping(nil); len(got) != 0 {
		t.Errorf("nil input: got %+v", got)
	}
	one := []document.EntitySpan{{Start: 1, End: 2}}
	if got := MergeOverlapping(one); len(got) != 1 {
		t.Errorf("single input: got %+v", got)
	}
}
