package align

import (
	"testing"

	"mercator-hq/callisto/pkg/document"
)

// ============================================================================
// removePhrase / Reduce Tests
// ============================================================================

func TestRemovePhrase(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		phrase string
		want   []string
	}{
		{"full_match_drops", "John Smith", "John Smith", nil},
		{"boundary_tokens_stripped", "John Michael Smith", "John Smith", []string{"Michael"}},
		{"boundary_tokens_nothing_left", "John Smith", "John and Smith", nil},
		{"inside_split_two", "Dr John Smith MD", "John Smith", []string{"Dr", "MD"}},
		{"prefix_only", "John Smith lives", "John Smith", []string{"lives"}},
		{"suffix_only", "Mr John Smith", "John Smith", []string{"Mr"}},
		{"no_match_unchanged", "John Smith", "Jane Doe", []string{"John Smith"}},
		{"partial_token_no_match", "Johnson Smith", "John", []string{"Johnson Smith"}},
		{"empty_phrase_unchanged", "John Smith", "  ", []string{"John Smith"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := removePhrase(tt.text, tt.phrase)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("remainder %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReduce_Cascading(t *testing.T) {
	// First phrase splits, second phrase consumes one of the remainders.
	got := Reduce("Dr John Smith MD", []string{"John Smith", "MD"})
	if len(got) != 1 || got[0] != "Dr" {
		t.Errorf("got %v, want [Dr]", got)
	}
}

func TestReduce_Dedupe(t *testing.T) {
	got := Reduce("a b a", []string{"b"})
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("got %v, want single [a]", got)
	}
}

func TestReduce_NoPhrases(t *testing.T) {
	got := Reduce("John Smith", nil)
	if len(got) != 1 || got[0] != "John Smith" {
		t.Errorf("got %v", got)
	}
}

// ============================================================================
// Mutator.Apply Tests
// ============================================================================

func pageDoc() (*document.Document, *Aligner) {
	// "Dr John Smith MD" on one line.
	doc := &document.Document{Pages: []document.Page{{
		Number: 1,
		Words: []document.Word{
			{Text: "Dr", X0: 0, Y0: 100, X1: 18, Y1: 112},
			{Text: "John", X0: 22, Y0: 100, X1: 55, Y1: 112},
			{Text: "Smith", X0: 60, Y0: 100, X1: 100, Y1: 112},
			{Text: "MD", X0: 105, Y0: 100, X1: 125, Y1: 112},
		},
	}}}
	return doc, New(DefaultConfig())
}

func TestMutatorApply_FullMatchRemovesEntity(t *testing.T) {
	doc, a := pageDoc()
	m := NewMutator(a)

	mapping := &document.RedactionMapping{Pages: []document.PageRedaction{{
		Page: 1,
		Sensitive: []document.SensitiveItem{
			{Type: "PERSON", Start: 3, End: 13, Score: 0.9, Text: "John Smith"},
		},
	}}}

	out := m.Apply(doc, mapping, []string{"John Smith"})
	if n := out.ItemCount(); n != 0 {
		t.Errorf("expected 0 items after full-match removal, got %d", n)
	}
}

func TestMutatorApply_InsideSplitYieldsTwo(t *testing.T) {
	doc, a := pageDoc()
	m := NewMutator(a)

	mapping := &document.RedactionMapping{Pages: []document.PageRedaction{{
		Page: 1,
		Sensitive: []document.SensitiveItem{
			{Type: "PERSON", Start: 0, End: 16, Score: 0.8, Text: "Dr John Smith MD"},
		},
	}}}

	out := m.Apply(doc, mapping, []string{"John Smith"})
	items := out.Pages[0].Sensitive
	if len(items) != 2 {
		t.Fatalf("expected 2 remainder items, got %d: %+v", len(items), items)
	}
	texts := map[string]bool{}
	for _, it := range items {
		texts[it.Text] = true
		if it.Score != 0.8 {
			t.Errorf("remainder should keep parent score, got %v", it.Score)
		}
		if len(it.Boxes) == 0 {
			t.Error("remainder has no geometry")
		}
	}
	if !texts["Dr"] || !texts["MD"] {
		t.Errorf("remainder texts = %v, want Dr and MD", texts)
	}
}

func TestMutatorApply_UntouchedItemPreserved(t *testing.T) {
	doc, a := pageDoc()
	m := NewMutator(a)

	orig := document.SensitiveItem{Type: "PERSON", Start: 3, End: 13, Score: 0.9, Text: "John Smith"}
	mapping := &document.RedactionMapping{Pages: []document.PageRedaction{{
		Page:      1,
		Sensitive: []document.SensitiveItem{orig},
	}}}

	out := m.Apply(doc, mapping, []string{"Jane Doe"})
	items := out.Pages[0].Sensitive
	if len(items) != 1 {
		t.Fatalf("expected item preserved, got %d", len(items))
	}
	if items[0].Start != orig.Start || items[0].End != orig.End {
		t.Errorf("item offsets changed: %+v", items[0])
	}
}

func TestMutatorApply_NoPhrasesIsIdentity(t *testing.T) {
	doc, a := pageDoc()
	m := NewMutator(a)

	mapping := &document.RedactionMapping{Pages: []document.PageRedaction{{Page: 1}}}
	if out := m.Apply(doc, mapping, nil); out != mapping {
		t.Error("no phrases should return the input mapping unchanged")
	}
}
