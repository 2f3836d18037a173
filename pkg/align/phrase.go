package align

import (
	"log/slog"
	"strings"

	"mercator-hq/callisto/pkg/document"
)

// Mutator applies free-text phrase removal to an existing redaction
// mapping. Removing a phrase from a detected entity can drop it, trim its
// boundary tokens, or split it in two; every surviving remainder is
// relocated in the page text and re-mapped onto geometry, so one input item
// may yield zero, one, or several output items.
type Mutator struct {
	aligner *Aligner
	logger  *slog.Logger
}

// NewMutator creates a Mutator that relocates remainders with the given
// aligner.
func NewMutator(a *Aligner) *Mutator {
	return &Mutator{
		aligner: a,
		logger:  slog.Default().With("component", "align.mutator"),
	}
}

// removePhrase applies one phrase's token rules to entity text and returns
// the surviving remainders. Rules, in order:
//
//	(a) the phrase tokens equal the entity tokens: drop the entity;
//	(b) the phrase's first and last tokens equal the entity's first and
//	    last tokens: strip exactly those two boundary tokens;
//	(c) the phrase occurs as a contiguous token block inside the entity:
//	    split into the (up to two) non-empty remainders around it.
//
// A phrase that matches nothing leaves the text untouched.
func removePhrase(text, phrase string) []string {
	entityToks := strings.Fields(text)
	phraseToks := strings.Fields(phrase)
	if len(entityToks) == 0 || len(phraseToks) == 0 {
		return []string{text}
	}

	if tokensEqual(entityToks, phraseToks) {
		return nil
	}

	if len(entityToks) >= 2 &&
		entityToks[0] == phraseToks[0] &&
		entityToks[len(entityToks)-1] == phraseToks[len(phraseToks)-1] {
		middle := entityToks[1 : len(entityToks)-1]
		if len(middle) == 0 {
			return nil
		}
		return []string{strings.Join(middle, " ")}
	}

	if at := indexTokens(entityToks, phraseToks); at >= 0 {
		var out []string
		if before := entityToks[:at]; len(before) > 0 {
			out = append(out, strings.Join(before, " "))
		}
		if after := entityToks[at+len(phraseToks):]; len(after) > 0 {
			out = append(out, strings.Join(after, " "))
		}
		return out
	}

	return []string{text}
}

// Reduce applies phrases cascading over text: each phrase is applied to
// every remainder produced so far. The result is deduplicated, original
// order preserved.
func Reduce(text string, phrases []string) []string {
	current := []string{text}
	for _, phrase := range phrases {
		var next []string
		for _, t := range current {
			next = append(next, removePhrase(t, phrase)...)
		}
		current = next
		if len(current) == 0 {
			break
		}
	}
	return dedupe(current)
}

// Apply rewrites mapping against doc: every sensitive item has phrases
// removed from its text, and each surviving remainder is relocated in the
// page's reconstructed text and mapped back onto geometry. Items whose text
// is fully consumed disappear; relocated duplicates are collapsed.
func (m *Mutator) Apply(doc *document.Document, mapping *document.RedactionMapping, phrases []string) *document.RedactionMapping {
	if len(phrases) == 0 {
		return mapping
	}

	pages := make(map[int][]document.Word, len(doc.Pages))
	for _, p := range doc.Pages {
		pages[p.Number] = p.Words
	}

	out := &document.RedactionMapping{Pages: make([]document.PageRedaction, 0, len(mapping.Pages))}
	for _, pr := range mapping.Pages {
		text, pageMapping := m.aligner.Reconstruct(pages[pr.Page])

		rebuilt := make([]document.SensitiveItem, 0, len(pr.Sensitive))
		seen := make(map[spanKey]bool)

		for _, item := range pr.Sensitive {
			itemText := item.Text
			if itemText == "" && item.Start >= 0 && item.End <= len(text) && item.Start < item.End {
				itemText = text[item.Start:item.End]
			}

			remainders := Reduce(itemText, phrases)
			if len(remainders) == 1 && remainders[0] == itemText {
				key := spanKey{item.Type, item.Start, item.End}
				if !seen[key] {
					seen[key] = true
					rebuilt = append(rebuilt, item)
				}
				continue
			}

			for _, remainder := range remainders {
				for _, occ := range Occurrences(text, remainder) {
					key := spanKey{item.Type, occ.Start, occ.End}
					if seen[key] {
						continue
					}
					seen[key] = true

					located, ok := m.aligner.Locate(document.EntitySpan{
						Type:  item.Type,
						Start: occ.Start,
						End:   occ.End,
						Score: item.Score,
						Text:  remainder,
					}, pageMapping)
					if !ok {
						m.logger.Debug("remainder maps to no geometry",
							"page", pr.Page, "text_len", len(remainder))
						continue
					}
					rebuilt = append(rebuilt, located)
				}
			}
		}

		out.Pages = append(out.Pages, document.PageRedaction{Page: pr.Page, Sensitive: rebuilt})
	}
	return out
}

type spanKey struct {
	typ        string
	start, end int
}

func tokensEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// indexTokens returns the first index where needle occurs as a contiguous
// block inside haystack, or -1.
func indexTokens(haystack, needle []string) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if tokensEqual(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func dedupe(in []string) []string {
	if len(in) <= 1 {
		return in
	}
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
