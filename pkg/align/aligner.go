package align

import (
	"log/slog"
	"strings"

	"mercator-hq/callisto/pkg/document"
)

// MappingEntry ties one reconstructed-text range [Start, End) back to the
// word whose text occupies it.
type MappingEntry struct {
	Word  document.Word
	Start int
	End   int
}

// Mapping is the ordered position index produced by Reconstruct. Offsets
// are strictly increasing: entry i ends before entry i+1 starts (the gap is
// the joining space).
type Mapping []MappingEntry

// Config tunes geometry mapping. The zero value is not usable; call
// DefaultConfig.
type Config struct {
	// PadTop is added to a word's top edge before line grouping.
	// Default: 2.
	PadTop float64 `yaml:"pad_top"`

	// PadBottom is added to a word's bottom edge before line grouping.
	// Default: -2.
	PadBottom float64 `yaml:"pad_bottom"`

	// MaxLineHeight caps the height of each returned line box. Boxes
	// taller than this are truncated at the bottom.
	// Default: 40.
	MaxLineHeight float64 `yaml:"max_line_height"`
}

// DefaultConfig returns the mapping defaults used across the service.
func DefaultConfig() Config {
	return Config{
		PadTop:        2,
		PadBottom:     -2,
		MaxLineHeight: 40,
	}
}

// Aligner reconstructs page text and maps offsets to geometry. It holds no
// per-request state and is safe for concurrent use.
type Aligner struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Aligner. A zero MaxLineHeight falls back to the default.
func New(cfg Config) *Aligner {
	if cfg.MaxLineHeight <= 0 {
		cfg.MaxLineHeight = DefaultConfig().MaxLineHeight
	}
	return &Aligner{
		cfg:    cfg,
		logger: slog.Default().With("component", "align"),
	}
}

// Reconstruct flattens words into a single space-joined string and records
// the position of every surviving word. Words whose text trims to nothing
// are dropped; the surviving texts, re-joined with single spaces, equal the
// returned string exactly.
func (a *Aligner) Reconstruct(words []document.Word) (string, Mapping) {
	var b strings.Builder
	mapping := make(Mapping, 0, len(words))

	for _, w := range words {
		if w.Empty() {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		start := b.Len()
		b.WriteString(w.Text)
		mapping = append(mapping, MappingEntry{Word: w, Start: start, End: b.Len()})
	}

	return b.String(), mapping
}

// Occurrences returns the start/end offsets of every occurrence of needle
// in text, including overlapping ones. The needle is trimmed first; a
// needle that trims to nothing matches nowhere. Matching is case-sensitive.
func Occurrences(text, needle string) []document.EntitySpan {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return nil
	}

	var spans []document.EntitySpan
	for from := 0; ; {
		idx := strings.Index(text[from:], needle)
		if idx < 0 {
			break
		}
		start := from + idx
		spans = append(spans, document.EntitySpan{Start: start, End: start + len(needle)})
		from = start + 1
	}
	return spans
}
