package detect

import (
	"context"
	"regexp"

	"mercator-hq/callisto/pkg/document"
)

// Entity types produced by the pattern engine.
const (
	TypeEmail      = "EMAIL_ADDRESS"
	TypePhone      = "PHONE_NUMBER"
	TypeNationalID = "NATIONAL_ID"
)

// pattern couples one entity type with its expression and a fixed
// confidence. Regexp hits are structural matches, so confidence is high
// but below model-backed engines.
type pattern struct {
	entityType string
	re         *regexp.Regexp
	score      float64
}

var defaultPatterns = []pattern{
	{TypeEmail, regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`), 0.95},
	{TypePhone, regexp.MustCompile(`\+?\d[\d\s\-]{6,14}\d`), 0.80},
	{TypeNationalID, regexp.MustCompile(`\b\d{6}\s?\d{5}\b`), 0.85},
}

// PatternEngine is the built-in regexp-table detector. It is stateless,
// safe for concurrent use, and the cheapest engine in any configuration.
type PatternEngine struct {
	patterns []pattern
}

// NewPatternEngine creates the engine with the default pattern table.
func NewPatternEngine() *PatternEngine {
	return &PatternEngine{patterns: defaultPatterns}
}

// Name implements Engine.
func (e *PatternEngine) Name() string { return "pattern" }

// Cost implements Engine. Regexp scanning costs an order of magnitude less
// than any model-backed engine.
func (e *PatternEngine) Cost() int { return 1 }

// Detect implements Engine.
func (e *PatternEngine) Detect(ctx context.Context, text string, entityTypes []string) ([]document.EntitySpan, error) {
	wanted := make(map[string]bool, len(entityTypes))
	for _, t := range entityTypes {
		wanted[t] = true
	}

	var spans []document.EntitySpan
	for _, p := range e.patterns {
		if len(wanted) > 0 && !wanted[p.entityType] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			spans = append(spans, document.EntitySpan{
				Type:   p.entityType,
				Start:  loc[0],
				End:    loc[1],
				Score:  p.score,
				Text:   text[loc[0]:loc[1]],
				Engine: e.Name(),
			})
		}
	}
	return spans, nil
}
