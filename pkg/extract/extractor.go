package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"mercator-hq/callisto/pkg/document"
)

// Extractor turns a raw file payload into pages of positioned words.
// Implementations must be safe for concurrent use.
type Extractor interface {
	// Extract parses content into a validated Document.
	Extract(ctx context.Context, content []byte) (*document.Document, error)
}

// JSONExtractor parses the positioned-word interchange format produced by
// the upstream extraction pipeline.
type JSONExtractor struct{}

// NewJSONExtractor creates the interchange-format extractor.
func NewJSONExtractor() *JSONExtractor {
	return &JSONExtractor{}
}

// Extract implements Extractor. Output pages are sorted by page number and
// validated; malformed payloads and inverted geometry are rejected at this
// boundary so downstream stages can trust the document.
func (e *JSONExtractor) Extract(ctx context.Context, content []byte) (*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc document.Document
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parsing positioned-word payload: %w", err)
	}

	sort.SliceStable(doc.Pages, func(i, j int) bool {
		return doc.Pages[i].Number < doc.Pages[j].Number
	})

	if err := document.ValidateDocument(&doc); err != nil {
		return nil, fmt.Errorf("validating extracted document: %w", err)
	}
	return &doc, nil
}
