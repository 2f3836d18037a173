package document

import (
	"errors"
	"fmt"
)

// Validation errors returned at package boundaries.
var (
	ErrNoFiles      = errors.New("batch contains no files")
	ErrBadPayload   = errors.New("malformed request payload")
	ErrEmptyFile    = errors.New("file has no content")
	ErrUnnamedFile  = errors.New("file has no name")
	ErrBadGeometry  = errors.New("word has inverted geometry")
	ErrBadSpan      = errors.New("entity span outside text bounds")
	ErrBadScore     = errors.New("entity score outside [0,1]")
	ErrFileTooLarge = errors.New("file exceeds size limit")
)

// ValidateFiles checks a batch intake: at least one file, every file named
// and non-empty, and none above maxBytes (0 disables the size check).
func ValidateFiles(files []InputFile, maxBytes int64) error {
	if len(files) == 0 {
		return ErrNoFiles
	}
	for i, f := range files {
		if f.Name == "" {
			return fmt.Errorf("file %d: %w", i, ErrUnnamedFile)
		}
		if len(f.Content) == 0 {
			return fmt.Errorf("file %q: %w", f.Name, ErrEmptyFile)
		}
		if maxBytes > 0 && f.Size() > maxBytes {
			return fmt.Errorf("file %q (%d bytes): %w", f.Name, f.Size(), ErrFileTooLarge)
		}
	}
	return nil
}

// ValidateDocument checks extractor output once at the boundary: page
// numbers positive and word geometry non-inverted. Empty pages are legal.
func ValidateDocument(doc *Document) error {
	for _, p := range doc.Pages {
		if p.Number <= 0 {
			return fmt.Errorf("page number %d must be positive", p.Number)
		}
		for j, w := range p.Words {
			if w.X1 < w.X0 || w.Y1 < w.Y0 {
				return fmt.Errorf("page %d word %d %q: %w", p.Number, j, w.Text, ErrBadGeometry)
			}
		}
	}
	return nil
}

// ValidateSpans checks detector output against the reconstructed text it
// refers to: offsets within bounds, start before end, score in [0,1].
func ValidateSpans(spans []EntitySpan, textLen int) error {
	for i, s := range spans {
		if s.Start < 0 || s.End > textLen || s.Start >= s.End {
			return fmt.Errorf("span %d (%d,%d) in text of %d: %w", i, s.Start, s.End, textLen, ErrBadSpan)
		}
		if s.Score < 0 || s.Score > 1 {
			return fmt.Errorf("span %d score %v: %w", i, s.Score, ErrBadScore)
		}
	}
	return nil
}
