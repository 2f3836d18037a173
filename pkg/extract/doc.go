// Package extract defines the document extraction contract and the
// positioned-word JSON extractor.
//
// Byte-level PDF parsing and rendering live in the upstream extraction
// pipeline, outside this service. That pipeline hands over documents in a
// positioned-word interchange format:
//
//	{"pages": [{"page": 1, "words": [{"text": "John", "x0": 10, "y0": 100, "x1": 42, "y1": 112}, ...]}]}
//
// JSONExtractor parses and validates that format once at the boundary.
// Other extractors (OCR output, native text layers) register behind the
// same Extractor interface.
package extract
