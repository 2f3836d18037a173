// Package document defines the shared data model for document batch
// processing: positioned words and pages as produced by the extraction
// pipeline, detected entity spans, sensitive items carrying page geometry,
// and the per-batch result envelope.
//
// All cross-package payloads are strongly typed values defined here and
// validated once at each boundary (HTTP intake, extractor output, detector
// output). Internal layers never pass untyped maps between each other.
//
// # Coordinate Space
//
// Geometry is expressed in document coordinate space with the origin at the
// top-left of the page: x grows rightward, y grows downward. A BoundingBox
// is axis-aligned with X0 <= X1 and Y0 <= Y1.
//
// # Offsets
//
// EntitySpan offsets are rune-agnostic byte offsets into one page's
// reconstructed text (see package align). Spans never cross page boundaries.
package document
