// Package align implements the text-to-geometry alignment engine: it
// reconstructs a page's flat text from positioned words, relocates entity
// substrings inside that text, and maps character offsets back onto page
// bounding boxes.
//
// # Pipeline
//
// The aligner sits between the extractor and the detectors:
//
//  1. Reconstruct flattens a page's words into a single space-joined string
//     and records a position mapping from text offsets back to word geometry.
//  2. Detectors report entity spans as offsets into that reconstructed text.
//  3. MapToBoxes converts a span back into one bounding box per visual line,
//     with configurable padding and a height cap.
//
// Occurrences and the phrase Mutator support post-hoc edits: removing
// phrases from already-detected entities splits them into remainders which
// are independently relocated and re-mapped, so one input entity may yield
// zero, one, or several output items.
//
// # Invariants
//
// Reconstruct guarantees that joining the mapped word texts with single
// spaces reproduces the full text exactly, and that mapping offsets are
// strictly increasing. Words whose text trims to nothing are excluded.
//
// All operations are pure functions over their inputs; an Aligner is safe
// for concurrent use.
package align
