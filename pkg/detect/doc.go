// Package detect defines the entity-detection engine contract and the
// engine registry used by the batch orchestrator.
//
// Engines are external collaborators (model-backed services such as
// Presidio, GLiNER, or Gemini) registered behind the Engine interface with
// a declared relative cost. The registry is read-only after initialization;
// engine instances are shared across requests and never mutated by this
// package.
//
// The built-in pattern engine is the one engine this module ships: a
// regexp-table detector for structured identifiers (emails, phone numbers,
// national identity numbers). It is deliberately the cheapest engine and
// serves as the floor the orchestrator degrades hybrid detection to under
// payload or contention pressure.
//
// WithTimeout bounds any engine call; a timed-out engine yields a per-file
// failure, never a batch failure.
package detect
