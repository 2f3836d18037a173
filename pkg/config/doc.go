// Package config defines the YAML configuration surface for the Callisto
// service and its loading pipeline.
//
// The loading sequence is:
//
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply CALLISTO_* environment variable overrides
//  4. Validate the final configuration
//
// A Watcher built on fsnotify supports hot reload of runtime tunables
// (memory thresholds, lock timeouts, engine selection) with debouncing;
// structural settings such as the listen address require a restart and are
// not re-applied on reload.
package config
