// Package services defines shared utilities consumed by the sorter, the
// journal, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is (configuration vs lock contention vs I/O).
//
// Use these helpers when wiring new components so error handling and
// observability stay uniform across the tool.
package services
