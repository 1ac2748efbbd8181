// Package logging assembles structured slog loggers and formatting helpers used
// across mpegsort.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so sorter code can automatically
// tag log lines with the run identifier and stage. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape and routing as the rest of the tool.
package logging
