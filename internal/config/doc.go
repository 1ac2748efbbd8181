// Package config loads, normalizes, and validates mpegsort configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// MPEGSORT_WORKERS. The Config type centralizes every knob the sorter, journal,
// and CLI need so they are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
