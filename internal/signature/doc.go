// Package signature classifies files by their leading bytes instead of their
// names.
//
// Detect reads at most HeaderSize bytes and matches them against a fixed table
// of MPEG audio and ISO base media prefixes. Read failures degrade to Unknown
// and are logged; the function keeps no shared state and is safe to call from
// many goroutines on independent files.
package signature
