// Package main hosts the mpegsort CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, builds the logger, and hands
// sort requests to the internal sorter. Run history is read back from the
// journal for the history command. Keep this package thin: behaviour belongs
// in the internal packages and is only surfaced here as commands and flags.
package main
