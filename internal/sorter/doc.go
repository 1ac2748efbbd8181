// Package sorter runs one pass over a source directory: it validates the
// request, enumerates candidate files, classifies and relocates each one, and
// folds the per-file outcomes into a Summary.
//
// Sequential and parallel runs share a single pipeline and differ only in the
// dispatch strategy. Outcomes flow over a channel to one aggregating
// goroutine, which is also the only caller of the optional Observer and
// Recorder collaborators.
package sorter
