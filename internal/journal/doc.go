// Package journal keeps a SQLite history of sort runs and the outcome of every
// file they touched. The schema is applied from embedded migrations on Open.
//
// *Store implements sorter.Recorder, so a journal can be attached to a run with
// sorter.WithRecorder.
package journal
