package testsupport

import (
	"testing"

	"mpegsort/internal/config"
	"mpegsort/internal/journal"
)

// MustOpenJournal opens the journal described by cfg and registers cleanup.
func MustOpenJournal(t testing.TB, cfg *config.Config) *journal.Store {
	t.Helper()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
