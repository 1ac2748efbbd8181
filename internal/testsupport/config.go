package testsupport

import (
	"path/filepath"
	"testing"

	"mpegsort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Journal.Path = filepath.Join(base, "state", "journal.db")
	cfgVal.Logging.Dir = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithoutJournal disables the run history database.
func WithoutJournal() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = false
	}
}

// WithWorkers sets the default worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sort.Workers = n
	}
}

// WithLogDir routes the log file into the test's temp tree.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.Dir = filepath.Join(b.baseDir, "logs")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Journal.Path))
}
