package sorter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"mpegsort/internal/services"
)

const stageValidate = "validate"

// Mode selects how candidates are dispatched.
type Mode int

const (
	ModeParallel Mode = iota
	ModeSequential
)

func (m Mode) String() string {
	switch m {
	case ModeSequential:
		return "sequential"
	case ModeParallel:
		return "parallel"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MarshalText renders the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses a name produced by MarshalText.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode maps "sequential" or "parallel" to a Mode.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "sequential":
		return ModeSequential, nil
	case "parallel", "":
		return ModeParallel, nil
	default:
		return ModeParallel, fmt.Errorf("unknown mode %q", value)
	}
}

// Request describes one sort invocation.
type Request struct {
	SourceDir     string
	CreateUnknown bool
	// MaxWorkers caps the parallel pool. Zero means one worker per CPU.
	MaxWorkers int
	Mode       Mode
	DryRun     bool
}

// Validate checks that the source is an existing directory and the worker
// cap is usable. Failures carry services.ErrConfiguration.
func (r Request) Validate() error {
	source := strings.TrimSpace(r.SourceDir)
	if source == "" {
		return services.Wrap(services.ErrConfiguration, stageValidate, "check source", "source directory is required", nil)
	}
	info, err := os.Stat(source)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, stageValidate, "check source", fmt.Sprintf("source %q is not accessible", source), err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrConfiguration, stageValidate, "check source", fmt.Sprintf("source %q is not a directory", source), nil)
	}
	if r.MaxWorkers < 0 {
		return services.Wrap(services.ErrConfiguration, stageValidate, "check workers", fmt.Sprintf("worker count must be >= 0, got %d", r.MaxWorkers), nil)
	}
	if r.Mode != ModeSequential && r.Mode != ModeParallel {
		return services.Wrap(services.ErrConfiguration, stageValidate, "check mode", fmt.Sprintf("unsupported mode %s", r.Mode), nil)
	}
	return nil
}

// Workers reports the effective concurrency for the request.
func (r Request) Workers() int {
	if r.Mode == ModeSequential {
		return 1
	}
	if r.MaxWorkers > 0 {
		return r.MaxWorkers
	}
	return runtime.NumCPU()
}

func (r Request) absSource() (string, error) {
	abs, err := filepath.Abs(strings.TrimSpace(r.SourceDir))
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, stageValidate, "resolve source", r.SourceDir, err)
	}
	return abs, nil
}
