package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mpegsort/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	Development bool
	// Stderr replaces os.Stderr for the "stderr" output path.
	Stderr io.Writer
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	outputWriter, err := openWriters(defaultSlice(opts.OutputPaths, []string{"stderr"}), opts.Stderr)
	if err != nil {
		return nil, err
	}

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(outputWriter, levelVar, addSource)
	case "console":
		handler = newPrettyHandler(outputWriter, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	return slog.New(handler), nil
}

// NewFromConfig creates a logger using application config defaults. Console
// output always goes to stderr so stdout stays reserved for summaries and JSON.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	return New(OptionsFromConfig(cfg))
}

// OptionsFromConfig maps the logging section onto Options. A configured log
// directory adds mpegsort.log alongside stderr.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{Level: "info", Format: "console", OutputPaths: []string{"stderr"}}
	}
	outputPaths := []string{"stderr"}
	if dir := strings.TrimSpace(cfg.Logging.Dir); dir != "" {
		outputPaths = append(outputPaths, filepath.Join(dir, "mpegsort.log"))
	}
	return Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputPaths,
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		cp := make([]string, len(fallback))
		copy(cp, fallback)
		return cp
	}
	cp := make([]string, len(value))
	copy(cp, value)
	return cp
}

func openWriters(paths []string, stderr io.Writer) (io.Writer, error) {
	if stderr == nil {
		stderr = os.Stderr
	}
	seen := map[string]struct{}{}
	var writers []io.Writer

	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, stderr)
		default:
			if err := ensureLogDir(trimmed); err != nil {
				return nil, err
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			writers = append(writers, file)
		}
	}

	switch len(writers) {
	case 0:
		return stderr, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Key = "level"
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.MessageKey:
				attr.Key = "msg"
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	}
	return slog.NewJSONHandler(w, &opts)
}
