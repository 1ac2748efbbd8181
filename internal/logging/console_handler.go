package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&kvs, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.groups, attr)
		return true
	})

	var component string
	filtered := kvs[:0]
	for _, kv := range kvs {
		if kv.key == FieldComponent {
			if component == "" {
				component = attrString(kv.value)
			}
			continue
		}
		filtered = append(filtered, kv)
	}
	kvs = filtered

	var buf bytes.Buffer
	buf.Grow(128 + len(kvs)*24)

	buf.WriteString(formatTimestamp(timestamp))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	buf.WriteByte(' ')

	if component != "" {
		buf.WriteString(component)
		buf.WriteString(": ")
	}

	if msg := strings.TrimSpace(record.Message); msg != "" {
		buf.WriteString(msg)
	} else {
		buf.WriteString("(no message)")
	}

	if h.addSource {
		if src := record.Source(); src != nil {
			buf.WriteString(" [")
			buf.WriteString(filepath.Base(src.File))
			buf.WriteByte(':')
			buf.WriteString(strconv.Itoa(src.Line))
			buf.WriteByte(']')
		}
	}

	for _, kv := range kvs {
		if kv.key == "" {
			continue
		}
		buf.WriteByte(' ')
		buf.WriteString(kv.key)
		buf.WriteByte('=')
		buf.WriteString(formatValue(kv.value))
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

// clone shares the mutex so derived handlers never interleave writes.
func (h *prettyHandler) clone() *prettyHandler {
	clone := &prettyHandler{
		mu:        h.mu,
		writer:    h.writer,
		level:     h.level,
		addSource: h.addSource,
	}
	if len(h.attrs) > 0 {
		clone.attrs = make([]slog.Attr, len(h.attrs))
		copy(clone.attrs, h.attrs)
	}
	if len(h.groups) > 0 {
		clone.groups = make([]string, len(h.groups))
		copy(clone.groups, h.groups)
	}
	return clone
}

type kv struct {
	key   string
	value slog.Value
}

func flattenAttrs(dst *[]kv, prefix []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		flattenAttr(dst, prefix, attr)
	}
}

func flattenAttr(dst *[]kv, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	switch attr.Value.Kind() {
	case slog.KindGroup:
		nextPrefix := prefix
		if attr.Key != "" {
			nextPrefix = appendPrefix(prefix, attr.Key)
		}
		flattenAttrs(dst, nextPrefix, attr.Value.Group())
	default:
		key := attr.Key
		if len(prefix) > 0 {
			if key != "" {
				key = strings.Join(append(appendPrefix(nil, prefix...), key), ".")
			} else {
				key = strings.Join(prefix, ".")
			}
		}
		*dst = append(*dst, kv{key: key, value: attr.Value})
	}
}

func appendPrefix(prefix []string, values ...string) []string {
	out := make([]string, len(prefix), len(prefix)+len(values))
	copy(out, prefix)
	return append(out, values...)
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
