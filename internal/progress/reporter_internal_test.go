package progress

import (
	"bytes"
	"strings"
	"testing"

	"mpegsort/internal/relocate"
	"mpegsort/internal/sorter"
)

func TestReporterColorWrapsLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, 1)
	if r.colorize {
		t.Fatal("buffer writer should not enable colour")
	}
	r.colorize = true
	r.Observe(sorter.Progress{Done: 1, Total: 1, Outcome: relocate.Outcome{OriginalName: "x.mp3", Operation: relocate.OpError, ErrorDetail: "boom"}})
	out := buf.String()
	if !strings.HasPrefix(out, ansiRed) || !strings.Contains(out, ansiReset) {
		t.Fatalf("expected red line, got %q", out)
	}
}
