package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"mpegsort/internal/relocate"
	"mpegsort/internal/sorter"
	"mpegsort/internal/textutil"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const maxLineDetail = 120

// Reporter writes sampled progress lines such as
// "[10/42] song.mp3 -> audio/song.mp3".
type Reporter struct {
	out      io.Writer
	sampler  *Sampler
	colorize bool
}

// NewReporter writes to out every interval completions. Colour is enabled when
// out is a terminal.
func NewReporter(out io.Writer, interval int) *Reporter {
	return &Reporter{out: out, sampler: NewSampler(interval), colorize: IsTerminal(out)}
}

// Observe implements sorter.Observer.
func (r *Reporter) Observe(p sorter.Progress) {
	if r == nil || r.out == nil {
		return
	}
	if !r.sampler.ShouldEmit(p.Done, p.Total) {
		return
	}
	fmt.Fprintln(r.out, r.line(p))
}

func (r *Reporter) line(p sorter.Progress) string {
	o := p.Outcome
	prefix := fmt.Sprintf("[%d/%d] %s", p.Done, p.Total, o.OriginalName)

	var body, color string
	switch {
	case o.Operation == relocate.OpError:
		body = "error: " + textutil.Truncate(o.ErrorDetail, maxLineDetail)
		color = ansiRed
	case o.Operation == relocate.OpSkippedUnknownType:
		body = "skipped (unknown type)"
		color = ansiYellow
	case o.Operation == relocate.OpSkippedAlreadySorted:
		body = "skipped (already sorted)"
		color = ansiYellow
	default:
		arrow := textutil.Ternary(o.DryRun, "=>", "->")
		body = arrow + " " + filepath.Join(filepath.Base(o.DestinationDir), o.FinalName)
		color = ansiGreen
	}

	line := prefix + " " + body
	if r.colorize {
		return color + line + ansiReset
	}
	return line
}

// IsTerminal reports whether w is a terminal file descriptor.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
