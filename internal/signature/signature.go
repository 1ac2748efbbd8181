package signature

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sort"

	"mpegsort/internal/logging"
)

// HeaderSize is the number of leading bytes inspected per file.
const HeaderSize = 12

// Kind is the coarse media kind derived from file content.
type Kind int

const (
	Unknown Kind = iota
	Audio
	Video
)

func (k Kind) String() string {
	switch k {
	case Audio:
		return "audio"
	case Video:
		return "video"
	default:
		return "unknown"
	}
}

// Classification is the result of sniffing one file.
type Classification struct {
	Kind Kind
}

type magic struct {
	prefix []byte
	kind   Kind
	label  string
}

// table is ordered longest prefix first so a more specific signature always
// wins over a shorter one; ties keep declaration order.
var table = sortedTable([]magic{
	{prefix: []byte{0xFF, 0xFB}, kind: Audio, label: "mpeg-1 layer 3"},
	{prefix: []byte{0xFF, 0xF3}, kind: Audio, label: "mpeg-2 layer 3"},
	{prefix: []byte{0xFF, 0xF2}, kind: Audio, label: "mpeg-2.5 layer 3"},
	{prefix: []byte("ID3"), kind: Audio, label: "id3 tag"},
	{prefix: []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p'}, kind: Video, label: "iso base media (24 byte box)"},
	{prefix: []byte{0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p'}, kind: Video, label: "iso base media (32 byte box)"},
	{prefix: []byte("ftypMSNV"), kind: Video, label: "mpeg-4 msnv"},
	{prefix: []byte("ftypisom"), kind: Video, label: "iso base media isom"},
})

var ftypToken = []byte("ftyp")

func sortedTable(entries []magic) []magic {
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].prefix) > len(entries[j].prefix)
	})
	return entries
}

// Match classifies a header slice. Only the first HeaderSize bytes are considered.
func Match(header []byte) Kind {
	kind, _ := lookup(header)
	return kind
}

func lookup(header []byte) (Kind, string) {
	if len(header) > HeaderSize {
		header = header[:HeaderSize]
	}
	for _, m := range table {
		if bytes.HasPrefix(header, m.prefix) {
			return m.kind, m.label
		}
	}
	if len(header) >= 8 && bytes.Equal(header[4:8], ftypToken) {
		return Video, "ftyp box"
	}
	return Unknown, ""
}

// Detector sniffs files on disk.
type Detector struct {
	logger *slog.Logger
}

// NewDetector returns a detector that logs read failures to logger.
func NewDetector(logger *slog.Logger) *Detector {
	return &Detector{logger: logging.NewComponentLogger(logger, "signature")}
}

// Detect reads the file header and classifies it. It never returns an error:
// missing files, permission problems, and I/O failures all yield Unknown.
func (d *Detector) Detect(ctx context.Context, path string) Classification {
	logger := logging.NewNop()
	if d != nil {
		logger = d.logger
	}
	header, err := readHeader(path)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, logger), "signature read failed", "signature_read_failed",
			logging.String(logging.FieldFile, path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the file still exists and is readable"),
			logging.String(logging.FieldImpact, "file classified as unknown"),
		)
		return Classification{Kind: Unknown}
	}
	kind, label := lookup(header)
	if label != "" {
		logger.Debug("signature matched",
			logging.String(logging.FieldFile, path),
			logging.String(logging.FieldKind, kind.String()),
			logging.String("signature", label),
		)
	}
	return Classification{Kind: kind}
}

func readHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}
