package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// Headers used by fixtures. Each is followed by zero padding when written.
var (
	ID3Header      = []byte{0x49, 0x44, 0x33, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	MPEG1Header    = []byte{0xFF, 0xFB, 0x90, 0x44, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	FtypMP42Header = []byte{0x00, 0x00, 0x00, 0x18, 0x66, 0x74, 0x79, 0x70, 0x6D, 0x70, 0x34, 0x32}
	FtypISOMHeader = []byte{0x00, 0x00, 0x00, 0x20, 0x66, 0x74, 0x79, 0x70, 0x69, 0x73, 0x6F, 0x6D}
	UnknownHeader  = []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A}
)

const fixturePadding = 100

// WriteSignatureFile writes header followed by zero padding to path and
// returns the full content written.
func WriteSignatureFile(t testing.TB, path string, header []byte) []byte {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := make([]byte, len(header)+fixturePadding)
	copy(data, header)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return data
}

// Fixture describes one file in the standard five-file set.
type Fixture struct {
	Name      string
	Header    []byte
	WantDir   string
	WantName  string
	Corrected bool
}

// StandardFixtures mirrors a typical mixed download folder: correct and
// mislabeled audio, correct and mislabeled video, and one unknown blob.
func StandardFixtures() []Fixture {
	return []Fixture{
		{Name: "video1.mp4", Header: FtypMP42Header, WantDir: "video", WantName: "video1.mp4"},
		{Name: "video2_as_audio.mp3", Header: FtypISOMHeader, WantDir: "video", WantName: "video2_as_audio.mp4", Corrected: true},
		{Name: "audio1.mp3", Header: ID3Header, WantDir: "audio", WantName: "audio1.mp3"},
		{Name: "audio2_as_video.mp4", Header: MPEG1Header, WantDir: "audio", WantName: "audio2_as_video.mp3", Corrected: true},
		{Name: "unknown.bin", Header: UnknownHeader, WantDir: "unknown", WantName: "unknown.bin"},
	}
}

// WriteFixtureSet writes StandardFixtures into dir and returns them along with
// the bytes written for each, keyed by name.
func WriteFixtureSet(t testing.TB, dir string) ([]Fixture, map[string][]byte) {
	t.Helper()

	fixtures := StandardFixtures()
	contents := make(map[string][]byte, len(fixtures))
	for _, f := range fixtures {
		contents[f.Name] = WriteSignatureFile(t, filepath.Join(dir, f.Name), f.Header)
	}
	return fixtures, contents
}
