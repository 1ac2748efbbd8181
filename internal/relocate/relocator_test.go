package relocate_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mpegsort/internal/logging"
	"mpegsort/internal/relocate"
	"mpegsort/internal/signature"
	"mpegsort/internal/testsupport"
)

func newRelocator(t *testing.T, opts relocate.Options) (*relocate.Relocator, string) {
	t.Helper()
	root := t.TempDir()
	layout := relocate.NewLayout(root)
	if !opts.DryRun {
		for _, dir := range []string{layout.AudioDir, layout.VideoDir, layout.UnknownDir} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", dir, err)
			}
		}
	}
	return relocate.New(layout, opts, logging.NewNop()), root
}

func classify(kind signature.Kind) signature.Classification {
	return signature.Classification{Kind: kind}
}

func TestRelocateCorrectsExtension(t *testing.T) {
	r, root := newRelocator(t, relocate.Options{})
	src := filepath.Join(root, "clip.mp3")
	want := testsupport.WriteSignatureFile(t, src, testsupport.FtypMP42Header)

	out := r.Relocate(context.Background(), src, classify(signature.Video))
	if !out.Success || out.Operation != relocate.OpMovedAndRenamed {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.FinalName != "clip.mp4" {
		t.Fatalf("expected clip.mp4, got %q", out.FinalName)
	}
	if out.DestinationDir != filepath.Join(root, "video") {
		t.Fatalf("unexpected destination %q", out.DestinationDir)
	}
	got, err := os.ReadFile(out.DestinationPath())
	if err != nil {
		t.Fatalf("read relocated file: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatal("content changed during relocation")
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source to be gone, stat err=%v", err)
	}
}

func TestRelocateKeepsMatchingExtension(t *testing.T) {
	tests := []struct {
		name     string
		kind     signature.Kind
		header   []byte
		wantDir  string
		wantName string
	}{
		{name: "song.mp3", kind: signature.Audio, header: testsupport.ID3Header, wantDir: "audio", wantName: "song.mp3"},
		{name: "SONG.MP3", kind: signature.Audio, header: testsupport.MPEG1Header, wantDir: "audio", wantName: "SONG.MP3"},
		{name: "movie.mp4", kind: signature.Video, header: testsupport.FtypISOMHeader, wantDir: "video", wantName: "movie.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, root := newRelocator(t, relocate.Options{})
			src := filepath.Join(root, tt.name)
			testsupport.WriteSignatureFile(t, src, tt.header)

			out := r.Relocate(context.Background(), src, classify(tt.kind))
			if !out.Success || out.Operation != relocate.OpMovedOnly {
				t.Fatalf("unexpected outcome: %+v", out)
			}
			if out.FinalName != tt.wantName {
				t.Fatalf("expected %q, got %q", tt.wantName, out.FinalName)
			}
			if filepath.Base(out.DestinationDir) != tt.wantDir {
				t.Fatalf("expected dir %q, got %q", tt.wantDir, out.DestinationDir)
			}
		})
	}
}

func TestRelocateAppendsExtensionWhenMissing(t *testing.T) {
	r, root := newRelocator(t, relocate.Options{})
	src := filepath.Join(root, "track")
	testsupport.WriteSignatureFile(t, src, testsupport.ID3Header)

	out := r.Relocate(context.Background(), src, classify(signature.Audio))
	if out.Operation != relocate.OpMovedAndRenamed || out.FinalName != "track.mp3" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestRelocateUnknownWithoutBucketIsSkipped(t *testing.T) {
	r, root := newRelocator(t, relocate.Options{})
	src := filepath.Join(root, "blob.bin")
	testsupport.WriteSignatureFile(t, src, testsupport.UnknownHeader)

	out := r.Relocate(context.Background(), src, classify(signature.Unknown))
	if !out.Success || out.Operation != relocate.OpSkippedUnknownType {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.DestinationDir != "" || out.FinalName != "" {
		t.Fatalf("skip should not carry a destination: %+v", out)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("expected file left in place: %v", err)
	}
}

func TestRelocateUnknownIntoBucketKeepsName(t *testing.T) {
	r, root := newRelocator(t, relocate.Options{CreateUnknown: true})
	src := filepath.Join(root, "blob.bin")
	testsupport.WriteSignatureFile(t, src, testsupport.UnknownHeader)

	out := r.Relocate(context.Background(), src, classify(signature.Unknown))
	if !out.Success || out.Operation != relocate.OpMovedOnly {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.DestinationPath() != filepath.Join(root, "unknown", "blob.bin") {
		t.Fatalf("unexpected destination %q", out.DestinationPath())
	}
}

func TestRelocateSkipsManagedDirectories(t *testing.T) {
	for _, dir := range []string{"audio", "video", "unknown"} {
		t.Run(dir, func(t *testing.T) {
			r, root := newRelocator(t, relocate.Options{CreateUnknown: true})
			src := filepath.Join(root, dir, "already.mp4")
			testsupport.WriteSignatureFile(t, src, testsupport.FtypMP42Header)

			out := r.Relocate(context.Background(), src, classify(signature.Video))
			if !out.Success || out.Operation != relocate.OpSkippedAlreadySorted {
				t.Fatalf("unexpected outcome: %+v", out)
			}
			if _, err := os.Stat(src); err != nil {
				t.Fatalf("expected file untouched: %v", err)
			}
		})
	}
}

func TestRelocateMissingSourceReportsError(t *testing.T) {
	r, root := newRelocator(t, relocate.Options{})
	src := filepath.Join(root, "ghost.mp3")

	out := r.Relocate(context.Background(), src, classify(signature.Audio))
	if out.Success || out.Operation != relocate.OpError {
		t.Fatalf("expected error outcome, got %+v", out)
	}
	if out.ErrorDetail == "" {
		t.Fatal("expected error detail")
	}
	if len(out.ErrorDetail) > relocate.MaxErrorDetail {
		t.Fatalf("error detail too long: %d", len(out.ErrorDetail))
	}
	if out.DestinationDir != "" || out.FinalName != "" {
		t.Fatalf("error outcome should not carry a destination: %+v", out)
	}
}

func TestRelocateMissingDestinationKeepsSource(t *testing.T) {
	root := t.TempDir()
	r := relocate.New(relocate.NewLayout(root), relocate.Options{}, logging.NewNop())
	src := filepath.Join(root, "song.mp3")
	testsupport.WriteSignatureFile(t, src, testsupport.ID3Header)

	out := r.Relocate(context.Background(), src, classify(signature.Audio))
	if out.Operation != relocate.OpError {
		t.Fatalf("expected error without audio dir, got %+v", out)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source must survive a failed move: %v", err)
	}
}

func TestRelocateNeverClobbers(t *testing.T) {
	r, root := newRelocator(t, relocate.Options{})
	existing := filepath.Join(root, "audio", "song.mp3")
	kept := testsupport.WriteSignatureFile(t, existing, testsupport.ID3Header)

	src := filepath.Join(root, "song.mp3")
	moved := testsupport.WriteSignatureFile(t, src, testsupport.MPEG1Header)

	out := r.Relocate(context.Background(), src, classify(signature.Audio))
	if !out.Success || out.FinalName != "song_1.mp3" {
		t.Fatalf("expected song_1.mp3, got %+v", out)
	}
	if out.Operation != relocate.OpMovedOnly {
		t.Fatalf("suffixing alone is not a rename, got %s", out.Operation)
	}

	gotKept, err := os.ReadFile(existing)
	if err != nil || !bytes.Equal(gotKept, kept) {
		t.Fatalf("existing file altered: err=%v", err)
	}
	gotMoved, err := os.ReadFile(out.DestinationPath())
	if err != nil || !bytes.Equal(gotMoved, moved) {
		t.Fatalf("moved file altered: err=%v", err)
	}
}

func TestRelocateDryRunLeavesFilesInPlace(t *testing.T) {
	r, root := newRelocator(t, relocate.Options{DryRun: true})
	first := filepath.Join(root, "a", "song.mp3")
	second := filepath.Join(root, "b", "song.mp3")
	testsupport.WriteSignatureFile(t, first, testsupport.ID3Header)
	testsupport.WriteSignatureFile(t, second, testsupport.ID3Header)

	out1 := r.Relocate(context.Background(), first, classify(signature.Audio))
	out2 := r.Relocate(context.Background(), second, classify(signature.Audio))

	if !out1.DryRun || !out2.DryRun {
		t.Fatal("expected dry run outcomes")
	}
	if out1.FinalName != "song.mp3" || out2.FinalName != "song_1.mp3" {
		t.Fatalf("expected distinct planned names, got %q and %q", out1.FinalName, out2.FinalName)
	}
	for _, p := range []string{first, second} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("dry run moved %s: %v", p, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "audio")); !os.IsNotExist(err) {
		t.Fatalf("dry run must not create directories, stat err=%v", err)
	}
}

func TestOperationRoundTripsByName(t *testing.T) {
	ops := []relocate.Operation{
		relocate.OpMovedOnly,
		relocate.OpMovedAndRenamed,
		relocate.OpSkippedAlreadySorted,
		relocate.OpSkippedUnknownType,
		relocate.OpError,
	}
	for _, op := range ops {
		text, err := op.MarshalText()
		if err != nil {
			t.Fatalf("marshal %d: %v", int(op), err)
		}
		var parsed relocate.Operation
		if err := parsed.UnmarshalText(text); err != nil {
			t.Fatalf("unmarshal %q: %v", text, err)
		}
		if parsed != op {
			t.Fatalf("expected %s, got %s", op, parsed)
		}
	}
	if _, err := relocate.ParseOperation("teleported"); err == nil {
		t.Fatal("expected error for unknown operation")
	}
	if !strings.HasPrefix(relocate.Operation(42).String(), "operation(") {
		t.Fatalf("unexpected fallback name %q", relocate.Operation(42).String())
	}
}

func TestLayoutBucketOf(t *testing.T) {
	layout := relocate.NewLayout("/srv/inbox")
	tests := []struct {
		dir  string
		want relocate.Bucket
	}{
		{dir: "/srv/inbox/audio", want: relocate.BucketAudio},
		{dir: "/srv/inbox/video/", want: relocate.BucketVideo},
		{dir: "/srv/inbox/unknown", want: relocate.BucketUnknown},
		{dir: "/srv/inbox", want: relocate.BucketNone},
		{dir: "", want: relocate.BucketNone},
	}
	for _, tt := range tests {
		if got := layout.BucketOf(tt.dir); got != tt.want {
			t.Fatalf("BucketOf(%q) = %s, want %s", tt.dir, got, tt.want)
		}
	}
	if !layout.Managed("/srv/inbox/audio/sub") {
		t.Fatal("expected nested path to be managed")
	}
	if layout.Managed("/srv/inbox/audiobooks") {
		t.Fatal("sibling with shared prefix must not be managed")
	}
}
