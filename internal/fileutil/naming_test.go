package fileutil_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"mpegsort/internal/fileutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCandidateName(t *testing.T) {
	cases := []struct {
		desired string
		n       int
		want    string
	}{
		{"song.mp3", 0, "song.mp3"},
		{"song.mp3", 1, "song_1.mp3"},
		{"song.mp3", 12, "song_12.mp3"},
		{"noext", 2, "noext_2"},
		{"archive.tar.gz", 1, "archive.tar_1.gz"},
	}
	for _, tc := range cases {
		if got := fileutil.CandidateName(tc.desired, tc.n); got != tc.want {
			t.Fatalf("CandidateName(%q, %d) = %q, want %q", tc.desired, tc.n, got, tc.want)
		}
	}
}

func TestResolveNameUnchangedWhenFree(t *testing.T) {
	dir := t.TempDir()
	got, err := fileutil.ResolveName(dir, "song.mp3")
	if err != nil {
		t.Fatalf("ResolveName: %v", err)
	}
	if got != "song.mp3" {
		t.Fatalf("expected unchanged name, got %q", got)
	}
}

func TestResolveNameAppendsSuffix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "song.mp3"), "a")
	writeFile(t, filepath.Join(dir, "song_1.mp3"), "b")

	got, err := fileutil.ResolveName(dir, "song.mp3")
	if err != nil {
		t.Fatalf("ResolveName: %v", err)
	}
	if got != "song_2.mp3" {
		t.Fatalf("expected song_2.mp3, got %q", got)
	}
}

func TestResolveNameTreatsDirectoryAsTaken(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "clip.mp4"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := fileutil.ResolveName(dir, "clip.mp4")
	if err != nil {
		t.Fatalf("ResolveName: %v", err)
	}
	if got != "clip_1.mp4" {
		t.Fatalf("expected clip_1.mp4, got %q", got)
	}
}

func TestMoveUniqueNoClobber(t *testing.T) {
	base := t.TempDir()
	dest := filepath.Join(base, "audio")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	first := filepath.Join(base, "first.mp3")
	second := filepath.Join(base, "second.mp3")
	writeFile(t, first, "first content")
	writeFile(t, second, "second content")

	name1, err := fileutil.MoveUnique(first, dest, "song.mp3")
	if err != nil {
		t.Fatalf("MoveUnique first: %v", err)
	}
	name2, err := fileutil.MoveUnique(second, dest, "song.mp3")
	if err != nil {
		t.Fatalf("MoveUnique second: %v", err)
	}
	if name1 != "song.mp3" || name2 != "song_1.mp3" {
		t.Fatalf("unexpected names %q %q", name1, name2)
	}

	for name, want := range map[string]string{"song.mp3": "first content", "song_1.mp3": "second content"} {
		got, err := os.ReadFile(filepath.Join(dest, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(got) != want {
			t.Fatalf("%s content = %q, want %q", name, got, want)
		}
	}
	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Fatalf("expected source to be gone, got %v", err)
	}
}

func TestMoveUniqueMissingSourceLeavesDestinationUntouched(t *testing.T) {
	base := t.TempDir()
	_, err := fileutil.MoveUnique(filepath.Join(base, "gone.mp3"), base, "song.mp3")
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	if _, statErr := os.Stat(filepath.Join(base, "song.mp3")); !os.IsNotExist(statErr) {
		t.Fatalf("destination should not exist, got %v", statErr)
	}
}

func TestRenameNoReplaceRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	writeFile(t, src, "new")
	writeFile(t, dst, "old")

	err := fileutil.RenameNoReplace(src, dst)
	if !errors.Is(err, fileutil.ErrDestinationExists) {
		t.Fatalf("expected ErrDestinationExists, got %v", err)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "old" {
		t.Fatalf("destination clobbered: %q", got)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source should remain after refused rename: %v", err)
	}
}

func TestMoveUniqueConcurrentSameName(t *testing.T) {
	base := t.TempDir()
	dest := filepath.Join(base, "video")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatal(err)
	}

	const workers = 16
	sources := make([]string, workers)
	for i := range sources {
		sources[i] = filepath.Join(base, fmt.Sprintf("src-%02d.bin", i))
		writeFile(t, sources[i], sources[i])
	}

	var wg sync.WaitGroup
	names := make([]string, workers)
	errs := make([]error, workers)
	for i := range sources {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			names[i], errs[i] = fileutil.MoveUnique(sources[i], dest, "clip.mp4")
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: %v", i, err)
		}
		if seen[names[i]] {
			t.Fatalf("duplicate destination name %q", names[i])
		}
		seen[names[i]] = true
		got, err := os.ReadFile(filepath.Join(dest, names[i]))
		if err != nil {
			t.Fatalf("read %s: %v", names[i], err)
		}
		if string(got) != sources[i] {
			t.Fatalf("content of %s = %q, want %q", names[i], got, sources[i])
		}
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != workers {
		list := make([]string, 0, len(entries))
		for _, e := range entries {
			list = append(list, e.Name())
		}
		sort.Strings(list)
		t.Fatalf("expected %d files, got %v", workers, list)
	}
}

func TestReservationsSkipReservedAndExisting(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "song.mp3"), "x")

	r := fileutil.NewReservations()
	first, err := r.Reserve(dir, "song.mp3")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Reserve(dir, "song.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if first != "song_1.mp3" || second != "song_2.mp3" {
		t.Fatalf("unexpected reservations %q %q", first, second)
	}
	if _, err := os.Stat(filepath.Join(dir, first)); !os.IsNotExist(err) {
		t.Fatal("reservations must not create files")
	}
}

func TestDirLocksSerializePerDirectory(t *testing.T) {
	locks := fileutil.NewDirLocks()
	var mu sync.Mutex
	active, maxActive := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := locks.Lock("/tmp/x/../x/audio")
			defer release()
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()
			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()
	if maxActive != 1 {
		t.Fatalf("expected at most one holder, saw %d", maxActive)
	}
}
