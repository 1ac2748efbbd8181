package relocate

import (
	"path/filepath"
	"strings"
)

const (
	AudioDirName   = "audio"
	VideoDirName   = "video"
	UnknownDirName = "unknown"
)

// Bucket names the managed subdirectory an outcome landed in.
type Bucket int

const (
	BucketNone Bucket = iota
	BucketAudio
	BucketVideo
	BucketUnknown
)

func (b Bucket) String() string {
	switch b {
	case BucketAudio:
		return AudioDirName
	case BucketVideo:
		return VideoDirName
	case BucketUnknown:
		return UnknownDirName
	default:
		return "none"
	}
}

// Layout is the set of managed directories under one source directory.
type Layout struct {
	Root       string
	AudioDir   string
	VideoDir   string
	UnknownDir string
}

// NewLayout derives the managed directories for root.
func NewLayout(root string) Layout {
	root = filepath.Clean(root)
	return Layout{
		Root:       root,
		AudioDir:   filepath.Join(root, AudioDirName),
		VideoDir:   filepath.Join(root, VideoDirName),
		UnknownDir: filepath.Join(root, UnknownDirName),
	}
}

// Managed reports whether path is one of the managed directories or lies beneath one.
func (l Layout) Managed(path string) bool {
	path = filepath.Clean(path)
	for _, dir := range []string{l.AudioDir, l.VideoDir, l.UnknownDir} {
		if isUnder(path, dir) {
			return true
		}
	}
	return false
}

// BucketOf maps a destination directory back to its bucket.
func (l Layout) BucketOf(dir string) Bucket {
	if dir == "" {
		return BucketNone
	}
	switch filepath.Clean(dir) {
	case l.AudioDir:
		return BucketAudio
	case l.VideoDir:
		return BucketVideo
	case l.UnknownDir:
		return BucketUnknown
	default:
		return BucketNone
	}
}

func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	return strings.HasPrefix(path, base+string(filepath.Separator))
}

func joinPath(dir, name string) string {
	return filepath.Join(dir, name)
}
