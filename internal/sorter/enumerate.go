package sorter

import (
	"os"
	"path/filepath"
	"strings"

	"mpegsort/internal/relocate"
	"mpegsort/internal/services"
)

const stageEnumerate = "enumerate"

// candidates lists the regular, non-hidden files directly inside the layout
// root, in directory-listing order. Subdirectories, symlinks, and anything
// beneath a managed directory are left out.
func candidates(layout relocate.Layout) ([]string, error) {
	entries, err := os.ReadDir(layout.Root)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, stageEnumerate, "read source", layout.Root, err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(layout.Root, name)
		if layout.Managed(path) {
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// prepareLayout creates the managed directories. Existing directories are fine.
func prepareLayout(layout relocate.Layout, createUnknown bool) error {
	dirs := []string{layout.AudioDir, layout.VideoDir}
	if createUnknown {
		dirs = append(dirs, layout.UnknownDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return services.Wrap(services.ErrIO, "prepare", "create directory", dir, err)
		}
	}
	return nil
}
