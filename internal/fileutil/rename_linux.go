//go:build linux

package fileutil

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func renameNoReplace(src, dst string) error {
	err := unix.Renameat2(unix.AT_FDCWD, src, unix.AT_FDCWD, dst, unix.RENAME_NOREPLACE)
	if err == nil {
		return nil
	}
	// Older kernels and some filesystems (NFS, FUSE) lack RENAME_NOREPLACE.
	if errors.Is(err, unix.ENOSYS) || errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOTSUP) {
		return linkRename(src, dst)
	}
	return &os.LinkError{Op: "renameat2", Old: src, New: dst, Err: err}
}
