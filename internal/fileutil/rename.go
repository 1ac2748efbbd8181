package fileutil

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// ErrDestinationExists reports that a no-replace rename found its target taken.
var ErrDestinationExists = errors.New("destination already exists")

// CrossDeviceError reports a rename that failed because source and destination
// live on different filesystems. Files are never copied across devices.
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("cross-device move %q -> %q: source and destination must share a filesystem: %v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice reports whether err is a CrossDeviceError.
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// Swappable for tests that need to simulate kernel failures.
var renameNoReplaceFunc = renameNoReplace

// RenameNoReplace atomically renames src to dst, failing with
// ErrDestinationExists instead of overwriting an existing dst.
func RenameNoReplace(src, dst string) error {
	err := renameNoReplaceFunc(src, dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrExist):
		return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	case errors.Is(err, syscall.EXDEV):
		return &CrossDeviceError{Src: src, Dst: dst, Err: err}
	default:
		return err
	}
}

// linkRename emulates a no-replace rename with link(2) + unlink(2). link fails
// with EEXIST atomically when dst is taken.
func linkRename(src, dst string) error {
	if err := os.Link(src, dst); err != nil {
		if errors.Is(err, os.ErrExist) || errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.EXDEV) {
			return err
		}
		// Filesystem without hard links: check then rename. Callers hold the
		// destination directory lock, so only foreign processes can race here.
		return checkedRename(src, dst)
	}
	if err := os.Remove(src); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}

func checkedRename(src, dst string) error {
	exists, err := pathExists(dst)
	if err != nil {
		return err
	}
	if exists {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: os.ErrExist}
	}
	return os.Rename(src, dst)
}
