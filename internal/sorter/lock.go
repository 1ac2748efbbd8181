package sorter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"mpegsort/internal/services"
)

// LockFileName is created inside the source directory for the duration of a
// run and removed on release. It is hidden, so enumeration never picks it up.
const LockFileName = ".mpegsort.lock"

// acquireLock takes an exclusive advisory lock on the source directory. The
// returned release func unlocks and then removes the lock file.
func acquireLock(root string) (func() error, error) {
	lockPath := filepath.Join(root, LockFileName)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "lock", "acquire lock", lockPath, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrLocked, "lock", "acquire lock", fmt.Sprintf("another mpegsort run holds %s", lockPath), nil)
	}
	release := func() error {
		if err := lock.Unlock(); err != nil {
			return services.Wrap(services.ErrIO, "lock", "release lock", lockPath, err)
		}
		if err := os.Remove(lockPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrIO, "lock", "remove lock file", lockPath, err)
		}
		return nil
	}
	return release, nil
}
