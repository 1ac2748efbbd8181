package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// MaxSuffixAttempts bounds the numeric suffix search for a single file.
const MaxSuffixAttempts = 10000

// ErrNoFreeName is returned when every candidate up to MaxSuffixAttempts is taken.
var ErrNoFreeName = errors.New("no free destination name")

// CandidateName returns desired for n == 0 and stem_n.ext otherwise.
func CandidateName(desired string, n int) string {
	if n <= 0 {
		return desired
	}
	ext := filepath.Ext(desired)
	stem := strings.TrimSuffix(desired, ext)
	return stem + "_" + strconv.Itoa(n) + ext
}

// ResolveName returns desired if dir/desired does not exist, otherwise the
// first stem_N.ext that does not exist at check time.
func ResolveName(dir, desired string) (string, error) {
	name, _, err := resolveFrom(dir, desired, 0, nil)
	return name, err
}

func resolveFrom(dir, desired string, start int, taken func(string) bool) (string, int, error) {
	if start < 0 {
		start = 0
	}
	for n := start; n < start+MaxSuffixAttempts; n++ {
		name := CandidateName(desired, n)
		if taken != nil && taken(name) {
			continue
		}
		exists, err := pathExists(filepath.Join(dir, name))
		if err != nil {
			return "", 0, err
		}
		if !exists {
			return name, n, nil
		}
	}
	return "", 0, fmt.Errorf("%w for %q in %s", ErrNoFreeName, desired, dir)
}

func pathExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// MoveUnique moves src into dir under desired or the first free suffixed
// variant, and returns the final name. A collision detected by the rename
// itself advances to the next suffix; any other failure leaves src in place.
func MoveUnique(src, dir, desired string) (string, error) {
	next := 0
	for attempt := 0; attempt < MaxSuffixAttempts; attempt++ {
		name, n, err := resolveFrom(dir, desired, next, nil)
		if err != nil {
			return "", err
		}
		err = RenameNoReplace(src, filepath.Join(dir, name))
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, ErrDestinationExists) {
			return "", err
		}
		next = n + 1
	}
	return "", fmt.Errorf("%w for %q in %s", ErrNoFreeName, desired, dir)
}

// Reservations plans unique names without touching the filesystem. Names it
// hands out are treated as taken for later callers, so planned moves within
// one run never collide with each other.
type Reservations struct {
	mu    sync.Mutex
	taken map[string]struct{}
}

// NewReservations returns an empty reservation set.
func NewReservations() *Reservations {
	return &Reservations{taken: make(map[string]struct{})}
}

// Reserve returns the first name in dir that neither exists nor was reserved.
func (r *Reservations) Reserve(dir, desired string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dir = filepath.Clean(dir)
	name, _, err := resolveFrom(dir, desired, 0, func(candidate string) bool {
		_, ok := r.taken[filepath.Join(dir, candidate)]
		return ok
	})
	if err != nil {
		return "", err
	}
	r.taken[filepath.Join(dir, name)] = struct{}{}
	return name, nil
}
