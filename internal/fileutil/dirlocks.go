package fileutil

import (
	"path/filepath"
	"sync"
)

// DirLocks hands out one mutex per destination directory. Holding it around
// name resolution and the rename keeps suffix assignment deterministic when
// several workers target the same directory.
type DirLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDirLocks returns an empty lock table.
func NewDirLocks() *DirLocks {
	return &DirLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for dir and returns its release function.
func (d *DirLocks) Lock(dir string) func() {
	key := filepath.Clean(dir)

	d.mu.Lock()
	m, ok := d.locks[key]
	if !ok {
		m = &sync.Mutex{}
		d.locks[key] = m
	}
	d.mu.Unlock()

	m.Lock()
	return m.Unlock
}
