package shellexec

import (
	"sort"
	"sync"
)

// PathLocks provides per-path mutual exclusion for concurrently executing
// tasks that declare overlapping target files. Each path gets its own
// mutex, so tasks writing disjoint files never contend.
type PathLocks struct {
	mu    sync.Mutex             // Guards the locks map itself
	locks map[string]*sync.Mutex // Per-path mutexes
}

// NewPathLocks creates an empty lock manager.
func NewPathLocks() *PathLocks {
	return &PathLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the mutex for one path, creating it on first use.
func (p *PathLocks) Lock(path string) {
	p.mu.Lock()
	pathLock, exists := p.locks[path]
	if !exists {
		pathLock = &sync.Mutex{}
		p.locks[path] = pathLock
	}
	p.mu.Unlock()

	// Acquired outside the manager lock to avoid contention
	pathLock.Lock()
}

// Unlock releases the mutex for one path.
func (p *PathLocks) Unlock(path string) {
	p.mu.Lock()
	pathLock, exists := p.locks[path]
	p.mu.Unlock()

	if exists {
		pathLock.Unlock()
	}
}

// LockAll acquires locks for all given paths in lexicographic order.
// Sorting before acquiring prevents deadlocks between tasks whose target
// sets overlap in different orders.
func (p *PathLocks) LockAll(paths []string) {
	if len(paths) == 0 {
		return
	}

	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	for _, path := range sorted {
		p.Lock(path)
	}
}

// UnlockAll releases locks for all given paths, in reverse sorted order
// for symmetry with LockAll.
func (p *PathLocks) UnlockAll(paths []string) {
	if len(paths) == 0 {
		return
	}

	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	for i := len(sorted) - 1; i >= 0; i-- {
		p.Unlock(sorted[i])
	}
}
