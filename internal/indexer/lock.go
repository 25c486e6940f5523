package indexer

import (
	"sync"
	"sync/atomic"
)

// indexLock provides non-blocking lock semantics using atomic operations.
type indexLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// tryAcquire attempts to acquire the lock without blocking.
func (l *indexLock) tryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// release releases the lock. Must only be called by the goroutine that
// successfully acquired it.
func (l *indexLock) release() {
	l.state.Store(0)
}

// fileLocks holds one try-lock per file path so concurrent indexing of
// the same file is rejected instead of interleaved, while distinct
// files index in parallel.
type fileLocks struct {
	mu    sync.Mutex
	locks map[string]*indexLock
}

func newFileLocks() *fileLocks {
	return &fileLocks{locks: make(map[string]*indexLock)}
}

func (f *fileLocks) tryAcquire(path string) bool {
	f.mu.Lock()
	l, ok := f.locks[path]
	if !ok {
		l = &indexLock{}
		f.locks[path] = l
	}
	f.mu.Unlock()
	return l.tryAcquire()
}

func (f *fileLocks) release(path string) {
	f.mu.Lock()
	l := f.locks[path]
	f.mu.Unlock()
	if l != nil {
		l.release()
	}
}
