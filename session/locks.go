package session

import (
	"context"
	"sync"
)

// lockEntry holds a one-slot semaphore and the number of holders and waiters.
type lockEntry struct {
	sem  chan struct{}
	refs int
}

// locks hands out per-session exclusive locks. Entries are reference counted
// and removed once nobody holds or waits on them.
type locks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

func newLocks() *locks {
	return &locks{entries: make(map[string]*lockEntry)}
}

func (l *locks) acquire(id string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.entries[id]
	if !exists {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		l.entries[id] = entry
	}
	entry.refs++
	return entry
}

func (l *locks) release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.entries[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(l.entries, id)
	}
}

func (l *locks) lock(ctx context.Context, id string) (UnlockFunc, error) {
	entry := l.acquire(id)

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(id)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.sem
			l.release(id)
		})
	}, nil
}

func (l *locks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
