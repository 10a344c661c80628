package service

import (
	"sync"

	"github.com/google/uuid"
)

// clienteLocks hands out one mutex per cliente so settlements for the same
// cliente never interleave: the read-compute-write sequence is not atomic at
// the store level, and two concurrent settlements would otherwise both read
// the same puntos/sobrante and silently lose one delta. Entries are
// refcounted and removed when the last holder releases, so the map only
// holds clientes with a settlement in flight.
type clienteLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*clienteLock
}

type clienteLock struct {
	mu   sync.Mutex
	refs int
}

func newClienteLocks() *clienteLocks {
	return &clienteLocks{locks: make(map[uuid.UUID]*clienteLock)}
}

func (l *clienteLocks) lock(id uuid.UUID) {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &clienteLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

func (l *clienteLocks) unlock(id uuid.UUID) {
	l.mu.Lock()
	entry := l.locks[id]
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, id)
	}
	l.mu.Unlock()

	entry.mu.Unlock()
}
