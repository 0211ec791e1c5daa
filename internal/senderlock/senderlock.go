package senderlock

import "sync"

// Map hands out one mutex per sender id so admission checks and persistence
// for the same sender never interleave, even across concurrent webhook
// deliveries. Entries are kept for the process lifetime; the map is bounded
// by the number of distinct senders.
type Map struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *Map {
	return &Map{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for a sender id and returns the matching unlock.
func (m *Map) Lock(key string) (unlock func()) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}
