package storage

import "sync"

// Locks is a set of mutexes keyed by document path. It serializes writers of
// the same document within the process.
type Locks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

// NewLocks returns an empty lock set.
func NewLocks() *Locks {
	return &Locks{m: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for key and returns its release function.
func (l *Locks) Lock(key string) func() {
	l.mu.Lock()
	mu, ok := l.m[key]
	if !ok {
		mu = &sync.Mutex{}
		l.m[key] = mu
	}
	l.mu.Unlock()
	mu.Lock()
	return mu.Unlock
}
