package services

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

// KeyedLimiter is the per-session mutual-exclusion boundary: at most one
// state transition in flight per key. Acquisition never blocks; a contended
// key fails fast so the handler can answer Busy.
type KeyedLimiter struct {
	mu   sync.Mutex
	sems map[string]*limiterEntry
}

type limiterEntry struct {
	sem  *semaphore.Weighted
	refs int
}

func NewKeyedLimiter() *KeyedLimiter {
	return &KeyedLimiter{sems: map[string]*limiterEntry{}}
}

func (l *KeyedLimiter) TryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.sems[key]
	if e == nil {
		e = &limiterEntry{sem: semaphore.NewWeighted(1)}
		l.sems[key] = e
	}
	if !e.sem.TryAcquire(1) {
		return false
	}
	e.refs++
	return true
}

func (l *KeyedLimiter) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.sems[key]
	if e == nil {
		return
	}
	e.sem.Release(1)
	e.refs--
	if e.refs <= 0 {
		delete(l.sems, key)
	}
}
