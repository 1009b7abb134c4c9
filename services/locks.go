package services

import "sync"

// ContentLocks serializes work per content identity without a global lock.
type ContentLocks struct {
	mu    sync.Mutex
	locks map[string]*contentLock
}

type contentLock struct {
	mu   sync.Mutex
	refs int
}

func NewContentLocks() *ContentLocks {
	return &ContentLocks{locks: make(map[string]*contentLock)}
}

// Lock acquires key and returns its release func.
func (k *ContentLocks) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &contentLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
