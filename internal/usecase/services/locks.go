package services

import "sync"

// keyedMutex hands out one mutex per account number so that read-modify-write
// sequences on the same account never interleave, while mutations on
// different accounts proceed independently. Entries are never evicted; the
// key space is bounded by the number of accounts this process has touched.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
