// Package lock provides per-key locking so that read-modify-write
// cycles on a single user's state never interleave. Operations on
// different keys proceed independently.
package lock

import "sync"

// KeyLock hands out one mutex per key on demand. Mutexes are never
// reclaimed; the key space (active users) is small and bounded in
// practice.
type KeyLock[K comparable] struct {
	locks sync.Map // map[K]*sync.Mutex
}

// NewKeyLock creates a new KeyLock instance.
func NewKeyLock[K comparable]() *KeyLock[K] {
	return &KeyLock[K]{}
}

// get retrieves or creates the mutex for key.
func (kl *KeyLock[K]) get(key K) *sync.Mutex {
	if v, ok := kl.locks.Load(key); ok {
		return v.(*sync.Mutex)
	}
	// LoadOrStore resolves the race when two goroutines create the
	// mutex for the same key at once.
	v, _ := kl.locks.LoadOrStore(key, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Lock acquires the lock for key, blocking until it is available.
func (kl *KeyLock[K]) Lock(key K) {
	kl.get(key).Lock()
}

// Unlock releases the lock for key. It must only be called by the
// holder of the lock.
func (kl *KeyLock[K]) Unlock(key K) {
	kl.get(key).Unlock()
}

// TryLock attempts to acquire the lock for key without blocking.
func (kl *KeyLock[K]) TryLock(key K) bool {
	return kl.get(key).TryLock()
}

// WithLock runs fn while holding the lock for key. The lock is not
// reentrant: fn must not lock the same key again.
func (kl *KeyLock[K]) WithLock(key K, fn func() error) error {
	kl.Lock(key)
	defer kl.Unlock(key)
	return fn()
}
