// Package cache provides a generic in-memory key-value store with
// per-entry time-to-live. Expiry is lazy: a stale entry is treated as
// absent on read and removed on the spot, so no background scheduler is
// required for correctness. An optional sweeper can reclaim entries
// that are never read again.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// entry pairs a value with its absolute expiry time.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// Store is a concurrency-safe expiring map. The zero value is not
// usable; construct with New.
type Store[K comparable, V any] struct {
	mu         sync.RWMutex
	entries    map[K]entry[V]
	defaultTTL time.Duration

	now func() time.Time // overridable in tests
}

// New creates a Store whose Set uses the given default TTL.
func New[K comparable, V any](defaultTTL time.Duration) *Store[K, V] {
	return &Store[K, V]{
		entries:    make(map[K]entry[V]),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Set stores value under key with the default TTL, unconditionally
// overwriting any existing entry.
func (s *Store[K, V]) Set(key K, value V) {
	s.SetTTL(key, value, s.defaultTTL)
}

// SetTTL stores value under key, expiring ttl from now.
func (s *Store[K, V]) SetTTL(key K, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry[V]{value: value, expiresAt: s.now().Add(ttl)}
}

// Get returns the live value for key. A key that was never set, was
// deleted, or has expired yields the zero value and false; expired
// entries are removed as a side effect.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	now := s.now()
	s.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if e.expired(now) {
		s.mu.Lock()
		// Re-check under the write lock: the entry may have been
		// refreshed between the two lock acquisitions.
		if cur, ok := s.entries[key]; ok && cur.expired(s.now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.value, true
}

// Delete removes the entry for key. Deleting an absent key is a no-op.
func (s *Store[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len returns the number of physically present entries, expired or not.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes all entries that are expired at the time each one is
// inspected. An entry whose TTL is refreshed while the sweep runs is
// left alone because expiry is re-checked under the write lock.
func (s *Store[K, V]) Sweep() int {
	s.mu.RLock()
	candidates := make([]K, 0)
	now := s.now()
	for k, e := range s.entries {
		if e.expired(now) {
			candidates = append(candidates, k)
		}
	}
	s.mu.RUnlock()

	if len(candidates) == 0 {
		return 0
	}

	removed := 0
	s.mu.Lock()
	for _, k := range candidates {
		if e, ok := s.entries[k]; ok && e.expired(s.now()) {
			delete(s.entries, k)
			removed++
		}
	}
	s.mu.Unlock()
	return removed
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
// It only reclaims memory; read and write semantics are unaffected.
func (s *Store[K, V]) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := s.Sweep(); removed > 0 {
					log.Debug().Int("removed", removed).Msg("Cache sweep reclaimed expired entries")
				}
			}
		}
	}()
}
