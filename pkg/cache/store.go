package cache

import (
	"sync"
	"time"
)

// entryStore is the capacity-bounded keyed collection of cache
// entries. A single RWMutex lets lookups and metrics reads run fully
// in parallel while writes (insert, eviction, feedback, usage
// increments) are serialized; similarity sweeps copy their candidates
// out under the read lock so no caller ever iterates the store
// mid-mutation.
type entryStore struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func newEntryStore(ttl time.Duration, now func() time.Time) *entryStore {
	return &entryStore{
		entries: make(map[string]*CacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

// valid is the validity predicate: age strictly below TTL. Expired
// entries are not deleted here; only eviction removes them.
func (s *entryStore) valid(e *CacheEntry, now time.Time) bool {
	return now.Sub(e.CreatedAt) < s.ttl
}

// get returns a copy of the valid entry for key, or nil.
func (s *entryStore) get(key string) *CacheEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || !s.valid(e, s.now()) {
		return nil
	}
	return e.clone()
}

// getAndTouch increments the usage count of a valid entry and returns
// a copy reflecting the increment. The increment happens under the
// write lock so it is atomic with respect to scans and eviction.
func (s *entryStore) getAndTouch(key string) *CacheEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !s.valid(e, s.now()) {
		return nil
	}
	e.UsageCount++
	return e.clone()
}

// put inserts or overwrites the entry under key.
func (s *entryStore) put(key string, e *CacheEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = e
}

// scan returns copies of all valid entries matching pred. The
// snapshot is taken under the read lock; similarity scoring happens
// on the copies, outside any lock.
func (s *entryStore) scan(pred func(*CacheEntry) bool) []*CacheEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	var out []*CacheEntry
	for _, e := range s.entries {
		if s.valid(e, now) && pred(e) {
			out = append(out, e.clone())
		}
	}
	return out
}

// snapshot returns copies of every entry, expired ones included, for
// eviction scoring.
func (s *entryStore) snapshot() []*CacheEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*CacheEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.clone())
	}
	return out
}

func (s *entryStore) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// evictBatch removes the given keys and reports how many were present.
func (s *entryStore) evictBatch(keys []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, k := range keys {
		if _, ok := s.entries[k]; ok {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// applyFeedback records feedback against a valid entry: positive
// increments the usage count, negative decrements it with a floor of
// 1. Returns false when the key is missing or expired (callers treat
// that as a silent no-op).
func (s *entryStore) applyFeedback(key string, fb Feedback) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !s.valid(e, s.now()) {
		return false
	}
	e.Feedback = fb
	switch fb {
	case FeedbackPositive:
		e.UsageCount++
	case FeedbackNegative:
		if e.UsageCount > 1 {
			e.UsageCount--
		}
	}
	return true
}

func (s *entryStore) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*CacheEntry)
}
