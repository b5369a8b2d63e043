// Package shardmap implements a concurrency-safe string-keyed map split
// across a fixed number of mutex-guarded shards, so unrelated keys never
// contend on the same lock. It backs both the game Registry and the
// per-identity rate limiter.
package shardmap

import (
	"hash/fnv"
	"sync"
)

const defaultShardCount = 32

// Map is a sharded concurrent map from string to V.
type Map[V any] struct {
	shards []*shard[V]
}

type shard[V any] struct {
	mu    sync.Mutex
	items map[string]V
}

// New constructs a Map with the default shard count.
func New[V any]() *Map[V] {
	m := &Map[V]{shards: make([]*shard[V], defaultShardCount)}
	for i := range m.shards {
		m.shards[i] = &shard[V]{items: make(map[string]V)}
	}
	return m
}

func (m *Map[V]) shardFor(key string) *shard[V] {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return m.shards[h.Sum32()%uint32(len(m.shards))]
}

// Get returns the value for key and whether it was present.
func (m *Map[V]) Get(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok
}

// Set inserts or overwrites the value for key.
func (m *Map[V]) Set(key string, v V) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = v
}

// SetIfAbsent inserts v for key only if key is not already present. It
// reports whether the insert happened.
func (m *Map[V]) SetIfAbsent(key string, v V) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		return false
	}
	s.items[key] = v
	return true
}

// Delete removes key, if present.
func (m *Map[V]) Delete(key string) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// GetOrCreate returns the existing value for key, or atomically installs
// and returns the value produced by create if none existed yet.
func (m *Map[V]) GetOrCreate(key string, create func() V) V {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.items[key]; ok {
		return v
	}
	v := create()
	s.items[key] = v
	return v
}

// Update looks up key and replaces its value with fn's result under the
// shard lock, keeping the caller's critical section (e.g. token-bucket
// refill-then-consume) short.
func (m *Map[V]) Update(key string, fn func(v V, ok bool) V) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	s.items[key] = fn(v, ok)
}

// Keys returns a snapshot of all keys currently stored. The snapshot may be
// stale by the time the caller uses it; callers (e.g. the Reaper) must
// tolerate concurrent insertion and removal.
func (m *Map[V]) Keys() []string {
	var keys []string
	for _, s := range m.shards {
		s.mu.Lock()
		for k := range s.items {
			keys = append(keys, k)
		}
		s.mu.Unlock()
	}
	return keys
}

// Len returns the total number of entries across all shards.
func (m *Map[V]) Len() int {
	total := 0
	for _, s := range m.shards {
		s.mu.Lock()
		total += len(s.items)
		s.mu.Unlock()
	}
	return total
}
