// Package store implements the concurrent, in-process key-value
// repository backing a RESP server: three independent namespaces
// (flat, hash, set) sharing a key-space by string key but never
// colliding, since each operation targets one namespace explicitly.
package store

import (
	"hash/fnv"
	"sync"

	"respd/resp"
)

// shardCount is the fixed number of stripes each namespace is
// partitioned into. A key's shard is chosen by FNV-1a hashing its
// string, bounding lock contention to keys that collide into the same
// shard rather than serializing an entire namespace behind one mutex.
const shardCount = 32

type shard[V any] struct {
	mu   sync.RWMutex
	data map[string]V
}

// shardedMap generalizes pkg/attrs' mutexAttrs into a striped
// concurrent map: instead of one lock guarding the whole namespace,
// each key hashes to one of shardCount independently-locked shards.
type shardedMap[V any] struct {
	shards [shardCount]*shard[V]
}

func newShardedMap[V any]() *shardedMap[V] {
	sm := &shardedMap[V]{}
	for i := range sm.shards {
		sm.shards[i] = &shard[V]{data: make(map[string]V)}
	}
	return sm
}

func (sm *shardedMap[V]) shardFor(key string) *shard[V] {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return sm.shards[h.Sum32()%shardCount]
}

func (sm *shardedMap[V]) get(key string) (V, bool) {
	s := sm.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (sm *shardedMap[V]) set(key string, value V) {
	s := sm.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// getOrCreate materializes the shard entry for key exactly once, even
// under concurrent callers racing to create it: the fast path takes
// only a read lock, and the slow path re-checks under the write lock
// before calling create. This is the fix for the create-then-insert
// race the original backend (DashMap-based, non-atomic) carried — two
// concurrent HSets on a brand-new key could each see the key absent,
// both insert an empty inner map, and one write would shadow the
// other's field.
func (sm *shardedMap[V]) getOrCreate(key string, create func() V) V {
	s := sm.shardFor(key)

	s.mu.RLock()
	v, ok := s.data[key]
	s.mu.RUnlock()
	if ok {
		return v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.data[key]; ok {
		return v
	}
	v = create()
	s.data[key] = v
	return v
}

// hashBucket is the inner field->value mapping for one hash key. It
// carries its own lock so HSet/HGetAll on different keys in the same
// shard never block each other, and so HGetAll's snapshot copy never
// blocks a concurrent HSet on an unrelated field for longer than the
// copy itself takes.
type hashBucket struct {
	mu     sync.RWMutex
	fields map[string]resp.Frame
}

// setBucket is the ordered-unique member list for one set key. members
// preserves first-insertion order; index gives O(1) membership tests
// and duplicate rejection. Both are guarded by the same lock so sadd's
// read-then-maybe-append is atomic per key.
type setBucket struct {
	mu      sync.Mutex
	members []string
	index   map[string]struct{}
}

// Store is the shared, thread-safe repository of flat keys, hash
// keys, and set keys. Entries are created on first write and persist
// for the process lifetime; there is no delete operation.
type Store struct {
	flat *shardedMap[resp.Frame]
	hash *shardedMap[*hashBucket]
	sets *shardedMap[*setBucket]
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		flat: newShardedMap[resp.Frame](),
		hash: newShardedMap[*hashBucket](),
		sets: newShardedMap[*setBucket](),
	}
}

// Get returns the flat value bound to key, if any. Non-blocking read.
func (s *Store) Get(key string) (resp.Frame, bool) {
	return s.flat.get(key)
}

// Set atomically replaces the flat value bound to key.
func (s *Store) Set(key string, value resp.Frame) {
	s.flat.set(key, value)
}

// HGet returns the value bound to field within hash key, if either is
// absent it reports false. Non-blocking read.
func (s *Store) HGet(key, field string) (resp.Frame, bool) {
	bucket, ok := s.hash.get(key)
	if !ok {
		return nil, false
	}
	bucket.mu.RLock()
	defer bucket.mu.RUnlock()
	v, ok := bucket.fields[field]
	return v, ok
}

// HSet binds field to value within hash key, materializing key's inner
// mapping atomically if this is the first write to it.
func (s *Store) HSet(key, field string, value resp.Frame) {
	bucket := s.hash.getOrCreate(key, func() *hashBucket {
		return &hashBucket{fields: make(map[string]resp.Frame)}
	})
	bucket.mu.Lock()
	defer bucket.mu.Unlock()
	bucket.fields[field] = value
}

// HGetAll returns a point-in-time copy of key's field->value pairs, or
// false if key has no hash entry. The copy lets the caller encode the
// reply without holding any Store lock.
func (s *Store) HGetAll(key string) (map[string]resp.Frame, bool) {
	bucket, ok := s.hash.get(key)
	if !ok {
		return nil, false
	}
	bucket.mu.RLock()
	defer bucket.mu.RUnlock()
	out := make(map[string]resp.Frame, len(bucket.fields))
	for k, v := range bucket.fields {
		out[k] = v
	}
	return out, true
}

// SAdd appends each member of members not already present in key's set,
// preserving first-insertion order, and returns the count actually
// added. Concurrent SAdds of the same member on the same key never
// double-add: the second caller observes 0 for that member.
func (s *Store) SAdd(key string, members []string) int {
	bucket := s.sets.getOrCreate(key, func() *setBucket {
		return &setBucket{index: make(map[string]struct{})}
	})
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	added := 0
	for _, m := range members {
		if _, exists := bucket.index[m]; exists {
			continue
		}
		bucket.index[m] = struct{}{}
		bucket.members = append(bucket.members, m)
		added++
	}
	return added
}

// SIsMember reports whether member belongs to key's set. Non-blocking
// with respect to readers of other keys; serialized with concurrent
// SAdd/SIsMember on the same key.
func (s *Store) SIsMember(key, member string) bool {
	bucket, ok := s.sets.get(key)
	if !ok {
		return false
	}
	bucket.mu.Lock()
	defer bucket.mu.Unlock()
	_, exists := bucket.index[member]
	return exists
}
