package storage

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// shard is a thread-safe slice of the keyspace.
// Keys are spread over a fixed number of buckets so that Scan can resume from a bucket index
type shard struct {
	buckets    []map[string]*Entity // bucket - key - value
	expires    map[string]int64     // key - expires time nanoseconds
	count      int
	bucketMask uint32
	mu         sync.RWMutex
}

func newShard(buckets uint32) *shard {
	s := &shard{
		buckets:    make([]map[string]*Entity, buckets),
		expires:    make(map[string]int64),
		bucketMask: buckets - 1,
	}
	for i := range s.buckets {
		s.buckets[i] = make(map[string]*Entity)
	}
	return s
}

// hashKey is shared by shard and bucket placement: low bits pick the shard, high bits the bucket
func hashKey(key string) uint64 {
	return xxhash.Sum64String(key)
}

func (s *shard) bucketOf(h uint64) uint32 {
	return uint32(h>>32) & s.bucketMask
}

// peek returns the entity without mutating the shard. Read lock is enough.
// expired reports that the key exists but its deadline has been reached
func (s *shard) peek(b uint32, key string, now int64) (*Entity, bool) {
	e, ok := s.buckets[b][key]
	if !ok {
		return nil, false
	}
	if exp, hasExp := s.expires[key]; hasExp && now >= exp {
		return nil, true
	}
	return e, false
}

// lookup returns the live entity or nil, deleting it first if it has expired. Write lock required
func (s *shard) lookup(b uint32, key string, now int64) *Entity {
	e, expired := s.peek(b, key, now)
	if expired {
		s.remove(b, key)
		return nil
	}
	return e
}

// store inserts or replaces the entity, the deadline is left untouched
func (s *shard) store(b uint32, key string, e *Entity) {
	if _, ok := s.buckets[b][key]; !ok {
		s.count++
	}
	s.buckets[b][key] = e
}

// remove deletes the key together with its deadline. Returns true if the key was present
func (s *shard) remove(b uint32, key string) bool {
	if _, ok := s.buckets[b][key]; !ok {
		return false
	}
	delete(s.buckets[b], key)
	delete(s.expires, key)
	s.count--
	return true
}

func (s *shard) setDeadline(key string, exp int64) {
	if exp == 0 {
		delete(s.expires, key)
		return
	}
	s.expires[key] = exp
}

// live counts entries whose deadline has not been reached
func (s *shard) live(now int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.count
	for _, exp := range s.expires {
		if now >= exp {
			n--
		}
	}
	return n
}

// deleteExpired checks up to limit keys carrying a deadline and deletes the expired ones.
// Returns the expired/checked ratio
func (s *shard) deleteExpired(limit int, now int64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.expires) == 0 || limit <= 0 {
		return 0.0
	}

	checked := 0
	expired := 0

	// go map iteration is randomized by design
	for key, exp := range s.expires {
		checked++
		if now >= exp {
			s.remove(s.bucketOf(hashKey(key)), key)
			expired++
		}

		if checked >= limit {
			break
		}
	}

	return float64(expired) / float64(checked)
}

// bucketKeys appends the live keys of one bucket that satisfy keep. Read lock required
func (s *shard) bucketKeys(dst []string, b uint32, now int64, keep func(key string, e *Entity) bool) ([]string, int) {
	retrieved := 0
	for key, e := range s.buckets[b] {
		if exp, hasExp := s.expires[key]; hasExp && now >= exp {
			continue
		}
		retrieved++
		if keep(key, e) {
			dst = append(dst, key)
		}
	}
	return dst, retrieved
}
