package storage

import (
	"math/bits"
	"slices"
	"time"

	"github.com/pkg/errors"
)

// Keyspace is a thread-safe multi-type key-value storage,
// divided into segments (shards) to reduce contention for locking
type Keyspace struct {
	shards    []*shard
	shardMask uint32
	buckets   uint32 // buckets per shard
}

// NewKeyspace creates a new instance of Keyspace.
// Shards and Buckets must be powers of two. The maximum allowed number of shards is 64.
// Zero values fall back to 32 shards and 256 buckets
func NewKeyspace(opts Options) (*Keyspace, error) {
	if opts.Shards == 0 {
		opts.Shards = 32
	}
	if opts.Buckets == 0 {
		opts.Buckets = 256
	}

	if bits.OnesCount(opts.Shards) != 1 {
		return nil, errors.New("requested shards must be a power of 2")
	}
	if opts.Shards > 64 {
		return nil, errors.New("requested shards must be less or equal than 64")
	}
	if bits.OnesCount(opts.Buckets) != 1 {
		return nil, errors.New("requested buckets must be a power of 2")
	}
	if opts.Buckets > 1<<16 {
		return nil, errors.New("requested buckets must be less or equal than 65536")
	}

	k := &Keyspace{
		shards:    make([]*shard, opts.Shards),
		shardMask: uint32(opts.Shards - 1),
		buckets:   uint32(opts.Buckets),
	}
	for i := range k.shards {
		k.shards[i] = newShard(k.buckets)
	}

	return k, nil
}

// locate returns the shard index and bucket of key
func (k *Keyspace) locate(key string) (uint32, uint32) {
	h := hashKey(key)
	idx := uint32(h) & k.shardMask
	return idx, k.shards[idx].bucketOf(h)
}

// cell is the write handle of a single key while its shard is locked
type cell struct {
	sh  *shard
	b   uint32
	key string
	e   *Entity // live entity, nil when absent
}

// put stores e under the cell key keeping the current deadline
func (c *cell) put(e *Entity) {
	c.sh.store(c.b, c.key, e)
	c.e = e
}

// replace stores e and resets the deadline
func (c *cell) replace(e *Entity, exp int64) {
	c.put(e)
	c.sh.setDeadline(c.key, exp)
}

func (c *cell) drop() bool {
	c.e = nil
	return c.sh.remove(c.b, c.key)
}

// dropIfEmpty deletes a container that no longer holds any element
func (c *cell) dropIfEmpty() {
	if c.e != nil && c.e.Type != TypeString && c.e.Len() == 0 {
		c.drop()
	}
}

func (c *cell) deadline() int64 {
	return c.sh.expires[c.key]
}

// cellLocked resolves key assuming its shard is write locked
func (k *Keyspace) cellLocked(key string, now int64) *cell {
	idx, b := k.locate(key)
	sh := k.shards[idx]
	return &cell{sh: sh, b: b, key: key, e: sh.lookup(b, key, now)}
}

// view runs fn with the live entity of key (nil when absent) under the shard read lock.
// An expired entity is removed under the write lock before fn runs
func (k *Keyspace) view(key string, fn func(e *Entity) error) error {
	idx, b := k.locate(key)
	sh := k.shards[idx]

	sh.mu.RLock()
	e, expired := sh.peek(b, key, time.Now().UnixNano())
	if !expired {
		defer sh.mu.RUnlock()
		return fn(e)
	}
	sh.mu.RUnlock()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	// checking again, can be changed while waiting for the lock
	return fn(sh.lookup(b, key, time.Now().UnixNano()))
}

// update runs fn with the write handle of key under the shard write lock
func (k *Keyspace) update(key string, fn func(c *cell) error) error {
	idx, _ := k.locate(key)
	sh := k.shards[idx]

	sh.mu.Lock()
	defer sh.mu.Unlock()

	return fn(k.cellLocked(key, time.Now().UnixNano()))
}

// updateMany locks the shards of all keys in ascending shard order and runs fn.
// The fixed order keeps concurrent multi-key operations free of deadlocks
func (k *Keyspace) updateMany(keys []string, fn func(now int64) error) error {
	idxs := make([]uint32, 0, len(keys))
	for _, key := range keys {
		idx, _ := k.locate(key)
		idxs = append(idxs, idx)
	}
	slices.Sort(idxs)
	idxs = slices.Compact(idxs)

	for _, idx := range idxs {
		k.shards[idx].mu.Lock()
	}
	defer func() {
		for i := len(idxs) - 1; i >= 0; i-- {
			k.shards[idxs[i]].mu.Unlock()
		}
	}()

	return fn(time.Now().UnixNano())
}

// Set writes the string value based on the options. Returns true if recording has been performed
func (k *Keyspace) Set(key, value string, options SetOptions) bool {
	var written bool
	k.update(key, func(c *cell) error { //nolint:errcheck
		exists := c.e != nil

		if options.NX && exists {
			return nil
		}
		if options.XX && !exists {
			return nil
		}

		if options.KeepTTL {
			// KEEPTTL on a fresh key behaves like no TTL, and store keeps whatever deadline is there
			c.put(NewString(value))
		} else {
			c.replace(NewString(value), deadline(options.ExpireAt))
		}

		written = true
		return nil
	})
	return written
}

// Put overwrites key with a copy of e whatever type it held before.
// A zero expireAt stores the key without TTL. Empty containers are rejected
func (k *Keyspace) Put(key string, e *Entity, expireAt time.Time) error {
	if e == nil || e.Type == TypeNone {
		return errors.Wrap(ErrInvalidArgument, "nil value")
	}
	if e.Type != TypeString && e.Len() == 0 {
		return errors.Wrap(ErrInvalidArgument, "empty container")
	}

	clone := e.Clone()
	return k.update(key, func(c *cell) error {
		c.replace(clone, deadline(expireAt))
		return nil
	})
}

// Get returns the string value and true if the key is found. Otherwise, "", false.
// A key holding another type fails with ErrTypeMismatch
func (k *Keyspace) Get(key string) (string, bool, error) {
	var (
		val string
		ok  bool
	)
	err := k.view(key, func(e *Entity) error {
		if e == nil {
			return nil
		}
		if e.Type != TypeString {
			return ErrTypeMismatch
		}
		val, ok = e.asString(), true
		return nil
	})
	return val, ok, err
}

// Load returns a deep copy of the value stored at key
func (k *Keyspace) Load(key string) (*Entity, bool) {
	var out *Entity
	k.view(key, func(e *Entity) error { //nolint:errcheck
		if e != nil {
			out = e.Clone()
		}
		return nil
	})
	return out, out != nil
}

// Delete deletes the keys. Returns how many of them existed
func (k *Keyspace) Delete(keys ...string) int {
	deleted := 0
	for _, key := range keys {
		k.update(key, func(c *cell) error { //nolint:errcheck
			if c.e != nil && c.drop() {
				deleted++
			}
			return nil
		})
	}
	return deleted
}

// Exists counts the keys that exist. A key repeated in keys is counted each time
func (k *Keyspace) Exists(keys ...string) int {
	found := 0
	for _, key := range keys {
		k.view(key, func(e *Entity) error { //nolint:errcheck
			if e != nil {
				found++
			}
			return nil
		})
	}
	return found
}

// Type returns the type of the value stored at key, TypeNone if the key is absent
func (k *Keyspace) Type(key string) DataType {
	t := TypeNone
	k.view(key, func(e *Entity) error { //nolint:errcheck
		if e != nil {
			t = e.Type
		}
		return nil
	})
	return t
}

// Rename moves the value and deadline of oldKey to newKey, overwriting newKey.
// Both shards are locked for the whole move
func (k *Keyspace) Rename(oldKey, newKey string) error {
	return k.updateMany([]string{oldKey, newKey}, func(now int64) error {
		src := k.cellLocked(oldKey, now)
		if src.e == nil {
			return ErrKeyNotFound
		}
		if oldKey == newKey {
			return nil
		}

		e, exp := src.e, src.deadline()
		src.drop()
		k.cellLocked(newKey, now).replace(e, exp)
		return nil
	})
}

// Size returns the number of live entries
func (k *Keyspace) Size() int {
	now := time.Now().UnixNano()
	total := 0
	for _, sh := range k.shards {
		total += sh.live(now)
	}
	return total
}

// MSet writes all pairs atomically, dropping any TTL the keys had
func (k *Keyspace) MSet(pairs []FieldValue) {
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = p.Field
	}

	k.updateMany(keys, func(now int64) error { //nolint:errcheck
		for _, p := range pairs {
			k.cellLocked(p.Field, now).replace(NewString(p.Value), 0)
		}
		return nil
	})
}

// MGet returns the string values of keys at one instant. Missing keys and keys of other types are nil
func (k *Keyspace) MGet(keys []string) []*string {
	out := make([]*string, len(keys))

	k.updateMany(keys, func(now int64) error { //nolint:errcheck
		for i, key := range keys {
			c := k.cellLocked(key, now)
			if c.e != nil && c.e.Type == TypeString {
				v := c.e.asString()
				out[i] = &v
			}
		}
		return nil
	})
	return out
}
