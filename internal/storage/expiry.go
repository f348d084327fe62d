package storage

import (
	"time"

	"github.com/sourcegraph/conc/iter"
)

// Expire sets an absolute deadline on key. A deadline that has already passed deletes the key.
// Returns false if the key does not exist
func (k *Keyspace) Expire(key string, at time.Time) bool {
	var ok bool
	k.update(key, func(c *cell) error { //nolint:errcheck
		if c.e == nil {
			return nil
		}
		ok = true

		exp := deadline(at)
		if exp == 0 || time.Now().UnixNano() >= exp {
			c.drop()
			return nil
		}
		c.sh.setDeadline(key, exp)
		return nil
	})
	return ok
}

// Persist removes the expiration date of the key, making it eternal.
// Returns true only if the key existed and had a deadline
func (k *Keyspace) Persist(key string) bool {
	var ok bool
	k.update(key, func(c *cell) error { //nolint:errcheck
		if c.e == nil || c.deadline() == 0 {
			return nil
		}
		c.sh.setDeadline(key, 0)
		ok = true
		return nil
	})
	return ok
}

// Expiry returns the remaining lifetime and status as ExpiryStatus
func (k *Keyspace) Expiry(key string) (time.Duration, ExpiryStatus) {
	idx, _ := k.locate(key)
	var (
		ttl    time.Duration
		status = ExpNotFound
	)

	k.view(key, func(e *Entity) error { //nolint:errcheck
		if e == nil {
			return nil
		}
		// view holds at least the read lock of the shard
		exp, hasExp := k.shards[idx].expires[key]
		if !hasExp {
			status = ExpNoTimeout
			return nil
		}
		ttl, status = time.Duration(exp-time.Now().UnixNano()), ExpActive
		if ttl < 0 {
			ttl = 0
		}
		return nil
	})
	return ttl, status
}

// DeleteExpired samples up to limit keys with a deadline in every shard concurrently
// and deletes those that have expired. Returns the average expired ratio over the shards
func (k *Keyspace) DeleteExpired(limit int) float64 {
	now := time.Now().UnixNano()

	ratios := iter.Map(k.shards, func(sh **shard) float64 {
		return (*sh).deleteExpired(limit, now)
	})

	var total float64
	for _, r := range ratios {
		total += r
	}
	return total / float64(len(k.shards))
}
