package storage

import (
	"time"
)

type ExpiryStatus int

const (
	// ExpNotFound means that the key does not exist
	ExpNotFound ExpiryStatus = -2
	// ExpNoTimeout means that the key exists, but it does not have a TTL
	ExpNoTimeout ExpiryStatus = -1
	// ExpActive means that the key has an active lifetime
	ExpActive ExpiryStatus = 1
)

type SetOptions struct {
	ExpireAt time.Time // absolute deadline, zero means no TTL
	KeepTTL  bool      // if true, retain the existing TTL (ignore ExpireAt)
	NX       bool      // only set if the key does not exist
	XX       bool      // only set if the key already exists
}

// ListEnd selects the head or the tail of a list
type ListEnd int

const (
	Left ListEnd = iota
	Right
)

// ScanOptions narrows the keys returned by Scan
type ScanOptions struct {
	Match string   // glob pattern, empty matches everything
	Count int      // advisory number of keys to retrieve per call
	Type  DataType // TypeNone disables the type filter
}

// Options configure a Keyspace
type Options struct {
	Shards  uint // power of two, 1..64
	Buckets uint // scan buckets per shard, power of two, 1..65536
}

// deadline converts a time to the internal unix-nano representation (0 = none)
func deadline(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	if n := t.UnixNano(); n > 0 {
		return n
	}
	return 1 // before the epoch, already expired
}
