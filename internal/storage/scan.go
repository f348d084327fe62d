package storage

import (
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

const (
	defaultScanCount = 10
	maxScanPrealloc  = 1024
)

// Scan walks the keyspace slot by slot starting at cursor, where a slot is one bucket of one shard.
// It stops once Count keys were retrieved or 10*Count slots were visited, whichever comes first,
// and returns the cursor to resume from; 0 means the walk wrapped around.
// Match and Type are applied after retrieval, so a call may return fewer keys than Count.
// A key never changes slot, and the cursor only moves forward, so every key present for a
// whole cycle is returned at least once while concurrent writers keep running
func (k *Keyspace) Scan(cursor uint64, opts ScanOptions) (uint64, []string, error) {
	buckets := uint64(k.buckets)
	total := uint64(len(k.shards)) * buckets
	if cursor >= total {
		return 0, nil, errors.Wrap(ErrInvalidArgument, "invalid cursor")
	}

	count := opts.Count
	if count < 0 {
		return 0, nil, errors.Wrap(ErrInvalidArgument, "count must be positive")
	}
	if count == 0 {
		count = defaultScanCount
	}

	matcher, err := compilePattern(opts.Match)
	if err != nil {
		return 0, nil, err
	}

	keep := func(key string, e *Entity) bool {
		if opts.Type != TypeNone && e.Type != opts.Type {
			return false
		}
		return matcher == nil || matcher.Match(key)
	}

	// the visit budget never exceeds one full cycle, which also keeps count*10 from overflowing
	maxVisits := int(total)
	if count <= maxVisits/10 {
		maxVisits = count * 10
	}

	keys := make([]string, 0, min(count, maxScanPrealloc))
	retrieved, visited := 0, 0
	now := time.Now().UnixNano()

	for cursor < total && retrieved < count && visited < maxVisits {
		idx := cursor / buckets
		sh := k.shards[idx]

		sh.mu.RLock()
		for cursor < total && cursor/buckets == idx && retrieved < count && visited < maxVisits {
			var n int
			keys, n = sh.bucketKeys(keys, uint32(cursor%buckets), now, keep)
			retrieved += n
			visited++
			cursor++
		}
		sh.mu.RUnlock()
	}

	if cursor >= total {
		cursor = 0
	}
	return cursor, keys, nil
}

// compilePattern turns a Redis style glob into a matcher, nil means match everything.
// Redis negates classes with ^ and has no {a,b} alternation, gobwas uses ! and does
func compilePattern(pattern string) (glob.Glob, error) {
	if pattern == "" || pattern == "*" {
		return nil, nil
	}

	var b strings.Builder
	inClass := false
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '\\' && i+1 < len(pattern):
			b.WriteByte(ch)
			i++
			b.WriteByte(pattern[i])
		case ch == '[' && !inClass:
			inClass = true
			b.WriteByte(ch)
			if i+1 < len(pattern) && pattern[i+1] == '^' {
				b.WriteByte('!')
				i++
			}
		case ch == ']' && inClass:
			inClass = false
			b.WriteByte(ch)
		case (ch == '{' || ch == '}') && !inClass:
			b.WriteByte('\\')
			b.WriteByte(ch)
		default:
			b.WriteByte(ch)
		}
	}

	g, err := glob.Compile(b.String())
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "bad pattern %q: %v", pattern, err)
	}
	return g, nil
}
