package storage

import (
	"math"
	"slices"
)

func (k *Keyspace) zsetView(key string, fn func(z *SortedSet)) error {
	return k.view(key, func(e *Entity) error {
		if err := expect(e, TypeZSet); err != nil {
			return err
		}
		if e == nil {
			fn(nil)
			return nil
		}
		fn(e.asZSet())
		return nil
	})
}

func (k *Keyspace) zsetUpdate(key string, create bool, fn func(z *SortedSet) error) error {
	return k.update(key, func(c *cell) error {
		if err := expect(c.e, TypeZSet); err != nil {
			return err
		}
		if c.e == nil {
			if !create {
				return fn(nil)
			}
			c.put(NewZSet())
		}

		err := fn(c.e.asZSet())
		c.dropIfEmpty()
		return err
	})
}

// ZAdd adds members or updates their scores. Returns the number of new members
func (k *Keyspace) ZAdd(key string, members ...ScoredMember) (int, error) {
	if len(members) == 0 {
		return 0, errInvalid("no members to add")
	}
	for _, m := range members {
		if math.IsNaN(m.Score) {
			return 0, ErrNotAFloat
		}
	}

	added := 0
	err := k.zsetUpdate(key, true, func(z *SortedSet) error {
		for _, m := range members {
			if z.Set(m.Member, m.Score) {
				added++
			}
		}
		return nil
	})
	return added, err
}

// ZIncrBy adds delta to the score of member, creating it with score delta if absent
func (k *Keyspace) ZIncrBy(key string, delta float64, member string) (float64, error) {
	if math.IsNaN(delta) {
		return 0, ErrNotAFloat
	}

	var score float64
	err := k.zsetUpdate(key, true, func(z *SortedSet) error {
		cur, _ := z.Score(member)
		next := cur + delta
		if math.IsNaN(next) {
			return errInvalid("resulting score is not a number (NaN)")
		}
		z.Set(member, next)
		score = next
		return nil
	})
	return score, err
}

// ZRem removes members, deleting the key once the sorted set is empty
func (k *Keyspace) ZRem(key string, members ...string) (int, error) {
	removed := 0
	err := k.zsetUpdate(key, false, func(z *SortedSet) error {
		if z == nil {
			return nil
		}
		for _, m := range members {
			if z.Remove(m) {
				removed++
			}
		}
		return nil
	})
	return removed, err
}

// ZRange returns members between ranks start and stop inclusive.
// With ascending=false ranks count from the highest score and the result is in descending order
func (k *Keyspace) ZRange(key string, start, stop int, ascending bool) ([]ScoredMember, error) {
	out := []ScoredMember{}
	err := k.zsetView(key, func(z *SortedSet) {
		if z == nil {
			return
		}
		if ascending {
			out = z.Range(start, stop)
			return
		}

		from, to, ok := normalizeRange(start, stop, z.Len())
		if !ok {
			return
		}
		n := z.Len()
		out = z.Range(n-1-to, n-1-from)
		slices.Reverse(out)
	})
	return out, err
}

// ZRangeByScore returns the members with a score within [min, max], ascending by score then member
func (k *Keyspace) ZRangeByScore(key string, min, max ScoreBound) ([]ScoredMember, error) {
	out := []ScoredMember{}
	err := k.zsetView(key, func(z *SortedSet) {
		if z != nil {
			out = z.RangeByScore(min, max)
		}
	})
	return out, err
}

// ZRank returns the rank of member, counted from the lowest score when ascending
func (k *Keyspace) ZRank(key, member string, ascending bool) (int, bool, error) {
	var (
		rank int
		ok   bool
	)
	err := k.zsetView(key, func(z *SortedSet) {
		if z == nil {
			return
		}
		if rank, ok = z.Rank(member); ok && !ascending {
			rank = z.Len() - 1 - rank
		}
	})
	return rank, ok, err
}

// ZScore returns the score of member
func (k *Keyspace) ZScore(key, member string) (float64, bool, error) {
	var (
		score float64
		ok    bool
	)
	err := k.zsetView(key, func(z *SortedSet) {
		if z != nil {
			score, ok = z.Score(member)
		}
	})
	return score, ok, err
}

// ZCount returns the number of members with a score within [min, max]
func (k *Keyspace) ZCount(key string, min, max ScoreBound) (int, error) {
	n := 0
	err := k.zsetView(key, func(z *SortedSet) {
		if z != nil {
			n = z.Count(min, max)
		}
	})
	return n, err
}

// ZCard returns the number of members
func (k *Keyspace) ZCard(key string) (int, error) {
	n := 0
	err := k.zsetView(key, func(z *SortedSet) {
		if z != nil {
			n = z.Len()
		}
	})
	return n, err
}
