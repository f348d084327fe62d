package storage

import (
	"slices"
	"sort"
)

// ScoredMember is a sorted set member with its score
type ScoredMember struct {
	Member string
	Score  float64
}

// ScoreBound is one end of a score interval
type ScoreBound struct {
	Value     float64
	Exclusive bool
}

// less is the total order of a sorted set: score ascending, then member ascending
func less(a, b ScoredMember) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Member < b.Member
}

// SortedSet keeps a score dictionary next to a slice ordered by (score, member).
// Lookups by member are O(1), rank and score range queries are O(log n), updates O(n)
type SortedSet struct {
	dict  map[string]float64
	items []ScoredMember
}

func newSortedSet() *SortedSet {
	return &SortedSet{dict: make(map[string]float64)}
}

func (z *SortedSet) Len() int {
	return len(z.items)
}

// position returns where item is, or would be inserted, in items
func (z *SortedSet) position(item ScoredMember) int {
	return sort.Search(len(z.items), func(i int) bool {
		return !less(z.items[i], item)
	})
}

// Set adds member or moves it to its new score. Returns true if member was added
func (z *SortedSet) Set(member string, score float64) bool {
	old, exists := z.dict[member]
	if exists {
		if old == score {
			return false
		}
		i := z.position(ScoredMember{Member: member, Score: old})
		z.items = slices.Delete(z.items, i, i+1)
	}

	item := ScoredMember{Member: member, Score: score}
	z.items = slices.Insert(z.items, z.position(item), item)
	z.dict[member] = score
	return !exists
}

func (z *SortedSet) Remove(member string) bool {
	score, ok := z.dict[member]
	if !ok {
		return false
	}
	i := z.position(ScoredMember{Member: member, Score: score})
	z.items = slices.Delete(z.items, i, i+1)
	delete(z.dict, member)
	return true
}

func (z *SortedSet) Score(member string) (float64, bool) {
	s, ok := z.dict[member]
	return s, ok
}

// Rank returns the 0-based ascending rank of member
func (z *SortedSet) Rank(member string) (int, bool) {
	score, ok := z.dict[member]
	if !ok {
		return 0, false
	}
	return z.position(ScoredMember{Member: member, Score: score}), true
}

// Range returns a copy of the members between ranks start and stop inclusive, ascending.
// Index rules are the same as for lists
func (z *SortedSet) Range(start, stop int) []ScoredMember {
	from, to, ok := normalizeRange(start, stop, len(z.items))
	if !ok {
		return []ScoredMember{}
	}
	return slices.Clone(z.items[from : to+1])
}

// scoreSpan returns the half-open index interval of items whose score lies within [min, max]
func (z *SortedSet) scoreSpan(min, max ScoreBound) (int, int) {
	lo := sort.Search(len(z.items), func(i int) bool {
		s := z.items[i].Score
		if min.Exclusive {
			return s > min.Value
		}
		return s >= min.Value
	})
	hi := sort.Search(len(z.items), func(i int) bool {
		s := z.items[i].Score
		if max.Exclusive {
			return s >= max.Value
		}
		return s > max.Value
	})
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// RangeByScore returns the members with a score within [min, max], ascending
func (z *SortedSet) RangeByScore(min, max ScoreBound) []ScoredMember {
	lo, hi := z.scoreSpan(min, max)
	return slices.Clone(z.items[lo:hi])
}

// Count returns the number of members with a score within [min, max]
func (z *SortedSet) Count(min, max ScoreBound) int {
	lo, hi := z.scoreSpan(min, max)
	return hi - lo
}
