package storage

import (
	"math/rand"
)

// Set keeps members in a slice indexed by a map, so random picks are O(1) and uniform
type Set struct {
	index   map[string]int
	members []string
}

func newSet() *Set {
	return &Set{index: make(map[string]int)}
}

// Add returns true if member was not present
func (s *Set) Add(member string) bool {
	if _, ok := s.index[member]; ok {
		return false
	}
	s.index[member] = len(s.members)
	s.members = append(s.members, member)
	return true
}

// Remove swaps the member with the last one and truncates
func (s *Set) Remove(member string) bool {
	i, ok := s.index[member]
	if !ok {
		return false
	}

	last := len(s.members) - 1
	s.members[i] = s.members[last]
	s.index[s.members[i]] = i
	s.members = s.members[:last]
	delete(s.index, member)
	return true
}

func (s *Set) Has(member string) bool {
	_, ok := s.index[member]
	return ok
}

func (s *Set) Len() int {
	return len(s.members)
}

// Members returns a copy of the members in no particular order
func (s *Set) Members() []string {
	out := make([]string, len(s.members))
	copy(out, s.members)
	return out
}

// Random returns a uniformly chosen member
func (s *Set) Random() (string, bool) {
	if len(s.members) == 0 {
		return "", false
	}
	return s.members[rand.Intn(len(s.members))], true
}

func (k *Keyspace) setView(key string, fn func(s *Set)) error {
	return k.view(key, func(e *Entity) error {
		if err := expect(e, TypeSet); err != nil {
			return err
		}
		if e == nil {
			fn(nil)
			return nil
		}
		fn(e.asSet())
		return nil
	})
}

func (k *Keyspace) setUpdate(key string, create bool, fn func(s *Set)) error {
	return k.update(key, func(c *cell) error {
		if err := expect(c.e, TypeSet); err != nil {
			return err
		}
		if c.e == nil {
			if !create {
				fn(nil)
				return nil
			}
			c.put(NewSet())
		}

		fn(c.e.asSet())
		c.dropIfEmpty()
		return nil
	})
}

// SAdd adds members to the set at key. Returns how many were not already present
func (k *Keyspace) SAdd(key string, members ...string) (int, error) {
	if len(members) == 0 {
		return 0, errInvalid("no members to add")
	}

	added := 0
	err := k.setUpdate(key, true, func(s *Set) {
		for _, m := range members {
			if s.Add(m) {
				added++
			}
		}
	})
	return added, err
}

// SRem removes members, deleting the key once the set is empty. Returns how many were removed
func (k *Keyspace) SRem(key string, members ...string) (int, error) {
	removed := 0
	err := k.setUpdate(key, false, func(s *Set) {
		if s == nil {
			return
		}
		for _, m := range members {
			if s.Remove(m) {
				removed++
			}
		}
	})
	return removed, err
}

// SMembers returns all members of the set at key
func (k *Keyspace) SMembers(key string) ([]string, error) {
	out := []string{}
	err := k.setView(key, func(s *Set) {
		if s != nil {
			out = s.Members()
		}
	})
	return out, err
}

// SIsMember reports whether member belongs to the set at key
func (k *Keyspace) SIsMember(key, member string) (bool, error) {
	var ok bool
	err := k.setView(key, func(s *Set) {
		ok = s != nil && s.Has(member)
	})
	return ok, err
}

// SCard returns the number of members
func (k *Keyspace) SCard(key string) (int, error) {
	n := 0
	err := k.setView(key, func(s *Set) {
		if s != nil {
			n = s.Len()
		}
	})
	return n, err
}

// SRandMember returns a random member without removing it
func (k *Keyspace) SRandMember(key string) (string, bool, error) {
	var (
		member string
		ok     bool
	)
	err := k.setView(key, func(s *Set) {
		if s != nil {
			member, ok = s.Random()
		}
	})
	return member, ok, err
}

// SPop removes and returns a random member
func (k *Keyspace) SPop(key string) (string, bool, error) {
	var (
		member string
		ok     bool
	)
	err := k.setUpdate(key, false, func(s *Set) {
		if s == nil {
			return
		}
		if member, ok = s.Random(); ok {
			s.Remove(member)
		}
	})
	return member, ok, err
}

// collectSets resolves every key to its set under the shard locks. Absent keys yield nil
func (k *Keyspace) collectSets(keys []string, fn func(sets []*Set)) error {
	if len(keys) == 0 {
		return errInvalid("no keys")
	}

	return k.updateMany(keys, func(now int64) error {
		sets := make([]*Set, len(keys))
		for i, key := range keys {
			c := k.cellLocked(key, now)
			if err := expect(c.e, TypeSet); err != nil {
				return err
			}
			if c.e != nil {
				sets[i] = c.e.asSet()
			}
		}
		fn(sets)
		return nil
	})
}

// SInter returns the members present in every set. An absent key is an empty set
func (k *Keyspace) SInter(keys ...string) ([]string, error) {
	out := []string{}
	err := k.collectSets(keys, func(sets []*Set) {
		smallest := sets[0]
		for _, s := range sets {
			if s == nil {
				return
			}
			if s.Len() < smallest.Len() {
				smallest = s
			}
		}

	next:
		for _, m := range smallest.members {
			for _, s := range sets {
				if s != smallest && !s.Has(m) {
					continue next
				}
			}
			out = append(out, m)
		}
	})
	return out, err
}

// SUnion returns the members present in any of the sets
func (k *Keyspace) SUnion(keys ...string) ([]string, error) {
	out := []string{}
	err := k.collectSets(keys, func(sets []*Set) {
		seen := newSet()
		for _, s := range sets {
			if s == nil {
				continue
			}
			for _, m := range s.members {
				seen.Add(m)
			}
		}
		out = seen.members
	})
	return out, err
}

// SDiff returns the members of the first set that are absent from all the others
func (k *Keyspace) SDiff(keys ...string) ([]string, error) {
	out := []string{}
	err := k.collectSets(keys, func(sets []*Set) {
		if sets[0] == nil {
			return
		}

	next:
		for _, m := range sets[0].members {
			for _, s := range sets[1:] {
				if s != nil && s.Has(m) {
					continue next
				}
			}
			out = append(out, m)
		}
	})
	return out, err
}
