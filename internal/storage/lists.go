package storage

import (
	list "github.com/bahlo/generic-list-go"
)

func listValues(l *list.List[string]) []string {
	out := make([]string, 0, l.Len())
	for e := l.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value)
	}
	return out
}

// normalizeRange resolves an inclusive start/stop pair against length.
// Negative indices count from the tail, out of range values are clamped.
// ok is false when the resulting range is empty
func normalizeRange(start, stop, length int) (int, int, bool) {
	if start < 0 {
		start += length
	}
	if stop < 0 {
		stop += length
	}
	if start < 0 {
		start = 0
	}
	if stop >= length {
		stop = length - 1
	}
	if start > stop || start >= length {
		return 0, 0, false
	}
	return start, stop, true
}

// elementAt walks from the nearer end to index, nil when out of range
func elementAt(l *list.List[string], index int) *list.Element[string] {
	n := l.Len()
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return nil
	}

	if index < n/2 {
		e := l.Front()
		for i := 0; i < index; i++ {
			e = e.Next()
		}
		return e
	}

	e := l.Back()
	for i := n - 1; i > index; i-- {
		e = e.Prev()
	}
	return e
}

func push(l *list.List[string], end ListEnd, values []string) {
	for _, v := range values {
		if end == Left {
			l.PushFront(v)
		} else {
			l.PushBack(v)
		}
	}
}

func pop(l *list.List[string], end ListEnd) (string, bool) {
	e := l.Front()
	if end == Right {
		e = l.Back()
	}
	if e == nil {
		return "", false
	}
	return l.Remove(e), true
}

// trim keeps the inclusive range [start, stop] only
func trim(l *list.List[string], start, stop int) {
	from, to, ok := normalizeRange(start, stop, l.Len())
	if !ok {
		l.Init()
		return
	}

	for i := 0; i < from; i++ {
		l.Remove(l.Front())
	}
	for n := l.Len() - (to - from + 1); n > 0; n-- {
		l.Remove(l.Back())
	}
}

// listView runs fn with the list at key, nil when absent
func (k *Keyspace) listView(key string, fn func(l *list.List[string]) error) error {
	return k.view(key, func(e *Entity) error {
		if err := expect(e, TypeList); err != nil {
			return err
		}
		if e == nil {
			return fn(nil)
		}
		return fn(e.asList())
	})
}

// listUpdate runs fn with the list at key, creating it when create is set.
// The key is deleted if fn leaves the list empty
func (k *Keyspace) listUpdate(key string, create bool, fn func(l *list.List[string]) error) error {
	return k.update(key, func(c *cell) error {
		if err := expect(c.e, TypeList); err != nil {
			return err
		}
		if c.e == nil {
			if !create {
				return fn(nil)
			}
			c.put(NewList())
		}

		err := fn(c.e.asList())
		c.dropIfEmpty()
		return err
	})
}

// LPush inserts values at the head one after another, so LPUSH a b c leaves [c b a].
// Returns the new length
func (k *Keyspace) LPush(key string, values ...string) (int, error) {
	return k.pushTo(key, Left, values)
}

// RPush appends values at the tail in argument order. Returns the new length
func (k *Keyspace) RPush(key string, values ...string) (int, error) {
	return k.pushTo(key, Right, values)
}

func (k *Keyspace) pushTo(key string, end ListEnd, values []string) (int, error) {
	if len(values) == 0 {
		return 0, errInvalid("no values to push")
	}

	var n int
	err := k.listUpdate(key, true, func(l *list.List[string]) error {
		push(l, end, values)
		n = l.Len()
		return nil
	})
	return n, err
}

// PushCapped pushes values at end and then keeps only the max elements closest to that end,
// all under one lock. It is the atomic form of LPUSH followed by LTRIM 0 max-1
func (k *Keyspace) PushCapped(key string, end ListEnd, maxLen int, values ...string) (int, error) {
	if maxLen <= 0 {
		return 0, errInvalid("max length must be positive")
	}
	if len(values) == 0 {
		return 0, errInvalid("no values to push")
	}

	var n int
	err := k.listUpdate(key, true, func(l *list.List[string]) error {
		push(l, end, values)
		if end == Left {
			trim(l, 0, maxLen-1)
		} else {
			trim(l, -maxLen, -1)
		}
		n = l.Len()
		return nil
	})
	return n, err
}

// LPop removes and returns the head element
func (k *Keyspace) LPop(key string) (string, bool, error) {
	return k.popFrom(key, Left)
}

// RPop removes and returns the tail element
func (k *Keyspace) RPop(key string) (string, bool, error) {
	return k.popFrom(key, Right)
}

func (k *Keyspace) popFrom(key string, end ListEnd) (string, bool, error) {
	var (
		val string
		ok  bool
	)
	err := k.listUpdate(key, false, func(l *list.List[string]) error {
		if l != nil {
			val, ok = pop(l, end)
		}
		return nil
	})
	return val, ok, err
}

// LRange returns the elements between start and stop inclusive
func (k *Keyspace) LRange(key string, start, stop int) ([]string, error) {
	out := []string{}
	err := k.listView(key, func(l *list.List[string]) error {
		if l == nil {
			return nil
		}
		from, to, ok := normalizeRange(start, stop, l.Len())
		if !ok {
			return nil
		}

		out = make([]string, 0, to-from+1)
		e := elementAt(l, from)
		for i := from; i <= to; i++ {
			out = append(out, e.Value)
			e = e.Next()
		}
		return nil
	})
	return out, err
}

// LLen returns the length of the list, 0 if the key is absent
func (k *Keyspace) LLen(key string) (int, error) {
	n := 0
	err := k.listView(key, func(l *list.List[string]) error {
		if l != nil {
			n = l.Len()
		}
		return nil
	})
	return n, err
}

// LIndex returns the element at index. ok is false when the key is absent or the index is out of range
func (k *Keyspace) LIndex(key string, index int) (string, bool, error) {
	var (
		val string
		ok  bool
	)
	err := k.listView(key, func(l *list.List[string]) error {
		if l == nil {
			return nil
		}
		if e := elementAt(l, index); e != nil {
			val, ok = e.Value, true
		}
		return nil
	})
	return val, ok, err
}

// LSet overwrites the element at index
func (k *Keyspace) LSet(key string, index int, value string) error {
	return k.listUpdate(key, false, func(l *list.List[string]) error {
		if l == nil {
			return ErrKeyNotFound
		}
		e := elementAt(l, index)
		if e == nil {
			return ErrIndexOutOfRange
		}
		e.Value = value
		return nil
	})
}

// LInsert inserts value before or after the first occurrence of pivot.
// Returns the new length, -1 if pivot was not found and 0 if the key is absent
func (k *Keyspace) LInsert(key string, before bool, pivot, value string) (int, error) {
	n := 0
	err := k.listUpdate(key, false, func(l *list.List[string]) error {
		if l == nil {
			return nil
		}

		for e := l.Front(); e != nil; e = e.Next() {
			if e.Value != pivot {
				continue
			}
			if before {
				l.InsertBefore(value, e)
			} else {
				l.InsertAfter(value, e)
			}
			n = l.Len()
			return nil
		}

		n = -1
		return nil
	})
	return n, err
}

// LRem removes occurrences of value: the first count from the head when count > 0,
// the first |count| from the tail when count < 0, all of them when count == 0
func (k *Keyspace) LRem(key string, count int, value string) (int, error) {
	removed := 0
	err := k.listUpdate(key, false, func(l *list.List[string]) error {
		if l == nil {
			return nil
		}

		limit := count
		if limit < 0 {
			limit = -limit
		}

		if count >= 0 {
			for e := l.Front(); e != nil && (limit == 0 || removed < limit); {
				next := e.Next()
				if e.Value == value {
					l.Remove(e)
					removed++
				}
				e = next
			}
			return nil
		}

		for e := l.Back(); e != nil && removed < limit; {
			prev := e.Prev()
			if e.Value == value {
				l.Remove(e)
				removed++
			}
			e = prev
		}
		return nil
	})
	return removed, err
}

// LTrim keeps only the elements between start and stop inclusive, deleting the key if none remain
func (k *Keyspace) LTrim(key string, start, stop int) error {
	return k.listUpdate(key, false, func(l *list.List[string]) error {
		if l != nil {
			trim(l, start, stop)
		}
		return nil
	})
}

// LMove pops an element from the from end of src and pushes it to the to end of dst.
// Both shards stay locked for the whole move, so the element is never seen in both lists or in neither.
// Returns false when src is absent
func (k *Keyspace) LMove(src, dst string, from, to ListEnd) (string, bool, error) {
	var (
		val string
		ok  bool
	)

	err := k.updateMany([]string{src, dst}, func(now int64) error {
		s := k.cellLocked(src, now)
		if err := expect(s.e, TypeList); err != nil {
			return err
		}
		if s.e == nil {
			return nil
		}

		d := s
		if dst != src {
			d = k.cellLocked(dst, now)
			if err := expect(d.e, TypeList); err != nil {
				return err
			}
		}

		val, ok = pop(s.e.asList(), from)
		if d.e == nil {
			d.put(NewList())
		}
		push(d.e.asList(), to, []string{val})
		s.dropIfEmpty()
		return nil
	})

	return val, ok, err
}
