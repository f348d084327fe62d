package storage

import (
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func hashPairs(h *orderedmap.OrderedMap[string, string]) []FieldValue {
	out := make([]FieldValue, 0, h.Len())
	for p := h.Oldest(); p != nil; p = p.Next() {
		out = append(out, FieldValue{Field: p.Key, Value: p.Value})
	}
	return out
}

// hashView runs fn with the hash stored at key, nil when the key is absent
func (k *Keyspace) hashView(key string, fn func(h *orderedmap.OrderedMap[string, string])) error {
	return k.view(key, func(e *Entity) error {
		if err := expect(e, TypeHash); err != nil {
			return err
		}
		if e == nil {
			fn(nil)
			return nil
		}
		fn(e.asHash())
		return nil
	})
}

// hashUpdate runs fn with the hash stored at key, creating it when create is set.
// The key is deleted if fn leaves the hash empty
func (k *Keyspace) hashUpdate(key string, create bool, fn func(h *orderedmap.OrderedMap[string, string]) error) error {
	return k.update(key, func(c *cell) error {
		if err := expect(c.e, TypeHash); err != nil {
			return err
		}
		if c.e == nil {
			if !create {
				return fn(nil)
			}
			c.put(NewHash())
		}

		err := fn(c.e.asHash())
		c.dropIfEmpty()
		return err
	})
}

// HSet sets the specified fields to their respective values in the hash stored at key.
// Returns the number of fields that were added
func (k *Keyspace) HSet(key string, fields []FieldValue) (int, error) {
	if len(fields) == 0 {
		return 0, errInvalid("no fields to set")
	}

	added := 0
	err := k.hashUpdate(key, true, func(h *orderedmap.OrderedMap[string, string]) error {
		for _, fv := range fields {
			if _, present := h.Set(fv.Field, fv.Value); !present {
				added++
			}
		}
		return nil
	})
	return added, err
}

// HSetNX sets field only if it does not exist yet
func (k *Keyspace) HSetNX(key, field, value string) (bool, error) {
	var set bool
	err := k.hashUpdate(key, true, func(h *orderedmap.OrderedMap[string, string]) error {
		if _, present := h.Get(field); !present {
			h.Set(field, value)
			set = true
		}
		return nil
	})
	return set, err
}

// HGet returns the value associated with field in the hash stored at key
func (k *Keyspace) HGet(key, field string) (string, bool, error) {
	var (
		val string
		ok  bool
	)
	err := k.hashView(key, func(h *orderedmap.OrderedMap[string, string]) {
		if h != nil {
			val, ok = h.Get(field)
		}
	})
	return val, ok, err
}

// HMGet returns the values of fields aligned with the request, nil for missing fields
func (k *Keyspace) HMGet(key string, fields []string) ([]*string, error) {
	out := make([]*string, len(fields))
	err := k.hashView(key, func(h *orderedmap.OrderedMap[string, string]) {
		if h == nil {
			return
		}
		for i, f := range fields {
			if v, ok := h.Get(f); ok {
				out[i] = &v
			}
		}
	})
	return out, err
}

// HGetAll returns all fields and values of the hash stored at key in insertion order
func (k *Keyspace) HGetAll(key string) ([]FieldValue, error) {
	var out []FieldValue
	err := k.hashView(key, func(h *orderedmap.OrderedMap[string, string]) {
		if h != nil {
			out = hashPairs(h)
		}
	})
	return out, err
}

// HDel removes fields from the hash, deleting the key once it is empty. Returns the number removed
func (k *Keyspace) HDel(key string, fields []string) (int, error) {
	removed := 0
	err := k.hashUpdate(key, false, func(h *orderedmap.OrderedMap[string, string]) error {
		if h == nil {
			return nil
		}
		for _, f := range fields {
			if _, present := h.Delete(f); present {
				removed++
			}
		}
		return nil
	})
	return removed, err
}

// HExists returns if field is an existing field in the hash stored at key
func (k *Keyspace) HExists(key, field string) (bool, error) {
	_, ok, err := k.HGet(key, field)
	return ok, err
}

// HLen returns the number of fields contained in the hash stored at key
func (k *Keyspace) HLen(key string) (int, error) {
	n := 0
	err := k.hashView(key, func(h *orderedmap.OrderedMap[string, string]) {
		if h != nil {
			n = h.Len()
		}
	})
	return n, err
}

// HKeys returns all field names in the hash stored at key, in the same order as HVals
func (k *Keyspace) HKeys(key string) ([]string, error) {
	var out []string
	err := k.hashView(key, func(h *orderedmap.OrderedMap[string, string]) {
		if h == nil {
			return
		}
		out = make([]string, 0, h.Len())
		for p := h.Oldest(); p != nil; p = p.Next() {
			out = append(out, p.Key)
		}
	})
	return out, err
}

// HVals returns all values in the hash stored at key
func (k *Keyspace) HVals(key string) ([]string, error) {
	var out []string
	err := k.hashView(key, func(h *orderedmap.OrderedMap[string, string]) {
		if h == nil {
			return
		}
		out = make([]string, 0, h.Len())
		for p := h.Oldest(); p != nil; p = p.Next() {
			out = append(out, p.Value)
		}
	})
	return out, err
}

// HIncrBy adds delta to the integer held in field, a missing field starts at "0"
func (k *Keyspace) HIncrBy(key, field string, delta int64) (int64, error) {
	var n int64
	err := k.hashUpdate(key, true, func(h *orderedmap.OrderedMap[string, string]) error {
		cur, ok := h.Get(field)
		if !ok {
			cur = "0"
		}
		res, err := addInt(cur, delta)
		if err != nil {
			return errors.Wrap(err, "hash value")
		}
		h.Set(field, FormatInt(res))
		n = res
		return nil
	})
	return n, err
}

// HIncrByFloat adds delta to the float held in field, a missing field starts at "0"
func (k *Keyspace) HIncrByFloat(key, field string, delta float64) (float64, error) {
	var f float64
	err := k.hashUpdate(key, true, func(h *orderedmap.OrderedMap[string, string]) error {
		cur, ok := h.Get(field)
		if !ok {
			cur = "0"
		}
		res, err := addFloat(cur, delta)
		if err != nil {
			return errors.Wrap(err, "hash value")
		}
		h.Set(field, FormatFloat(res))
		f = res
		return nil
	})
	return f, err
}
