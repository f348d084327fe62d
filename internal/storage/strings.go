package storage

// SetNX writes value only if key does not exist. Returns true if a new entry was created
func (k *Keyspace) SetNX(key, value string) bool {
	return k.Set(key, value, SetOptions{NX: true})
}

// Append appends suffix to the string at key, creating an empty string first if needed.
// Returns the new length
func (k *Keyspace) Append(key, suffix string) (int, error) {
	var n int
	err := k.update(key, func(c *cell) error {
		if err := expect(c.e, TypeString); err != nil {
			return err
		}

		cur := ""
		if c.e != nil {
			cur = c.e.asString()
		}
		c.put(NewString(cur + suffix))
		n = len(cur) + len(suffix)
		return nil
	})
	return n, err
}

// StrLen returns the length of the string at key, 0 if absent
func (k *Keyspace) StrLen(key string) (int, error) {
	var n int
	err := k.view(key, func(e *Entity) error {
		if err := expect(e, TypeString); err != nil {
			return err
		}
		if e != nil {
			n = len(e.asString())
		}
		return nil
	})
	return n, err
}

// IncrBy adds delta to the integer stored at key. A missing key counts as 0
func (k *Keyspace) IncrBy(key string, delta int64) (int64, error) {
	var n int64
	err := k.update(key, func(c *cell) error {
		if err := expect(c.e, TypeString); err != nil {
			return err
		}

		cur := "0"
		if c.e != nil {
			cur = c.e.asString()
		}
		res, err := addInt(cur, delta)
		if err != nil {
			return err
		}
		c.put(NewString(FormatInt(res)))
		n = res
		return nil
	})
	return n, err
}

// IncrByFloat adds delta to the float stored at key. A missing key counts as 0
func (k *Keyspace) IncrByFloat(key string, delta float64) (float64, error) {
	var f float64
	err := k.update(key, func(c *cell) error {
		if err := expect(c.e, TypeString); err != nil {
			return err
		}

		cur := "0"
		if c.e != nil {
			cur = c.e.asString()
		}
		res, err := addFloat(cur, delta)
		if err != nil {
			return err
		}
		c.put(NewString(FormatFloat(res)))
		f = res
		return nil
	})
	return f, err
}
