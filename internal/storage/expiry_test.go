package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiry_ZeroTTLIsAlreadyExpired(t *testing.T) {
	k := newTestKeyspace(t, 1)

	k.Set("k", "v", SetOptions{ExpireAt: time.Now()})

	_, ok, err := k.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, k.Exists("k"))
}

func TestExpiry_LazyDeletionOnAccess(t *testing.T) {
	k := newTestKeyspace(t, 1)
	require.NoError(t, k.Put("l", NewList("a"), time.Now().Add(20*time.Millisecond)))

	time.Sleep(40 * time.Millisecond)

	// still physically present until touched
	assert.Equal(t, 1, k.shards[0].count)

	n, err := k.LLen("l")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, k.shards[0].count)
	assert.Empty(t, k.shards[0].expires)
}

func TestExpiry_ExpiredKeyIsReplacedByWrite(t *testing.T) {
	k := newTestKeyspace(t, 1)
	require.NoError(t, k.Put("k", NewHash(FieldValue{"f", "v"}), time.Now().Add(-time.Second)))

	// an expired hash must not cause a type mismatch
	n, err := k.LPush("k", "a")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, status := k.Expiry("k")
	assert.Equal(t, ExpNoTimeout, status)
}

func TestExpiry_Codes(t *testing.T) {
	k := newTestKeyspace(t, 1)

	_, status := k.Expiry("missing")
	assert.Equal(t, ExpNotFound, status)

	k.Set("persistent", "v", SetOptions{})
	_, status = k.Expiry("persistent")
	assert.Equal(t, ExpNoTimeout, status)

	assert.True(t, k.Expire("persistent", time.Now().Add(10*time.Second)))
	ttl, status := k.Expiry("persistent")
	assert.Equal(t, ExpActive, status)
	assert.InDelta(t, float64(10*time.Second), float64(ttl), float64(time.Second))

	assert.False(t, k.Expire("missing", time.Now().Add(time.Second)))
}

func TestExpiry_ExpireInThePastDeletes(t *testing.T) {
	k := newTestKeyspace(t, 1)
	k.Set("k", "v", SetOptions{})

	assert.True(t, k.Expire("k", time.Now().Add(-time.Second)))
	assert.Equal(t, 0, k.Exists("k"))
}

func TestExpiry_Persist(t *testing.T) {
	k := newTestKeyspace(t, 1)

	assert.False(t, k.Persist("missing"))

	k.Set("k", "v", SetOptions{})
	assert.False(t, k.Persist("k"), "key without deadline")

	k.Expire("k", time.Now().Add(time.Minute))
	assert.True(t, k.Persist("k"))
	_, status := k.Expiry("k")
	assert.Equal(t, ExpNoTimeout, status)
}

func TestExpiry_DeleteExpired(t *testing.T) {
	k := newTestKeyspace(t, 4)
	past := time.Now().Add(-time.Second)

	for i := 0; i < 40; i++ {
		k.Set(fmt.Sprintf("dead-%d", i), "v", SetOptions{ExpireAt: past})
	}
	for i := 0; i < 10; i++ {
		k.Set(fmt.Sprintf("alive-%d", i), "v", SetOptions{ExpireAt: time.Now().Add(time.Hour)})
		k.Set(fmt.Sprintf("eternal-%d", i), "v", SetOptions{})
	}

	for i := 0; i < 20 && k.DeleteExpired(100) > 0; i++ {
	}

	physical := 0
	for _, sh := range k.shards {
		physical += sh.count
	}
	assert.Equal(t, 20, physical)
	assert.Equal(t, 20, k.Size())
}

func TestExpiry_DeleteExpiredEmpty(t *testing.T) {
	k := newTestKeyspace(t, 2)
	k.Set("k", "v", SetOptions{})

	assert.Equal(t, 0.0, k.DeleteExpired(20))
}
