package storage

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLists_PushOrder(t *testing.T) {
	k := newTestKeyspace(t, 1)

	n, err := k.LPush("l", "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = k.RPush("l", "x", "y")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	got, err := k.LRange("l", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a", "x", "y"}, got)
}

func TestLists_Range(t *testing.T) {
	k := newTestKeyspace(t, 1)
	_, err := k.RPush("l", "a", "b", "c", "d", "e")
	require.NoError(t, err)

	tests := []struct {
		name        string
		start, stop int
		want        []string
	}{
		{"All", 0, -1, []string{"a", "b", "c", "d", "e"}},
		{"Head", 0, 1, []string{"a", "b"}},
		{"Tail negative", -2, -1, []string{"d", "e"}},
		{"Stop clamped", 3, 100, []string{"d", "e"}},
		{"Start clamped", -100, 0, []string{"a"}},
		{"Start after stop", 3, 1, []string{}},
		{"Start past end", 5, 10, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := k.LRange("l", tt.start, tt.stop)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := k.LRange("missing", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got)
}

func TestLists_PopDeletesEmptyKey(t *testing.T) {
	k := newTestKeyspace(t, 1)
	_, err := k.RPush("queue", "job1", "job2")
	require.NoError(t, err)

	v, ok, err := k.LPop("queue")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "job1", v)

	v, ok, err = k.RPop("queue")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "job2", v)

	assert.Equal(t, TypeNone, k.Type("queue"))

	_, ok, err = k.LPop("queue")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLists_IndexAndSet(t *testing.T) {
	k := newTestKeyspace(t, 1)
	_, err := k.RPush("l", "a", "b", "c")
	require.NoError(t, err)

	v, ok, err := k.LIndex("l", -1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c", v)

	_, ok, err = k.LIndex("l", 3)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, k.LSet("l", 1, "B"))
	v, _, _ = k.LIndex("l", 1)
	assert.Equal(t, "B", v)

	assert.ErrorIs(t, k.LSet("l", 10, "x"), ErrIndexOutOfRange)
	assert.ErrorIs(t, k.LSet("missing", 0, "x"), ErrKeyNotFound)
}

func TestLists_Insert(t *testing.T) {
	k := newTestKeyspace(t, 1)
	_, err := k.RPush("l", "a", "c")
	require.NoError(t, err)

	n, err := k.LInsert("l", true, "c", "b")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = k.LInsert("l", false, "c", "d")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = k.LInsert("l", true, "zzz", "x")
	require.NoError(t, err)
	assert.Equal(t, -1, n)

	n, err = k.LInsert("missing", true, "a", "x")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, k.Exists("missing"))

	got, _ := k.LRange("l", 0, -1)
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

func TestLists_Rem(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		removed int
		want    []string
	}{
		{"From head", 2, 2, []string{"b", "x", "c", "x"}},
		{"From tail", -2, 2, []string{"x", "b", "x", "c"}},
		{"All", 0, 4, []string{"b", "c"}},
		{"More than present", 10, 4, []string{"b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := newTestKeyspace(t, 1)
			_, err := k.RPush("l", "x", "b", "x", "x", "c", "x")
			require.NoError(t, err)

			n, err := k.LRem("l", tt.count, "x")
			require.NoError(t, err)
			assert.Equal(t, tt.removed, n)

			got, _ := k.LRange("l", 0, -1)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLists_Trim(t *testing.T) {
	k := newTestKeyspace(t, 1)
	_, err := k.RPush("l", "a", "b", "c", "d")
	require.NoError(t, err)

	require.NoError(t, k.LTrim("l", 1, -2))
	got, _ := k.LRange("l", 0, -1)
	assert.Equal(t, []string{"b", "c"}, got)

	require.NoError(t, k.LTrim("l", 5, 10))
	assert.Equal(t, TypeNone, k.Type("l"), "trim to empty deletes the key")
}

func TestLists_CappedFeed(t *testing.T) {
	k := newTestKeyspace(t, 1)

	for _, post := range []string{"a", "b", "c", "d", "e", "f"} {
		_, err := k.LPush("feed", post)
		require.NoError(t, err)
		require.NoError(t, k.LTrim("feed", 0, 4))
	}

	got, err := k.LRange("feed", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"f", "e", "d", "c", "b"}, got)
}

func TestLists_PushCapped(t *testing.T) {
	k := newTestKeyspace(t, 1)

	for _, post := range []string{"a", "b", "c", "d", "e", "f"} {
		n, err := k.PushCapped("feed", Left, 5, post)
		require.NoError(t, err)
		assert.LessOrEqual(t, n, 5)
	}
	got, _ := k.LRange("feed", 0, -1)
	assert.Equal(t, []string{"f", "e", "d", "c", "b"}, got)

	n, err := k.PushCapped("log", Right, 2, "1", "2", "3")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	got, _ = k.LRange("log", 0, -1)
	assert.Equal(t, []string{"2", "3"}, got)

	_, err = k.PushCapped("log", Right, 0, "x")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLists_Move(t *testing.T) {
	k := newTestKeyspace(t, 4)
	_, err := k.RPush("src", "a", "b", "c")
	require.NoError(t, err)

	v, ok, err := k.LMove("src", "dst", Right, Left)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c", v)

	got, _ := k.LRange("dst", 0, -1)
	assert.Equal(t, []string{"c"}, got)

	// rotation
	v, ok, err = k.LMove("src", "src", Left, Right)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", v)
	got, _ = k.LRange("src", 0, -1)
	assert.Equal(t, []string{"b", "a"}, got)

	_, ok, err = k.LMove("missing", "dst", Left, Left)
	require.NoError(t, err)
	assert.False(t, ok)

	k.Set("str", "v", SetOptions{})
	_, _, err = k.LMove("src", "str", Left, Left)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Equal(t, 2, mustLLen(t, k, "src"), "failed move must not pop")

	_, _, err = k.LMove("src", "dst", Left, Left)
	require.NoError(t, err)
	_, _, err = k.LMove("src", "dst", Left, Left)
	require.NoError(t, err)
	assert.Equal(t, TypeNone, k.Type("src"))
	assert.Equal(t, 3, mustLLen(t, k, "dst"))
}

func TestLists_MoveIsAtomic(t *testing.T) {
	k := newTestKeyspace(t, 8)
	const total = 200

	for i := 0; i < total; i++ {
		_, err := k.RPush("pending", fmt.Sprintf("job-%d", i))
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			// element count seen across both lists must never change
			var sum int
			k.updateMany([]string{"pending", "processing"}, func(now int64) error { //nolint:errcheck
				for _, key := range []string{"pending", "processing"} {
					if c := k.cellLocked(key, now); c.e != nil {
						sum += c.e.Len()
					}
				}
				return nil
			})
			if sum != total {
				t.Errorf("observed %d elements, want %d", sum, total)
				return
			}
		}
	}()

	for i := 0; i < total; i++ {
		_, ok, err := k.LMove("pending", "processing", Left, Right)
		require.NoError(t, err)
		require.True(t, ok)
	}
	close(stop)
	wg.Wait()

	assert.Equal(t, 0, k.Exists("pending"))
	assert.Equal(t, total, mustLLen(t, k, "processing"))
}

func TestLists_WrongType(t *testing.T) {
	k := newTestKeyspace(t, 1)
	_, err := k.SAdd("s", "a")
	require.NoError(t, err)

	_, err = k.LPush("s", "x")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = k.LRange("s", 0, -1)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = k.LPush("l")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func mustLLen(t *testing.T, k *Keyspace, key string) int {
	t.Helper()
	n, err := k.LLen(key)
	require.NoError(t, err)
	return n
}
