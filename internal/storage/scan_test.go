package storage

import (
	"fmt"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scanAll runs a full cycle and returns every key seen with its multiplicity
func scanAll(t *testing.T, k *Keyspace, opts ScanOptions) map[string]int {
	t.Helper()
	seen := map[string]int{}
	cursor := uint64(0)
	for calls := 0; ; calls++ {
		require.Less(t, calls, 100000, "scan did not terminate")
		next, keys, err := k.Scan(cursor, opts)
		require.NoError(t, err)
		for _, key := range keys {
			seen[key]++
		}
		if next == 0 {
			return seen
		}
		require.Greater(t, next, cursor, "cursor must move forward")
		cursor = next
	}
}

func TestScan_FullCycle(t *testing.T) {
	for _, count := range []int{0, 1, 7, 1000} {
		t.Run(fmt.Sprintf("count=%d", count), func(t *testing.T) {
			k := newTestKeyspace(t, 4)
			for i := 0; i < 100; i++ {
				k.Set(fmt.Sprintf("key:%d", i), "v", SetOptions{})
			}

			seen := scanAll(t, k, ScanOptions{Count: count})
			assert.Len(t, seen, 100)
			for key, n := range seen {
				assert.Equal(t, 1, n, "key %s returned more than once without concurrent writes", key)
			}
		})
	}
}

func TestScan_Empty(t *testing.T) {
	k := newTestKeyspace(t, 2)
	seen := scanAll(t, k, ScanOptions{})
	assert.Empty(t, seen)
}

func TestScan_SkipsExpired(t *testing.T) {
	k := newTestKeyspace(t, 2)
	k.Set("alive", "v", SetOptions{})
	require.NoError(t, k.Put("dead", NewString("v"), time.Now().Add(-time.Second)))

	seen := scanAll(t, k, ScanOptions{})
	assert.Equal(t, map[string]int{"alive": 1}, seen)
}

func TestScan_Match(t *testing.T) {
	k := newTestKeyspace(t, 4)
	for _, key := range []string{"user:1", "user:2", "user:10", "order:1", "hallo", "hello", "hxllo", "h{a}"} {
		k.Set(key, "v", SetOptions{})
	}

	tests := []struct {
		pattern string
		want    []string
	}{
		{"user:*", []string{"user:1", "user:10", "user:2"}},
		{"user:?", []string{"user:1", "user:2"}},
		{"h[ae]llo", []string{"hallo", "hello"}},
		{"h[^e]llo", []string{"hallo", "hxllo"}},
		{"h[a-e]llo", []string{"hallo", "hello"}},
		{"h{a}", []string{"h{a}"}},
		{"*", []string{"hallo", "hello", "hxllo", "h{a}", "order:1", "user:1", "user:10", "user:2"}},
		{"nothing*", nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			seen := scanAll(t, k, ScanOptions{Match: tt.pattern})
			var got []string
			for key := range seen {
				got = append(got, key)
			}
			sort.Strings(got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScan_TypeFilter(t *testing.T) {
	k := newTestKeyspace(t, 2)
	k.Set("s", "v", SetOptions{})
	_, err := k.LPush("l", "a")
	require.NoError(t, err)
	_, err = k.SAdd("set", "a")
	require.NoError(t, err)

	seen := scanAll(t, k, ScanOptions{Type: TypeList})
	assert.Equal(t, map[string]int{"l": 1}, seen)
}

func TestScan_Errors(t *testing.T) {
	k := newTestKeyspace(t, 2)

	_, _, err := k.Scan(2*16, ScanOptions{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = k.Scan(0, ScanOptions{Count: -1})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = k.Scan(0, ScanOptions{Match: "[abc"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestScan_HugeCount(t *testing.T) {
	k := newTestKeyspace(t, 4)
	for i := 0; i < 100; i++ {
		k.Set(fmt.Sprintf("key:%d", i), "v", SetOptions{})
	}

	for _, count := range []int{1 << 20, math.MaxInt64 / 10, math.MaxInt64/10 + 1, math.MaxInt64 / 8, math.MaxInt64} {
		t.Run(fmt.Sprint(count), func(t *testing.T) {
			var (
				next uint64
				keys []string
				err  error
			)
			require.NotPanics(t, func() {
				next, keys, err = k.Scan(0, ScanOptions{Count: count})
			})
			require.NoError(t, err)
			assert.Equal(t, uint64(0), next)
			assert.Len(t, keys, 100)
		})
	}
}

func TestScan_StableKeysSurviveConcurrentWrites(t *testing.T) {
	k := newTestKeyspace(t, 4)
	for i := 0; i < 200; i++ {
		k.Set(fmt.Sprintf("stable:%d", i), "v", SetOptions{})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			key := fmt.Sprintf("churn:%d", i%50)
			if i%2 == 0 {
				k.Set(key, "v", SetOptions{})
			} else {
				k.Delete(key)
			}
		}
	}()

	seen := scanAll(t, k, ScanOptions{Count: 5, Match: "stable:*"})
	<-done

	assert.Len(t, seen, 200)
}
