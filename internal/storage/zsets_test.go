package storage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLeaderboard(t *testing.T, k *Keyspace) {
	t.Helper()
	_, err := k.ZAdd("lb",
		ScoredMember{Member: "alice", Score: 2600},
		ScoredMember{Member: "bob", Score: 1800},
		ScoredMember{Member: "carol", Score: 2200},
		ScoredMember{Member: "dave", Score: 2200},
	)
	require.NoError(t, err)
}

func members(items []ScoredMember) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Member
	}
	return out
}

func TestZSets_AddAndIncr(t *testing.T) {
	k := newTestKeyspace(t, 1)
	seedLeaderboard(t, k)

	n, err := k.ZAdd("lb", ScoredMember{Member: "bob", Score: 1900}, ScoredMember{Member: "erin", Score: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	score, err := k.ZIncrBy("lb", 1000, "bob")
	require.NoError(t, err)
	assert.Equal(t, 2900.0, score)

	score, err = k.ZIncrBy("lb", 5, "frank")
	require.NoError(t, err)
	assert.Equal(t, 5.0, score)

	card, _ := k.ZCard("lb")
	assert.Equal(t, 6, card)

	_, err = k.ZAdd("lb", ScoredMember{Member: "x", Score: math.NaN()})
	assert.ErrorIs(t, err, ErrNotAFloat)

	_, err = k.ZAdd("inf", ScoredMember{Member: "x", Score: math.Inf(1)})
	require.NoError(t, err)
	_, err = k.ZIncrBy("inf", math.Inf(-1), "x")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestZSets_Range(t *testing.T) {
	k := newTestKeyspace(t, 1)
	seedLeaderboard(t, k)

	asc, err := k.ZRange("lb", 0, -1, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol", "dave", "alice"}, members(asc), "ties broken by member")

	desc, err := k.ZRange("lb", 0, 2, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "dave", "carol"}, members(desc))
	assert.Equal(t, 2600.0, desc[0].Score)

	desc, err = k.ZRange("lb", -1, -1, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, members(desc))

	empty, err := k.ZRange("lb", 10, 20, true)
	require.NoError(t, err)
	assert.Empty(t, empty)

	empty, err = k.ZRange("missing", 0, -1, false)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestZSets_RankConsistentWithRange(t *testing.T) {
	k := newTestKeyspace(t, 1)
	seedLeaderboard(t, k)

	for _, ascending := range []bool{true, false} {
		items, err := k.ZRange("lb", 0, -1, ascending)
		require.NoError(t, err)
		for i, it := range items {
			rank, ok, err := k.ZRank("lb", it.Member, ascending)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, i, rank)

			score, ok, err := k.ZScore("lb", it.Member)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, it.Score, score)
		}
	}

	_, ok, err := k.ZRank("lb", "nobody", true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestZSets_ScoreBounds(t *testing.T) {
	k := newTestKeyspace(t, 1)
	seedLeaderboard(t, k)

	inf := math.Inf(1)
	tests := []struct {
		name     string
		min, max ScoreBound
		want     []string
	}{
		{"Inclusive", ScoreBound{Value: 1800}, ScoreBound{Value: 2200}, []string{"bob", "carol", "dave"}},
		{"Exclusive min", ScoreBound{Value: 1800, Exclusive: true}, ScoreBound{Value: 2200}, []string{"carol", "dave"}},
		{"Exclusive max", ScoreBound{Value: 1800}, ScoreBound{Value: 2200, Exclusive: true}, []string{"bob"}},
		{"Infinite", ScoreBound{Value: -inf}, ScoreBound{Value: inf}, []string{"bob", "carol", "dave", "alice"}},
		{"Empty", ScoreBound{Value: 3000}, ScoreBound{Value: inf}, []string{}},
		{"Inverted", ScoreBound{Value: 2600}, ScoreBound{Value: 1800}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := k.ZRangeByScore("lb", tt.min, tt.max)
			require.NoError(t, err)
			assert.Equal(t, tt.want, members(got))

			n, err := k.ZCount("lb", tt.min, tt.max)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), n)
		})
	}
}

func TestZSets_RemDeletesEmptyKey(t *testing.T) {
	k := newTestKeyspace(t, 1)
	seedLeaderboard(t, k)

	n, err := k.ZRem("lb", "alice", "bob", "nobody")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = k.ZRem("lb", "carol", "dave")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, TypeNone, k.Type("lb"))
}

func TestSortedSet_UpdateKeepsOrder(t *testing.T) {
	z := newSortedSet()
	z.Set("a", 1)
	z.Set("b", 2)
	z.Set("c", 3)

	assert.False(t, z.Set("a", 5), "update is not an insert")
	assert.Equal(t, []string{"b", "c", "a"}, members(z.Range(0, -1)))

	assert.False(t, z.Set("a", 5))
	assert.Len(t, z.items, 3)
	assert.Len(t, z.dict, 3)
}
