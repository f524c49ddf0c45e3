package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTally_IncrAndGet(t *testing.T) {
	_, client := setupRedis(t)
	tally := NewTally(client, "tally")
	ctx := context.Background()

	count, err := tally.Incr(ctx, "election:el-1:total", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = tally.Incr(ctx, "election:el-1:total", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	got, err := tally.Get(ctx, "election:el-1:total")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
}

func TestTally_GetMissingKeyIsZero(t *testing.T) {
	_, client := setupRedis(t)
	tally := NewTally(client, "tally")

	got, err := tally.Get(context.Background(), "election:nope:total")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}

func TestTally_GetAll(t *testing.T) {
	_, client := setupRedis(t)
	tally := NewTally(client, "tally")
	ctx := context.Background()

	_, err := tally.Incr(ctx, "election:el-1:candidate:c-1", 2)
	require.NoError(t, err)
	_, err = tally.Incr(ctx, "election:el-1:candidate:c-2", 1)
	require.NoError(t, err)

	counts, err := tally.GetAll(ctx, []string{
		"election:el-1:candidate:c-1",
		"election:el-1:candidate:c-2",
		"election:el-1:candidate:c-3",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"election:el-1:candidate:c-1": 2,
		"election:el-1:candidate:c-2": 1,
		"election:el-1:candidate:c-3": 0,
	}, counts)
}

func TestTally_PrefixIsolation(t *testing.T) {
	mr, client := setupRedis(t)
	tally := NewTally(client, "tally")

	_, err := tally.Incr(context.Background(), "x", 1)
	require.NoError(t, err)

	assert.True(t, mr.Exists("tally:x"))
	assert.False(t, mr.Exists("x"))
}
