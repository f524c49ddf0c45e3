package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusvote/halalan/internal/domain"
)

func setupLimiter(t *testing.T, limit int, window time.Duration) (*miniredis.Miniredis, *RedisLimiter) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisLimiter(client, limit, window, "ratelimit")
}

func TestRedisLimiter_AllowsUpToLimit(t *testing.T) {
	_, limiter := setupLimiter(t, 3, time.Minute)
	ctx := context.Background()

	vote := domain.Vote{ElectionID: "el-1", VoterID: "voter-1"}
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Validate(ctx, vote))
	}

	err := limiter.Validate(ctx, vote)
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
}

func TestRedisLimiter_WindowExpiry(t *testing.T) {
	mr, limiter := setupLimiter(t, 1, time.Minute)
	ctx := context.Background()

	vote := domain.Vote{ElectionID: "el-1", VoterID: "voter-1"}
	require.NoError(t, limiter.Validate(ctx, vote))
	assert.ErrorIs(t, limiter.Validate(ctx, vote), ErrRateLimitExceeded)

	mr.FastForward(61 * time.Second)
	assert.NoError(t, limiter.Validate(ctx, vote))
}

func TestRedisLimiter_KeysAreIndependentPerVoter(t *testing.T) {
	_, limiter := setupLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.Validate(ctx, domain.Vote{ElectionID: "el-1", VoterID: "voter-1"}))
	assert.NoError(t, limiter.Validate(ctx, domain.Vote{ElectionID: "el-1", VoterID: "voter-2"}))
	assert.NoError(t, limiter.Validate(ctx, domain.Vote{ElectionID: "el-2", VoterID: "voter-1"}))
}

func TestRedisLimiter_DisabledSettingsPass(t *testing.T) {
	_, limiter := setupLimiter(t, 0, time.Minute)
	assert.NoError(t, limiter.Validate(context.Background(), domain.Vote{ElectionID: "el-1", VoterID: "voter-1"}))
}

func TestNoopAlwaysPasses(t *testing.T) {
	limiter := NewNoop()
	for i := 0; i < 10; i++ {
		assert.NoError(t, limiter.Validate(context.Background(), domain.Vote{ElectionID: "el-1", VoterID: "voter-1"}))
	}
}
