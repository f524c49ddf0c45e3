// Package ratelimit throttles ballot submissions (fixed Redis windows,
// plus a noop mode for when the limit is disabled).
package ratelimit

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campusvote/halalan/internal/domain"
)

var ErrRateLimitExceeded = fmt.Errorf("vote submission limit reached")

// RedisLimiter counts submissions per (voter, election) in fixed windows.
type RedisLimiter struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: prefix,
	}
}

func (r *RedisLimiter) Validate(ctx context.Context, v domain.Vote) error {
	if r.client == nil || r.limit <= 0 || r.window <= 0 {
		// Invalid settings fall back to the permissive mode.
		return nil
	}

	key := r.buildKey(v)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("ratelimit: increment key: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			return fmt.Errorf("ratelimit: set expiry: %w", err)
		}
	}

	if int(count) > r.limit {
		return ErrRateLimitExceeded
	}

	return nil
}

func (r *RedisLimiter) buildKey(v domain.Vote) string {
	// SHA-1 keeps voter ids out of the key namespace.
	base := fmt.Sprintf("%s|%s", v.ElectionID, v.VoterID)
	hash := sha1.Sum([]byte(base))
	return fmt.Sprintf("%s:%s", r.keyPrefix, hex.EncodeToString(hash[:]))
}

var _ domain.VoteLimiter = (*RedisLimiter)(nil)
