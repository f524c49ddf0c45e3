package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/campusvote/halalan/internal/domain"
)

// Tally keeps incremental vote counters under prefixed keys so live
// results stay cheap to read while the durable count lives in Postgres.
type Tally struct {
	client *redis.Client
	prefix string
}

func NewTally(client *redis.Client, prefix string) *Tally {
	return &Tally{
		client: client,
		prefix: prefix,
	}
}

func (t *Tally) Incr(ctx context.Context, key string, delta int64) (int64, error) {
	return t.client.IncrBy(ctx, t.key(key), delta).Result()
}

func (t *Tally) Get(ctx context.Context, key string) (int64, error) {
	val, err := t.client.Get(ctx, t.key(key)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

func (t *Tally) GetAll(ctx context.Context, keys []string) (map[string]int64, error) {
	if len(keys) == 0 {
		return map[string]int64{}, nil
	}

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = t.key(k)
	}

	// MGET keeps the full live tally a single round-trip.
	values, err := t.client.MGet(ctx, prefixed...).Result()
	if err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(keys))
	for i, raw := range values {
		if raw == nil {
			result[keys[i]] = 0
			continue
		}

		switch v := raw.(type) {
		case string:
			num, convErr := strconv.ParseInt(v, 10, 64)
			if convErr != nil {
				return nil, fmt.Errorf("redis tally: invalid value for %s: %w", keys[i], convErr)
			}
			result[keys[i]] = num
		case int64:
			result[keys[i]] = v
		default:
			return nil, fmt.Errorf("redis tally: unexpected type %T", raw)
		}
	}

	return result, nil
}

func (t *Tally) key(k string) string {
	if t.prefix == "" {
		return k
	}
	return fmt.Sprintf("%s:%s", t.prefix, k)
}

var _ domain.TallyCounter = (*Tally)(nil)
