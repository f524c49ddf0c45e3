// Package redis implements the side-effect task queue and the live tally
// counters on Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campusvote/halalan/internal/domain"
)

// TaskQueue uses a Redis list to carry best-effort side effects (admin
// notifications, role promotions) out of the request path. Tasks the
// worker gives up on land on the dead-letter key for inspection.
type TaskQueue struct {
	client *redis.Client
	key    string
}

func NewTaskQueue(client *redis.Client, key string) *TaskQueue {
	return &TaskQueue{
		client: client,
		key:    key,
	}
}

func (q *TaskQueue) Publish(ctx context.Context, task domain.Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("redis tasks: marshal task: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("redis tasks: enqueue: %w", err)
	}
	return nil
}

func (q *TaskQueue) PublishDead(ctx context.Context, task domain.Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("redis tasks: marshal dead task: %w", err)
	}
	if err := q.client.LPush(ctx, q.deadKey(), payload).Err(); err != nil {
		return fmt.Errorf("redis tasks: enqueue dead letter: %w", err)
	}
	return nil
}

func (q *TaskQueue) Consume(ctx context.Context, handler func(context.Context, domain.Task) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// BRPOP blocks with a short timeout so the context stays honored.
		res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("redis tasks: consume: %w", err)
		}

		if len(res) != 2 {
			continue
		}

		var task domain.Task
		if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
			return fmt.Errorf("redis tasks: invalid payload: %w", err)
		}

		// The handler owns retries; an error here stops the loop.
		if err := handler(ctx, task); err != nil {
			return err
		}
	}
}

func (q *TaskQueue) deadKey() string {
	return q.key + ":dead"
}

var _ domain.TaskQueue = (*TaskQueue)(nil)
