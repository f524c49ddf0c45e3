// Package worker drains the side-effect queue: notification fan-out and
// role promotions that the API path queues best-effort.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusvote/halalan/internal/domain"
	"github.com/campusvote/halalan/internal/platform/ids"
	"github.com/campusvote/halalan/internal/platform/logger"
	"github.com/campusvote/halalan/internal/platform/metrics"
)

var ErrUnknownTaskKind = errors.New("unknown task kind")

type TaskProcessor struct {
	notifications domain.NotificationRepository
	profiles      domain.ProfileRepository
	queue         domain.TaskQueue
	clock         domain.Clock
	ids           *ids.Generator
	maxAttempts   int
}

func NewTaskProcessor(
	notifications domain.NotificationRepository,
	profiles domain.ProfileRepository,
	queue domain.TaskQueue,
	clock domain.Clock,
	idsGen *ids.Generator,
	maxAttempts int,
) *TaskProcessor {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &TaskProcessor{
		notifications: notifications,
		profiles:      profiles,
		queue:         queue,
		clock:         clock,
		ids:           idsGen,
		maxAttempts:   maxAttempts,
	}
}

// Run consumes tasks until the context is canceled.
func (p *TaskProcessor) Run(ctx context.Context) error {
	return p.queue.Consume(ctx, p.Process)
}

// Process handles one task. A failing task is re-queued with its attempt
// counter bumped until maxAttempts, then parked on the dead-letter list.
// Process itself returns nil in those cases so the consume loop keeps
// going.
func (p *TaskProcessor) Process(ctx context.Context, task domain.Task) error {
	start := time.Now()
	err := p.handle(ctx, task)
	metrics.ObserveTaskDuration(time.Since(start).Seconds())

	if err == nil {
		metrics.IncTaskProcessed(string(task.Kind), "ok")
		return nil
	}

	logger.Error("worker: task failed",
		"task_id", task.ID,
		"kind", string(task.Kind),
		"attempts", task.Attempts,
		"error", err,
	)

	task.Attempts++
	if task.Attempts >= p.maxAttempts {
		metrics.IncTaskProcessed(string(task.Kind), "dead")
		if pubErr := p.queue.PublishDead(ctx, task); pubErr != nil {
			logger.Error("worker: dead-letter publish failed", "task_id", task.ID, "error", pubErr)
		}
		return nil
	}

	metrics.IncTaskProcessed(string(task.Kind), "retry")
	if pubErr := p.queue.Publish(ctx, task); pubErr != nil {
		logger.Error("worker: requeue failed", "task_id", task.ID, "error", pubErr)
	}
	return nil
}

func (p *TaskProcessor) handle(ctx context.Context, task domain.Task) error {
	switch task.Kind {
	case domain.TaskNotify:
		if task.Notification == nil {
			return fmt.Errorf("notification task without payload")
		}
		return p.notifications.Create(ctx, domain.Notification{
			ID:          domain.NotificationID(p.ids.New()),
			ActorID:     task.Notification.ActorID,
			RecipientID: task.Notification.RecipientID,
			Title:       task.Notification.Title,
			Message:     task.Notification.Message,
			Type:        task.Notification.Type,
			Link:        task.Notification.Link,
			CreatedAt:   p.clock.Now(),
		})

	case domain.TaskPromoteRole:
		if task.Promotion == nil {
			return fmt.Errorf("promotion task without payload")
		}
		return p.profiles.UpdateRole(ctx, task.Promotion.ProfileID, task.Promotion.Role)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownTaskKind, task.Kind)
	}
}
