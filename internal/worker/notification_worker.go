package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civicwatch/hazard-service/internal/events"
	"github.com/civicwatch/hazard-service/internal/service"
)

// NotificationWorker drains the Redis event queue and hands each event to
// the notification service. Malformed entries are dropped with a log line;
// delivery failures never requeue.
type NotificationWorker struct {
	client        *redis.Client
	queue         string
	notifications *service.NotificationService
	logger        *zap.Logger
}

// NewNotificationWorker builds the worker.
func NewNotificationWorker(client *redis.Client, queue string, notifications *service.NotificationService, logger *zap.Logger) *NotificationWorker {
	return &NotificationWorker{
		client:        client,
		queue:         queue,
		notifications: notifications,
		logger:        logger,
	}
}

// Run blocks consuming the queue until ctx is cancelled.
func (w *NotificationWorker) Run(ctx context.Context) {
	w.logger.Info("notification worker started", zap.String("queue", w.queue))
	for {
		entry, err := w.client.BRPop(ctx, 5*time.Second, w.queue).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				w.logger.Info("notification worker stopped")
				return
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			w.logger.Warn("event queue pop failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if len(entry) < 2 {
			continue
		}

		var event events.Event
		if err := json.Unmarshal([]byte(entry[1]), &event); err != nil {
			w.logger.Warn("drop malformed event", zap.Error(err))
			continue
		}
		_ = w.notifications.Handle(ctx, event)
	}
}
