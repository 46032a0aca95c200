package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisDispatcher pushes events onto a Redis list consumed by the
// notification worker. Publication is fire-and-forget: push failures are
// logged and never block the triggering transaction.
type redisDispatcher struct {
	client *redis.Client
	queue  string
	logger *zap.Logger
}

// NewRedisDispatcher creates a queue-backed dispatcher.
func NewRedisDispatcher(client *redis.Client, queue string, logger *zap.Logger) Dispatcher {
	return &redisDispatcher{client: client, queue: queue, logger: logger}
}

func (d *redisDispatcher) Publish(ctx context.Context, event Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		d.logger.Warn("drop undeliverable event", zap.String("type", string(event.Type)), zap.Error(err))
		return nil
	}
	if err := d.client.LPush(ctx, d.queue, raw).Err(); err != nil {
		d.logger.Warn("event queue push failed",
			zap.String("type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
	return nil
}

// Subscribe is a no-op for the queue dispatcher; consumption happens in
// the worker via BRPOP.
func (d *redisDispatcher) Subscribe(EventType, EventHandler) {}
