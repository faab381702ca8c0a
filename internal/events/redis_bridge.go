package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBridge forwards lifecycle events onto a Redis pub/sub channel so
// external consumers can follow the stream.
type RedisBridge struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisBridge creates the bridge.
func NewRedisBridge(client *redis.Client, channel string, logger *zap.Logger) *RedisBridge {
	return &RedisBridge{client: client, channel: channel, logger: logger}
}

// Attach subscribes the bridge to every event type on the dispatcher.
func (b *RedisBridge) Attach(dispatcher Dispatcher) {
	if b == nil || dispatcher == nil {
		return
	}
	for _, eventType := range AllTypes {
		dispatcher.Subscribe(eventType, b.forward)
	}
}

// forward publishes the event as JSON. Delivery is best-effort: a Redis
// failure is logged, never surfaced to the request that emitted the event.
func (b *RedisBridge) forward(ctx context.Context, event Event) error {
	if b.client == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		b.logger.Warn("marshal event", zap.Error(err))
		return nil
	}
	if err := b.client.Publish(ctx, b.channel, body).Err(); err != nil {
		b.logger.Warn("publish event to redis",
			zap.String("channel", b.channel),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
	return nil
}
