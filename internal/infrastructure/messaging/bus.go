// Package messaging provides MessageBus adapters for domain events
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/recipewise/server/internal/ports/outbound"
)

// RedisBus publishes messages on Redis pub/sub channels
type RedisBus struct {
	client redis.UniversalClient
	prefix string
	logger *zap.Logger
}

// NewRedisBus creates a bus that publishes to "<prefix><topic>"
func NewRedisBus(client redis.UniversalClient, prefix string, logger *zap.Logger) *RedisBus {
	return &RedisBus{client: client, prefix: prefix, logger: logger.Named("redis-bus")}
}

// Publish encodes the message as JSON and publishes it
func (b *RedisBus) Publish(ctx context.Context, topic string, message outbound.Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	receivers, err := b.client.Publish(ctx, b.prefix+topic, data).Result()
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", message.Type, err)
	}

	b.logger.Debug("Message published",
		zap.String("topic", topic),
		zap.String("type", message.Type),
		zap.Int64("receivers", receivers),
	)
	return nil
}

// LogBus writes messages to the log. Used when Redis is disabled.
type LogBus struct {
	logger *zap.Logger
}

// NewLogBus creates a logging bus
func NewLogBus(logger *zap.Logger) *LogBus {
	return &LogBus{logger: logger.Named("event-log")}
}

// Publish logs the message
func (b *LogBus) Publish(ctx context.Context, topic string, message outbound.Message) error {
	b.logger.Info("Domain event",
		zap.String("topic", topic),
		zap.String("id", message.ID),
		zap.String("type", message.Type),
		zap.ByteString("payload", message.Payload),
		zap.Time("timestamp", message.Timestamp),
	)
	return nil
}
