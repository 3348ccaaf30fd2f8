// Package events forwards domain events from aggregates to the message bus.
package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipewise/server/internal/domain/shared"
	"github.com/recipewise/server/internal/ports/outbound"
)

// Publisher drains aggregate events onto a MessageBus. Publishing is
// best-effort: failures are logged and never surface to the caller.
type Publisher struct {
	bus    outbound.MessageBus
	logger *zap.Logger
}

// NewPublisher creates a publisher. A nil bus discards events.
func NewPublisher(bus outbound.MessageBus, logger *zap.Logger) *Publisher {
	return &Publisher{bus: bus, logger: logger.Named("event-publisher")}
}

// Publish sends each event to outbound.EventsTopic
func (p *Publisher) Publish(ctx context.Context, events []shared.DomainEvent) {
	if p == nil || p.bus == nil {
		return
	}

	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("Failed to encode event", zap.String("event", event.EventName()), zap.Error(err))
			continue
		}

		msg := outbound.Message{
			ID:        uuid.NewString(),
			Type:      event.EventName(),
			Payload:   payload,
			Timestamp: event.OccurredAt(),
		}
		if err := p.bus.Publish(ctx, outbound.EventsTopic, msg); err != nil {
			p.logger.Warn("Failed to publish event",
				zap.String("event", event.EventName()),
				zap.Error(err),
			)
		}
	}
}
