package outbound

import (
	"context"
	"time"
)

// EventsTopic carries every domain event
const EventsTopic = "recipewise.events"

// MessageBus defines the interface for publishing messages
type MessageBus interface {
	Publish(ctx context.Context, topic string, message Message) error
}

// Message represents a message to be published
type Message struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Payload   []byte            `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
