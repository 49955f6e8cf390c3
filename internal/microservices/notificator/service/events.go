package service

import (
	"context"

	"oneil-farm-bot/internal/domain"
)

// JSONPublisher publishes a JSON document under a routing key.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// EventFeed forwards order events to the message broker, keyed by event type.
type EventFeed struct {
	pub JSONPublisher
}

func NewEventFeed(pub JSONPublisher) *EventFeed { return &EventFeed{pub: pub} }

func (f *EventFeed) Publish(ctx context.Context, ev domain.OrderEvent) error {
	return f.pub.PublishJSON(ctx, ev.Type, ev)
}
