package service

import (
	"context"

	"oneil-farm-bot/internal/domain"
)

// Notifier delivers an order snapshot somewhere and reports success. It must
// not panic; failures are reported as false.
type Notifier func(ctx context.Context, order domain.Order) bool

// Hooks are the two notification side effects of the order lifecycle.
type Hooks struct {
	Customer Notifier
	Staff    Notifier
}

// EventPublisher receives a copy of every order mutation.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.OrderEvent) error
}

func (s *OrderService) call(ctx context.Context, name string, hook Notifier, order domain.Order) bool {
	if hook == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	ok := hook(ctx, order)
	if !ok {
		s.lg.Warn("notification_failed", nil, map[string]any{"hook": name, "order_id": order.ID})
	}
	return ok
}

func (s *OrderService) publish(ctx context.Context, evType string, order domain.Order, by string) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	ev := domain.OrderEvent{
		Type:       evType,
		OrderID:    order.ID,
		Status:     order.Status,
		ChangedBy:  by,
		Order:      order,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.lg.Error("event_publish_failed", err, map[string]any{"type": evType, "order_id": order.ID})
	}
}
