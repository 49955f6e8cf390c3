package service

import (
	"context"
	"strings"

	"oneil-farm-bot/internal/domain"
)

// Transition moves an order to newStatus. Any status may follow any other;
// staff use this to undo mis-clicks. handledBy changes only when actorLabel
// is non-blank. The customer hook runs after the write and its failure does
// not undo it; the returned bool reports whether the customer was notified.
func (s *OrderService) Transition(ctx context.Context, orderID, newStatus, actorLabel string) (domain.Order, bool, error) {
	actorLabel = strings.TrimSpace(actorLabel)
	status, err := domain.ParseStatus(newStatus)
	if err != nil {
		// an unknown id wins over an unknown status
		if _, getErr := s.db.GetOrder(ctx, orderID); getErr != nil {
			return domain.Order{}, false, getErr
		}
		return domain.Order{}, false, err
	}

	order, err := s.db.UpdateStatus(ctx, orderID, status, actorLabel)
	if err != nil {
		return domain.Order{}, false, err
	}
	s.lg.Info("order_status_changed", map[string]any{
		"order_id": order.ID, "status": string(order.Status), "handled_by": order.HandledBy,
	})

	notified := s.call(ctx, "customer", s.hooks.Customer, order)
	s.publish(ctx, domain.EventStatusChanged, order, actorLabel)
	return order, notified, nil
}
