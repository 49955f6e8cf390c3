package domain

import "time"

const (
	EventOrderCreated   = "order.created"
	EventStatusChanged  = "order.status_changed"
	EventCommentUpdated = "order.comment_updated"
)

// OrderEvent is published on the order event feed after every mutation.
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	Status     Status    `json:"status"`
	ChangedBy  string    `json:"changed_by,omitempty"`
	Order      Order     `json:"order"`
	OccurredAt time.Time `json:"occurred_at"`
}
