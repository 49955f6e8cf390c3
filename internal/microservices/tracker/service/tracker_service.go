package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"oneil-farm-bot/internal/common/logger"
	"oneil-farm-bot/internal/domain"
)

type TrackerServiceInterface interface {
	Apply(ctx context.Context, ev domain.OrderEvent) error
	Board() []OrderView
}

// OrderView is the latest known state of one order, rebuilt from events.
type OrderView struct {
	OrderID      string        `json:"orderId"`
	ShortID      string        `json:"shortId"`
	CustomerName string        `json:"customerName"`
	Status       domain.Status `json:"status"`
	HandledBy    string        `json:"handledBy"`
	Events       int           `json:"events"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// TrackerService keeps a live board of orders fed by the order event feed.
type TrackerService struct {
	mu    sync.Mutex
	views map[string]*OrderView
	lg    *logger.Logger
}

func NewTrackerService(lg *logger.Logger) *TrackerService {
	return &TrackerService{views: make(map[string]*OrderView), lg: lg}
}

// Decode parses one event body.
func Decode(body []byte) (domain.OrderEvent, error) {
	var ev domain.OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return domain.OrderEvent{}, fmt.Errorf("decode order event: %w", err)
	}
	if ev.OrderID == "" || ev.Type == "" {
		return domain.OrderEvent{}, fmt.Errorf("decode order event: missing type or order id")
	}
	return ev, nil
}

// Apply folds ev into the board. Events older than the view are counted but
// do not roll the status back.
func (s *TrackerService) Apply(_ context.Context, ev domain.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[ev.OrderID]
	if !ok {
		v = &OrderView{OrderID: ev.OrderID}
		s.views[ev.OrderID] = v
	}
	v.Events++
	if ev.OccurredAt.Before(v.UpdatedAt) {
		return nil
	}
	v.ShortID = ev.Order.ShortID()
	v.CustomerName = ev.Order.CustomerName
	v.Status = ev.Status
	v.HandledBy = ev.Order.HandledBy
	v.UpdatedAt = ev.OccurredAt

	s.lg.Info("order_event_applied", map[string]any{
		"type": ev.Type, "order_id": ev.OrderID, "status": string(ev.Status), "changed_by": ev.ChangedBy,
	})
	return nil
}

// Board returns the views, most recently updated first.
func (s *TrackerService) Board() []OrderView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]OrderView, 0, len(s.views))
	for _, v := range s.views {
		out = append(out, *v)
	}
	slices.SortFunc(out, func(a, b OrderView) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out
}
