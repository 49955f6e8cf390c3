package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"oneil-farm-bot/internal/common/logger"
	"oneil-farm-bot/internal/domain"
	"oneil-farm-bot/internal/microservices/order/repository"
)

// TotalTolerance is how far a caller-supplied total may drift from the
// recomputed one before the submission is rejected.
var TotalTolerance = decimal.RequireFromString("0.01")

type OrderServiceInterface interface {
	SubmitOrder(ctx context.Context, in domain.OrderInput) (domain.SubmitResult, error)
	Transition(ctx context.Context, orderID, newStatus, actorLabel string) (domain.Order, bool, error)
	UpdateComment(ctx context.Context, orderID, comment string) (domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	Timeline(ctx context.Context, orderID string) ([]domain.StatusChange, error)
}

type OrderService struct {
	db            repository.OrderRepositoryInterface
	hooks         Hooks
	events        EventPublisher
	lg            *logger.Logger
	notifyTimeout time.Duration
	now           func() time.Time
	newID         func() string
}

func NewOrderService(d Deps) *OrderService {
	d.setDefaults()
	return &OrderService{
		db:            d.Repo,
		hooks:         d.Hooks,
		events:        d.Events,
		lg:            d.Logger,
		notifyTimeout: d.NotifyTimeout,
		now:           d.Now,
		newID:         d.NewID,
	}
}

func (s *OrderService) SubmitOrder(ctx context.Context, in domain.OrderInput) (domain.SubmitResult, error) {
	// 1. Basic validation
	order, err := s.validate(in)
	if err != nil {
		return domain.SubmitResult{}, err
	}

	// 2. Save order in database
	order.ID = s.newID()
	order.Status = domain.StatusPending
	order.CreatedAt = s.now()
	if err := s.db.AddOrder(ctx, order); err != nil {
		return domain.SubmitResult{}, fmt.Errorf("failed to save order: %w", err)
	}
	s.lg.Info("order_created", map[string]any{
		"order_id": order.ID, "total": order.Total.StringFixed(2), "items": len(order.LineItems),
	})

	// 3. Notify; the order stays created whatever happens here
	res := domain.SubmitResult{Order: order}
	res.CustomerNotified = s.call(ctx, "customer", s.hooks.Customer, order)
	res.StaffNotified = s.call(ctx, "staff", s.hooks.Staff, order)
	s.publish(ctx, domain.EventOrderCreated, order, repository.CreatedBy)

	return res, nil
}

func (s *OrderService) validate(in domain.OrderInput) (domain.Order, error) {
	o := domain.Order{
		CustomerExternalID: strings.TrimSpace(in.CustomerExternalID),
		CustomerName:       strings.TrimSpace(in.CustomerName),
		CustomerPhone:      strings.TrimSpace(in.CustomerPhone),
	}
	switch {
	case o.CustomerExternalID == "":
		return domain.Order{}, domain.NewValidationError("customerExternalId", "is required")
	case o.CustomerName == "":
		return domain.Order{}, domain.NewValidationError("customerName", "is required")
	case o.CustomerPhone == "":
		return domain.Order{}, domain.NewValidationError("customerPhone", "is required")
	case len(in.LineItems) == 0:
		return domain.Order{}, domain.NewValidationError("lineItems", "at least one item is required")
	}

	o.LineItems = make([]domain.LineItem, 0, len(in.LineItems))
	for i, item := range in.LineItems {
		item.ProductID = strings.TrimSpace(item.ProductID)
		item.ProductName = strings.TrimSpace(item.ProductName)
		field := fmt.Sprintf("lineItems[%d]", i)
		if item.ProductID == "" {
			return domain.Order{}, domain.NewValidationError(field+".productId", "is required")
		}
		if item.ProductName == "" {
			item.ProductName = item.ProductID
		}
		if item.Quantity < 1 {
			return domain.Order{}, domain.NewValidationError(field+".quantity", "must be at least 1")
		}
		if item.UnitPrice.IsNegative() {
			return domain.Order{}, domain.NewValidationError(field+".unitPrice", "must not be negative")
		}
		o.LineItems = append(o.LineItems, item)
	}

	// 3. Calculate total amount; the caller's figure is only cross-checked
	o.Total = domain.ComputeTotal(o.LineItems)
	if in.Total != nil && in.Total.Sub(o.Total).Abs().GreaterThan(TotalTolerance) {
		return domain.Order{}, domain.NewValidationError("total",
			fmt.Sprintf("does not match line items (expected %s)", o.Total.StringFixed(2)))
	}
	return o, nil
}

func (s *OrderService) UpdateComment(ctx context.Context, orderID, comment string) (domain.Order, error) {
	order, err := s.db.UpdateComment(ctx, orderID, comment)
	if err != nil {
		return domain.Order{}, err
	}
	s.publish(ctx, domain.EventCommentUpdated, order, "")
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.db.GetOrder(ctx, orderID)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.db.ListOrders(ctx)
}

func (s *OrderService) Timeline(ctx context.Context, orderID string) ([]domain.StatusChange, error) {
	return s.db.Timeline(ctx, orderID)
}
