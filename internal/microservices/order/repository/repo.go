package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"oneil-farm-bot/internal/domain"
)

// OrderRepositoryInterface is the Order Store. All list results are ordered
// newest first; ties on created_at fall back to insertion order.
type OrderRepositoryInterface interface {
	AddOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	FindByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error)
	FindByDateRange(ctx context.Context, start, end time.Time) ([]domain.Order, error)
	SearchByShortID(ctx context.Context, suffix string, limit int) ([]domain.Order, error)
	SearchByName(ctx context.Context, term string, limit int) ([]domain.Order, error)
	// UpdateStatus sets the status and, when handledBy is non-empty, the handler.
	UpdateStatus(ctx context.Context, id string, status domain.Status, handledBy string) (domain.Order, error)
	UpdateComment(ctx context.Context, id, comment string) (domain.Order, error)
	Timeline(ctx context.Context, id string) ([]domain.StatusChange, error)
}

// CreatedBy is recorded in the status log for the initial status.
const CreatedBy = "order-service"

type Repository struct {
	OrderRepo OrderRepositoryInterface
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{
		OrderRepo: NewOrderRepository(pool),
	}
}

func NewInMemory(now func() time.Time) *Repository {
	return &Repository{
		OrderRepo: NewMemoryRepository(now),
	}
}
