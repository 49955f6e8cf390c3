package service

import (
	"time"

	"github.com/google/uuid"

	"oneil-farm-bot/internal/common/logger"
	"oneil-farm-bot/internal/microservices/order/repository"
)

type Service struct {
	OrderService OrderServiceInterface
}

// Deps carries everything the order service needs; the hooks are configured
// once at process start.
type Deps struct {
	Repo          repository.OrderRepositoryInterface
	Hooks         Hooks
	Events        EventPublisher
	Logger        *logger.Logger
	NotifyTimeout time.Duration
	Now           func() time.Time
	NewID         func() string
}

func New(d Deps) *Service {
	return &Service{
		OrderService: NewOrderService(d),
	}
}

func (d *Deps) setDefaults() {
	if d.Logger == nil {
		d.Logger = logger.New("order-service")
	}
	if d.NotifyTimeout <= 0 {
		d.NotifyTimeout = 5 * time.Second
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
}
