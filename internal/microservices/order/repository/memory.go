package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"oneil-farm-bot/internal/domain"
)

// MemoryRepository keeps orders in process memory. It backs the "memory"
// store driver and the tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	now    func() time.Time
	orders []domain.Order // insertion order
	index  map[string]int
	log    map[string][]domain.StatusChange
}

func NewMemoryRepository(now func() time.Time) *MemoryRepository {
	if now == nil {
		now = time.Now
	}
	return &MemoryRepository{
		now:   now,
		index: make(map[string]int),
		log:   make(map[string][]domain.StatusChange),
	}
}

func (m *MemoryRepository) AddOrder(_ context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.index[order.ID]; ok {
		return &domain.StoreError{Op: "insert order", Err: fmt.Errorf("duplicate id %s", order.ID)}
	}
	m.index[order.ID] = len(m.orders)
	m.orders = append(m.orders, clone(order))
	m.log[order.ID] = append(m.log[order.ID], domain.StatusChange{
		OrderID: order.ID, Status: order.Status, ChangedBy: CreatedBy, ChangedAt: order.CreatedAt,
	})
	return nil
}

func (m *MemoryRepository) GetOrder(_ context.Context, id string) (domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.index[id]
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return clone(m.orders[i]), nil
}

func (m *MemoryRepository) ListOrders(_ context.Context) ([]domain.Order, error) {
	return m.filter(func(domain.Order) bool { return true }, 0), nil
}

func (m *MemoryRepository) FindByStatus(_ context.Context, status domain.Status) ([]domain.Order, error) {
	return m.filter(func(o domain.Order) bool { return o.Status == status }, 0), nil
}

func (m *MemoryRepository) FindByDateRange(_ context.Context, start, end time.Time) ([]domain.Order, error) {
	return m.filter(func(o domain.Order) bool {
		return !o.CreatedAt.Before(start) && !o.CreatedAt.After(end)
	}, 0), nil
}

func (m *MemoryRepository) SearchByShortID(_ context.Context, suffix string, limit int) ([]domain.Order, error) {
	return m.filter(func(o domain.Order) bool { return strings.HasSuffix(o.ID, suffix) }, limit), nil
}

func (m *MemoryRepository) SearchByName(_ context.Context, term string, limit int) ([]domain.Order, error) {
	needle := strings.ToLower(term)
	return m.filter(func(o domain.Order) bool {
		return strings.Contains(strings.ToLower(o.CustomerName), needle)
	}, limit), nil
}

func (m *MemoryRepository) UpdateStatus(_ context.Context, id string, status domain.Status, handledBy string) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[id]
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	m.orders[i].Status = status
	if handledBy != "" {
		m.orders[i].HandledBy = handledBy
	}
	m.log[id] = append(m.log[id], domain.StatusChange{
		OrderID: id, Status: status, ChangedBy: handledBy, ChangedAt: m.now(),
	})
	return clone(m.orders[i]), nil
}

func (m *MemoryRepository) UpdateComment(_ context.Context, id, comment string) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[id]
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	m.orders[i].Comment = comment
	return clone(m.orders[i]), nil
}

func (m *MemoryRepository) Timeline(_ context.Context, id string) ([]domain.StatusChange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.index[id]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return slices.Clone(m.log[id]), nil
}

// filter returns matching orders newest first, at most limit when limit > 0.
func (m *MemoryRepository) filter(keep func(domain.Order) bool, limit int) []domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Order, 0)
	for i := len(m.orders) - 1; i >= 0; i-- {
		if keep(m.orders[i]) {
			out = append(out, clone(m.orders[i]))
		}
	}
	// walking backwards gives insertion order descending; the stable sort
	// keeps that as the tie-break on equal timestamps
	slices.SortStableFunc(out, func(a, b domain.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func clone(o domain.Order) domain.Order {
	o.LineItems = slices.Clone(o.LineItems)
	return o
}

var _ OrderRepositoryInterface = (*MemoryRepository)(nil)
