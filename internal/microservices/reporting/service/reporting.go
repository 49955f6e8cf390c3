package service

import (
	"context"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"oneil-farm-bot/internal/domain"
	"oneil-farm-bot/internal/microservices/order/repository"
)

const (
	// SearchPageSize caps search results.
	SearchPageSize = 10
	// DefaultTop is used when a leaderboard size is not positive.
	DefaultTop = 5
	// MaxTop bounds leaderboards rendered in chat surfaces.
	MaxTop = 25
)

var shortIDPattern = regexp.MustCompile(`^[0-9]{6}$`)

type ReportingServiceInterface interface {
	FindByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error)
	FindByDateRange(ctx context.Context, start, end time.Time) ([]domain.Order, error)
	Search(ctx context.Context, term string) (SearchResult, error)
	TopClients(ctx context.Context, n int) ([]ClientTotal, error)
	TopProducts(ctx context.Context, n int) ([]ProductTotal, error)
	PeriodStats(ctx context.Context, period Period) (Stats, error)
	StatusOverview(ctx context.Context) ([]StatusCount, error)
	Today(ctx context.Context) ([]domain.Order, error)
}

type SearchResult struct {
	Term    string         `json:"term"`
	ByID    bool           `json:"byId"`
	Orders  []domain.Order `json:"orders"`
	HasMore bool           `json:"hasMore"`
}

type ClientTotal struct {
	CustomerExternalID string          `json:"customerExternalId"`
	CustomerName       string          `json:"customerName"`
	Total              decimal.Decimal `json:"total"`
	Orders             int             `json:"orders"`
}

type ProductTotal struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type StatusCount struct {
	Status domain.Status `json:"status"`
	Label  string        `json:"label"`
	Count  int           `json:"count"`
}

type Stats struct {
	Period   Period          `json:"period"`
	Start    time.Time       `json:"start"`
	End      time.Time       `json:"end"`
	Count    int             `json:"count"`
	Revenue  decimal.Decimal `json:"revenue"`
	ByStatus []StatusCount   `json:"byStatus"`
}

type ReportingService struct {
	db  repository.OrderRepositoryInterface
	now func() time.Time
}

func NewReportingService(db repository.OrderRepositoryInterface, now func() time.Time) *ReportingService {
	if now == nil {
		now = time.Now
	}
	return &ReportingService{db: db, now: now}
}

func (s *ReportingService) FindByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.db.FindByStatus(ctx, status)
}

func (s *ReportingService) FindByDateRange(ctx context.Context, start, end time.Time) ([]domain.Order, error) {
	return s.db.FindByDateRange(ctx, start, end)
}

// Search treats a six digit term as a short order id, anything else as part
// of a customer name.
func (s *ReportingService) Search(ctx context.Context, term string) (SearchResult, error) {
	term = strings.TrimSpace(term)
	res := SearchResult{Term: term, ByID: shortIDPattern.MatchString(term)}
	if term == "" {
		return res, domain.NewValidationError("term", "is required")
	}

	var (
		orders []domain.Order
		err    error
	)
	// one extra row tells whether another page exists
	if res.ByID {
		orders, err = s.db.SearchByShortID(ctx, term, SearchPageSize+1)
	} else {
		orders, err = s.db.SearchByName(ctx, term, SearchPageSize+1)
	}
	if err != nil {
		return res, err
	}
	if len(orders) > SearchPageSize {
		orders = orders[:SearchPageSize]
		res.HasMore = true
	}
	res.Orders = orders
	return res, nil
}

// TopClients ranks customers by total spent. Ties keep the order in which the
// customers first ordered.
func (s *ReportingService) TopClients(ctx context.Context, n int) ([]ClientTotal, error) {
	orders, err := s.inCreationOrder(ctx)
	if err != nil {
		return nil, err
	}
	type key struct{ id, name string }
	idx := make(map[key]int)
	var out []ClientTotal
	for _, o := range orders {
		k := key{o.CustomerExternalID, o.CustomerName}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, ClientTotal{CustomerExternalID: k.id, CustomerName: k.name, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(o.Total)
		out[i].Orders++
	}
	slices.SortStableFunc(out, func(a, b ClientTotal) int { return b.Total.Cmp(a.Total) })
	return head(out, n), nil
}

// TopProducts ranks products by quantity sold, ignoring non-positive
// quantities.
func (s *ReportingService) TopProducts(ctx context.Context, n int) ([]ProductTotal, error) {
	orders, err := s.inCreationOrder(ctx)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int)
	var out []ProductTotal
	for _, o := range orders {
		for _, it := range o.LineItems {
			if it.Quantity <= 0 {
				continue
			}
			i, ok := idx[it.ProductID]
			if !ok {
				i = len(out)
				idx[it.ProductID] = i
				out = append(out, ProductTotal{ProductID: it.ProductID, ProductName: it.ProductName, Revenue: decimal.Zero})
			}
			out[i].Quantity += it.Quantity
			out[i].Revenue = out[i].Revenue.Add(it.Subtotal())
		}
	}
	slices.SortStableFunc(out, func(a, b ProductTotal) int { return b.Quantity - a.Quantity })
	return head(out, n), nil
}

func (s *ReportingService) PeriodStats(ctx context.Context, period Period) (Stats, error) {
	start, end, err := period.Window(s.now())
	if err != nil {
		return Stats{}, err
	}
	orders, err := s.db.FindByDateRange(ctx, start, end)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Period: period, Start: start, End: end, Count: len(orders), Revenue: decimal.Zero}
	for _, o := range orders {
		st.Revenue = st.Revenue.Add(o.Total)
	}
	st.ByStatus = countByStatus(orders)
	return st, nil
}

func (s *ReportingService) StatusOverview(ctx context.Context) ([]StatusCount, error) {
	orders, err := s.db.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return countByStatus(orders), nil
}

func (s *ReportingService) Today(ctx context.Context) ([]domain.Order, error) {
	start, end, _ := PeriodToday.Window(s.now())
	return s.db.FindByDateRange(ctx, start, end)
}

// inCreationOrder returns all orders oldest first.
func (s *ReportingService) inCreationOrder(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.db.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	slices.Reverse(orders)
	return orders, nil
}

func countByStatus(orders []domain.Order) []StatusCount {
	counts := make(map[domain.Status]int, len(domain.Statuses))
	for _, o := range orders {
		counts[o.Status]++
	}
	out := make([]StatusCount, 0, len(domain.Statuses))
	for _, st := range domain.Statuses {
		out = append(out, StatusCount{Status: st, Label: st.Label(), Count: counts[st]})
	}
	return out
}

// ClampTop applies the default to a non-positive size and bounds it by MaxTop.
func ClampTop(n int) int {
	if n <= 0 {
		return DefaultTop
	}
	return min(n, MaxTop)
}

func head[T any](s []T, n int) []T {
	if n <= 0 {
		n = DefaultTop
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}
