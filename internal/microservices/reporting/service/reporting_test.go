package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oneil-farm-bot/internal/domain"
	"oneil-farm-bot/internal/microservices/order/repository"
)

// Wednesday
var now = time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type seed struct {
	id, extID, name string
	at              time.Time
	status          domain.Status
	items           []domain.LineItem
}

func item(id string, qty int, price string) domain.LineItem {
	return domain.LineItem{ProductID: id, ProductName: "Produit " + id, Quantity: qty, UnitPrice: dec(price)}
}

func newService(t *testing.T, seeds ...seed) (*ReportingService, *repository.MemoryRepository) {
	t.Helper()
	repo := repository.NewMemoryRepository(func() time.Time { return now })
	for _, s := range seeds {
		st := s.status
		if st == "" {
			st = domain.StatusPending
		}
		require.NoError(t, repo.AddOrder(context.Background(), domain.Order{
			ID:                 s.id,
			CustomerExternalID: s.extID,
			CustomerName:       s.name,
			CustomerPhone:      "555",
			LineItems:          s.items,
			Total:              domain.ComputeTotal(s.items),
			Status:             st,
			CreatedAt:          s.at,
		}))
	}
	return NewReportingService(repo, func() time.Time { return now }), repo
}

func TestTopClients(t *testing.T) {
	svc, _ := newService(t,
		seed{id: "1", extID: "u1", name: "Alice", at: now.Add(-5 * time.Hour), items: []domain.LineItem{item("a", 1, "10")}},
		seed{id: "2", extID: "u2", name: "Bob", at: now.Add(-4 * time.Hour), items: []domain.LineItem{item("a", 3, "10")}},
		seed{id: "3", extID: "u1", name: "Alice", at: now.Add(-3 * time.Hour), items: []domain.LineItem{item("b", 2, "5.50")}},
		seed{id: "4", extID: "u3", name: "Chloé", at: now.Add(-2 * time.Hour), items: []domain.LineItem{item("b", 1, "4")}},
		seed{id: "5", extID: "u4", name: "Denis", at: now.Add(-1 * time.Hour), items: []domain.LineItem{item("c", 1, "4")}},
	)

	got, err := svc.TopClients(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Bob", got[0].CustomerName)
	assert.True(t, dec("30").Equal(got[0].Total))
	assert.Equal(t, 1, got[0].Orders)

	assert.Equal(t, "Alice", got[1].CustomerName)
	assert.True(t, dec("21").Equal(got[1].Total))
	assert.Equal(t, 2, got[1].Orders)

	// Chloé and Denis tie; Chloé ordered first
	assert.Equal(t, "Chloé", got[2].CustomerName)

	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Total.GreaterThan(got[i-1].Total))
	}
}

func TestTopClientsDefaultAndLargeN(t *testing.T) {
	var seeds []seed
	for i := 0; i < 30; i++ {
		seeds = append(seeds, seed{
			id: fmt.Sprint(i), extID: fmt.Sprint("u", i), name: fmt.Sprint("C", i),
			at: now.Add(-time.Duration(i) * time.Minute), items: []domain.LineItem{item("a", 1, "1")},
		})
	}
	svc, _ := newService(t, seeds...)

	got, err := svc.TopClients(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultTop)

	got, err = svc.TopClients(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, got, 30)

	got, err = svc.TopClients(context.Background(), 27)
	require.NoError(t, err)
	assert.Len(t, got, 27)
}

func TestClampTop(t *testing.T) {
	assert.Equal(t, DefaultTop, ClampTop(0))
	assert.Equal(t, DefaultTop, ClampTop(-3))
	assert.Equal(t, 7, ClampTop(7))
	assert.Equal(t, MaxTop, ClampTop(MaxTop))
	assert.Equal(t, MaxTop, ClampTop(100))
}

func TestTopProductsIgnoresNonPositiveQuantities(t *testing.T) {
	svc, _ := newService(t,
		seed{id: "1", extID: "u1", name: "A", at: now.Add(-2 * time.Hour), items: []domain.LineItem{
			item("oeufs", 2, "3.50"), item("lait", 0, "100"), item("miel", -3, "100"),
		}},
		seed{id: "2", extID: "u2", name: "B", at: now.Add(-time.Hour), items: []domain.LineItem{
			item("lait", 1, "5"), item("oeufs", 4, "3.50"),
		}},
	)

	got, err := svc.TopProducts(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "oeufs", got[0].ProductID)
	assert.Equal(t, 6, got[0].Quantity)
	assert.True(t, dec("21").Equal(got[0].Revenue))

	assert.Equal(t, "lait", got[1].ProductID)
	assert.Equal(t, 1, got[1].Quantity)
	assert.True(t, dec("5").Equal(got[1].Revenue))
}

func TestSearch(t *testing.T) {
	svc, _ := newService(t,
		seed{id: "aaaa-000000123456", extID: "u1", name: "Jean Dupont", at: now.Add(-3 * time.Hour), items: []domain.LineItem{item("a", 1, "1")}},
		seed{id: "bbbb-000000999999", extID: "u2", name: "Marie Dupuis", at: now.Add(-2 * time.Hour), items: []domain.LineItem{item("a", 1, "1")}},
		seed{id: "cccc-000000123456", extID: "u3", name: "Paul Martin", at: now.Add(-1 * time.Hour), items: []domain.LineItem{item("a", 1, "1")}},
	)
	ctx := context.Background()

	res, err := svc.Search(ctx, "123456")
	require.NoError(t, err)
	assert.True(t, res.ByID)
	require.Len(t, res.Orders, 2)
	for _, o := range res.Orders {
		assert.Equal(t, "123456", o.ShortID())
	}
	assert.Equal(t, "cccc-000000123456", res.Orders[0].ID)

	res, err = svc.Search(ctx, "Dup")
	require.NoError(t, err)
	assert.False(t, res.ByID)
	require.Len(t, res.Orders, 2)
	assert.Equal(t, "Marie Dupuis", res.Orders[0].CustomerName)
	assert.False(t, res.HasMore)

	res, err = svc.Search(ctx, "12345")
	require.NoError(t, err)
	assert.False(t, res.ByID)
	assert.Empty(t, res.Orders)

	_, err = svc.Search(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSearchHasMore(t *testing.T) {
	var seeds []seed
	for i := 0; i < SearchPageSize+2; i++ {
		seeds = append(seeds, seed{
			id: fmt.Sprint("id-", i), extID: "u", name: "Dupont",
			at: now.Add(-time.Duration(i) * time.Minute), items: []domain.LineItem{item("a", 1, "1")},
		})
	}
	svc, _ := newService(t, seeds...)

	res, err := svc.Search(context.Background(), "dupont")
	require.NoError(t, err)
	assert.Len(t, res.Orders, SearchPageSize)
	assert.True(t, res.HasMore)
	assert.Equal(t, "id-0", res.Orders[0].ID)
}

func TestPeriodStats(t *testing.T) {
	svc, _ := newService(t,
		seed{id: "today", extID: "u1", name: "A", at: now.Add(-time.Hour), status: domain.StatusDelivered, items: []domain.LineItem{item("a", 2, "3.50")}},
		seed{id: "sunday", extID: "u1", name: "A", at: time.Date(2025, 6, 8, 9, 0, 0, 0, time.UTC), items: []domain.LineItem{item("a", 1, "5")}},
		seed{id: "june1", extID: "u1", name: "A", at: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), items: []domain.LineItem{item("a", 1, "1")}},
		seed{id: "may", extID: "u1", name: "A", at: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), items: []domain.LineItem{item("a", 1, "100")}},
	)
	ctx := context.Background()

	tests := []struct {
		period  Period
		count   int
		revenue string
	}{
		{PeriodToday, 1, "7"},
		{PeriodWeek, 2, "12"},
		{PeriodMonth, 3, "13"},
		{PeriodAll, 4, "113"},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			st, err := svc.PeriodStats(ctx, tt.period)
			require.NoError(t, err)
			assert.Equal(t, tt.count, st.Count)
			assert.True(t, dec(tt.revenue).Equal(st.Revenue), "revenue %s", st.Revenue)
			require.Len(t, st.ByStatus, len(domain.Statuses))
			sum := 0
			for _, c := range st.ByStatus {
				sum += c.Count
			}
			assert.Equal(t, tt.count, sum)
		})
	}

	st, err := svc.PeriodStats(ctx, PeriodToday)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, st.ByStatus[5].Status)
	assert.Equal(t, 1, st.ByStatus[5].Count)
}

func TestPeriodStatsTodayNonDecreasing(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	first, err := svc.PeriodStats(ctx, PeriodToday)
	require.NoError(t, err)

	require.NoError(t, repo.AddOrder(ctx, domain.Order{
		ID: "x", CustomerExternalID: "u", CustomerName: "N", CustomerPhone: "p",
		LineItems: []domain.LineItem{item("a", 1, "1")}, Total: dec("1"),
		Status: domain.StatusPending, CreatedAt: now,
	}))

	second, err := svc.PeriodStats(ctx, PeriodToday)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, second.Count, first.Count)
	assert.Equal(t, first.Count+1, second.Count)
}

func TestStatusOverviewAndFindByStatus(t *testing.T) {
	svc, _ := newService(t,
		seed{id: "1", extID: "u", name: "A", at: now.Add(-2 * time.Hour), items: []domain.LineItem{item("a", 1, "1")}},
		seed{id: "2", extID: "u", name: "A", at: now.Add(-time.Hour), status: domain.StatusReady, items: []domain.LineItem{item("a", 1, "1")}},
		seed{id: "3", extID: "u", name: "A", at: now.Add(-30 * time.Minute), items: []domain.LineItem{item("a", 1, "1")}},
	)
	ctx := context.Background()

	ov, err := svc.StatusOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ov[0].Count)
	assert.Equal(t, "En attente", ov[0].Label)
	assert.Equal(t, 1, ov[3].Count)

	pending, err := svc.FindByStatus(ctx, domain.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "3", pending[0].ID)

	_, err = svc.FindByStatus(ctx, domain.Status("bogus"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	today, err := svc.Today(ctx)
	require.NoError(t, err)
	assert.Len(t, today, 3)
}

func TestTodayCoversLastMillisecond(t *testing.T) {
	midnight := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	svc, _ := newService(t,
		seed{id: "1", extID: "u1", name: "Alice", at: midnight.Add(-500 * time.Microsecond), items: []domain.LineItem{item("a", 1, "3")}},
		seed{id: "2", extID: "u2", name: "Bob", at: midnight.Add(-time.Nanosecond), items: []domain.LineItem{item("a", 1, "4")}},
		seed{id: "3", extID: "u3", name: "Chloé", at: midnight, items: []domain.LineItem{item("a", 1, "5")}},
	)

	stats, err := svc.PeriodStats(context.Background(), PeriodToday)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Count)
	assert.True(t, dec("7").Equal(stats.Revenue))

	orders, err := svc.Today(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}
