package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oneil-farm-bot/internal/domain"
)

var base = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func newOrder(id, name string, created time.Time) domain.Order {
	items := []domain.LineItem{
		{ProductID: "oeufs", ProductName: "Oeufs", Quantity: 2, UnitPrice: decimal.RequireFromString("3.50")},
		{ProductID: "lait", ProductName: "Lait", Quantity: 1, UnitPrice: decimal.RequireFromString("5")},
	}
	return domain.Order{
		ID:                 id,
		CustomerExternalID: "discord-" + name,
		CustomerName:       name,
		CustomerPhone:      "555-0100",
		LineItems:          items,
		Total:              domain.ComputeTotal(items),
		Status:             domain.StatusPending,
		CreatedAt:          created,
	}
}

// runContract exercises behaviour every OrderRepositoryInterface must share.
func runContract(t *testing.T, newRepo func(t *testing.T) OrderRepositoryInterface) {
	ctx := context.Background()

	t.Run("add and get", func(t *testing.T) {
		repo := newRepo(t)
		o := newOrder(uuid.NewString(), "Dupont", base)
		require.NoError(t, repo.AddOrder(ctx, o))

		got, err := repo.GetOrder(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.CustomerName, got.CustomerName)
		assert.True(t, o.Total.Equal(got.Total))
		require.Len(t, got.LineItems, 2)
		assert.Equal(t, "oeufs", got.LineItems[0].ProductID)
		assert.Equal(t, domain.StatusPending, got.Status)
	})

	t.Run("get unknown", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetOrder(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		repo := newRepo(t)
		a := newOrder(uuid.NewString(), "A", base)
		b := newOrder(uuid.NewString(), "B", base.Add(time.Hour))
		c := newOrder(uuid.NewString(), "C", base.Add(30*time.Minute))
		for _, o := range []domain.Order{a, b, c} {
			require.NoError(t, repo.AddOrder(ctx, o))
		}
		got, err := repo.ListOrders(ctx)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{b.ID, c.ID, a.ID}, ids(got))
	})

	t.Run("status update keeps handler on empty actor", func(t *testing.T) {
		repo := newRepo(t)
		o := newOrder(uuid.NewString(), "Martin", base)
		require.NoError(t, repo.AddOrder(ctx, o))

		got, err := repo.UpdateStatus(ctx, o.ID, domain.StatusAccepted, "Alice")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusAccepted, got.Status)
		assert.Equal(t, "Alice", got.HandledBy)

		got, err = repo.UpdateStatus(ctx, o.ID, domain.StatusReady, "")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReady, got.Status)
		assert.Equal(t, "Alice", got.HandledBy)

		_, err = repo.UpdateStatus(ctx, uuid.NewString(), domain.StatusReady, "x")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		tl, err := repo.Timeline(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, tl, 3)
		assert.Equal(t, domain.StatusPending, tl[0].Status)
		assert.Equal(t, CreatedBy, tl[0].ChangedBy)
		assert.Equal(t, domain.StatusReady, tl[2].Status)
	})

	t.Run("comment", func(t *testing.T) {
		repo := newRepo(t)
		o := newOrder(uuid.NewString(), "Leroy", base)
		require.NoError(t, repo.AddOrder(ctx, o))

		got, err := repo.UpdateComment(ctx, o.ID, "sans gluten")
		require.NoError(t, err)
		assert.Equal(t, "sans gluten", got.Comment)

		_, err = repo.UpdateComment(ctx, uuid.NewString(), "x")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("find by status and date range", func(t *testing.T) {
		repo := newRepo(t)
		a := newOrder(uuid.NewString(), "A", base)
		b := newOrder(uuid.NewString(), "B", base.Add(24*time.Hour))
		require.NoError(t, repo.AddOrder(ctx, a))
		require.NoError(t, repo.AddOrder(ctx, b))
		_, err := repo.UpdateStatus(ctx, b.ID, domain.StatusDelivered, "")
		require.NoError(t, err)

		pending, err := repo.FindByStatus(ctx, domain.StatusPending)
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID}, ids(pending))

		inRange, err := repo.FindByDateRange(ctx, base, base.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID}, ids(inRange))

		inclusive, err := repo.FindByDateRange(ctx, base, base.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, []string{b.ID, a.ID}, ids(inclusive))
	})

	t.Run("search", func(t *testing.T) {
		repo := newRepo(t)
		target := newOrder("aaaaaaaa-0000-0000-0000-000000123456", "Jean Dupuis", base)
		other := newOrder("aaaaaaaa-0000-0000-0000-000000654321", "Marie Curie", base.Add(time.Minute))
		require.NoError(t, repo.AddOrder(ctx, target))
		require.NoError(t, repo.AddOrder(ctx, other))

		got, err := repo.SearchByShortID(ctx, "123456", 10)
		require.NoError(t, err)
		assert.Equal(t, []string{target.ID}, ids(got))

		got, err = repo.SearchByName(ctx, "DUP", 10)
		require.NoError(t, err)
		assert.Equal(t, []string{target.ID}, ids(got))

		got, err = repo.SearchByName(ctx, "%", 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("search limit", func(t *testing.T) {
		repo := newRepo(t)
		for i := 0; i < 5; i++ {
			require.NoError(t, repo.AddOrder(ctx, newOrder(uuid.NewString(), fmt.Sprintf("Client %d", i), base.Add(time.Duration(i)*time.Minute))))
		}
		got, err := repo.SearchByName(ctx, "client", 3)
		require.NoError(t, err)
		assert.Len(t, got, 3)
		assert.Equal(t, "Client 4", got[0].CustomerName)
	})
}

func ids(orders []domain.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}
