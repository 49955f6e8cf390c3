package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShortIDLen is the number of trailing id characters shown to humans.
const ShortIDLen = 6

type Order struct {
	ID                 string          `json:"id"`
	CustomerExternalID string          `json:"customerExternalId"`
	CustomerName       string          `json:"customerName"`
	CustomerPhone      string          `json:"customerPhone"`
	LineItems          []LineItem      `json:"lineItems"`
	Total              decimal.Decimal `json:"total"`
	Status             Status          `json:"status"`
	CreatedAt          time.Time       `json:"createdAt"`
	Comment            string          `json:"comment"`
	HandledBy          string          `json:"handledBy"`
}

type LineItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Subtotal is Quantity x UnitPrice, zero for non-positive quantities.
func (li LineItem) Subtotal() decimal.Decimal {
	if li.Quantity <= 0 {
		return decimal.Zero
	}
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// ShortID returns the last ShortIDLen characters of the order id.
func (o Order) ShortID() string {
	if len(o.ID) <= ShortIDLen {
		return o.ID
	}
	return o.ID[len(o.ID)-ShortIDLen:]
}

// ComputeTotal sums the subtotals of every line item.
func ComputeTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// StatusChange is one entry of an order's status log.
type StatusChange struct {
	OrderID   string    `json:"orderId"`
	Status    Status    `json:"status"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}
