package domain

import "github.com/shopspring/decimal"

// OrderInput is a raw order submission before validation.
type OrderInput struct {
	CustomerExternalID string
	CustomerName       string
	CustomerPhone      string
	LineItems          []LineItem
	// Total is the caller's claimed total; nil means "not supplied".
	Total *decimal.Decimal
}

// SubmitResult reports the created order and which notifications went out.
type SubmitResult struct {
	Order            Order
	CustomerNotified bool
	StaffNotified    bool
}
