package dto

import (
	"github.com/shopspring/decimal"

	"oneil-farm-bot/internal/domain"
)

// CreateOrderRequest accepts the documented field names and, for the legacy
// storefront form, their French equivalents.
type CreateOrderRequest struct {
	CustomerExternalID string           `json:"customerExternalId"`
	CustomerName       string           `json:"customerName"`
	CustomerPhone      string           `json:"customerPhone"`
	LineItems          []OrderItemInput `json:"lineItems"`
	Total              *decimal.Decimal `json:"total"`

	DiscordID string           `json:"discordId"`
	Nom       string           `json:"nom"`
	Telephone string           `json:"telephone"`
	Produits  []OrderItemInput `json:"produits"`
}

type OrderItemInput struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`

	ID       string          `json:"id"`
	Nom      string          `json:"nom"`
	Quantite int             `json:"quantite"`
	Prix     decimal.Decimal `json:"prix"`
}

type CreateOrderResponse struct {
	Success              bool   `json:"success"`
	Message              string `json:"message"`
	OrderID              string `json:"orderId"`
	NotificationClient   bool   `json:"notificationClient"`
	NotificationFermiers bool   `json:"notificationFermiers"`
}

type UpdateStatusRequest struct {
	Status     string `json:"status"`
	ActorLabel string `json:"actorLabel"`
	TraitePar  string `json:"traitePar"`
}

type UpdateStatusResponse struct {
	Success             bool   `json:"success"`
	Message             string `json:"message"`
	NotificationEnvoyee bool   `json:"notificationEnvoyee"`
}

type UpdateCommentRequest struct {
	Comment     *string `json:"comment"`
	Commentaire *string `json:"commentaire"`
}

type AckResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ToInput maps the request onto the service input.
func (r CreateOrderRequest) ToInput() domain.OrderInput {
	items := r.LineItems
	if len(items) == 0 {
		items = r.Produits
	}
	return domain.OrderInput{
		CustomerExternalID: first(r.CustomerExternalID, r.DiscordID),
		CustomerName:       first(r.CustomerName, r.Nom),
		CustomerPhone:      first(r.CustomerPhone, r.Telephone),
		LineItems:          ConvertItems(items),
		Total:              r.Total,
	}
}

// ConvertItems maps input items to domain LineItem slice
func ConvertItems(inputs []OrderItemInput) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(inputs))
	for _, in := range inputs {
		li := domain.LineItem{
			ProductID:   first(in.ProductID, in.ID),
			ProductName: first(in.ProductName, in.Nom),
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
		}
		if li.Quantity == 0 {
			li.Quantity = in.Quantite
		}
		if li.UnitPrice.IsZero() {
			li.UnitPrice = in.Prix
		}
		items = append(items, li)
	}
	return items
}

func (r UpdateStatusRequest) Actor() string { return first(r.ActorLabel, r.TraitePar) }

// Text returns the comment, and whether one was supplied at all.
func (r UpdateCommentRequest) Text() (string, bool) {
	switch {
	case r.Comment != nil:
		return *r.Comment, true
	case r.Commentaire != nil:
		return *r.Commentaire, true
	}
	return "", false
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
