package handlers

import (
	"net/http"

	"oneil-farm-bot/internal/common/logger"
	"oneil-farm-bot/internal/domain"
	"oneil-farm-bot/internal/microservices/order/domain/dto"
	"oneil-farm-bot/internal/microservices/order/service"
)

type OrderHandler struct {
	service service.OrderServiceInterface
	lg      *logger.Logger
}

func NewOrderHandler(s service.OrderServiceInterface, lg *logger.Logger) *OrderHandler {
	return &OrderHandler{service: s, lg: lg}
}

func (oh *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := oh.service.ListOrders(r.Context())
	if err != nil {
		writeError(w, oh.lg, "list_orders_failed", err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (oh *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := oh.service.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, oh.lg, "get_order_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (oh *OrderHandler) AddOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := oh.service.SubmitOrder(r.Context(), req.ToInput())
	if err != nil {
		writeError(w, oh.lg, "submit_order_failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreateOrderResponse{
		Success:              true,
		Message:              "Commande créée avec succès",
		OrderID:              res.Order.ID,
		NotificationClient:   res.CustomerNotified,
		NotificationFermiers: res.StaffNotified,
	})
}

func (oh *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateStatusRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Status == "" {
		writeProblem(w, http.StatusBadRequest, "Statut manquant")
		return
	}

	order, notified, err := oh.service.Transition(r.Context(), r.PathValue("id"), req.Status, req.Actor())
	if err != nil {
		writeError(w, oh.lg, "update_status_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.UpdateStatusResponse{
		Success:             true,
		Message:             "Statut mis à jour: " + order.Status.Label(),
		NotificationEnvoyee: notified,
	})
}

func (oh *OrderHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateCommentRequest
	if !decode(w, r, &req) {
		return
	}
	// a missing field clears the comment, as an empty one does
	text, _ := req.Text()

	if _, err := oh.service.UpdateComment(r.Context(), r.PathValue("id"), text); err != nil {
		writeError(w, oh.lg, "update_comment_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AckResponse{Success: true, Message: "Commentaire mis à jour"})
}

func (oh *OrderHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	events, err := oh.service.Timeline(r.Context(), id)
	if err != nil {
		writeError(w, oh.lg, "get_timeline_failed", err)
		return
	}
	if events == nil {
		events = []domain.StatusChange{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orderId": id, "events": events})
}
