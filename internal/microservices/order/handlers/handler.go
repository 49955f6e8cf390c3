package handlers

import (
	"oneil-farm-bot/internal/common/logger"
	"oneil-farm-bot/internal/common/metrics"
	"oneil-farm-bot/internal/microservices/order/service"
	reporting "oneil-farm-bot/internal/microservices/reporting/service"
)

type Handler struct {
	OrderHandler     *OrderHandler
	ReportingHandler *ReportingHandler
}

func New(s *service.Service, r reporting.ReportingServiceInterface, lg *logger.Logger) *Handler {
	return &Handler{
		OrderHandler:     NewOrderHandler(s.OrderService, lg),
		ReportingHandler: NewReportingHandler(r, lg),
	}
}

// Options controls the parts of the router that depend on deployment.
type Options struct {
	StaticDir string
	Metrics   *metrics.Metrics
}
