package order

import (
	"context"
	"fmt"

	"oneil-farm-bot/internal/common/httpx"
	"oneil-farm-bot/internal/common/logger"
	"oneil-farm-bot/internal/microservices/order/handlers"
	"oneil-farm-bot/internal/microservices/order/service"
	reporting "oneil-farm-bot/internal/microservices/reporting/service"
)

// Run serves the order API and the storefront until ctx is cancelled.
func Run(ctx context.Context, port int, svc *service.Service, rep reporting.ReportingServiceInterface, opts handlers.Options, lg *logger.Logger) error {
	handler := handlers.New(svc, rep, lg)
	return Listener(ctx, port, handler, opts, lg)
}

func Listener(ctx context.Context, port int, handler *handlers.Handler, opts handlers.Options, lg *logger.Logger) error {
	addr := fmt.Sprintf(":%d", port)
	srv := httpx.New(addr, handlers.Router(handler, opts), httpx.DefaultTimeouts)

	lg.Info("service_started", map[string]any{"addr": addr, "static_dir": opts.StaticDir})
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("order api: %w", err)
	}
	lg.Info("service_stopped", map[string]any{"addr": addr})
	return nil
}
