package tracker

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"oneil-farm-bot/internal/common/logger"
	"oneil-farm-bot/internal/domain"
	"oneil-farm-bot/internal/microservices/tracker/service"
)

// Start consumes order events until ctx is cancelled or the delivery channel
// closes. Malformed messages are rejected without requeue. When snapshotEvery
// is positive the board is logged at that interval.
func Start(ctx context.Context, deliveries <-chan amqp.Delivery, svc service.TrackerServiceInterface, snapshotEvery time.Duration, lg *logger.Logger) error {
	lg.Info("service_started", map[string]any{"snapshot_every": snapshotEvery.String()})

	var tick <-chan time.Time
	if snapshotEvery > 0 {
		t := time.NewTicker(snapshotEvery)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			lg.Info("service_stopped", map[string]any{"orders": len(svc.Board())})
			return nil
		case <-tick:
			logSnapshot(svc.Board(), lg)
		case d, ok := <-deliveries:
			if !ok {
				lg.Warn("deliveries_closed", nil, nil)
				return nil
			}
			handle(ctx, d, svc, lg)
		}
	}
}

func logSnapshot(board []service.OrderView, lg *logger.Logger) {
	byStatus := make(map[domain.Status]int, len(domain.Statuses))
	for _, v := range board {
		byStatus[v.Status]++
	}
	lg.Info("board_snapshot", map[string]any{"orders": len(board), "by_status": byStatus, "board": board})
}

func handle(ctx context.Context, d amqp.Delivery, svc service.TrackerServiceInterface, lg *logger.Logger) {
	ev, err := service.Decode(d.Body)
	if err != nil {
		lg.Error("order_event_rejected", err, map[string]any{"routing_key": d.RoutingKey})
		_ = d.Reject(false)
		return
	}
	if err := svc.Apply(ctx, ev); err != nil {
		lg.Error("order_event_apply_failed", err, map[string]any{"order_id": ev.OrderID})
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}
