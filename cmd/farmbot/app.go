package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jackc/pgx/v5/pgxpool"

	"oneil-farm-bot/internal/common/logger"
	"oneil-farm-bot/internal/common/metrics"
	"oneil-farm-bot/internal/config"
	"oneil-farm-bot/internal/connections/database"
	"oneil-farm-bot/internal/connections/rabbitmq"
	"oneil-farm-bot/internal/microservices/bot"
	bothandler "oneil-farm-bot/internal/microservices/bot/handler"
	notificator "oneil-farm-bot/internal/microservices/notificator/service"
	"oneil-farm-bot/internal/microservices/order/repository"
	"oneil-farm-bot/internal/microservices/order/service"
	reporting "oneil-farm-bot/internal/microservices/reporting/service"
)

// app holds the wired components shared by every mode.
type app struct {
	cfg       *config.Config
	lg        *logger.Logger
	metrics   *metrics.Metrics
	pool      *pgxpool.Pool
	mq        *rabbitmq.Client
	session   *discordgo.Session
	orders    *service.Service
	reports   *reporting.ReportingService
	botHandle *bothandler.Handler
}

func build(ctx context.Context, cfg *config.Config, withNotifications bool, lg *logger.Logger) (*app, error) {
	a := &app{cfg: cfg, lg: lg, metrics: metrics.New()}
	loc, err := cfg.Notify.Location()
	if err != nil {
		return nil, err
	}

	repo, err := a.store(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	deps := service.Deps{
		Repo:          repo,
		Logger:        lg.Named("order-service"),
		NotifyTimeout: cfg.Notify.Timeout,
	}

	if withNotifications && cfg.RabbitMQ.Enabled() {
		a.mq, err = rabbitmq.Dial(cfg.RabbitMQ, false)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("rabbitmq connect: %w", err)
		}
		deps.Events = notificator.NewEventFeed(a.mq)
		lg.Info("rabbitmq_connected", map[string]any{"host": cfg.RabbitMQ.Host, "exchange": cfg.RabbitMQ.Exchange})
	}

	if withNotifications && cfg.Discord.Enabled() {
		a.session, err = bot.NewSession(cfg.Discord.Token)
		if err != nil {
			a.close()
			return nil, err
		}
		n := notificator.New(notificator.SessionSender{Session: a.session}, notificator.Options{
			StaffChannelID: cfg.Discord.StaffChannelID,
			ThumbnailURL:   cfg.Discord.ThumbnailURL,
			Location:       loc,
			Logger:         lg.Named("notificator"),
			Metrics:        a.metrics,
		}).NotificatorService
		deps.Hooks = service.Hooks{Customer: n.NotifyCustomer, Staff: n.NotifyStaff}
	} else if withNotifications {
		lg.Info("notifications_disabled", map[string]any{"reason": "no discord token"})
	}

	a.orders = service.New(deps)
	// period windows follow the configured display timezone
	a.reports = reporting.NewReportingService(repo, func() time.Time { return time.Now().In(loc) })
	a.botHandle = bothandler.New(a.orders.OrderService, a.reports, bothandler.Options{
		ThumbnailURL: cfg.Discord.ThumbnailURL,
		Location:     loc,
		Logger:       lg.Named("discord-bot"),
	})
	return a, nil
}

func (a *app) store(ctx context.Context) (repository.OrderRepositoryInterface, error) {
	if a.cfg.Store.Driver == "memory" {
		a.lg.Info("store_selected", map[string]any{"driver": "memory"})
		return repository.NewInMemory(nil).OrderRepo, nil
	}

	pool, err := database.ConnectDB(ctx, a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	a.pool = pool
	if err := repository.Migrate(ctx, pool); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	a.lg.Info("store_selected", map[string]any{"driver": "postgres"})
	return repository.New(pool).OrderRepo, nil
}

func (a *app) close() {
	if a.mq != nil {
		a.mq.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
