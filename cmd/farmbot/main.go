package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"oneil-farm-bot/internal/common/logger"
	"oneil-farm-bot/internal/config"
	"oneil-farm-bot/internal/connections/rabbitmq"
	"oneil-farm-bot/internal/microservices/bot"
	"oneil-farm-bot/internal/microservices/mcp"
	"oneil-farm-bot/internal/microservices/order"
	"oneil-farm-bot/internal/microservices/order/handlers"
	"oneil-farm-bot/internal/microservices/tracker"
	trackerservice "oneil-farm-bot/internal/microservices/tracker/service"
)

const (
	trackerQueue         = "farmbot.order_tracker"
	trackerSnapshotEvery = time.Minute
)

func main() {
	mode := flag.String("mode", "all", "all | api | bot | mcp | events")
	cfgPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	switch *mode {
	case "all", "api", "bot", "mcp", "events":
	default:
		fmt.Fprintln(os.Stderr, "--mode must be one of: all | api | bot | mcp | events")
		os.Exit(2)
	}

	// totals go out as JSON numbers, as the storefront expects
	decimal.MarshalJSONWithoutQuotes = true

	// stdout carries the protocol in mcp mode
	var out io.Writer = os.Stdout
	if *mode == "mcp" {
		out = os.Stderr
	}
	lg := logger.NewWithWriter("farmbot", out)

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		lg.Error("config_load_failed", err, map[string]any{"path": *cfgPath})
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *mode, cfg, lg); err != nil {
		lg.Error("fatal", err, map[string]any{"mode": *mode})
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, mode string, cfg *config.Config, lg *logger.Logger) error {
	if mode == "bot" && !cfg.Discord.Enabled() {
		return errors.New("bot mode needs discord.token (or DISCORD_TOKEN)")
	}
	if mode == "events" {
		return runEvents(ctx, cfg, lg.Named("order-tracker"))
	}

	a, err := build(ctx, cfg, mode != "mcp", lg)
	if err != nil {
		return err
	}
	defer a.close()

	if mode == "mcp" {
		return mcp.NewServer(a.reports, lg.Named("mcp")).Serve(ctx, os.Stdin, os.Stdout)
	}

	g, ctx := errgroup.WithContext(ctx)
	if mode == "all" || mode == "api" {
		g.Go(func() error {
			return order.Run(ctx, cfg.HTTP.Port, a.orders, a.reports, handlers.Options{
				StaticDir: cfg.HTTP.StaticDir,
				Metrics:   a.metrics,
			}, lg.Named("order-api"))
		})
	}
	if (mode == "all" || mode == "bot") && a.session != nil {
		g.Go(func() error {
			return bot.Run(ctx, a.session, a.botHandle, cfg.Discord, lg.Named("discord-bot"))
		})
	}
	return g.Wait()
}

// runEvents follows the order event feed and keeps a live status board.
func runEvents(ctx context.Context, cfg *config.Config, lg *logger.Logger) error {
	if !cfg.RabbitMQ.Enabled() {
		return errors.New("events mode needs rabbitmq.host")
	}
	client, err := rabbitmq.Dial(cfg.RabbitMQ, false)
	if err != nil {
		return fmt.Errorf("rabbitmq connect: %w", err)
	}
	defer client.Close()

	deliveries, err := client.Subscribe(trackerQueue, 10)
	if err != nil {
		return err
	}
	return tracker.Start(ctx, deliveries, trackerservice.NewTrackerService(lg), trackerSnapshotEvery, lg)
}
