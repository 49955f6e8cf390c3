package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"

	"oneil-farm-bot/internal/common/logger"
	"oneil-farm-bot/internal/common/metrics"
	"oneil-farm-bot/internal/domain"
)

// Sender is the slice of the chat client the notifier needs.
type Sender interface {
	SendDirect(ctx context.Context, userID string, msg *discordgo.MessageSend) error
	SendChannel(ctx context.Context, channelID string, msg *discordgo.MessageSend) error
}

type NotificatorService struct {
	sender         Sender
	staffChannelID string
	thumbnailURL   string
	loc            *time.Location
	lg             *logger.Logger
	metrics        *metrics.Metrics
}

type Options struct {
	StaffChannelID string
	ThumbnailURL   string
	Location       *time.Location
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
}

func NewNotificatorService(sender Sender, opts Options) *NotificatorService {
	if opts.Logger == nil {
		opts.Logger = logger.New("notificator")
	}
	return &NotificatorService{
		sender:         sender,
		staffChannelID: opts.StaffChannelID,
		thumbnailURL:   opts.ThumbnailURL,
		loc:            opts.Location,
		lg:             opts.Logger,
		metrics:        opts.Metrics,
	}
}

// NotifyCustomer sends the order snapshot privately to the customer.
func (ns *NotificatorService) NotifyCustomer(ctx context.Context, order domain.Order) (ok bool) {
	defer ns.recover("customer", order.ID, &ok)

	err := ns.sender.SendDirect(ctx, order.CustomerExternalID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{OrderEmbed(order, ns.thumbnailURL, ns.loc)},
	})
	return ns.done("customer", order.ID, err)
}

// NotifyStaff posts the snapshot with the status controls to the staff channel.
func (ns *NotificatorService) NotifyStaff(ctx context.Context, order domain.Order) (ok bool) {
	defer ns.recover("staff", order.ID, &ok)

	if ns.staffChannelID == "" {
		return ns.done("staff", order.ID, errors.New("staff channel not configured"))
	}
	err := ns.sender.SendChannel(ctx, ns.staffChannelID, StaffMessage(order, ns.thumbnailURL, ns.loc))
	return ns.done("staff", order.ID, err)
}

// StaffMessage is the staff channel post for an order.
func StaffMessage(order domain.Order, thumbnailURL string, loc *time.Location) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{OrderEmbed(order, thumbnailURL, loc)},
		Components: StaffComponents(order.ID),
	}
}

func (ns *NotificatorService) done(hook, orderID string, err error) bool {
	ok := err == nil
	ns.metrics.Notified(hook, ok)
	if !ok {
		ns.lg.Error("notify_"+hook+"_failed", err, map[string]any{"order_id": orderID})
		return false
	}
	ns.lg.Debug("notify_"+hook, map[string]any{"order_id": orderID})
	return true
}

func (ns *NotificatorService) recover(hook, orderID string, ok *bool) {
	if r := recover(); r != nil {
		ns.metrics.Notified(hook, false)
		ns.lg.Error("notify_"+hook+"_panic", nil, map[string]any{"order_id": orderID, "panic": r})
		*ok = false
	}
}
