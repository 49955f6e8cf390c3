package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"oneil-farm-bot/internal/common/logger"
	"oneil-farm-bot/internal/domain"
	notificator "oneil-farm-bot/internal/microservices/notificator/service"
	"oneil-farm-bot/internal/microservices/order/service"
	reporting "oneil-farm-bot/internal/microservices/reporting/service"
)

const (
	msgUnknownAction = "Action non reconnue"
	msgNotFound      = "Commande introuvable"
	msgFailed        = "Une erreur est survenue lors du traitement de votre demande."
)

// Responder is the part of the discord session used to answer interactions.
type Responder interface {
	InteractionRespond(i *discordgo.Interaction, r *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(i *discordgo.Interaction, edit *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(i *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ButtonOutcome is the result of a staff button click. Order is nil when
// nothing changed; Message is the ephemeral reply for the clicking user.
type ButtonOutcome struct {
	Order   *domain.Order
	Message string
}

type Handler struct {
	orders       service.OrderServiceInterface
	reports      reporting.ReportingServiceInterface
	lg           *logger.Logger
	thumbnailURL string
	loc          *time.Location
}

type Options struct {
	ThumbnailURL string
	Location     *time.Location
	Logger       *logger.Logger
}

func New(orders service.OrderServiceInterface, reports reporting.ReportingServiceInterface, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logger.New("discord-bot")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Handler{
		orders:       orders,
		reports:      reports,
		lg:           opts.Logger,
		thumbnailURL: opts.ThumbnailURL,
		loc:          opts.Location,
	}
}

// Handle answers one interaction. Button clicks are acknowledged at once,
// then the staff message is edited in place and the clicking user gets an
// ephemeral confirmation; slash commands get a reply.
func (h *Handler) Handle(ctx context.Context, r Responder, i *discordgo.Interaction) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		h.handleButton(ctx, r, i)
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		resp := &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: h.Command(ctx, data.Name, data.Options),
		}
		if err := r.InteractionRespond(i, resp, discordgo.WithContext(ctx)); err != nil {
			h.lg.Error("interaction_respond_failed", err, map[string]any{"interaction_id": i.ID})
		}
	}
}

// handleButton defers the update before running the transition, whose
// notifications may outlast the interaction deadline.
func (h *Handler) handleButton(ctx context.Context, r Responder, i *discordgo.Interaction) {
	deferred := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate}
	if err := r.InteractionRespond(i, deferred, discordgo.WithContext(ctx)); err != nil {
		h.lg.Error("interaction_respond_failed", err, map[string]any{"interaction_id": i.ID})
		return
	}

	out := h.Button(ctx, i.MessageComponentData().CustomID, actorTag(i))
	if out.Order != nil {
		embeds := []*discordgo.MessageEmbed{notificator.OrderEmbed(*out.Order, h.thumbnailURL, h.loc)}
		components := notificator.StaffComponents(out.Order.ID)
		edit := &discordgo.WebhookEdit{Embeds: &embeds, Components: &components}
		if _, err := r.InteractionResponseEdit(i, edit, discordgo.WithContext(ctx)); err != nil {
			h.lg.Error("interaction_edit_failed", err, map[string]any{"interaction_id": i.ID, "order_id": out.Order.ID})
		}
	}

	params := &discordgo.WebhookParams{Content: out.Message, Flags: discordgo.MessageFlagsEphemeral}
	if _, err := r.FollowupMessageCreate(i, false, params, discordgo.WithContext(ctx)); err != nil {
		h.lg.Error("interaction_followup_failed", err, map[string]any{"interaction_id": i.ID})
	}
}

// Button applies the staff action encoded in customID.
func (h *Handler) Button(ctx context.Context, customID, actor string) ButtonOutcome {
	action, orderID, err := domain.ParseCustomID(customID)
	if err != nil {
		h.lg.Warn("unknown_action", err, map[string]any{"custom_id": customID})
		return ButtonOutcome{Message: msgUnknownAction}
	}

	order, _, err := h.orders.Transition(ctx, orderID, string(action.Target()), actor)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ButtonOutcome{Message: msgNotFound}
	case err != nil:
		h.lg.Error("button_transition_failed", err, map[string]any{"order_id": orderID, "action": action.Code()})
		return ButtonOutcome{Message: msgFailed}
	}

	h.lg.Info("button_transition", map[string]any{"order_id": order.ID, "action": action.Code(), "actor": actor})
	return ButtonOutcome{
		Order:   &order,
		Message: fmt.Sprintf("Statut de la commande #%s mis à jour: %s", order.ShortID(), order.Status.Label()),
	}
}

func actorTag(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.String()
	}
	if i.User != nil {
		return i.User.String()
	}
	return ""
}
