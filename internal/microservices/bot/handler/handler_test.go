package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oneil-farm-bot/internal/common/logger"
	"oneil-farm-bot/internal/domain"
	"oneil-farm-bot/internal/microservices/order/repository"
	"oneil-farm-bot/internal/microservices/order/service"
	reporting "oneil-farm-bot/internal/microservices/reporting/service"
)

var fixedNow = time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC)

type fakeResponder struct {
	err       error
	onRespond func()
	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
	followUps []*discordgo.WebhookParams
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, r *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.responses = append(f.responses, r)
	if f.onRespond != nil {
		f.onRespond()
	}
	return f.err
}

func (f *fakeResponder) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edits = append(f.edits, edit)
	return &discordgo.Message{}, nil
}

func (f *fakeResponder) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.followUps = append(f.followUps, data)
	return &discordgo.Message{}, nil
}

type fixture struct {
	h        *Handler
	orders   *service.OrderService
	notified []domain.Order
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	now := func() time.Time { return fixedNow }
	repo := repository.NewMemoryRepository(now)
	f.orders = service.NewOrderService(service.Deps{
		Repo: repo,
		Hooks: service.Hooks{Customer: func(_ context.Context, o domain.Order) bool {
			f.notified = append(f.notified, o)
			return true
		}},
		Logger: logger.Discard(),
		Now:    now,
	})
	f.h = New(f.orders, reporting.NewReportingService(repo, now), Options{Logger: logger.Discard(), Location: time.UTC})
	return f
}

func (f *fixture) submit(t *testing.T, name string, qty int) domain.Order {
	t.Helper()
	res, err := f.orders.SubmitOrder(context.Background(), domain.OrderInput{
		CustomerExternalID: "42",
		CustomerName:       name,
		CustomerPhone:      "555",
		LineItems:          []domain.LineItem{{ProductID: "oeuf", ProductName: "Oeufs", Quantity: qty, UnitPrice: decimal.NewFromInt(2)}},
	})
	require.NoError(t, err)
	return res.Order
}

func TestButtonTransitionsOrder(t *testing.T) {
	f := newFixture(t)
	order := f.submit(t, "Alice", 1)

	out := f.h.Button(context.Background(), domain.ActionPrepare.CustomID(order.ID), "bob#0001")

	require.NotNil(t, out.Order)
	assert.Equal(t, domain.StatusPreparing, out.Order.Status)
	assert.Equal(t, "Statut de la commande #"+order.ShortID()+" mis à jour: En préparation", out.Message)

	got, err := f.orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, got.Status)
	assert.Equal(t, "bob#0001", got.HandledBy)
	require.Len(t, f.notified, 1)
}

func TestButtonErrors(t *testing.T) {
	f := newFixture(t)
	order := f.submit(t, "Alice", 1)

	tests := []struct {
		name     string
		customID string
		want     string
	}{
		{"unknown action", "annuler_" + order.ID, msgUnknownAction},
		{"malformed", "accepter", msgUnknownAction},
		{"unknown order", domain.ActionAccept.CustomID("missing"), msgNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := f.h.Button(context.Background(), tt.customID, "bob")
			assert.Equal(t, tt.want, out.Message)
			assert.Nil(t, out.Order)
		})
	}

	got, err := f.orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestHandleComponentDefersBeforeTransition(t *testing.T) {
	f := newFixture(t)
	order := f.submit(t, "Alice", 1)
	r := &fakeResponder{}
	var statusAtRespond domain.Status
	r.onRespond = func() {
		got, err := f.orders.GetOrder(context.Background(), order.ID)
		require.NoError(t, err)
		statusAtRespond = got.Status
	}

	f.h.Handle(context.Background(), r, &discordgo.Interaction{
		Type:   discordgo.InteractionMessageComponent,
		Member: &discordgo.Member{User: &discordgo.User{Username: "carol", Discriminator: "0"}},
		Data:   discordgo.MessageComponentInteractionData{CustomID: domain.ActionDelivered.CustomID(order.ID)},
	})

	require.Len(t, r.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, r.responses[0].Type)
	assert.Nil(t, r.responses[0].Data)
	assert.Equal(t, domain.StatusPending, statusAtRespond)

	require.Len(t, r.edits, 1)
	require.NotNil(t, r.edits[0].Embeds)
	require.Len(t, *r.edits[0].Embeds, 1)
	assert.Contains(t, (*r.edits[0].Embeds)[0].Title, "Livrée")
	require.NotNil(t, r.edits[0].Components)
	assert.Len(t, *r.edits[0].Components, 1)

	require.Len(t, r.followUps, 1)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, r.followUps[0].Flags)
	assert.Contains(t, r.followUps[0].Content, "Livrée")

	got, err := f.orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, got.Status)
	assert.Equal(t, "carol", got.HandledBy)
}

func TestHandleComponentErrorSkipsEdit(t *testing.T) {
	f := newFixture(t)
	r := &fakeResponder{}

	f.h.Handle(context.Background(), r, &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		User: &discordgo.User{Username: "dave"},
		Data: discordgo.MessageComponentInteractionData{CustomID: domain.ActionAccept.CustomID("missing")},
	})

	require.Len(t, r.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, r.responses[0].Type)
	assert.Empty(t, r.edits)
	require.Len(t, r.followUps, 1)
	assert.Equal(t, msgNotFound, r.followUps[0].Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, r.followUps[0].Flags)
}

func TestHandleSkipsTransitionWhenRespondFails(t *testing.T) {
	f := newFixture(t)
	order := f.submit(t, "Alice", 1)
	r := &fakeResponder{err: errors.New("gateway down")}

	f.h.Handle(context.Background(), r, &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		User: &discordgo.User{Username: "dave"},
		Data: discordgo.MessageComponentInteractionData{CustomID: domain.ActionAccept.CustomID(order.ID)},
	})
	assert.Len(t, r.responses, 1)
	assert.Empty(t, r.edits)
	assert.Empty(t, r.followUps)

	got, err := f.orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestHandleSlashCommand(t *testing.T) {
	f := newFixture(t)
	f.submit(t, "Alice", 3)
	r := &fakeResponder{}

	f.h.Handle(context.Background(), r, &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Name: cmdOverview},
	})

	require.Len(t, r.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, r.responses[0].Type)
	embed := r.responses[0].Data.Embeds[0]
	require.Len(t, embed.Fields, len(domain.Statuses))
	assert.Equal(t, "En attente", embed.Fields[0].Name)
	assert.Equal(t, "1", embed.Fields[0].Value)
	assert.Empty(t, r.followUps)
}

func TestCommandTopClientsClampsCount(t *testing.T) {
	f := newFixture(t)
	for i := range reporting.MaxTop + 5 {
		f.submit(t, fmt.Sprint("Client", i), 1)
	}

	data := f.h.Command(context.Background(), cmdTopClients, []*discordgo.ApplicationCommandInteractionDataOption{intOption(optCount, 100)})
	desc := data.Embeds[0].Description
	assert.Equal(t, reporting.MaxTop, strings.Count(desc, "\n"))

	data = f.h.Command(context.Background(), cmdTopClients, nil)
	assert.Equal(t, reporting.DefaultTop, strings.Count(data.Embeds[0].Description, "\n"))
}

func strOpt(name, v string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: v}
}

func intOption(name string, v int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(v)}
}

func TestCommandReplies(t *testing.T) {
	f := newFixture(t)
	alice := f.submit(t, "Alice", 3)
	f.submit(t, "Bob", 1)
	ctx := context.Background()

	t.Run("help", func(t *testing.T) {
		data := f.h.Command(ctx, cmdHelp, nil)
		assert.Contains(t, data.Embeds[0].Description, "/recherche")
	})

	t.Run("today", func(t *testing.T) {
		data := f.h.Command(ctx, cmdToday, nil)
		assert.Equal(t, "Commandes du jour (2)", data.Embeds[0].Title)
		assert.Contains(t, data.Embeds[0].Description, alice.ShortID())
	})

	t.Run("search by name", func(t *testing.T) {
		data := f.h.Command(ctx, cmdSearch, []*discordgo.ApplicationCommandInteractionDataOption{strOpt(optTerm, "ali")})
		assert.Contains(t, data.Embeds[0].Description, "Alice")
		assert.NotContains(t, data.Embeds[0].Description, "Bob")
	})

	t.Run("search without match", func(t *testing.T) {
		data := f.h.Command(ctx, cmdSearch, []*discordgo.ApplicationCommandInteractionDataOption{strOpt(optTerm, "zoé")})
		assert.Equal(t, "Aucune commande trouvée.", data.Embeds[0].Description)
	})

	t.Run("stats", func(t *testing.T) {
		data := f.h.Command(ctx, cmdStats, []*discordgo.ApplicationCommandInteractionDataOption{strOpt(optPeriod, "all")})
		e := data.Embeds[0]
		assert.Equal(t, "Statistiques : Depuis le début", e.Title)
		assert.Equal(t, "2", e.Fields[0].Value)
		assert.Equal(t, "8.00 $", e.Fields[1].Value)
	})

	t.Run("stats bad period", func(t *testing.T) {
		data := f.h.Command(ctx, cmdStats, []*discordgo.ApplicationCommandInteractionDataOption{strOpt(optPeriod, "decade")})
		assert.Equal(t, discordgo.MessageFlagsEphemeral, data.Flags)
		assert.NotEmpty(t, data.Content)
	})

	t.Run("top clients", func(t *testing.T) {
		data := f.h.Command(ctx, cmdTopClients, []*discordgo.ApplicationCommandInteractionDataOption{intOption(optCount, 1)})
		desc := data.Embeds[0].Description
		assert.Contains(t, desc, "1. **Alice**")
		assert.NotContains(t, desc, "Bob")
	})

	t.Run("top products", func(t *testing.T) {
		data := f.h.Command(ctx, cmdTopProducts, nil)
		assert.Contains(t, data.Embeds[0].Description, "1. **Oeufs** : 4 vendu(s), 8.00 $")
	})

	t.Run("unknown", func(t *testing.T) {
		data := f.h.Command(ctx, "inconnue", nil)
		assert.Equal(t, discordgo.MessageFlagsEphemeral, data.Flags)
	})
}

func TestCommandsDefinitions(t *testing.T) {
	names := make([]string, 0, len(Commands))
	for _, c := range Commands {
		names = append(names, c.Name)
		assert.NotEmpty(t, c.Description)
	}
	assert.ElementsMatch(t, []string{cmdHelp, cmdOverview, cmdToday, cmdSearch, cmdStats, cmdTopClients, cmdTopProducts}, names)
}
