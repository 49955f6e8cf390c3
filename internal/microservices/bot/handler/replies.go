package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"oneil-farm-bot/internal/domain"
	reporting "oneil-farm-bot/internal/microservices/reporting/service"
)

const (
	brandColor  = 0x4B6B31
	footer      = "Ferme O'Neil - Système de commandes"
	maxListed   = 20
	maxEmbedLen = 4096
	msgStatsErr = "Une erreur est survenue lors de la récupération des statistiques."
)

const helpText = "**/commandes** : nombre de commandes par statut\n" +
	"**/commandes-jour** : commandes passées aujourd'hui\n" +
	"**/recherche terme** : numéro de commande (6 derniers chiffres) ou nom du client\n" +
	"**/stats periode** : ventes du jour, de la semaine, du mois ou depuis le début\n" +
	"**/top-clients [nombre]** : meilleurs clients\n" +
	"**/top-produits [nombre]** : produits les plus vendus\n\n" +
	"Les boutons sous chaque commande changent son statut et préviennent le client."

// Command builds the reply to a slash command. Failures become an ephemeral
// message; they never reach the caller.
func (h *Handler) Command(ctx context.Context, name string, options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponseData {
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, o := range options {
		opts[o.Name] = o
	}

	data, err := h.command(ctx, name, opts)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return &discordgo.InteractionResponseData{Content: verr.Reason, Flags: discordgo.MessageFlagsEphemeral}
		}
		h.lg.Error("slash_command_failed", err, map[string]any{"command": name})
		return &discordgo.InteractionResponseData{Content: msgStatsErr, Flags: discordgo.MessageFlagsEphemeral}
	}
	return data
}

func (h *Handler) command(ctx context.Context, name string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) (*discordgo.InteractionResponseData, error) {
	switch name {
	case cmdHelp:
		return embedReply(&discordgo.MessageEmbed{Title: "Aide du bot", Description: helpText}), nil

	case cmdOverview:
		counts, err := h.reports.StatusOverview(ctx)
		if err != nil {
			return nil, err
		}
		return embedReply(&discordgo.MessageEmbed{
			Title:       "Statistiques des commandes",
			Description: "État actuel des commandes de la Ferme O'Neil",
			Fields:      statusFields(counts),
		}), nil

	case cmdToday:
		orders, err := h.reports.Today(ctx)
		if err != nil {
			return nil, err
		}
		return embedReply(&discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Commandes du jour (%d)", len(orders)),
			Description: h.orderList(orders, false, "Aucune commande aujourd'hui."),
		}), nil

	case cmdSearch:
		term := stringOpt(opts, optTerm)
		if strings.TrimSpace(term) == "" {
			return nil, domain.NewValidationError(optTerm, "Indiquez un numéro de commande ou un nom.")
		}
		res, err := h.reports.Search(ctx, term)
		if err != nil {
			return nil, err
		}
		return embedReply(&discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Recherche : %s", term),
			Description: h.orderList(res.Orders, res.HasMore, "Aucune commande trouvée."),
		}), nil

	case cmdStats:
		period, err := reporting.ParsePeriod(stringOpt(opts, optPeriod))
		if err != nil {
			return nil, domain.NewValidationError(optPeriod, "Période inconnue : utilisez today, week, month ou all.")
		}
		stats, err := h.reports.PeriodStats(ctx, period)
		if err != nil {
			return nil, err
		}
		fields := []*discordgo.MessageEmbedField{
			{Name: "Commandes", Value: fmt.Sprint(stats.Count), Inline: true},
			{Name: "Chiffre d'affaires", Value: stats.Revenue.StringFixed(2) + " $", Inline: true},
		}
		return embedReply(&discordgo.MessageEmbed{
			Title:  "Statistiques : " + period.Label(),
			Fields: append(fields, statusFields(stats.ByStatus)...),
		}), nil

	case cmdTopClients:
		top, err := h.reports.TopClients(ctx, reporting.ClampTop(intOpt(opts, optCount)))
		if err != nil {
			return nil, err
		}
		var b strings.Builder
		for n, c := range top {
			fmt.Fprintf(&b, "%d. **%s** (<@%s>) : %s $ en %d commande(s)\n",
				n+1, c.CustomerName, c.CustomerExternalID, c.Total.StringFixed(2), c.Orders)
		}
		return embedReply(&discordgo.MessageEmbed{
			Title:       "Meilleurs clients",
			Description: orDefault(b.String(), "Aucune commande enregistrée."),
		}), nil

	case cmdTopProducts:
		top, err := h.reports.TopProducts(ctx, reporting.ClampTop(intOpt(opts, optCount)))
		if err != nil {
			return nil, err
		}
		var b strings.Builder
		for n, p := range top {
			fmt.Fprintf(&b, "%d. **%s** : %d vendu(s), %s $\n", n+1, p.ProductName, p.Quantity, p.Revenue.StringFixed(2))
		}
		return embedReply(&discordgo.MessageEmbed{
			Title:       "Produits les plus vendus",
			Description: orDefault(b.String(), "Aucun produit vendu."),
		}), nil
	}
	return nil, domain.NewValidationError("command", "Commande inconnue.")
}

// orderList renders one line per order, newest first.
func (h *Handler) orderList(orders []domain.Order, hasMore bool, empty string) string {
	if len(orders) == 0 {
		return empty
	}
	var b strings.Builder
	for n, o := range orders {
		if n == maxListed {
			fmt.Fprintf(&b, "… et %d autre(s)\n", len(orders)-maxListed)
			break
		}
		fmt.Fprintf(&b, "`#%s` %s · %s · %s $ · %s\n",
			o.ShortID(), o.CreatedAt.In(h.loc).Format("02/01 15:04"), o.CustomerName, o.Total.StringFixed(2), o.Status.Label())
	}
	if hasMore {
		b.WriteString("Plus de résultats disponibles, affinez la recherche.")
	}
	s := b.String()
	if r := []rune(s); len(r) > maxEmbedLen {
		s = string(r[:maxEmbedLen-1]) + "…"
	}
	return s
}

func statusFields(counts []reporting.StatusCount) []*discordgo.MessageEmbedField {
	fields := make([]*discordgo.MessageEmbedField, 0, len(counts))
	for _, c := range counts {
		fields = append(fields, &discordgo.MessageEmbedField{Name: c.Label, Value: fmt.Sprint(c.Count), Inline: true})
	}
	return fields
}

func embedReply(e *discordgo.MessageEmbed) *discordgo.InteractionResponseData {
	e.Color = brandColor
	e.Timestamp = time.Now().Format(time.RFC3339)
	e.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	return &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{e}}
}

func stringOpt(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if o, ok := opts[name]; ok && o.Type == discordgo.ApplicationCommandOptionString {
		return o.StringValue()
	}
	return ""
}

// intOpt returns 0 when the option is absent; ClampTop turns that into the default.
func intOpt(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) int {
	if o, ok := opts[name]; ok && o.Type == discordgo.ApplicationCommandOptionInteger {
		return int(o.IntValue())
	}
	return 0
}

func orDefault(s, d string) string {
	if s == "" {
		return d
	}
	return s
}
