package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"oneil-farm-bot/internal/domain"
)

const (
	brandColor = 0x4B6B31
	brandName  = "Ferme O'Neil"
	// discord rejects field values longer than this
	maxFieldValue = 1024
)

// OrderEmbed renders the human-readable snapshot of an order.
func OrderEmbed(o domain.Order, thumbnailURL string, loc *time.Location) *discordgo.MessageEmbed {
	if loc == nil {
		loc = time.Local
	}
	e := &discordgo.MessageEmbed{
		Color:       brandColor,
		Title:       fmt.Sprintf("Commande #%s - %s", o.ShortID(), o.Status.Label()),
		Description: brandName + " - Suivi de commande",
		Timestamp:   o.CreatedAt.Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: brandName + " - Merci pour votre commande!"},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Client", Value: orDash(o.CustomerName), Inline: true},
			{Name: "Téléphone", Value: orDash(o.CustomerPhone), Inline: true},
			{Name: "Discord ID", Value: orDash(o.CustomerExternalID), Inline: true},
			{Name: "Total", Value: o.Total.StringFixed(2) + " $", Inline: true},
			{Name: "Date", Value: o.CreatedAt.In(loc).Format("02/01/2006 15:04:05"), Inline: true},
			{Name: "Statut", Value: o.Status.Label(), Inline: true},
		},
	}
	if thumbnailURL != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: thumbnailURL}
	}
	if lines := productLines(o.LineItems); lines != "" {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Produits commandés", Value: truncate(lines)})
	}
	if o.HandledBy != "" {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Traité par", Value: o.HandledBy, Inline: true})
	}
	if o.Comment != "" {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Commentaire", Value: truncate(o.Comment)})
	}
	return e
}

// StaffComponents builds one button per staff action.
func StaffComponents(orderID string) []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, 0, len(domain.Actions))
	for _, a := range domain.Actions {
		buttons = append(buttons, discordgo.Button{
			Label:    a.Label(),
			Style:    buttonStyle(a),
			CustomID: a.CustomID(orderID),
		})
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

func buttonStyle(a domain.Action) discordgo.ButtonStyle {
	switch a {
	case domain.ActionAccept, domain.ActionDelivered:
		return discordgo.SuccessButton
	case domain.ActionPrepare:
		return discordgo.PrimaryButton
	default:
		return discordgo.SecondaryButton
	}
}

func productLines(items []domain.LineItem) string {
	var b strings.Builder
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		fmt.Fprintf(&b, "%s: %d x %s$ = %s$\n", it.ProductName, it.Quantity, it.UnitPrice.String(), it.Subtotal().StringFixed(2))
	}
	return b.String()
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxFieldValue {
		return s
	}
	return string(r[:maxFieldValue-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
