package handler

import (
	"github.com/bwmarrin/discordgo"

	reporting "oneil-farm-bot/internal/microservices/reporting/service"
)

const (
	cmdHelp        = "aide"
	cmdOverview    = "commandes"
	cmdToday       = "commandes-jour"
	cmdSearch      = "recherche"
	cmdStats       = "stats"
	cmdTopClients  = "top-clients"
	cmdTopProducts = "top-produits"

	optTerm   = "terme"
	optPeriod = "periode"
	optCount  = "nombre"
)

var minTop = 1.0

// Commands is the slash command set registered at startup.
var Commands = []*discordgo.ApplicationCommand{
	{Name: cmdHelp, Description: "Affiche les instructions d'utilisation du bot"},
	{Name: cmdOverview, Description: "Affiche les statistiques des commandes actuelles"},
	{Name: cmdToday, Description: "Affiche les commandes du jour"},
	{
		Name:        cmdSearch,
		Description: "Recherche une commande par numéro (6 chiffres) ou par nom de client",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        optTerm,
			Description: "Numéro de commande ou nom du client",
			Required:    true,
		}},
	},
	{
		Name:        cmdStats,
		Description: "Statistiques des ventes sur une période",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        optPeriod,
			Description: "Période couverte",
			Required:    true,
			Choices:     periodChoices(),
		}},
	},
	{
		Name:        cmdTopClients,
		Description: "Meilleurs clients par montant dépensé",
		Options:     []*discordgo.ApplicationCommandOption{countOption()},
	},
	{
		Name:        cmdTopProducts,
		Description: "Produits les plus vendus",
		Options:     []*discordgo.ApplicationCommandOption{countOption()},
	},
}

func countOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        optCount,
		Description: "Nombre de lignes (5 par défaut)",
		MinValue:    &minTop,
		MaxValue:    reporting.MaxTop,
	}
}

func periodChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(reporting.Periods))
	for _, p := range reporting.Periods {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: p.Label(), Value: string(p)})
	}
	return choices
}
