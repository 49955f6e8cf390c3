package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"oneil-farm-bot/internal/common/logger"
	"oneil-farm-bot/internal/config"
	"oneil-farm-bot/internal/microservices/bot/handler"
)

// NewSession creates a discord session with the intents the bot uses. The
// session is not opened.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages
	return s, nil
}

// Run connects the session, registers the slash commands and answers
// interactions until ctx is cancelled.
func Run(ctx context.Context, s *discordgo.Session, h *handler.Handler, cfg config.DiscordConfig, lg *logger.Logger) error {
	remove := s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		h.Handle(ctx, s, i.Interaction)
	})
	defer remove()
	s.AddHandlerOnce(func(_ *discordgo.Session, r *discordgo.Ready) {
		lg.Info("discord_ready", map[string]any{"user": r.User.String()})
	})

	if err := s.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			lg.Error("discord_close_failed", err, nil)
		}
	}()

	appID := cfg.ClientID
	if appID == "" && s.State != nil && s.State.User != nil {
		appID = s.State.User.ID
	}
	registered, err := s.ApplicationCommandBulkOverwrite(appID, cfg.GuildID, handler.Commands, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("register slash commands: %w", err)
	}
	lg.Info("slash_commands_registered", map[string]any{"count": len(registered), "guild_id": cfg.GuildID})

	<-ctx.Done()
	return nil
}
