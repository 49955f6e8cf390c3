package service

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// SessionSender delivers messages through a live Discord session.
type SessionSender struct {
	Session *discordgo.Session
}

func (s SessionSender) SendDirect(ctx context.Context, userID string, msg *discordgo.MessageSend) error {
	ch, err := s.Session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	return s.SendChannel(ctx, ch.ID, msg)
}

func (s SessionSender) SendChannel(ctx context.Context, channelID string, msg *discordgo.MessageSend) error {
	_, err := s.Session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
	return err
}
