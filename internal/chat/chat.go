package chat

import (
	"context"
	"errors"
)

var (
	// ErrForbidden is returned when the bot lacks permission to post in a
	// channel.
	ErrForbidden = errors.New("chat: forbidden")

	// ErrChannelNotFound is returned when a channel no longer exists or is
	// not visible to the bot.
	ErrChannelNotFound = errors.New("chat: channel not found")
)

// Channel describes a chat channel.
type Channel struct {
	ID      string
	Name    string
	GuildID string
}

// Sender delivers text to channels.
type Sender interface {
	Send(ctx context.Context, channelID, text string) error
	Channel(ctx context.Context, channelID string) (Channel, error)
}
