package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
)

// replyTimeout bounds handling of a single incoming command.
const replyTimeout = 30 * time.Second

// session is the subset of *discordgo.Session used by Discord.
type session interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
}

// Discord is a Sender backed by a Discord bot session.
type Discord struct {
	session session
	logger  *slog.Logger
}

// NewDiscord creates a bot session for token. The gateway connection is not
// opened until Open.
func NewDiscord(token string, logger *slog.Logger) (*Discord, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	return &Discord{session: s, logger: logger}, nil
}

// Open connects to the gateway.
func (d *Discord) Open() error {
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	d.logger.Info("discord session opened")
	return nil
}

// Close disconnects from the gateway.
func (d *Discord) Close() error {
	return d.session.Close()
}

// Send posts text to channelID.
func (d *Discord) Send(ctx context.Context, channelID, text string) error {
	_, err := d.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send to channel %s: %w", channelID, classifyError(err))
	}
	return nil
}

// Channel resolves channel metadata.
func (d *Discord) Channel(ctx context.Context, channelID string) (Channel, error) {
	ch, err := d.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return Channel{}, fmt.Errorf("get channel %s: %w", channelID, classifyError(err))
	}
	return Channel{ID: ch.ID, Name: ch.Name, GuildID: ch.GuildID}, nil
}

// Listen routes incoming messages through h and posts its replies.
// Messages from bots, including this one, are ignored.
func (d *Discord) Listen(h *CommandHandler) {
	d.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		d.onMessage(h, m)
	})
}

func (d *Discord) onMessage(h *CommandHandler, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	replies, ok := h.Handle(ctx, m.ChannelID, m.Content)
	if !ok {
		return
	}
	for _, reply := range replies {
		if err := d.Send(ctx, m.ChannelID, reply); err != nil {
			d.logger.Warn("failed to reply to command",
				"channel_id", m.ChannelID,
				"error", err,
			)
			return
		}
	}
}

// classifyError maps Discord REST failures onto the package sentinels.
func classifyError(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}

	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeMissingAccess, discordgo.ErrCodeMissingPermissions:
			return fmt.Errorf("%w: %w", ErrForbidden, err)
		case discordgo.ErrCodeUnknownChannel:
			return fmt.Errorf("%w: %w", ErrChannelNotFound, err)
		}
	}

	if restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusForbidden:
			return fmt.Errorf("%w: %w", ErrForbidden, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrChannelNotFound, err)
		}
	}
	return err
}
