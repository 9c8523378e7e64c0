package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rickgao/tickerwatch/internal/model"
	"github.com/rickgao/tickerwatch/internal/render"
	"github.com/rickgao/tickerwatch/internal/subscription"
)

// DefaultPrefix starts every command.
const DefaultPrefix = "!"

// QuoteFetcher fetches a single quote.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (model.Quote, error)
}

// Pacer blocks until the next provider request may be issued.
type Pacer interface {
	Wait(ctx context.Context) error
}

// CommandHandler parses channel messages into registry operations and
// on-demand quotes.
type CommandHandler struct {
	prefix   string
	registry *subscription.Registry
	quotes   QuoteFetcher
	pacer    Pacer
	logger   *slog.Logger
}

// NewCommandHandler creates a handler. pacer may be nil; when set, on-demand
// quotes share the scheduler's quote budget.
func NewCommandHandler(prefix string, registry *subscription.Registry, quotes QuoteFetcher, pacer Pacer, logger *slog.Logger) *CommandHandler {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandHandler{
		prefix:   prefix,
		registry: registry,
		quotes:   quotes,
		pacer:    pacer,
		logger:   logger,
	}
}

// Handle processes one message posted in channelID. It returns the replies to
// post back, in order, and false when the message is not a known command.
func (h *CommandHandler) Handle(ctx context.Context, channelID, content string) ([]string, bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, h.prefix) {
		return nil, false
	}

	fields := strings.Fields(strings.TrimPrefix(content, h.prefix))
	if len(fields) == 0 {
		return nil, false
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]

	switch name {
	case "track":
		return h.track(channelID, args), true
	case "untrack":
		return h.untrack(channelID, args), true
	case "liststocks":
		return h.list(channelID), true
	case "quote":
		return h.quote(ctx, args), true
	case "help":
		return []string{h.help()}, true
	default:
		return nil, false
	}
}

func (h *CommandHandler) track(channelID string, args []string) []string {
	if len(args) == 0 {
		return []string{h.usage("track <symbol>")}
	}

	result, err := h.registry.Subscribe(channelID, args[0])
	if errors.Is(err, subscription.ErrInvalidSymbol) {
		return []string{h.usage("track <symbol>")}
	}
	symbol := model.NormalizeSymbol(args[0])

	if result == subscription.AlreadyPresent {
		return []string{fmt.Sprintf("**%s** is already tracked in this channel.", symbol)}
	}
	return []string{fmt.Sprintf("Now tracking **%s** in this channel.", symbol)}
}

func (h *CommandHandler) untrack(channelID string, args []string) []string {
	if len(args) == 0 {
		return []string{h.usage("untrack <symbol>")}
	}

	symbol := model.NormalizeSymbol(args[0])
	if h.registry.Unsubscribe(channelID, symbol) == subscription.NotFound {
		return []string{fmt.Sprintf("**%s** is not tracked in this channel.", symbol)}
	}
	return []string{fmt.Sprintf("Stopped tracking **%s** in this channel.", symbol)}
}

func (h *CommandHandler) list(channelID string) []string {
	symbols := h.registry.List(channelID)
	if len(symbols) == 0 {
		return []string{"No stocks are tracked in this channel yet."}
	}
	return []string{fmt.Sprintf("Tracked in this channel: **%s**", strings.Join(symbols, ", "))}
}

func (h *CommandHandler) quote(ctx context.Context, args []string) []string {
	if len(args) == 0 || model.NormalizeSymbol(args[0]) == "" {
		return []string{h.usage("quote <symbol>")}
	}
	symbol := model.NormalizeSymbol(args[0])
	replies := []string{fmt.Sprintf("Fetching **%s**...", symbol)}

	if h.pacer != nil {
		if err := h.pacer.Wait(ctx); err != nil {
			return append(replies, unavailable(symbol))
		}
	}

	q, err := h.quotes.FetchQuote(ctx, symbol)
	if err != nil {
		h.logger.Warn("on-demand quote failed", "symbol", symbol, "error", err)
		return append(replies, unavailable(symbol))
	}
	return append(replies, render.Quote(q))
}

func (h *CommandHandler) help() string {
	p := h.prefix
	return strings.Join([]string{
		"**Commands**",
		"`" + p + "track <symbol>` start price and news updates for a symbol in this channel",
		"`" + p + "untrack <symbol>` stop updates for a symbol",
		"`" + p + "liststocks` list symbols tracked here",
		"`" + p + "quote <symbol>` latest price right now",
	}, "\n")
}

func (h *CommandHandler) usage(form string) string {
	return "Usage: `" + h.prefix + form + "`"
}

func unavailable(symbol string) string {
	return fmt.Sprintf("⚠️ Could not fetch **%s** right now (rate limit or unknown symbol).", symbol)
}
