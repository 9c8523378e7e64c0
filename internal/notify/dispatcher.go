package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/tickerwatch/internal/chat"
	"github.com/rickgao/tickerwatch/internal/events"
	"github.com/rickgao/tickerwatch/internal/metrics"
	"github.com/rickgao/tickerwatch/internal/sentnews"
)

// Status is the per-channel outcome of a delivery.
type Status int

const (
	Delivered Status = iota
	Skipped          // news already sent to this channel
	Forbidden        // bot may not post in the channel
	NotFound         // channel is gone
	Failed           // any other send or store error
)

func (s Status) String() string {
	switch s {
	case Delivered:
		return "delivered"
	case Skipped:
		return "skipped"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// Result is the outcome of delivering one message to one channel.
type Result struct {
	ChannelID string
	Status    Status
	Err       error
}

// Message is one rendered notification for a symbol. NewsID is empty for
// price updates; when set, delivery is deduplicated per channel.
type Message struct {
	Kind   string
	Symbol string
	Text   string
	NewsID string
	RunID  string
}

// ChannelSource resolves the channels subscribed to a symbol.
type ChannelSource interface {
	ChannelsFor(symbol string) []string
}

// DispatcherConfig holds dispatcher configuration.
type DispatcherConfig struct {
	Concurrency int // Max concurrent sends per message (default: 4)
}

// DefaultDispatcherConfig returns sensible defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{Concurrency: 4}
}

// Dispatcher fans a message out to every subscribing channel.
type Dispatcher struct {
	cfg      DispatcherConfig
	channels ChannelSource
	sender   chat.Sender
	store    sentnews.Store
	events   events.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewDispatcher creates a Dispatcher. publisher and m may be nil.
func NewDispatcher(cfg DispatcherConfig, channels ChannelSource, sender chat.Sender, store sentnews.Store, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultDispatcherConfig().Concurrency
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		cfg:      cfg,
		channels: channels,
		sender:   sender,
		store:    store,
		events:   publisher,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Deliver sends msg to every channel currently subscribed to msg.Symbol.
// Each channel is resolved through the sender first; a channel that no longer
// resolves gets NotFound without a send or a dedup lookup.
// A failure on one channel never stops delivery to the others. Results are
// in the order ChannelsFor returned the channels.
func (d *Dispatcher) Deliver(ctx context.Context, msg Message) []Result {
	channels := d.channels.ChannelsFor(msg.Symbol)
	if len(channels) == 0 {
		return nil
	}

	results := make([]Result, len(channels))

	var g errgroup.Group
	g.SetLimit(d.cfg.Concurrency)
	for i, channelID := range channels {
		g.Go(func() error {
			results[i] = d.deliverOne(ctx, msg, channelID)
			d.metrics.Delivery(msg.Kind, results[i].Status.String())
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (d *Dispatcher) deliverOne(ctx context.Context, msg Message, channelID string) Result {
	res := Result{ChannelID: channelID}
	log := d.logger.With(
		"symbol", msg.Symbol,
		"channel_id", channelID,
		"kind", msg.Kind,
	)

	if _, err := d.sender.Channel(ctx, channelID); err != nil {
		res.Status, res.Err = d.failure(log, "channel lookup failed", err), err
		return res
	}

	if msg.NewsID != "" {
		sent, err := d.store.WasSent(ctx, msg.NewsID, channelID)
		if err != nil {
			// Unknown state: do not risk a duplicate.
			log.Warn("dedup lookup failed, skipping channel", "news_id", msg.NewsID, "error", err)
			res.Status, res.Err = Failed, err
			return res
		}
		if sent {
			log.Debug("news already sent", "news_id", msg.NewsID)
			res.Status = Skipped
			return res
		}
	}

	if err := d.sender.Send(ctx, channelID, msg.Text); err != nil {
		res.Status, res.Err = d.failure(log, "delivery failed", err), err
		return res
	}

	res.Status = Delivered
	log.Debug("delivered", "news_id", msg.NewsID)

	if msg.NewsID != "" {
		outcome, err := d.store.RecordSent(ctx, msg.NewsID, msg.Symbol, channelID)
		if err != nil {
			log.Error("failed to record sent news", "news_id", msg.NewsID, "error", err)
		} else {
			d.metrics.Dedup(outcome.String())
		}
	}

	if err := d.events.Publish(ctx, events.DeliveryEvent{
		RunID:       msg.RunID,
		Kind:        msg.Kind,
		Symbol:      msg.Symbol,
		ChannelID:   channelID,
		NewsID:      msg.NewsID,
		DeliveredAt: d.now().UTC(),
	}); err != nil {
		log.Debug("failed to publish delivery event", "error", err)
	}

	return res
}

// failure logs err and maps it to a delivery status.
func (d *Dispatcher) failure(log *slog.Logger, msg string, err error) Status {
	switch {
	case errors.Is(err, chat.ErrForbidden):
		log.Warn("no permission to post in channel", "error", err)
		return Forbidden
	case errors.Is(err, chat.ErrChannelNotFound):
		log.Warn("channel not found", "error", err)
		return NotFound
	default:
		log.Warn(msg, "error", err)
		return Failed
	}
}

// Tally counts results by status.
type Tally map[Status]int

// Add counts results.
func (t Tally) Add(results []Result) {
	for _, r := range results {
		t[r.Status]++
	}
}

// LogAttrs returns the counts as key/value pairs for a summary log line.
func (t Tally) LogAttrs() []any {
	return []any{
		"delivered", t[Delivered],
		"skipped", t[Skipped],
		"forbidden", t[Forbidden],
		"not_found", t[NotFound],
		"failed", t[Failed],
	}
}
