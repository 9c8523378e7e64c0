package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rickgao/tickerwatch/internal/config"
)

// Kinds of delivered message.
const (
	KindPrice = "price"
	KindNews  = "news"
)

// DeliveryEvent records one message delivered to one channel.
type DeliveryEvent struct {
	RunID       string    `json:"run_id"`
	Kind        string    `json:"kind"`
	Symbol      string    `json:"symbol"`
	ChannelID   string    `json:"channel_id"`
	NewsID      string    `json:"news_id,omitempty"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// Publisher emits delivery events.
type Publisher interface {
	Publish(ctx context.Context, ev DeliveryEvent) error
	Close() error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, DeliveryEvent) error { return nil }
func (Nop) Close() error                                 { return nil }

// messageWriter is the subset of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher creates an async batching writer for cfg.Topic.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("delivery events dropped", "count", len(messages), "error", err)
			}
		},
	}

	return &KafkaPublisher{writer: w, topic: cfg.Topic, logger: logger}
}

// New returns a KafkaPublisher when brokers are configured and Nop otherwise.
func New(cfg config.EventsConfig, logger *slog.Logger) Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		return Nop{}
	}
	return NewKafkaPublisher(cfg.Kafka, logger)
}

// Publish enqueues ev.
func (p *KafkaPublisher) Publish(ctx context.Context, ev DeliveryEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal delivery event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Symbol),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("write to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes pending events.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
