package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Message headers carried with every relayed event.
const (
	HeaderEventID       = "event_id"
	HeaderEventType     = "event_type"
	HeaderAggregateType = "aggregate_type"
)

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes outbox entries to a Kafka topic. Messages are keyed by
// aggregate ID so all events of one sale land on one partition in order.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher creates a publisher for the configured brokers and topic
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
		},
		topic: topic,
	}
}

// Publish implements shared.EventPublisher
func (p *KafkaPublisher) Publish(ctx context.Context, entry *shared.OutboxEntry) error {
	msg := kafka.Message{
		Key:   []byte(entry.AggregateID.String()),
		Value: entry.Payload,
		Time:  entry.CreatedAt.UTC(),
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(entry.EventID.String())},
			{Key: HeaderEventType, Value: []byte(entry.EventType)},
			{Key: HeaderAggregateType, Value: []byte(entry.AggregateType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s to %s: %w", entry.EventType, p.topic, err)
	}
	return nil
}

// Close flushes pending writes
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher logs entries instead of sending them. Used when no brokers
// are configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a log-only publisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.Named("events")}
}

// Publish implements shared.EventPublisher
func (p *LogPublisher) Publish(_ context.Context, entry *shared.OutboxEntry) error {
	p.logger.Info("domain event",
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
		zap.String("aggregate_id", entry.AggregateID.String()),
		zap.ByteString("payload", entry.Payload),
	)
	return nil
}

// Close implements shared.EventPublisher
func (p *LogPublisher) Close() error { return nil }

// NewPublisher picks Kafka when brokers are configured, logging otherwise.
func NewPublisher(cfg config.EventsConfig, logger *zap.Logger) shared.EventPublisher {
	brokers := make([]string, 0, len(cfg.Brokers))
	for _, b := range cfg.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		logger.Info("no event brokers configured, logging domain events")
		return NewLogPublisher(logger)
	}
	logger.Info("publishing domain events to kafka",
		zap.Strings("brokers", brokers),
		zap.String("topic", cfg.Topic),
	)
	return NewKafkaPublisher(brokers, cfg.Topic)
}

var (
	_ shared.EventPublisher = (*KafkaPublisher)(nil)
	_ shared.EventPublisher = (*LogPublisher)(nil)
)
