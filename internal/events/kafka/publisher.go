package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	interfaces "github.com/sheikh-saqib/coin-ledger/internal/interfaces"
	"github.com/sheikh-saqib/coin-ledger/internal/models/events"
)

const (
	DefaultTopic = "coin_events"

	// flushTimeout bounds how long a synchronous write waits for a batch.
	flushTimeout = 10 * time.Millisecond

	headerEventType = "event-type"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher is an EventSink writing JSON events to a Kafka topic. Messages
// are keyed by the event's partition key so events of one account keep
// their order.
type Publisher struct {
	writer messageWriter
	logger *zap.Logger
}

func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}

	return newPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchSize:    1,
		BatchTimeout: flushTimeout,
	}, logger)
}

func newPublisher(writer messageWriter, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{writer: writer, logger: logger}
}

// Emit writes the event synchronously. Failures are logged, not returned.
func (p *Publisher) Emit(ctx context.Context, event events.Event) {
	meta := event.Metadata()
	log := p.logger.With(
		zap.String("event_id", meta.EventID),
		zap.String("event_type", meta.Type),
	)

	data, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to encode event", zap.Error(err))
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.PartitionKey()),
		Value: data,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(meta.Type)},
		},
		Time: meta.Timestamp,
	})
	if err != nil {
		log.Error("failed to publish event", zap.Error(err))
		return
	}

	log.Debug("event published")
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ interfaces.EventSink = (*Publisher)(nil)
