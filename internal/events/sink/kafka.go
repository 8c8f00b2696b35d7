// internal/events/sink/kafka.go
package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/genesis-launchpad/internal/events"
)

// MessageWriter is the subset of *kafka.Writer the sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink forwards bus events to a Kafka topic, keyed by event type so
// that one type always lands on one partition in order.
type KafkaSink struct {
	writer  MessageWriter
	logger  *zap.Logger
	timeout time.Duration
}

// NewKafkaSink creates an async writer; delivery failures are logged from
// the completion callback so that bus dispatch never waits on the broker.
func NewKafkaSink(brokers []string, topic string, logger *zap.Logger) *KafkaSink {
	logger = logger.Named("kafka_sink")
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		RequiredAcks:           kafka.RequireAll,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Kafka delivery failed",
					zap.Int("messages", len(messages)),
					zap.Error(err))
			}
		},
	}
	return newKafkaSink(writer, logger)
}

func newKafkaSink(writer MessageWriter, logger *zap.Logger) *KafkaSink {
	return &KafkaSink{writer: writer, logger: logger, timeout: 5 * time.Second}
}

// Handle implements events.Handler.
func (s *KafkaSink) Handle(ctx context.Context, event events.Event) error {
	env, err := NewEnvelope(event)
	if err != nil {
		return err
	}
	value, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.Type()),
		Value: value,
		Time:  event.Timestamp(),
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(env.ID)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
