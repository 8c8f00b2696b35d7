// internal/events/sink/amqp.go
package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/genesis-launchpad/internal/events"
)

// Channel is the subset of *amqp.Channel the sink uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPSink publishes persistent JSON envelopes to a durable queue.
type AMQPSink struct {
	conn    *amqp.Connection
	channel Channel
	queue   string
	logger  *zap.Logger
	timeout time.Duration
}

// DialAMQP connects with exponential backoff, opens a channel and declares
// the queue.
func DialAMQP(ctx context.Context, url, queue string, maxTries uint, logger *zap.Logger) (*AMQPSink, error) {
	logger = logger.Named("amqp_sink")

	notify := func(err error, d time.Duration) {
		logger.Warn("RabbitMQ dial failed, retrying", zap.Error(err), zap.Duration("backoff", d))
	}
	conn, err := backoff.Retry(ctx, func() (*amqp.Connection, error) {
		return amqp.Dial(url)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(maxTries),
		backoff.WithNotify(notify))
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	s, err := newAMQPSink(ch, queue, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	s.conn = conn
	logger.Info("Connected to RabbitMQ", zap.String("queue", queue))
	return s, nil
}

func newAMQPSink(ch Channel, queue string, logger *zap.Logger) (*AMQPSink, error) {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &AMQPSink{channel: ch, queue: queue, logger: logger, timeout: 5 * time.Second}, nil
}

// Handle implements events.Handler.
func (s *AMQPSink) Handle(ctx context.Context, event events.Event) error {
	env, err := NewEnvelope(event)
	if err != nil {
		return err
	}
	body, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err = s.channel.PublishWithContext(ctx,
		"",      // default exchange
		s.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    env.ID,
			Type:         string(event.Type()),
			Timestamp:    event.Timestamp(),
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", s.queue, err)
	}
	return nil
}

func (s *AMQPSink) Close() error {
	err := s.channel.Close()
	if s.conn != nil {
		if cerr := s.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
