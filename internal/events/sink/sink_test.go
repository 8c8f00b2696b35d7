package sink

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/genesis-launchpad/internal/events"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeChannel struct {
	declared  []string
	published []amqp.Publishing
	keys      []string
	err       error
	closed    bool
}

func (c *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	if !durable {
		return amqp.Queue{}, assert.AnError
	}
	c.declared = append(c.declared, name)
	return amqp.Queue{Name: name}, c.err
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func swapEvent() events.SwapExecutedEvent {
	return events.SwapExecutedEvent{
		BaseEvent: events.NewBase(events.SwapExecuted, 1_700_000_000),
		Pool:      solana.NewWallet().PublicKey(),
		AmountIn:  1_000,
		AmountOut: 1_990,
	}
}

func TestEnvelopeWithoutEventID(t *testing.T) {
	ev := swapEvent()
	ev.EventID = ""
	env, err := NewEnvelope(ev)
	require.NoError(t, err)
	assert.Len(t, env.ID, 36)
}

func TestEnvelope(t *testing.T) {
	ev := swapEvent()
	env, err := NewEnvelope(ev)
	require.NoError(t, err)
	assert.Equal(t, ev.ID(), env.ID, "the envelope keeps the event id")
	assert.Len(t, env.ID, 36)
	assert.Equal(t, events.SwapExecuted, env.Type)
	assert.Equal(t, int64(1_700_000_000), env.OccurredAt.Unix())

	raw, err := env.Marshal()
	require.NoError(t, err)

	var decoded struct {
		Type string `json:"type"`
		Data struct {
			Pool      string `json:"pool"`
			AmountOut uint64 `json:"amount_out"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "exchange.swap", decoded.Type)
	assert.Equal(t, ev.Pool.String(), decoded.Data.Pool)
	assert.Equal(t, uint64(1_990), decoded.Data.AmountOut)
}

func TestKafkaSink(t *testing.T) {
	w := &fakeWriter{}
	s := newKafkaSink(w, zap.NewNop())

	require.NoError(t, s.Handle(context.Background(), swapEvent()))
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, []byte(events.SwapExecuted), msg.Key)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_id", msg.Headers[0].Key)

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, string(msg.Headers[0].Value), env.ID)

	w.err = assert.AnError
	assert.ErrorIs(t, s.Handle(context.Background(), swapEvent()), assert.AnError)

	require.NoError(t, s.Close())
	assert.True(t, w.closed)
}

func TestAMQPSink(t *testing.T) {
	ch := &fakeChannel{}
	s, err := newAMQPSink(ch, "genesis.events", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"genesis.events"}, ch.declared)

	require.NoError(t, s.Handle(context.Background(), swapEvent()))
	require.Len(t, ch.published, 1)
	pub := ch.published[0]
	assert.Equal(t, "genesis.events", ch.keys[0])
	assert.Equal(t, amqp.Persistent, pub.DeliveryMode)
	assert.Equal(t, "application/json", pub.ContentType)
	assert.Equal(t, string(events.SwapExecuted), pub.Type)
	assert.NotEmpty(t, pub.MessageId)

	require.NoError(t, s.Close())
	assert.True(t, ch.closed)
}

func TestAMQPSinkDeclareFailure(t *testing.T) {
	ch := &fakeChannel{err: assert.AnError}
	_, err := newAMQPSink(ch, "q", zap.NewNop())
	assert.ErrorIs(t, err, assert.AnError)
	assert.True(t, ch.closed)
}

func TestSinksOnBus(t *testing.T) {
	bus := events.NewBus(zap.NewNop(), 8)
	defer bus.Shutdown(context.Background())

	w := &fakeWriter{}
	bus.SubscribeAll(newKafkaSink(w, zap.NewNop()))

	require.NoError(t, bus.PublishSync(context.Background(), swapEvent()))
	require.NoError(t, bus.PublishSync(context.Background(), events.PoolCreatedEvent{
		BaseEvent: events.NewBase(events.PoolCreated, 1),
	}))
	assert.Len(t, w.msgs, 2)
}
