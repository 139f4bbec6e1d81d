package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/shared/config"
	"fintrack/internal/shared/events"
)

type MockWriter struct {
	WriteFunc func(ctx context.Context, msgs ...kafka.Message) error
	messages  []kafka.Message
	closed    bool
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.messages = append(m.messages, msgs...)
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, msgs...)
	}
	return nil
}

func (m *MockWriter) Close() error {
	m.closed = true
	return nil
}

type publishCall struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type MockChannel struct {
	calls []publishCall
}

func (m *MockChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	m.calls = append(m.calls, publishCall{exchange: exchange, key: key, msg: msg})
	return nil
}

func (m *MockChannel) Close() error { return nil }

func TestNew_Drivers(t *testing.T) {
	p, err := New(config.EventsConfig{Driver: "none"})
	require.NoError(t, err)
	assert.IsType(t, events.NopPublisher{}, p)

	p, err = New(config.EventsConfig{Driver: "kafka", Brokers: []string{"localhost:9092"}, Topic: "t"})
	require.NoError(t, err)
	assert.IsType(t, &KafkaPublisher{}, p)
	require.NoError(t, p.Close())

	_, err = New(config.EventsConfig{Driver: "nats"})
	assert.Error(t, err)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &MockWriter{}
	p := &KafkaPublisher{writer: w}

	e := events.New(events.TransactionCreated, 42, map[string]int{"id": 1})
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, events.TransactionCreated, string(msg.Headers[0].Value))

	var decoded events.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, int64(42), decoded.UserID)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &MockWriter{WriteFunc: func(context.Context, ...kafka.Message) error { return errors.New("leader not available") }}
	p := &KafkaPublisher{writer: w}

	err := p.Publish(context.Background(), events.New(events.GoalCompleted, 1, nil))
	assert.ErrorContains(t, err, "leader not available")
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &MockChannel{}
	p := &AMQPPublisher{channel: ch, exchange: "fintrack.events"}

	e := events.New(events.TransferCompleted, 9, nil)
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, ch.calls, 1)
	call := ch.calls[0]
	assert.Equal(t, "fintrack.events", call.exchange)
	assert.Equal(t, events.TransferCompleted, call.key)
	assert.Equal(t, amqp091.Persistent, call.msg.DeliveryMode)
	assert.Equal(t, "application/json", call.msg.ContentType)
	assert.Equal(t, e.ID, call.msg.MessageId)
}
