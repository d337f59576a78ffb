package kafka

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/urban-dds/internal/config"
	pkgerrors "github.com/turtacn/urban-dds/pkg/errors"
)

// mockKafkaWriter records written messages.
type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	written   []kafka.Message
	closed    int
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		if err := m.writeFunc(ctx, msgs...); err != nil {
			return err
		}
	}
	m.written = append(m.written, msgs...)
	return nil
}

func (m *mockKafkaWriter) Close() error {
	m.closed++
	return nil
}

func newTestProducer(w WriterInterface) *Producer {
	return NewProducerWithWriter(w, ProducerConfig{Brokers: []string{"localhost:9092"}}, nil)
}

func TestValidateProducerConfig(t *testing.T) {
	assert.NoError(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"b:9092"}}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"b:9092"}, MaxRetries: -1}))
}

func TestProducerConfigFrom(t *testing.T) {
	cfg := ProducerConfigFrom(config.KafkaConfig{Brokers: []string{"k1:9092", "k2:9092"}, MaxRetries: 5})
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, "all", cfg.Acks)
}

func TestPublish_Success(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)

	err := p.Publish(context.Background(), &ProducerMessage{
		Topic:   TopicReportCreated,
		Key:     []byte("mapo-gu"),
		Value:   []byte(`{"a":1}`),
		Headers: map[string]string{"event_type": EventTypeReportCreated},
	})
	require.NoError(t, err)
	require.Len(t, w.written, 1)
	assert.Equal(t, TopicReportCreated, w.written[0].Topic)
	assert.Equal(t, "mapo-gu", string(w.written[0].Key))
	assert.False(t, w.written[0].Time.IsZero())
	require.Len(t, w.written[0].Headers, 1)
	assert.Equal(t, "event_type", w.written[0].Headers[0].Key)

	m := p.GetMetrics()
	assert.Equal(t, int64(1), m.MessagesSent.Load())
	assert.Equal(t, int64(7), m.BytesSent.Load())
}

func TestPublish_Validation(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{})
	ctx := context.Background()

	assert.True(t, pkgerrors.IsValidation(p.Publish(ctx, &ProducerMessage{Value: []byte("v")})))
	assert.True(t, pkgerrors.IsValidation(p.Publish(ctx, &ProducerMessage{Topic: "t"})))

	big := []byte(strings.Repeat("x", 1024*1024+1))
	assert.True(t, pkgerrors.IsValidation(p.Publish(ctx, &ProducerMessage{Topic: "t", Value: big})))
}

func TestPublish_WriteError(t *testing.T) {
	w := &mockKafkaWriter{writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
		return errors.New("leader not available")
	}}
	p := newTestProducer(w)

	err := p.Publish(context.Background(), &ProducerMessage{Topic: "t", Value: []byte("v")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeMessaging))
	m := p.GetMetrics()
	assert.Equal(t, int64(1), m.MessagesFailed.Load())
}

func TestProducer_Close(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)

	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
	assert.Equal(t, 1, w.closed)
	assert.Equal(t, ErrProducerClosed, p.Publish(context.Background(), &ProducerMessage{Topic: "t", Value: []byte("v")}))
}

//Personal.AI order the ending
