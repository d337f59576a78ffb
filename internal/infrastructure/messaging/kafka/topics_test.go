package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/urban-dds/internal/application/analysis"
	"github.com/turtacn/urban-dds/internal/domain/scoring"
	pkgerrors "github.com/turtacn/urban-dds/pkg/errors"
)

type capturingProducer struct {
	msgs []*ProducerMessage
	err  error
}

func (c *capturingProducer) Publish(ctx context.Context, msg *ProducerMessage) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, msg)
	return nil
}

func sampleEvent() analysis.ReportEvent {
	return analysis.ReportEvent{
		EventID:    "evt-1",
		DocumentID: "doc-1",
		Owner:      "planner-1",
		RegionCode: "mapo-gu",
		RegionName: "서울 마포구",
		Report: &analysis.Report{
			RegionCode:          "mapo-gu",
			RegionName:          "서울 마포구",
			PriorityScore:       64.2,
			RecommendedScenario: scoring.ScenarioSelective,
			Summary:             "요약",
			TraceID:             "trace-abc",
		},
		CreatedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
	}
}

func TestNewEventEnvelope(t *testing.T) {
	env, err := NewEventEnvelope(EventTypeReportCreated, "test", map[string]int{"a": 1})
	require.NoError(t, err)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, SchemaVersion, env.SchemaVersion)

	var out map[string]int
	require.NoError(t, env.DecodePayload(&out))
	assert.Equal(t, 1, out["a"])

	_, err = NewEventEnvelope(EventTypeReportCreated, "test", make(chan int))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))

	empty := &EventEnvelope{Payload: json.RawMessage("null")}
	assert.Error(t, empty.DecodePayload(&out))
}

func TestReportEventPublisher_RoundTrip(t *testing.T) {
	prod := &capturingProducer{}
	pub := NewReportEventPublisher(prod, "", nil)

	require.NoError(t, pub.PublishReportCreated(context.Background(), sampleEvent()))
	require.Len(t, prod.msgs, 1)

	msg := prod.msgs[0]
	assert.Equal(t, TopicReportCreated, msg.Topic)
	assert.Equal(t, "mapo-gu", string(msg.Key))
	assert.Equal(t, EventTypeReportCreated, msg.Headers["event_type"])

	env, err := DecodeEnvelope(&Message{Value: msg.Value})
	require.NoError(t, err)
	assert.Equal(t, "evt-1", env.EventID)
	assert.Equal(t, "trace-abc", env.TraceID)
	assert.Equal(t, "doc-1", env.Metadata["document_id"])
	assert.Equal(t, DefaultEventSource, env.Source)

	ev, err := DecodeReportEvent(&Message{Value: msg.Value})
	require.NoError(t, err)
	assert.Equal(t, sampleEvent(), ev)
}

func TestReportEventPublisher_ProducerError(t *testing.T) {
	pub := NewReportEventPublisher(&capturingProducer{err: errors.New("down")}, "custom.topic", nil)
	assert.Error(t, pub.PublishReportCreated(context.Background(), sampleEvent()))
}

func TestDecodeReportEvent_Rejects(t *testing.T) {
	_, err := DecodeReportEvent(&Message{Value: []byte("{not json")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))

	other, _ := NewEventEnvelope("something.else", "test", sampleEvent())
	raw, _ := json.Marshal(other)
	_, err = DecodeReportEvent(&Message{Value: raw})
	assert.True(t, pkgerrors.IsValidation(err))

	incomplete, _ := NewEventEnvelope(EventTypeReportCreated, "test", analysis.ReportEvent{EventID: "e"})
	raw, _ = json.Marshal(incomplete)
	_, err = DecodeReportEvent(&Message{Value: raw})
	assert.True(t, pkgerrors.IsValidation(err))
}

//Personal.AI order the ending
