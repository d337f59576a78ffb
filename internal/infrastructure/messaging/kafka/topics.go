package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/urban-dds/internal/application/analysis"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/urban-dds/pkg/errors"
)

// Topic Constants
const (
	TopicReportCreated     = "analysis.report.created"
	TopicDeadLetterReports = "dead_letter.analysis"
)

// Event types carried in EventEnvelope.EventType.
const (
	EventTypeReportCreated = "analysis.report.created"
	SchemaVersion          = "v1"
	DefaultEventSource     = "urban-dds-apiserver"
)

// Message is a consumed record.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// ProducerMessage is a record to publish.
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// MessageHandler processes one consumed record.
type MessageHandler func(ctx context.Context, msg *Message) error

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEventEnvelope wraps payload with a fresh event id.
func NewEventEnvelope(eventType string, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeSerialization, "event payload is empty")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal payload")
	}
	return nil
}

// DecodeEnvelope parses a consumed record into an envelope.
func DecodeEnvelope(msg *Message) (*EventEnvelope, error) {
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal event envelope")
	}
	if env.EventType == "" {
		return nil, errors.New(errors.ErrCodeSerialization, "event envelope has no event type")
	}
	return &env, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Report events
// ─────────────────────────────────────────────────────────────────────────────

// eventProducer is the subset of Producer used by ReportEventPublisher.
type eventProducer interface {
	Publish(ctx context.Context, msg *ProducerMessage) error
}

// ReportEventPublisher publishes saved reports to the report topic.
type ReportEventPublisher struct {
	producer eventProducer
	topic    string
	source   string
	logger   logging.Logger
}

// NewReportEventPublisher returns a publisher writing to topic, or
// TopicReportCreated when topic is empty.
func NewReportEventPublisher(producer eventProducer, topic string, log logging.Logger) *ReportEventPublisher {
	if topic == "" {
		topic = TopicReportCreated
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ReportEventPublisher{producer: producer, topic: topic, source: DefaultEventSource, logger: log}
}

// PublishReportCreated implements analysis.ReportPublisher.  Records are
// keyed by region code so one region's reports stay ordered.
func (p *ReportEventPublisher) PublishReportCreated(ctx context.Context, ev analysis.ReportEvent) error {
	env, err := NewEventEnvelope(EventTypeReportCreated, p.source, ev)
	if err != nil {
		return err
	}
	if ev.EventID != "" {
		env.EventID = ev.EventID
	}
	if !ev.CreatedAt.IsZero() {
		env.Timestamp = ev.CreatedAt.UTC()
	}
	if ev.Report != nil {
		env.TraceID = ev.Report.TraceID
	}
	env.Metadata = map[string]string{"document_id": ev.DocumentID}

	value, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event envelope")
	}

	err = p.producer.Publish(ctx, &ProducerMessage{
		Topic:     p.topic,
		Key:       []byte(ev.RegionCode),
		Value:     value,
		Headers:   map[string]string{"event_type": EventTypeReportCreated, "schema_version": SchemaVersion},
		Timestamp: env.Timestamp,
	})
	if err != nil {
		return err
	}
	p.logger.Debug("report event published",
		logging.String("event_id", env.EventID),
		logging.String("document_id", ev.DocumentID),
	)
	return nil
}

// DecodeReportEvent extracts a report-created event from a consumed record.
func DecodeReportEvent(msg *Message) (analysis.ReportEvent, error) {
	var ev analysis.ReportEvent
	env, err := DecodeEnvelope(msg)
	if err != nil {
		return ev, err
	}
	if env.EventType != EventTypeReportCreated {
		return ev, errors.Newf(errors.ErrCodeValidation, "unexpected event type: %s", env.EventType)
	}
	if err := env.DecodePayload(&ev); err != nil {
		return ev, err
	}
	if ev.DocumentID == "" || ev.Report == nil {
		return ev, errors.New(errors.ErrCodeValidation, "report event is missing document id or report")
	}
	return ev, nil
}

//Personal.AI order the ending
