package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "agorax/pkg/platform/audit"
)

// DefaultTopic is where assembly audit events are streamed for downstream
// consumers (minutes generation, compliance archive).
const DefaultTopic = "agorax.audit.events"

// Publisher streams audit events to Kafka. Delivery is fire-and-forget:
// produce errors are logged, never surfaced to the emitting operation.
type Publisher struct {
	client *kgo.Client
	logger *slog.Logger
}

// record is the wire shape published to the audit topic.
type record struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	ActorID     string `json:"actor_id,omitempty"`
	Action      string `json:"action"`
	EntityType  string `json:"entity_type"`
	EntityID    string `json:"entity_id,omitempty"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
	ClientIP    string `json:"client_ip,omitempty"`
}

func New(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ClientID("agorax"),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{client: client, logger: logger}, nil
}

// Emit publishes the event asynchronously. Events for the same entity share a
// key so per-entity ordering survives partitioning.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	payload := record{
		ID:          uuid.NewString(),
		Timestamp:   event.Timestamp.Format(time.RFC3339Nano),
		Action:      event.Action,
		EntityType:  event.EntityType,
		EntityID:    event.EntityID,
		Description: event.Description,
		RequestID:   event.RequestID,
		ClientIP:    event.ClientIP,
	}
	if !event.ActorID.IsNil() {
		payload.ActorID = event.ActorID.String()
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	p.client.Produce(ctx, &kgo.Record{
		Key:   []byte(event.EntityType + ":" + event.EntityID),
		Value: value,
	}, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("audit kafka produce failed",
				"action", event.Action,
				"entity_type", event.EntityType,
				"error", err,
			)
		}
	})
	return nil
}

// Close flushes buffered records and releases the client.
func (p *Publisher) Close(ctx context.Context) error {
	defer p.client.Close()
	return p.client.Flush(ctx)
}
