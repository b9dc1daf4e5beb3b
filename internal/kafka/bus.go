package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Menelao6/inventory-manager/internal/orders"
)

// Bus wraps one producer per topic and publishes events in the v1
// envelope.
type Bus struct {
	producers map[string]*Producer
	service   string
}

func NewBus(brokers []string, service string, log *zap.Logger) *Bus {
	b := &Bus{producers: map[string]*Producer{}, service: service}
	for _, topic := range orders.AllTopics() {
		b.producers[topic] = NewProducer(brokers, topic, 1024, log)
	}
	return b
}

func (b *Bus) Start(ctx context.Context) {
	for _, p := range b.producers {
		p.Start(ctx)
	}
}

// Close flushes every producer and waits for them to exit.
func (b *Bus) Close() {
	for _, p := range b.producers {
		p.Close()
	}
	for _, p := range b.producers {
		p.WaitClosed()
	}
}

// Emit wraps payload in an envelope and queues it on the topic of
// eventType. key is the partition key (order id or product key).
func (b *Bus) Emit(ctx context.Context, eventType, key string, payload any) error {
	topic, ok := orders.TopicFor(eventType)
	if !ok {
		return fmt.Errorf("no topic for event %q", eventType)
	}
	env, err := NewEnvelope(b.service, eventType, key, payload)
	if err != nil {
		return err
	}
	if id, ok := ctx.Value(traceKey{}).(string); ok {
		env.TraceID = id
	}
	err = b.producers[topic].Publish(ctx, orders.PartitionKey(key), MustMarshal(env),
		kafka.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafka.Header{Key: "x-event-version", Value: []byte("1")},
	)
	if err != nil {
		return fmt.Errorf("queue %s %s: %w", eventType, key, err)
	}
	return nil
}

func NewEnvelope(producer, eventType, correlationID string, payload any) (orders.Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return orders.Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

type traceKey struct{}

// WithTraceID attaches the request id to ctx so emitted events carry it.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}
