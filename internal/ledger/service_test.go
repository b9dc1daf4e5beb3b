package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Menelao6/inventory-manager/internal/kafka"
	"github.com/Menelao6/inventory-manager/internal/orders"
	"github.com/Menelao6/inventory-manager/internal/redisx"
)

type memRecorder struct {
	entries map[string]Entry
	fail    error
	calls   int
}

func (m *memRecorder) Record(_ context.Context, e Entry) (bool, error) {
	m.calls++
	if m.fail != nil {
		return false, m.fail
	}
	if m.entries == nil {
		m.entries = map[string]Entry{}
	}
	if _, ok := m.entries[e.EventID]; ok {
		return false, nil
	}
	m.entries[e.EventID] = e
	return true, nil
}

func newService(t *testing.T) (*Service, *memRecorder, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	rec := &memRecorder{}
	return &Service{Repo: rec, Redis: rdb, ServiceName: "storefront-ledger", Log: zaptest.NewLogger(t)}, rec, rdb
}

func message(t *testing.T, eventType, key string, payload any) (kafkago.Message, orders.Envelope) {
	env, err := kafka.NewEnvelope("storefront-api", eventType, key, payload)
	require.NoError(t, err)
	topic, _ := orders.TopicFor(eventType)
	return kafkago.Message{Topic: topic, Value: kafka.MustMarshal(env)}, env
}

func TestHandleMessage_RecordsReconciliationFlag(t *testing.T) {
	s, rec, _ := newService(t)
	o := orders.Order{ID: "ord008", ProductID: 1, Quantity: 2, Status: orders.StatusPending, CreatedAt: time.Now()}

	m, env := message(t, orders.EventOrderPlaced, o.ID, orders.OrderPlacedPayload{
		Order: o, NeedsReconciliation: true, Reason: "stock update failed",
	})
	require.NoError(t, s.HandleMessage(context.Background(), m))

	got, ok := rec.entries[env.EventID]
	require.True(t, ok)
	assert.True(t, got.NeedsReconciliation)
	assert.Equal(t, "stock update failed", got.Reason)
	assert.Equal(t, "ord008", got.CorrelationID)
	assert.Equal(t, orders.EventOrderPlaced, got.EventType)

	var payload orders.OrderPlacedPayload
	require.NoError(t, json.Unmarshal(got.Payload, &payload))
	assert.Equal(t, o.ID, payload.Order.ID)
}

func TestHandleMessage_DedupsRedelivery(t *testing.T) {
	s, rec, _ := newService(t)
	m, _ := message(t, orders.EventOrderProcessed, "ord009", orders.OrderProcessedPayload{})

	require.NoError(t, s.HandleMessage(context.Background(), m))
	require.NoError(t, s.HandleMessage(context.Background(), m))
	assert.Equal(t, 1, rec.calls)
	assert.Len(t, rec.entries, 1)
}

func TestHandleMessage_FailureAllowsRetry(t *testing.T) {
	s, rec, rdb := newService(t)
	m, env := message(t, orders.EventOrderCancelled, "ord010", orders.OrderCancelledPayload{ProductID: 4})

	rec.fail = errors.New("connection refused")
	require.Error(t, s.HandleMessage(context.Background(), m))

	n, err := rdb.Exists(context.Background(), redisx.DedupKey(s.ServiceName, env.EventID)).Result()
	require.NoError(t, err)
	assert.Zero(t, n, "dedup mark is released")

	rec.fail = nil
	require.NoError(t, s.HandleMessage(context.Background(), m))
	assert.Contains(t, rec.entries, env.EventID)
}

func TestHandleMessage_DropsPoisonMessages(t *testing.T) {
	s, rec, _ := newService(t)

	assert.NoError(t, s.HandleMessage(context.Background(), kafkago.Message{Value: []byte("{not json")}))
	assert.NoError(t, s.HandleMessage(context.Background(), kafkago.Message{Value: []byte(`{"event_type":"OrderPlaced"}`)}))
	assert.Zero(t, rec.calls)
}

func TestHandleMessage_WithoutRedis(t *testing.T) {
	rec := &memRecorder{}
	s := &Service{Repo: rec, ServiceName: "storefront-ledger"}
	m, _ := message(t, orders.EventStockAdjusted, orders.ProductKey(3), orders.StockAdjustedPayload{ProductID: 3})

	require.NoError(t, s.HandleMessage(context.Background(), m))
	require.NoError(t, s.HandleMessage(context.Background(), m))
	assert.Equal(t, 2, rec.calls, "postgres conflict handling is the only guard")
	assert.Len(t, rec.entries, 1)
}
