package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Menelao6/inventory-manager/internal/orders"
)

func TestNewEnvelope_WrapsPayload(t *testing.T) {
	payload := orders.OrderProcessedPayload{Order: orders.Order{ID: "ord011", Status: orders.StatusProcessed}}

	env, err := NewEnvelope("storefront-api", orders.EventOrderProcessed, "ord011", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "ord011", env.CorrelationID)
	assert.False(t, env.OccurredAt.IsZero())

	got, err := UnwrapPayload[orders.OrderProcessedPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestUnwrapPayload_BadJSON(t *testing.T) {
	_, err := UnwrapPayload[orders.OrderPlacedPayload]([]byte("{"))
	assert.ErrorContains(t, err, "decode payload")
}

func TestBusEmit_UnknownEvent(t *testing.T) {
	b := NewBus([]string{"localhost:9092"}, "test", zap.NewNop())

	err := b.Emit(context.Background(), "Unknown", "x", struct{}{})
	assert.ErrorContains(t, err, "no topic")
}
