package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Menelao6/inventory-manager/internal/orders"
)

func TestPublish_GivesUpWhenContextEnds(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, orders.TopicOrderPlaced, 1, zap.NewNop())

	require.NoError(t, p.Publish(context.Background(), []byte("k"), []byte("first")))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := p.Publish(ctx, []byte("k"), []byte("second"))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPublish_AfterClose(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, orders.TopicOrderPlaced, 1, zap.NewNop())
	p.Close()
	p.Close()

	err := p.Publish(context.Background(), []byte("k"), []byte("v"))
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestBusEmit_FullInboxReturnsContextError(t *testing.T) {
	b := &Bus{
		producers: map[string]*Producer{
			orders.TopicOrderProcessed: NewProducer([]string{"localhost:9092"}, orders.TopicOrderProcessed, 1, zap.NewNop()),
		},
		service: "test",
	}
	ctx := context.Background()
	require.NoError(t, b.Emit(ctx, orders.EventOrderProcessed, "ord008", orders.OrderProcessedPayload{}))

	tctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := b.Emit(tctx, orders.EventOrderProcessed, "ord009", orders.OrderProcessedPayload{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorContains(t, err, "ord009")
}
