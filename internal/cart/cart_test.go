package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Menelao6/inventory-manager/internal/apperr"
	"github.com/Menelao6/inventory-manager/internal/orders"
)

func product(id, qty int, price float64) orders.Product {
	return orders.Product{ID: id, Name: "p" + string(rune('A'+id)), Price: price, Quantity: qty, Status: orders.ComputeStatus(qty)}
}

func TestAdd_OutOfStockIsRefused(t *testing.T) {
	c := New()

	err := c.Add(product(1, 0, 5))

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.True(t, c.IsEmpty())
}

func TestAdd_InsertsThenIncrementsUpToStock(t *testing.T) {
	c := New()
	p := product(1, 2, 5)

	require.NoError(t, c.Add(p))
	require.NoError(t, c.Add(p))
	err := c.Add(p)

	assert.Error(t, err)
	it, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, 2, it.Quantity)
	assert.Equal(t, 1, c.Len())
}

func TestAdd_RefreshesSnapshot(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(product(1, 5, 5)))

	require.NoError(t, c.Add(product(1, 8, 6)))

	it, _ := c.Get(1)
	assert.Equal(t, 8, it.Product.Quantity)
	assert.Equal(t, 6.0, it.Product.Price)
}

func TestIncrease_BoundedByStock(t *testing.T) {
	c := New(Item{Product: product(1, 2, 5), Quantity: 1})

	require.NoError(t, c.Increase(1))
	assert.Error(t, c.Increase(1))

	it, _ := c.Get(1)
	assert.Equal(t, 2, it.Quantity)
	assert.True(t, apperr.IsNotFound(c.Increase(99)))
}

func TestDecrease_AtOneRemovesItem(t *testing.T) {
	c := New(Item{Product: product(1, 5, 5), Quantity: 2}, Item{Product: product(2, 5, 3), Quantity: 1})

	require.NoError(t, c.Decrease(1))
	it, _ := c.Get(1)
	assert.Equal(t, 1, it.Quantity)

	require.NoError(t, c.Decrease(2))
	_, ok := c.Get(2)
	assert.False(t, ok, "decreasing below one removes the item")
	assert.Equal(t, 1, c.Len())
}

func TestRemoveAndClear(t *testing.T) {
	c := New(Item{Product: product(1, 5, 5), Quantity: 2}, Item{Product: product(2, 5, 3), Quantity: 1})

	require.NoError(t, c.Remove(1))
	assert.Equal(t, 1, c.Len())

	err := c.Clear(false)
	assert.Equal(t, apperr.KindConfirmationRequired, apperr.KindOf(err))
	assert.Equal(t, 1, c.Len(), "unconfirmed clear leaves the cart alone")

	require.NoError(t, c.Clear(true))
	assert.True(t, c.IsEmpty())
}

func TestTotalsAndOrder(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(product(3, 10, 2.5)))
	require.NoError(t, c.Add(product(1, 10, 4)))
	require.NoError(t, c.Add(product(3, 10, 2.5)))

	assert.Equal(t, 9.0, c.Total())
	assert.Equal(t, 3, c.Count())
	items := c.Items()
	assert.Equal(t, 3, items[0].Product.ID)
	assert.Equal(t, 1, items[1].Product.ID)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	empty, err := s.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	c := New(Item{Product: product(1, 4, 5), Quantity: 2})
	require.NoError(t, s.Save(ctx, "sess-1", c))
	assert.True(t, mr.Exists("cart:sess-1"))
	assert.Equal(t, 24*time.Hour, mr.TTL("cart:sess-1"))

	loaded, err := s.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, c.Items(), loaded.Items())

	loaded.Reset()
	require.NoError(t, s.Save(ctx, "sess-1", loaded))
	assert.False(t, mr.Exists("cart:sess-1"))
}

func TestRedisStore_ExpiresWithSession(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "sess-2", New(Item{Product: product(1, 4, 5), Quantity: 1})))

	mr.FastForward(25 * time.Hour)

	c, err := s.Load(ctx, "sess-2")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestRedisStore_CorruptSnapshot(t *testing.T) {
	s, mr := newRedisStore(t)
	require.NoError(t, mr.Set("cart:bad", "{not json"))

	_, err := s.Load(context.Background(), "bad")
	assert.ErrorContains(t, err, "decode cart bad")
}

func TestRedisStore_LockCheckout(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	unlock, err := s.LockCheckout(ctx, "sess-3")
	require.NoError(t, err)
	assert.True(t, mr.Exists("checkout:sess-3"))

	_, err = s.LockCheckout(ctx, "sess-3")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	other, err := s.LockCheckout(ctx, "sess-4")
	require.NoError(t, err, "sessions do not block each other")
	other()

	unlock()
	assert.False(t, mr.Exists("checkout:sess-3"))
	again, err := s.LockCheckout(ctx, "sess-3")
	require.NoError(t, err)
	again()
}

func TestRedisStore_StaleCheckoutLockExpires(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()
	_, err := s.LockCheckout(ctx, "sess-5")
	require.NoError(t, err)

	mr.FastForward(31 * time.Second)

	unlock, err := s.LockCheckout(ctx, "sess-5")
	require.NoError(t, err)
	unlock()
}
