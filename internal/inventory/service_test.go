package inventory

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Menelao6/inventory-manager/internal/apperr"
	"github.com/Menelao6/inventory-manager/internal/orders"
	"github.com/Menelao6/inventory-manager/internal/store"
	"github.com/Menelao6/inventory-manager/internal/store/storetest"
)

type captured struct {
	key     string
	payload orders.StockAdjustedPayload
}

type captureEmitter struct{ got []captured }

func (c *captureEmitter) Emit(_ context.Context, _ string, key string, payload any) error {
	c.got = append(c.got, captured{key, payload.(orders.StockAdjustedPayload)})
	return nil
}

func newService(t *testing.T, products ...orders.Product) (*Service, *storetest.Server, *captureEmitter) {
	srv := storetest.New(t, products...)
	ev := &captureEmitter{}
	return &Service{
		Store:  store.New(srv.URL, 2*time.Second, nil),
		Events: ev,
		Now:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}, srv, ev
}

func validInput(qty int) ProductInput {
	return ProductInput{Name: "Desk Lamp", ImageURL: "https://img/lamp.png", Category: "Lighting", Price: 19.5, Quantity: qty}
}

func TestProductInput_Validate(t *testing.T) {
	tests := []struct {
		name string
		in   ProductInput
		want string
	}{
		{"missing fields are listed", ProductInput{Name: " "}, "missing required fields: name, imageUrl, category"},
		{"negative price", ProductInput{Name: "a", ImageURL: "b", Category: "c", Price: -1}, "price must not be negative"},
		{"negative quantity", ProductInput{Name: "a", ImageURL: "b", Category: "c", Quantity: -2}, "quantity must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.EqualError(t, err, tt.want)
		})
	}
	assert.NoError(t, validInput(0).Validate())
}

func TestCreate_DerivesStatus(t *testing.T) {
	s, srv, ev := newService(t)

	p, err := s.Create(context.Background(), validInput(4))
	require.NoError(t, err)

	assert.Equal(t, orders.LowStock, p.Status)
	stored, ok := srv.Product(p.ID)
	require.True(t, ok)
	assert.Equal(t, orders.LowStock, stored.Status)
	require.NotNil(t, stored.UpdatedAt)

	require.Len(t, ev.got, 1)
	assert.Equal(t, SourceCreate, ev.got[0].payload.Source)
	assert.Equal(t, 4, ev.got[0].payload.NewQuantity)
}

func TestCreate_InvalidMakesNoCall(t *testing.T) {
	s, srv, _ := newService(t)

	_, err := s.Create(context.Background(), ProductInput{})
	assert.Error(t, err)
	assert.Empty(t, srv.Calls())
}

func TestUpdate_RecomputesStatusAndEmitsOnStockChange(t *testing.T) {
	s, srv, ev := newService(t, orders.Product{ID: 3, Name: "Desk Lamp", Quantity: 2, Status: orders.LowStock})

	p, err := s.Update(context.Background(), 3, validInput(15))
	require.NoError(t, err)
	assert.Equal(t, orders.InStock, p.Status)
	stored, _ := srv.Product(3)
	assert.Equal(t, 15, stored.Quantity)
	require.Len(t, ev.got, 1)
	assert.Equal(t, 2, ev.got[0].payload.OldQuantity)
	assert.Equal(t, "product:3", ev.got[0].key)

	_, err = s.Update(context.Background(), 3, validInput(15))
	require.NoError(t, err)
	assert.Len(t, ev.got, 1, "no event when quantity is unchanged")
}

func TestUpdate_UnknownProduct(t *testing.T) {
	s, _, _ := newService(t)

	_, err := s.Update(context.Background(), 42, validInput(1))
	assert.True(t, apperr.IsNotFound(err))
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	s, srv, ev := newService(t, orders.Product{ID: 3, Name: "Desk Lamp", Quantity: 7})

	err := s.Delete(context.Background(), 3, false)
	assert.Equal(t, apperr.KindConfirmationRequired, apperr.KindOf(err))
	assert.Empty(t, srv.Calls())

	require.NoError(t, s.Delete(context.Background(), 3, true))
	_, ok := srv.Product(3)
	assert.False(t, ok)
	require.Len(t, ev.got, 1)
	assert.Equal(t, SourceDelete, ev.got[0].payload.Source)
	assert.Equal(t, orders.OutOfStock, ev.got[0].payload.Status)
}

func TestDelete_RemoteFailure(t *testing.T) {
	s, srv, _ := newService(t, orders.Product{ID: 3, Name: "Desk Lamp", Quantity: 7})
	srv.Fail(http.MethodDelete, "/products/3", 1)

	err := s.Delete(context.Background(), 3, true)
	assert.Equal(t, apperr.KindRemote, apperr.KindOf(err))
	assert.Equal(t, "failed to delete product Desk Lamp", apperr.Message(err))
}
