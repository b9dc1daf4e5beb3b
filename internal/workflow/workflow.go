// Package workflow runs the multi-step business operations against the
// resource store: placing the orders of a cart, cancelling an order with
// its stock restore, and processing or deleting an order.
//
// Every step is a blocking call made in sequence. Nothing is rolled back:
// when a later step fails the earlier ones stay applied, and the outcome
// says so explicitly so the caller (and the ledger) can reconcile.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Menelao6/inventory-manager/internal/apperr"
	"github.com/Menelao6/inventory-manager/internal/orders"
	"github.com/Menelao6/inventory-manager/internal/store"
)

type Store interface {
	ListProducts(ctx context.Context) ([]orders.Product, error)
	GetProduct(ctx context.Context, id int) (orders.Product, error)
	UpdateProduct(ctx context.Context, id int, patch any) (orders.Product, error)

	ListOrders(ctx context.Context) ([]orders.Order, error)
	GetOrder(ctx context.Context, id string) (orders.Order, error)
	CreateOrder(ctx context.Context, o orders.Order) (orders.Order, error)
	UpdateOrder(ctx context.Context, o orders.Order) (orders.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

// Emitter publishes workflow outcome events.
type Emitter interface {
	Emit(ctx context.Context, eventType, key string, payload any) error
}

type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, string, any) error { return nil }

// ManagerView is what the manager dashboard has loaded. Cancellation
// restores stock against these products rather than re-fetching them.
type ManagerView struct {
	Products []orders.Product
	Orders   []orders.Order
}

// LoadManagerView fetches products and orders concurrently.
func LoadManagerView(ctx context.Context, s Store) (ManagerView, error) {
	var v ManagerView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ps, err := s.ListProducts(gctx)
		if err != nil {
			return remoteErr(err, "failed to load products")
		}
		v.Products = ps
		return nil
	})
	g.Go(func() error {
		list, err := s.ListOrders(gctx)
		if err != nil {
			return remoteErr(err, "failed to load orders")
		}
		v.Orders = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return ManagerView{}, err
	}
	return v, nil
}

// remoteErr maps a store failure to a user-facing error: 404s become
// not-found, everything else a remote failure.
func remoteErr(err error, format string, args ...any) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFoundf(format, args...)
	}
	return apperr.Remote(err, format, args...)
}

func emit(ctx context.Context, e Emitter, log *zap.Logger, eventType, key string, payload any) {
	if e == nil {
		return
	}
	if err := e.Emit(ctx, eventType, key, payload); err != nil {
		log.Error("emit event failed", zap.String("event", eventType), zap.String("key", key), zap.Error(err))
	}
}

func loggerOr(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

func productLabel(p orders.Product) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("product %d", p.ID)
}
