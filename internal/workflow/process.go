package workflow

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Menelao6/inventory-manager/internal/apperr"
	"github.com/Menelao6/inventory-manager/internal/orders"
	"github.com/Menelao6/inventory-manager/internal/store"
)

type Processor struct {
	Store  Store
	Events Emitter
	Log    *zap.Logger
}

// Process marks a pending order as processed and returns it together with
// the refreshed order list. Stock is not touched.
func (p *Processor) Process(ctx context.Context, orderID string) (orders.Order, []orders.Order, error) {
	log := loggerOr(p.Log).With(zap.String("order_id", orderID))

	order, err := p.Store.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return orders.Order{}, nil, apperr.NotFoundf("order %s not found", orderID)
	}
	if err != nil {
		return orders.Order{}, nil, apperr.Remote(err, "failed to load order %s", orderID)
	}
	if !orders.CanTransition(order.Status, orders.StatusProcessed) {
		return orders.Order{}, nil, apperr.Validationf("order %s is %s and cannot be processed", orderID, order.Status)
	}

	order.Status = orders.StatusProcessed
	if _, err := p.Store.UpdateOrder(ctx, order); err != nil {
		return orders.Order{}, nil, remoteErr(err, "failed to process order %s", orderID)
	}
	log.Info("order processed")
	emit(ctx, p.Events, log, orders.EventOrderProcessed, orderID, orders.OrderProcessedPayload{Order: order})

	list, err := p.Store.ListOrders(ctx)
	if err != nil {
		log.Warn("refresh orders after process", zap.Error(err))
		return order, nil, nil
	}
	return order, list, nil
}

// Delete removes an order record. No stock is restored; use Cancel for that.
func (p *Processor) Delete(ctx context.Context, orderID string) error {
	if err := p.Store.DeleteOrder(ctx, orderID); err != nil {
		return remoteErr(err, "failed to delete order %s", orderID)
	}
	loggerOr(p.Log).Info("order deleted", zap.String("order_id", orderID))
	return nil
}
