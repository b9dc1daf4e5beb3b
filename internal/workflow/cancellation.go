package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Menelao6/inventory-manager/internal/apperr"
	"github.com/Menelao6/inventory-manager/internal/orders"
)

type CancelOutcome struct {
	Order         orders.Order    `json:"order"`
	Product       *orders.Product `json:"product,omitempty"`
	StockRestored bool            `json:"stock_restored"`
	Warning       string          `json:"warning,omitempty"`
	Orders        []orders.Order  `json:"orders,omitempty"`
}

func (o CancelOutcome) NeedsReconciliation() bool { return !o.StockRestored }

type Canceller struct {
	Store  Store
	Events Emitter
	Log    *zap.Logger
}

// Cancel cancels an order that has not been dispatched (pending, or a legacy
// status this service does not know) and puts its quantity back on the
// product found in view.Products. The order is looked up in a fresh
// listing; the product is not re-fetched.
//
// Once the order is cancelled the call succeeds even if the stock could not
// be restored: the outcome carries a warning and the event is flagged for
// reconciliation.
func (c *Canceller) Cancel(ctx context.Context, view ManagerView, orderID string) (CancelOutcome, error) {
	log := loggerOr(c.Log).With(zap.String("order_id", orderID))

	current, err := c.Store.ListOrders(ctx)
	if err != nil {
		return CancelOutcome{}, remoteErr(err, "failed to load orders")
	}
	order, ok := orders.FindOrder(current, orderID)
	if !ok {
		return CancelOutcome{}, apperr.NotFoundf("order %s not found", orderID)
	}
	if !orders.CanCancel(order.Status) {
		return CancelOutcome{}, apperr.Validationf("order %s is %s and cannot be cancelled", orderID, order.Status)
	}

	cancelled := order
	cancelled.Status = orders.StatusCancelled
	if _, err := c.Store.UpdateOrder(ctx, cancelled); err != nil {
		return CancelOutcome{}, remoteErr(err, "failed to cancel order %s", orderID)
	}
	log.Info("order cancelled", zap.Int("product_id", order.ProductID), zap.Int("quantity", order.Quantity))

	out := CancelOutcome{Order: cancelled}
	payload := orders.OrderCancelledPayload{Order: cancelled, ProductID: order.ProductID}

	product, found := orders.FindProduct(view.Products, order.ProductID)
	if !found {
		out.Warning = fmt.Sprintf("product %d of order %s not found, stock was not restored", order.ProductID, orderID)
		log.Warn("stock not restored, product missing from view", zap.Int("product_id", order.ProductID))
	} else {
		restored := product.WithQuantity(product.Quantity + order.Quantity)
		if _, err := c.Store.UpdateProduct(ctx, product.ID, orders.PatchFor(restored)); err != nil {
			out.Warning = fmt.Sprintf("order %s was cancelled but the stock of %s was not restored: %v",
				orderID, productLabel(product), err)
			log.Error("stock restore failed", zap.Int("product_id", product.ID), zap.Error(err))
		} else {
			out.Product = &restored
			out.StockRestored = true
			payload.RestoredQuantity = restored.Quantity
			payload.StockRestored = true
		}
	}
	payload.NeedsReconciliation = !out.StockRestored
	payload.Reason = out.Warning
	emit(ctx, c.Events, log, orders.EventOrderCancelled, orderID, payload)

	// Views are refreshed whatever happened to the stock.
	if refreshed, err := c.Store.ListOrders(ctx); err != nil {
		log.Warn("refresh orders after cancel", zap.Error(err))
	} else {
		out.Orders = refreshed
	}
	return out, nil
}
