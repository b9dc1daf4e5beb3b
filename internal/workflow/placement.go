package workflow

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Menelao6/inventory-manager/internal/apperr"
	"github.com/Menelao6/inventory-manager/internal/cart"
	"github.com/Menelao6/inventory-manager/internal/orders"
)

// Stage names the step an item stopped at.
type Stage string

const (
	StageVerifyStock Stage = "verify-stock"
	StageAllocateID  Stage = "allocate-id"
	StageCreateOrder Stage = "create-order"
	StageUpdateStock Stage = "update-stock"
	StageDone        Stage = "done"
)

type ItemOutcome struct {
	Product     orders.Product `json:"product"`
	Quantity    int            `json:"quantity"`
	Order       *orders.Order  `json:"order,omitempty"`
	NewQuantity int            `json:"new_quantity"`
	Stage       Stage          `json:"stage"`
	Message     string         `json:"error,omitempty"`
	Err         error          `json:"-"`
}

// Placed reports whether an order record exists for the item.
func (o ItemOutcome) Placed() bool { return o.Order != nil }

// NeedsReconciliation is true when the order exists but the stock
// decrement did not go through.
func (o ItemOutcome) NeedsReconciliation() bool { return o.Placed() && o.Stage == StageUpdateStock }

type Summary struct {
	ItemCount  int     `json:"item_count"`
	GrandTotal float64 `json:"grand_total"`
}

type PlacementResult struct {
	Summary Summary       `json:"summary"`
	Items   []ItemOutcome `json:"items"`
}

// Err combines the failures of every item, or nil when all succeeded.
func (r PlacementResult) Err() error {
	var err error
	for _, it := range r.Items {
		err = multierr.Append(err, it.Err)
	}
	return err
}

func (r PlacementResult) Succeeded() bool { return r.Err() == nil }

type Placer struct {
	Store  Store
	Events Emitter
	Log    *zap.Logger
	// VerifyStock re-reads each product before its order is created and
	// refuses the item when the live quantity differs from the cart
	// snapshot. The window between that read and the stock write is
	// still unguarded.
	VerifyStock bool
	Now         func() time.Time
}

// Place validates the cart against its cached stock and then places one
// order per item, one item after another. A failing item does not stop
// the others and nothing already written is undone. Items whose order was
// created are removed from c; c is emptied when every item succeeded.
//
// The returned error is set only when the cart was rejected before any
// remote call; per-item failures are reported in the result.
func (p *Placer) Place(ctx context.Context, c *cart.Cart) (PlacementResult, error) {
	log := loggerOr(p.Log)
	if c.IsEmpty() {
		return PlacementResult{}, apperr.Validation("your cart is empty")
	}
	items := c.Items()
	for _, it := range items {
		if it.Quantity < 1 {
			return PlacementResult{}, apperr.Validationf("invalid quantity %d for %s", it.Quantity, productLabel(it.Product))
		}
		if it.Quantity > it.Product.Quantity {
			return PlacementResult{}, apperr.Validationf("only %d units of %s available", it.Product.Quantity, productLabel(it.Product))
		}
	}

	res := PlacementResult{
		Summary: Summary{ItemCount: c.Count(), GrandTotal: c.Total()},
		Items:   make([]ItemOutcome, 0, len(items)),
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	at := now().UTC()

	for _, it := range items {
		out := p.placeItem(ctx, log, it, at)
		if out.Err != nil {
			out.Message = apperr.Message(out.Err)
		}
		res.Items = append(res.Items, out)
		if out.Placed() {
			_ = c.Remove(it.Product.ID)
		}
	}

	if res.Succeeded() {
		c.Reset()
		log.Info("cart placed",
			zap.Int("items", len(res.Items)),
			zap.Int("units", res.Summary.ItemCount),
			zap.Float64("total", res.Summary.GrandTotal))
	} else {
		log.Warn("cart placed with failures", zap.Error(res.Err()))
	}
	return res, nil
}

func (p *Placer) placeItem(ctx context.Context, log *zap.Logger, it cart.Item, at time.Time) ItemOutcome {
	out := ItemOutcome{Product: it.Product, Quantity: it.Quantity}
	name := productLabel(it.Product)

	if p.VerifyStock {
		live, err := p.Store.GetProduct(ctx, it.Product.ID)
		if err != nil {
			out.Stage, out.Err = StageVerifyStock, remoteErr(err, "failed to check stock of %s", name)
			return out
		}
		if live.Quantity != it.Product.Quantity {
			out.Stage = StageVerifyStock
			out.Err = apperr.Validationf("stock of %s changed from %d to %d, refresh and try again",
				name, it.Product.Quantity, live.Quantity)
			return out
		}
	}

	existing, err := p.Store.ListOrders(ctx)
	if err != nil {
		out.Stage, out.Err = StageAllocateID, remoteErr(err, "failed to place order for %s", name)
		return out
	}
	order := orders.NewOrder(orders.NextOrderID(existing), it.Product, it.Quantity, at)
	if _, err := p.Store.CreateOrder(ctx, order); err != nil {
		out.Stage, out.Err = StageCreateOrder, remoteErr(err, "failed to create order for %s", name)
		return out
	}
	out.Order = &order

	updated := it.Product.WithQuantity(it.Product.Quantity - it.Quantity)
	payload := orders.OrderPlacedPayload{Order: order, NewQuantity: updated.Quantity}
	if _, err := p.Store.UpdateProduct(ctx, it.Product.ID, orders.PatchFor(updated)); err != nil {
		out.Stage = StageUpdateStock
		out.Err = remoteErr(err, "order %s was created but the stock of %s was not updated", order.ID, name)
		out.NewQuantity = it.Product.Quantity
		payload.NewQuantity = it.Product.Quantity
		payload.NeedsReconciliation = true
		payload.Reason = out.Err.Error()
		log.Error("stock update failed after order creation",
			zap.String("order_id", order.ID), zap.Int("product_id", it.Product.ID), zap.Error(err))
	} else {
		out.Stage = StageDone
		out.NewQuantity = updated.Quantity
		payload.StockUpdated = true
		log.Info("order placed",
			zap.String("order_id", order.ID),
			zap.Int("product_id", it.Product.ID),
			zap.Int("quantity", it.Quantity),
			zap.Int("new_quantity", updated.Quantity),
			zap.String("stock_status", string(updated.Status)))
	}
	emit(ctx, p.Events, log, orders.EventOrderPlaced, order.ID, payload)
	return out
}
