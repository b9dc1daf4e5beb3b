package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced    = "OrderPlaced"
	EventOrderCancelled = "OrderCancelled"
	EventOrderProcessed = "OrderProcessed"
	EventStockAdjusted  = "StockAdjusted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id, or product id for stock events
	Payload       json.RawMessage `json:"payload"`
}

// Every payload carries NeedsReconciliation so the ledger can flag
// partially applied workflows without knowing each event type.

type OrderPlacedPayload struct {
	Order               Order  `json:"order"`
	NewQuantity         int    `json:"new_quantity"`
	StockUpdated        bool   `json:"stock_updated"`
	NeedsReconciliation bool   `json:"needs_reconciliation"`
	Reason              string `json:"reason,omitempty"`
}

type OrderCancelledPayload struct {
	Order               Order  `json:"order"`
	ProductID           int    `json:"product_id"`
	RestoredQuantity    int    `json:"restored_quantity"`
	StockRestored       bool   `json:"stock_restored"`
	NeedsReconciliation bool   `json:"needs_reconciliation"`
	Reason              string `json:"reason,omitempty"`
}

type OrderProcessedPayload struct {
	Order               Order `json:"order"`
	NeedsReconciliation bool  `json:"needs_reconciliation"`
}

type StockAdjustedPayload struct {
	ProductID           int         `json:"product_id"`
	Name                string      `json:"name"`
	OldQuantity         int         `json:"old_quantity"`
	NewQuantity         int         `json:"new_quantity"`
	Status              StockStatus `json:"status"`
	Source              string      `json:"source"` // admin-create | admin-update | admin-delete
	NeedsReconciliation bool        `json:"needs_reconciliation"`
}
