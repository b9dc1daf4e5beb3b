package orders

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusDispatched OrderStatus = "dispatched"
	StatusCancelled  OrderStatus = "cancelled"
	// StatusProcessed is what the process action writes. Older records and
	// clients rely on the capitalised value, so it is kept as-is and treated
	// as dispatched.
	StatusProcessed OrderStatus = "Processed"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:    {StatusDispatched: true, StatusProcessed: true, StatusCancelled: true},
	StatusDispatched: {},
	StatusProcessed:  {},
	StatusCancelled:  {},
}

func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// CanCancel reports whether an order in status s may be cancelled. Pending
// orders can, and so can records carrying a status this service does not
// know. Cancelled and dispatched orders cannot: cancelling again would
// restock twice.
func CanCancel(s OrderStatus) bool {
	return s == StatusPending || !s.Known()
}

// Known reports whether s is one of the statuses above.
func (s OrderStatus) Known() bool {
	_, ok := validNext[s]
	return ok
}

func (s OrderStatus) IsDispatched() bool {
	return s == StatusDispatched || s == StatusProcessed
}

type StockStatus string

const (
	InStock    StockStatus = "in-stock"
	LowStock   StockStatus = "low-stock"
	OutOfStock StockStatus = "out-of-stock"
)

const LowStockThreshold = 10

func ComputeStatus(quantity int) StockStatus {
	switch {
	case quantity <= 0:
		return OutOfStock
	case quantity < LowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}
