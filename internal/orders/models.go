package orders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type Product struct {
	ID          int         `json:"id,omitempty"` // assigned by the store on create
	Name        string      `json:"name"`
	ImageURL    string      `json:"imageUrl"`
	Category    string      `json:"category"`
	Price       float64     `json:"price"`
	Quantity    int         `json:"quantity"`
	Status      StockStatus `json:"status"`
	Description string      `json:"description,omitempty"`
	UpdatedAt   *time.Time  `json:"updatedAt,omitempty"`
}

// WithQuantity returns a copy of p holding qty units, with the status
// recomputed to match.
func (p Product) WithQuantity(qty int) Product {
	p.Quantity = qty
	p.Status = ComputeStatus(qty)
	return p
}

// Order snapshots the product id, name and unit price at creation time.
// Later product edits never change an existing order.
type Order struct {
	ID          string      `json:"id"`
	ProductID   int         `json:"productId"`
	ProductName string      `json:"productName"`
	Quantity    int         `json:"quantity"`
	UnitPrice   float64     `json:"unitPrice"`
	Total       float64     `json:"total"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	Customer    string      `json:"customer,omitempty"`
}

// UnmarshalJSON accepts the id as a string or, for legacy records, as a
// bare number. Either way it is kept as a string.
func (o *Order) UnmarshalJSON(b []byte) error {
	type plain Order
	aux := struct {
		*plain
		ID json.RawMessage `json:"id"`
	}{plain: (*plain)(o)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	id, err := decodeOrderID(aux.ID)
	if err != nil {
		return err
	}
	o.ID = id
	return nil
}

func decodeOrderID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("order id: %w", err)
	}
	return n.String(), nil
}

const DefaultCustomer = "Customer"

// NewOrder builds a pending order for qty units of p. The total is fixed
// here and never recomputed.
func NewOrder(id string, p Product, qty int, at time.Time) Order {
	return Order{
		ID:          id,
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    qty,
		UnitPrice:   p.Price,
		Total:       p.Price * float64(qty),
		Status:      StatusPending,
		CreatedAt:   at,
		Customer:    DefaultCustomer,
	}
}

// StockPatch is the partial product update sent after a stock mutation.
type StockPatch struct {
	Quantity int         `json:"quantity"`
	Status   StockStatus `json:"status"`
}

func PatchFor(p Product) StockPatch {
	return StockPatch{Quantity: p.Quantity, Status: p.Status}
}

func FindProduct(products []Product, id int) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func FindOrder(list []Order, id string) (Order, bool) {
	for _, o := range list {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}
