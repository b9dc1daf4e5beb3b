// Package cart holds the per-session shopping cart.
//
// A cart item keeps the product as it was last seen. Quantity bounds are
// checked against that snapshot when the cart is mutated and again when
// the cart is submitted; stock may change in between.
package cart

import (
	"github.com/Menelao6/inventory-manager/internal/apperr"
	"github.com/Menelao6/inventory-manager/internal/orders"
)

type Item struct {
	Product  orders.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

func (it Item) Subtotal() float64 { return it.Product.Price * float64(it.Quantity) }

type Cart struct {
	items []Item
}

func New(items ...Item) *Cart {
	return &Cart{items: append([]Item(nil), items...)}
}

// Items returns a copy of the items in insertion order.
func (c *Cart) Items() []Item {
	return append([]Item(nil), c.items...)
}

func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

func (c *Cart) index(productID int) int {
	for i, it := range c.items {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) Get(productID int) (Item, bool) {
	i := c.index(productID)
	if i < 0 {
		return Item{}, false
	}
	return c.items[i], true
}

// Add puts one unit of p in the cart. An out-of-stock product, or one
// whose stock is already fully in the cart, is refused and the cart is
// left unchanged.
func (c *Cart) Add(p orders.Product) error {
	if p.Quantity <= 0 {
		return apperr.Validationf("%s is out of stock", p.Name)
	}
	i := c.index(p.ID)
	if i < 0 {
		c.items = append(c.items, Item{Product: p, Quantity: 1})
		return nil
	}
	if c.items[i].Quantity+1 > p.Quantity {
		return apperr.Validationf("only %d of %s available", p.Quantity, p.Name)
	}
	c.items[i].Product = p
	c.items[i].Quantity++
	return nil
}

func (c *Cart) Increase(productID int) error {
	i := c.index(productID)
	if i < 0 {
		return apperr.NotFoundf("product %d is not in the cart", productID)
	}
	it := &c.items[i]
	if it.Quantity >= it.Product.Quantity {
		return apperr.Validationf("only %d of %s available", it.Product.Quantity, it.Product.Name)
	}
	it.Quantity++
	return nil
}

// Decrease removes one unit; an item at quantity 1 is removed entirely.
func (c *Cart) Decrease(productID int) error {
	i := c.index(productID)
	if i < 0 {
		return apperr.NotFoundf("product %d is not in the cart", productID)
	}
	if c.items[i].Quantity <= 1 {
		c.removeAt(i)
		return nil
	}
	c.items[i].Quantity--
	return nil
}

func (c *Cart) Remove(productID int) error {
	i := c.index(productID)
	if i < 0 {
		return apperr.NotFoundf("product %d is not in the cart", productID)
	}
	c.removeAt(i)
	return nil
}

func (c *Cart) removeAt(i int) {
	c.items = append(c.items[:i], c.items[i+1:]...)
}

// Clear empties the cart once the user has confirmed.
func (c *Cart) Clear(confirmed bool) error {
	if !confirmed {
		return apperr.ConfirmationRequired("clearing the cart")
	}
	c.items = nil
	return nil
}

// Reset empties the cart without asking; used after a successful checkout.
func (c *Cart) Reset() { c.items = nil }

func (c *Cart) Total() float64 {
	var total float64
	for _, it := range c.items {
		total += it.Subtotal()
	}
	return total
}

// Count is the number of units across all items.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}
