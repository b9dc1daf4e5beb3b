// Package dashboard derives the lists and totals shown on the customer,
// manager and admin dashboards. Inputs are never modified.
package dashboard

import (
	"sort"
	"strings"

	"github.com/Menelao6/inventory-manager/internal/orders"
)

// Admin

type AdminSummary struct {
	ProductCount  int              `json:"product_count"`
	TotalQuantity int              `json:"total_quantity"`
	TotalCost     float64          `json:"total_cost"`
	Threshold     int              `json:"threshold"`
	LowStock      []orders.Product `json:"low_stock"`
}

func TotalQuantity(products []orders.Product) int {
	n := 0
	for _, p := range products {
		n += p.Quantity
	}
	return n
}

// TotalCost is the stock value: Σ price × quantity.
func TotalCost(products []orders.Product) float64 {
	var total float64
	for _, p := range products {
		total += p.Price * float64(p.Quantity)
	}
	return total
}

// LowStock returns the products with fewer than threshold units, out of
// stock ones included.
func LowStock(products []orders.Product, threshold int) []orders.Product {
	out := []orders.Product{}
	for _, p := range products {
		if p.Quantity < threshold {
			out = append(out, p)
		}
	}
	return out
}

func Admin(products []orders.Product, threshold int) AdminSummary {
	if threshold <= 0 {
		threshold = orders.LowStockThreshold
	}
	return AdminSummary{
		ProductCount:  len(products),
		TotalQuantity: TotalQuantity(products),
		TotalCost:     TotalCost(products),
		Threshold:     threshold,
		LowStock:      LowStock(products, threshold),
	}
}

// Manager

type ManagerSummary struct {
	Orders   []orders.Order             `json:"orders"`
	ByStatus map[orders.OrderStatus]int `json:"by_status"`
	Revenue  float64                    `json:"revenue"`
}

// NewestFirst sorts a copy of list by creation time, newest first. Ties
// go to the higher order sequence, so ord1000 precedes ord999.
func NewestFirst(list []orders.Order) []orders.Order {
	out := append([]orders.Order(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return laterID(out[i].ID, out[j].ID)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// laterID orders ids by sequence; ids without one sort after those with
// one, by plain string order among themselves.
func laterID(a, b string) bool {
	na, okA := orders.Sequence(a)
	nb, okB := orders.Sequence(b)
	switch {
	case okA && okB:
		return na > nb
	case okA != okB:
		return okA
	default:
		return a > b
	}
}

// FilterStatus keeps orders with the given status; an empty status keeps
// everything. "dispatched" also matches processed orders.
func FilterStatus(list []orders.Order, status orders.OrderStatus) []orders.Order {
	if status == "" {
		return append([]orders.Order(nil), list...)
	}
	out := []orders.Order{}
	for _, o := range list {
		if o.Status == status || (status == orders.StatusDispatched && o.Status.IsDispatched()) {
			out = append(out, o)
		}
	}
	return out
}

// Revenue sums the totals of every order that was not cancelled.
func Revenue(list []orders.Order) float64 {
	var sum float64
	for _, o := range list {
		if o.Status != orders.StatusCancelled {
			sum += o.Total
		}
	}
	return sum
}

func Manager(list []orders.Order, status orders.OrderStatus) ManagerSummary {
	counts := map[orders.OrderStatus]int{}
	for _, o := range list {
		counts[o.Status]++
	}
	return ManagerSummary{
		Orders:   NewestFirst(FilterStatus(list, status)),
		ByStatus: counts,
		Revenue:  Revenue(list),
	}
}

// Customer

type Catalogue struct {
	Products   []orders.Product `json:"products"`
	Categories []string         `json:"categories"`
}

// Browse filters by category (exact, case-insensitive) and by a name or
// description search, sorted by name.
func Browse(products []orders.Product, category, query string) Catalogue {
	query = strings.ToLower(strings.TrimSpace(query))
	out := []orders.Product{}
	for _, p := range products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return Catalogue{Products: out, Categories: Categories(products)}
}

func Categories(products []orders.Product) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}
