package store

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Menelao6/inventory-manager/internal/orders"
)

func productPath(id int) string { return "/products/" + strconv.Itoa(id) }

func orderPath(id string) string { return "/orders/" + url.PathEscape(id) }

func (c *Client) ListProducts(ctx context.Context) ([]orders.Product, error) {
	var out []orders.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id int) (orders.Product, error) {
	var out orders.Product
	err := c.do(ctx, http.MethodGet, productPath(id), nil, &out)
	return out, err
}

func (c *Client) CreateProduct(ctx context.Context, p orders.Product) (orders.Product, error) {
	var out orders.Product
	err := c.do(ctx, http.MethodPost, "/products", p, &out)
	return out, err
}

// UpdateProduct sends a partial update; patch is any JSON-encodable subset
// of the product fields.
func (c *Client) UpdateProduct(ctx context.Context, id int, patch any) (orders.Product, error) {
	var out orders.Product
	err := c.do(ctx, http.MethodPatch, productPath(id), patch, &out)
	return out, err
}

func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, productPath(id), nil, nil)
}

func (c *Client) ListOrders(ctx context.Context) ([]orders.Order, error) {
	var out []orders.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (orders.Order, error) {
	var out orders.Order
	err := c.do(ctx, http.MethodGet, orderPath(id), nil, &out)
	return out, err
}

func (c *Client) CreateOrder(ctx context.Context, o orders.Order) (orders.Order, error) {
	var out orders.Order
	err := c.do(ctx, http.MethodPost, "/orders", o, &out)
	return out, err
}

// UpdateOrder replaces the whole order record.
func (c *Client) UpdateOrder(ctx context.Context, o orders.Order) (orders.Order, error) {
	var out orders.Order
	err := c.do(ctx, http.MethodPut, orderPath(o.ID), o, &out)
	return out, err
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, orderPath(id), nil, nil)
}
