// Package inventory implements the admin side of the catalogue: product
// create, edit and delete, with the stock status always derived from the
// quantity.
package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Menelao6/inventory-manager/internal/apperr"
	"github.com/Menelao6/inventory-manager/internal/orders"
	"github.com/Menelao6/inventory-manager/internal/store"
)

const (
	SourceCreate = "admin-create"
	SourceUpdate = "admin-update"
	SourceDelete = "admin-delete"
)

type ProductStore interface {
	ListProducts(ctx context.Context) ([]orders.Product, error)
	GetProduct(ctx context.Context, id int) (orders.Product, error)
	CreateProduct(ctx context.Context, p orders.Product) (orders.Product, error)
	UpdateProduct(ctx context.Context, id int, patch any) (orders.Product, error)
	DeleteProduct(ctx context.Context, id int) error
}

type Emitter interface {
	Emit(ctx context.Context, eventType, key string, payload any) error
}

// ProductInput is the admin product form.
type ProductInput struct {
	Name        string  `json:"name"`
	ImageURL    string  `json:"imageUrl"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description,omitempty"`
}

func (in ProductInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		missing = append(missing, "imageUrl")
	}
	if strings.TrimSpace(in.Category) == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return apperr.Validationf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if in.Price < 0 {
		return apperr.Validation("price must not be negative")
	}
	if in.Quantity < 0 {
		return apperr.Validation("quantity must not be negative")
	}
	return nil
}

func (in ProductInput) product(now time.Time) orders.Product {
	return orders.Product{
		Name:        strings.TrimSpace(in.Name),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Category:    strings.TrimSpace(in.Category),
		Price:       in.Price,
		Description: in.Description,
		UpdatedAt:   &now,
	}.WithQuantity(in.Quantity)
}

type Service struct {
	Store  ProductStore
	Events Emitter
	Log    *zap.Logger
	Now    func() time.Time
}

func (s *Service) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) List(ctx context.Context) ([]orders.Product, error) {
	ps, err := s.Store.ListProducts(ctx)
	if err != nil {
		return nil, apperr.Remote(err, "failed to load products")
	}
	return ps, nil
}

func (s *Service) Create(ctx context.Context, in ProductInput) (orders.Product, error) {
	if err := in.Validate(); err != nil {
		return orders.Product{}, err
	}
	created, err := s.Store.CreateProduct(ctx, in.product(s.now()))
	if err != nil {
		return orders.Product{}, apperr.Remote(err, "failed to add product %s", in.Name)
	}
	s.log().Info("product added", zap.Int("product_id", created.ID), zap.String("name", created.Name))
	s.emit(ctx, created, 0, SourceCreate)
	return created, nil
}

// Update replaces the editable fields of product id.
func (s *Service) Update(ctx context.Context, id int, in ProductInput) (orders.Product, error) {
	if err := in.Validate(); err != nil {
		return orders.Product{}, err
	}
	before, err := s.get(ctx, id)
	if err != nil {
		return orders.Product{}, err
	}
	next := in.product(s.now())
	next.ID = id
	updated, err := s.Store.UpdateProduct(ctx, id, next)
	if err != nil {
		return orders.Product{}, apperr.Remote(err, "failed to update product %s", before.Name)
	}
	s.log().Info("product updated", zap.Int("product_id", id),
		zap.Int("old_quantity", before.Quantity), zap.Int("new_quantity", updated.Quantity))
	if before.Quantity != updated.Quantity {
		s.emit(ctx, updated, before.Quantity, SourceUpdate)
	}
	return updated, nil
}

// Delete removes product id once the admin has confirmed. Existing orders
// keep their snapshot of the product.
func (s *Service) Delete(ctx context.Context, id int, confirmed bool) error {
	if !confirmed {
		return apperr.ConfirmationRequired("deleting a product")
	}
	before, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteProduct(ctx, id); err != nil {
		return apperr.Remote(err, "failed to delete product %s", before.Name)
	}
	s.log().Info("product deleted", zap.Int("product_id", id))
	gone := before.WithQuantity(0)
	s.emit(ctx, gone, before.Quantity, SourceDelete)
	return nil
}

func (s *Service) get(ctx context.Context, id int) (orders.Product, error) {
	p, err := s.Store.GetProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return orders.Product{}, apperr.NotFoundf("product %d not found", id)
	}
	if err != nil {
		return orders.Product{}, apperr.Remote(err, "failed to load product %d", id)
	}
	return p, nil
}

func (s *Service) emit(ctx context.Context, p orders.Product, oldQty int, source string) {
	if s.Events == nil {
		return
	}
	payload := orders.StockAdjustedPayload{
		ProductID:   p.ID,
		Name:        p.Name,
		OldQuantity: oldQty,
		NewQuantity: p.Quantity,
		Status:      p.Status,
		Source:      source,
	}
	if err := s.Events.Emit(ctx, orders.EventStockAdjusted, orders.ProductKey(p.ID), payload); err != nil {
		s.log().Error("emit stock adjusted", zap.Int("product_id", p.ID), zap.Error(err))
	}
}
