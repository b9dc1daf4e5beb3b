// Package seed loads a YAML product catalogue into the resource store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Menelao6/inventory-manager/internal/inventory"
	"github.com/Menelao6/inventory-manager/internal/orders"
)

type Entry struct {
	Name        string  `yaml:"name"`
	ImageURL    string  `yaml:"imageUrl"`
	Category    string  `yaml:"category"`
	Price       float64 `yaml:"price"`
	Quantity    int     `yaml:"quantity"`
	Description string  `yaml:"description,omitempty"`
}

func (e Entry) Input() inventory.ProductInput {
	return inventory.ProductInput{
		Name:        e.Name,
		ImageURL:    e.ImageURL,
		Category:    e.Category,
		Price:       e.Price,
		Quantity:    e.Quantity,
		Description: e.Description,
	}
}

type Catalog struct {
	Products []Entry `yaml:"products"`
}

// Parse decodes a catalogue and validates every entry. Unknown keys are
// rejected so a typo does not silently drop a field.
func Parse(r io.Reader) (Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}

	var errs error
	for i, e := range c.Products {
		if err := e.Input().Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("product %d (%q): %w", i+1, e.Name, err))
		}
	}
	if errs != nil {
		return Catalog{}, errs
	}
	return c, nil
}

type Creator interface {
	List(ctx context.Context) ([]orders.Product, error)
	Create(ctx context.Context, in inventory.ProductInput) (orders.Product, error)
}

type Report struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
	DryRun  bool     `json:"dry_run"`
}

// Run creates every catalogue product whose name is not in the store yet.
// With dryRun nothing is written; Created lists what would be.
func Run(ctx context.Context, c Creator, cat Catalog, dryRun bool, log *zap.Logger) (Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	existing, err := c.List(ctx)
	if err != nil {
		return Report{}, err
	}
	have := make(map[string]bool, len(existing))
	for _, p := range existing {
		have[strings.ToLower(strings.TrimSpace(p.Name))] = true
	}

	rep := Report{DryRun: dryRun}
	for _, e := range cat.Products {
		key := strings.ToLower(strings.TrimSpace(e.Name))
		if have[key] {
			rep.Skipped = append(rep.Skipped, e.Name)
			log.Debug("already present", zap.String("name", e.Name))
			continue
		}
		have[key] = true
		if dryRun {
			rep.Created = append(rep.Created, e.Name)
			continue
		}
		p, err := c.Create(ctx, e.Input())
		if err != nil {
			return rep, fmt.Errorf("create %q: %w", e.Name, err)
		}
		rep.Created = append(rep.Created, p.Name)
		log.Info("product seeded", zap.Int("product_id", p.ID), zap.String("name", p.Name),
			zap.Int("quantity", p.Quantity), zap.String("status", string(p.Status)))
	}
	return rep, nil
}
