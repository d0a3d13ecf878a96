// Package catalog holds the manufacturer's product catalog. The catalog is loaded
// once at startup and shared read-only across pipeline runs.
package catalog

import (
	"slices"

	"github.com/spigell/tender-bid/internal/specnorm"
)

// Spec is the attribute set of a catalog product.
type Spec struct {
	Voltage           string   `json:"voltage"`
	CableType         string   `json:"cable_type"`
	ConductorMaterial string   `json:"conductor_material"`
	InsulationType    string   `json:"insulation_type"`
	Armoring          string   `json:"armoring"`
	Cores             string   `json:"cores"`
	ConductorSize     string   `json:"conductor_size,omitempty"`
	Standards         []string `json:"standards"`
}

// Normalized returns a copy with canonical vocabulary and voltage spelling.
func (s Spec) Normalized() Spec {
	out := s
	out.Voltage = specnorm.Voltage(s.Voltage)
	out.CableType = specnorm.Text(s.CableType)
	out.ConductorMaterial = specnorm.Text(s.ConductorMaterial)
	out.InsulationType = specnorm.Text(s.InsulationType)
	out.Armoring = specnorm.Armoring(s.Armoring)
	out.Standards = slices.Clone(s.Standards)
	return out
}

// Product is a single SKU.
type Product struct {
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	Manufacturer  string  `json:"manufacturer"`
	Spec          Spec    `json:"specs"`
	PricePerMeter float64 `json:"price_per_meter,omitempty"`
	// RawText is the datasheet text the product was parsed from, used as compliance evidence.
	RawText string `json:"-"`
}

// Catalog is an ordered product list. Order matters: it breaks score ties and
// picks the fallback candidates.
type Catalog struct {
	Source   string
	products []Product
}

// New builds a catalog from the given products, normalizing their specs.
func New(source string, products []Product) *Catalog {
	items := make([]Product, 0, len(products))
	for _, p := range products {
		p.Spec = p.Spec.Normalized()
		items = append(items, p)
	}
	return &Catalog{Source: source, products: items}
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

// Products returns a copy of the product list.
func (c *Catalog) Products() []Product {
	if c == nil {
		return nil
	}
	out := make([]Product, len(c.products))
	for i, p := range c.products {
		p.Spec.Standards = slices.Clone(p.Spec.Standards)
		out[i] = p
	}
	return out
}

func (c *Catalog) FindBySKU(sku string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	for _, p := range c.products {
		if p.SKU == sku {
			p.Spec.Standards = slices.Clone(p.Spec.Standards)
			return p, true
		}
	}
	return Product{}, false
}

// ListPrices maps SKU to list price for products that carry one.
func (c *Catalog) ListPrices() map[string]float64 {
	prices := make(map[string]float64)
	if c == nil {
		return prices
	}
	for _, p := range c.products {
		if p.PricePerMeter > 0 {
			prices[p.SKU] = p.PricePerMeter
		}
	}
	return prices
}

// MergeMissing returns a catalog with every product from extra whose SKU is not
// already present appended at the end.
func (c *Catalog) MergeMissing(extra []Product) *Catalog {
	seen := make(map[string]struct{}, c.Len())
	items := c.Products()
	for _, p := range items {
		seen[p.SKU] = struct{}{}
	}
	for _, p := range extra {
		if _, ok := seen[p.SKU]; ok {
			continue
		}
		seen[p.SKU] = struct{}{}
		items = append(items, p)
	}
	source := ""
	if c != nil {
		source = c.Source
	}
	return New(source, items)
}
