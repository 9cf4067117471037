// Package catalog describes the read-only view of catalog data that the
// structured-data components consume. The product store owns the data; the
// types here only expose it.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the product type as the store reports it.
type Kind string

const (
	KindSimple    Kind = "simple"
	KindVariable  Kind = "variable"
	KindGrouped   Kind = "grouped"
	KindExternal  Kind = "external"
	KindVariation Kind = "variation"
)

// StockStatus mirrors the store's stock flag.
type StockStatus string

const (
	StockInStock     StockStatus = "instock"
	StockOutOfStock  StockStatus = "outofstock"
	StockOnBackorder StockStatus = "onbackorder"
)

// Term is a taxonomy term assigned to a product.
type Term struct {
	ID       string
	Taxonomy string
	Name     string
	Primary  bool
}

// Image describes an image attached to a product or variation.
type Image struct {
	Title   string
	URL     string
	Caption string
}

// Review is a published customer review.
type Review struct {
	Author    string
	Rating    int
	Body      string
	Published time.Time
}

// Entity is anything that owns a global identifier record.
type Entity interface {
	ID() string
	Kind() Kind
}

// Product is the accessor contract for a single catalog product.
type Product interface {
	Entity
	Name() string
	Description() string
	SKU() string
	// Price is the raw stored price; empty when the product has none.
	Price() string
	// DisplayPrice is the price as shown to shoppers, tax handling applied.
	DisplayPrice() decimal.Decimal
	PriceSuffix() string
	IsOnSale() bool
	SaleEndsAt() *time.Time
	IsInStock() bool
	IsOnBackorder() bool
	Permalink() string
	HasFeaturedImage() bool
	FeaturedImage() *Image
	Terms(taxonomy string) []Term
	PrimaryTerm(taxonomy string) (Term, bool)
	Reviews() []Review
}

// VariableProduct is a product whose purchasable units are variations.
type VariableProduct interface {
	Product
	AvailableVariations() []Variation
}

// Variation is one purchasable configuration of a variable product.
type Variation interface {
	ID() string
	// Attributes holds the attribute values in display order.
	Attributes() []string
	Permalink() string
	DisplayPrice() decimal.Decimal
	SKU() string
	Description() string
	Image() *Image
}
