// Package preview derives the label/value pairs shown in chat link previews
// of a product page.
package preview

import (
	"golang.org/x/text/message"
	"product-schema-service/internal/catalog"
	"product-schema-service/internal/pricing"
	"product-schema-service/internal/sanitize"
)

// Config controls what the preview shows.
type Config struct {
	ShowPrice bool
	// EmptyPriceText is shown as the price of products without one.
	EmptyPriceText string
	Language       string
}

// Builder builds preview data. It is immutable and safe for concurrent use.
type Builder struct {
	config    Config
	formatter pricing.Formatter
	printer   *message.Printer
}

// NewBuilder creates a builder labelling in cfg.Language.
func NewBuilder(cfg Config, formatter pricing.Formatter) *Builder {
	return &Builder{
		config:    cfg,
		formatter: formatter,
		printer:   printerFor(cfg.Language),
	}
}

// ForLanguage returns a copy of b labelling in lang.
func (b *Builder) ForLanguage(lang string) *Builder {
	c := *b
	c.config.Language = lang
	c.printer = printerFor(lang)
	return &c
}

// Build returns a fresh {label: value} map for product.
func (b *Builder) Build(product catalog.Product) map[string]string {
	data := make(map[string]string, 2)

	if b.showPrice(product) {
		data[b.printer.Sprintf(labelPrice)] = b.price(product)
	}

	// In-stock first: a backordered product is in stock too.
	availability := outOfStock
	if product.IsInStock() {
		availability = inStock
	}
	if product.IsOnBackorder() {
		availability = onBackorder
	}
	data[b.printer.Sprintf(labelAvailability)] = b.printer.Sprintf(availability)

	return data
}

// Variable and grouped products have no single price.
func (b *Builder) showPrice(product catalog.Product) bool {
	if !b.config.ShowPrice {
		return false
	}
	kind := product.Kind()
	return kind != catalog.KindVariable && kind != catalog.KindGrouped
}

func (b *Builder) price(product catalog.Product) string {
	if product.Price() == "" {
		return sanitize.StripTags(b.config.EmptyPriceText)
	}
	return sanitize.StripTags(b.formatter.Price(product.DisplayPrice()) + product.PriceSuffix())
}
