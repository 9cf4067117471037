package schema

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"product-schema-service/internal/catalog"
	"product-schema-service/internal/pricing"
	"product-schema-service/internal/sanitize"
)

// Generator produces the generic product node that Engine.Build corrects. It
// reproduces the storefront's default output, including its known defects:
// the product id stands in for a missing SKU and a missing image is false.
type Generator struct {
	settings  Settings
	formatter pricing.Formatter
	now       func() time.Time
}

// NewGenerator creates a generator for settings.
func NewGenerator(settings Settings) *Generator {
	return &Generator{
		settings:  settings,
		formatter: settings.formatter(),
		now:       time.Now,
	}
}

// WithClock replaces the clock used for the default priceValidUntil.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	c := *g
	c.now = now
	return &c
}

// Generate returns the generic node for product on page.
func (g *Generator) Generate(page Page, product catalog.Product) Document {
	base := page.Canonical
	if base == "" {
		base = product.Permalink()
	}

	doc := Document{
		"@type":       "Product",
		"@id":         base + productHash,
		"name":        product.Name(),
		"url":         product.Permalink(),
		"description": sanitize.StripTags(product.Description()),
	}

	if image := product.FeaturedImage(); product.HasFeaturedImage() {
		doc["image"] = image.URL
	} else {
		doc["image"] = false
	}

	if sku := product.SKU(); sku != "" {
		doc["sku"] = sku
	} else {
		doc["sku"] = product.ID()
	}

	if offer := g.offer(product); offer != nil {
		doc["offers"] = []interface{}{offer}
	}

	if reviews := product.Reviews(); len(reviews) > 0 {
		doc["aggregateRating"] = aggregateRating(reviews)
		doc["review"] = g.reviews(product, reviews)
	}

	return doc
}

func (g *Generator) offer(product catalog.Product) Document {
	var offer Document

	if variable, ok := product.(catalog.VariableProduct); ok && product.Kind() == catalog.KindVariable {
		variations := variable.AvailableVariations()
		if len(variations) == 0 {
			return nil
		}
		low, high := priceRange(variations)
		if low.Equal(high) {
			offer = g.priceOffer(low)
		} else {
			offer = Document{
				"@type":      "AggregateOffer",
				"lowPrice":   g.formatter.Decimal(low),
				"highPrice":  g.formatter.Decimal(high),
				"offerCount": len(variations),
			}
		}
	} else {
		if product.Price() == "" {
			return nil
		}
		offer = g.priceOffer(product.DisplayPrice())
		offer["priceValidUntil"] = g.priceValidUntil(product)
	}

	offer["priceCurrency"] = g.formatter.Currency()
	offer["availability"] = availability(product)
	offer["url"] = product.Permalink()
	offer["seller"] = Document{
		"@type": "Organization",
		"name":  g.sellerName(),
		"url":   g.settings.siteURL(),
	}
	return offer
}

func (g *Generator) priceOffer(price decimal.Decimal) Document {
	return Document{
		"@type": "Offer",
		"price": g.formatter.Decimal(price),
		"priceSpecification": Document{
			"price":                 g.formatter.Decimal(price),
			"priceCurrency":         g.formatter.Currency(),
			"valueAddedTaxIncluded": strconv.FormatBool(g.settings.PricesIncludeTax),
		},
	}
}

// priceValidUntil is the sale end, else the last day of next year.
func (g *Generator) priceValidUntil(product catalog.Product) string {
	if onSaleUntil(product) {
		return product.SaleEndsAt().Format(saleEndLayout)
	}
	return time.Date(g.now().Year()+1, time.December, 31, 0, 0, 0, 0, time.UTC).Format(saleEndLayout)
}

func (g *Generator) sellerName() string {
	if g.settings.CompanyName != "" {
		return g.settings.CompanyName
	}
	return g.settings.siteURL()
}

func (g *Generator) reviews(product catalog.Product, reviews []catalog.Review) []interface{} {
	nodes := make([]interface{}, 0, len(reviews))
	for _, r := range reviews {
		nodes = append(nodes, Document{
			"@type": "Review",
			"reviewRating": Document{
				"@type":       "Rating",
				"bestRating":  "5",
				"ratingValue": strconv.Itoa(r.Rating),
				"worstRating": "1",
			},
			"author": Document{
				"@type": "Person",
				"name":  r.Author,
			},
			"reviewBody":    r.Body,
			"datePublished": r.Published.Format(time.RFC3339),
			"itemReviewed": Document{
				"@type": "Product",
				"name":  product.Name(),
			},
		})
	}
	return nodes
}

func aggregateRating(reviews []catalog.Review) Document {
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	average := decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(int64(len(reviews))))
	return Document{
		"@type":       "AggregateRating",
		"ratingValue": average.StringFixed(2),
		"reviewCount": len(reviews),
	}
}

func priceRange(variations []catalog.Variation) (low, high decimal.Decimal) {
	for i, v := range variations {
		price := v.DisplayPrice()
		if i == 0 || price.LessThan(low) {
			low = price
		}
		if i == 0 || price.GreaterThan(high) {
			high = price
		}
	}
	return low, high
}

func availability(product catalog.Product) string {
	switch {
	case product.IsOnBackorder():
		return "https://schema.org/OnBackorder"
	case product.IsInStock():
		return "https://schema.org/InStock"
	default:
		return "https://schema.org/OutOfStock"
	}
}
