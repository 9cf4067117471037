package repository

import (
	"net/url"
	"strings"
	"time"

	"product-schema-service/internal/catalog"
	"product-schema-service/internal/models"
	"product-schema-service/internal/pricing"
)

// SnapshotOptions carries the store settings a snapshot needs besides the
// stored product.
type SnapshotOptions struct {
	// PermalinkBase is the URL products are published under, e.g.
	// "https://shop.example/product/".
	PermalinkBase string
	PriceSuffix   string
	Now           time.Time
}

// ToSnapshot converts a stored product to its catalog view.
func ToSnapshot(p *models.Product, opts SnapshotOptions) *catalog.Snapshot {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	onSale := saleActive(p.Price, p.SalePrice, p.SaleStartsAt, p.SaleEndsAt, now)
	price := p.Price
	if onSale {
		price = *p.SalePrice
	}
	displayPrice, _ := pricing.ParseAmount(price)

	permalink := productPermalink(opts.PermalinkBase, p)

	fields := catalog.ProductFields{
		ID:           p.ID.String(),
		Name:         p.Name,
		Description:  deref(p.Description),
		Kind:         catalogKind(p.Kind),
		SKU:          deref(p.SKU),
		Price:        price,
		DisplayPrice: displayPrice,
		PriceSuffix:  opts.PriceSuffix,
		OnSale:       onSale,
		StockStatus:  stockStatus(p.InventoryStatus),
		Permalink:    permalink,
	}
	if onSale {
		fields.SaleEndsAt = p.SaleEndsAt
	}

	if imageURL := deref(p.FeaturedImageURL); imageURL != "" {
		fields.FeaturedImage = &catalog.Image{
			Title:   deref(p.FeaturedImageTitle),
			URL:     imageURL,
			Caption: deref(p.FeaturedImageCaption),
		}
	}

	for _, pt := range p.Terms {
		fields.Terms = append(fields.Terms, catalog.Term{
			ID:       pt.TermID.String(),
			Taxonomy: pt.Term.Taxonomy,
			Name:     pt.Term.Name,
			Primary:  pt.IsPrimary,
		})
	}

	for _, r := range p.Reviews {
		if r.Status != models.ReviewStatusApproved {
			continue
		}
		fields.Reviews = append(fields.Reviews, catalog.Review{
			Author:    r.Author,
			Rating:    r.Rating,
			Body:      r.Body,
			Published: r.PublishedAt,
		})
	}

	for _, v := range p.Variations {
		fields.Variations = append(fields.Variations, toVariationFields(v, permalink, now))
	}

	return catalog.NewSnapshot(fields)
}

func toVariationFields(v *models.ProductVariation, parentPermalink string, now time.Time) catalog.VariationFields {
	price := v.Price
	if saleActive(v.Price, v.SalePrice, nil, nil, now) {
		price = *v.SalePrice
	}
	displayPrice, hasPrice := pricing.ParseAmount(price)

	values := make([]string, 0, len(v.Attributes))
	query := url.Values{}
	for _, attr := range v.Attributes {
		values = append(values, attr.Value)
		query.Set("attribute_"+attributeSlug(attr.Name), attr.Value)
	}

	permalink := parentPermalink
	if len(query) > 0 {
		permalink += "?" + query.Encode()
	}

	fields := catalog.VariationFields{
		ID:           v.ID.String(),
		Attributes:   values,
		Permalink:    permalink,
		DisplayPrice: displayPrice,
		SKU:          deref(v.SKU),
		Description:  deref(v.Description),
		Purchasable:  (v.Enabled == nil || *v.Enabled) && hasPrice,
	}
	if imageURL := deref(v.ImageURL); imageURL != "" {
		fields.Image = &catalog.Image{
			Title:   deref(v.ImageTitle),
			URL:     imageURL,
			Caption: deref(v.ImageCaption),
		}
	}
	return fields
}

// saleActive reports whether a sale price applies now: it must be set, lower
// than the regular price and inside the sale window.
func saleActive(regular string, sale *string, startsAt, endsAt *time.Time, now time.Time) bool {
	if sale == nil {
		return false
	}
	salePrice, ok := pricing.ParseAmount(*sale)
	if !ok {
		return false
	}
	regularPrice, ok := pricing.ParseAmount(regular)
	if ok && !salePrice.LessThan(regularPrice) {
		return false
	}
	if startsAt != nil && now.Before(*startsAt) {
		return false
	}
	if endsAt != nil && !now.Before(*endsAt) {
		return false
	}
	return true
}

func productPermalink(base string, p *models.Product) string {
	slug := deref(p.Slug)
	if slug == "" {
		slug = p.ID.String()
	}
	return strings.TrimRight(base, "/") + "/" + slug + "/"
}

func stockStatus(status *models.InventoryStatus) catalog.StockStatus {
	if status == nil {
		return catalog.StockInStock
	}
	switch *status {
	case models.InventoryStatusBackOrder:
		return catalog.StockOnBackorder
	case models.InventoryStatusOutOfStock, models.InventoryStatusDiscontinued:
		return catalog.StockOutOfStock
	default:
		return catalog.StockInStock
	}
}

func catalogKind(kind models.ProductKind) catalog.Kind {
	switch kind {
	case models.ProductKindVariable:
		return catalog.KindVariable
	case models.ProductKindGrouped:
		return catalog.KindGrouped
	case models.ProductKindExternal:
		return catalog.KindExternal
	default:
		return catalog.KindSimple
	}
}

func variationName(productName string, v *models.ProductVariation) string {
	values := make([]string, 0, len(v.Attributes))
	for _, attr := range v.Attributes {
		values = append(values, attr.Value)
	}
	if len(values) == 0 {
		return productName
	}
	return productName + " - " + strings.Join(values, " / ")
}

func attributeSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
