package schema

import (
	"fmt"
	"strings"

	"product-schema-service/internal/catalog"
	"product-schema-service/internal/identifiers"
	"product-schema-service/internal/sanitize"
)

const saleEndLayout = "2006-01-02"

// variantGroup turns a variable product into a ProductGroup with one variant
// per available variation.
func (e *Engine) variantGroup(doc Document, bc *buildContext, product catalog.VariableProduct) Document {
	if isEmpty(doc["offers"]) {
		return doc
	}

	doc["@type"] = "ProductGroup"
	if sku, ok := doc["sku"]; ok {
		doc["productGroupID"] = sku
	}
	delete(doc, "offers")

	variations := product.AvailableVariations()
	variants := make([]interface{}, 0, len(variations))
	for i, variation := range variations {
		variant := e.variant(bc, product, variation, i)
		if image, ok := asDocument(variant["image"]); ok {
			bc.variantImages = append(bc.variantImages, Ref(image.ID()))
		}
		variants = append(variants, variant)
	}
	doc["hasVariant"] = variants

	return doc
}

// variant builds the Product node of one variation.
func (e *Engine) variant(bc *buildContext, product catalog.Product, variation catalog.Variation, index int) Document {
	variant := Document{
		"@type": "Product",
		"@id":   fmt.Sprintf("%s#/product/%s-%d", e.settings.siteURL(), product.ID(), index),
		"name":  variantName(product, variation),
		"url":   variation.Permalink(),
	}

	if image := variation.Image(); image != nil {
		variant["image"] = imageObject(bc.page.Canonical+"#"+image.Title, image.URL, image.Caption)
	}

	if sku := variation.SKU(); sku != "" {
		variant["sku"] = sku
	}

	if description := variation.Description(); description != "" {
		variant["description"] = sanitize.StripTags(description)
	}

	// Variation values win over product values. ISBN is not resolved for
	// variations.
	variationIdentifiers := e.identifierSet(bc.ctx, variation.ID(), identifiers.ScopeVariation)
	for _, key := range identifiers.VariationKeys() {
		if v := variationIdentifiers.Get(key); v != "" {
			variant[string(key)] = v
		} else if v := bc.productIdentifiers.Get(key); v != "" {
			variant[string(key)] = v
		}
	}

	variant["offers"] = e.variantOffer(product, variation, index)

	return variant
}

// variantOffer builds the Offer nested under a variant.
func (e *Engine) variantOffer(product catalog.Product, variation catalog.Variation, index int) Document {
	spec := Document{
		"@type":         "PriceSpecification",
		"price":         e.formatter.Decimal(variation.DisplayPrice()),
		"priceCurrency": e.formatter.Currency(),
	}
	if e.settings.TaxEnabled {
		spec["valueAddedTaxIncluded"] = e.settings.PricesIncludeTax
	}

	offer := Document{
		"@type":              "Offer",
		"@id":                e.offerID(product.ID(), index),
		"name":               variantName(product, variation),
		"url":                variation.Permalink(),
		"priceSpecification": spec,
	}

	if onSaleUntil(product) {
		offer["priceValidUntil"] = product.SaleEndsAt().Format(saleEndLayout)
	}

	if product.IsOnBackorder() {
		offer["availability"] = preOrderAvailability
	}

	return e.applyOfferFilters(offer, product, variation)
}

func variantName(product catalog.Product, variation catalog.Variation) string {
	return product.Name() + " - " + strings.Join(variation.Attributes(), " / ")
}
