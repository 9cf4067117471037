package schema

import (
	"fmt"

	"product-schema-service/internal/catalog"
)

// simpleOffers completes the offers of a product sold without variants.
func (e *Engine) simpleOffers(doc Document, bc *buildContext) Document {
	if isEmpty(doc["offers"]) {
		return doc
	}

	product := bc.product
	offers := nodeList(doc["offers"])
	for i, offer := range offers {
		e.filterSale(offer, product)

		offer["@id"] = e.offerID(product.ID(), i)

		spec, ok := asDocument(offer["priceSpecification"])
		if !ok {
			spec = Document{}
		}
		spec["@type"] = "PriceSpecification"
		spec["price"] = e.formatter.Decimal(product.DisplayPrice())
		if e.settings.TaxEnabled {
			spec["valueAddedTaxIncluded"] = e.settings.PricesIncludeTax
		} else {
			delete(spec, "valueAddedTaxIncluded")
		}
		offer["priceSpecification"] = spec

		offer["seller"] = Ref(e.settings.organizationID())

		// priceSpecification carries the price now.
		delete(offer, "price")
		delete(offer, "priceCurrency")

		if product.IsOnBackorder() {
			offer["availability"] = preOrderAvailability
		}

		offers[i] = e.applyOfferFilters(offer, product, nil)
	}

	doc["offers"] = toList(offers)
	return doc
}

// filterSale keeps priceValidUntil only while a sale with an end date runs.
func (e *Engine) filterSale(offer Document, product catalog.Product) {
	if !onSaleUntil(product) {
		delete(offer, "priceValidUntil")
	}
}

func (e *Engine) offerID(productID string, index int) string {
	return fmt.Sprintf("%s#/schema/offer/%s-%d", e.settings.siteURL(), productID, index)
}

func onSaleUntil(product catalog.Product) bool {
	return product.IsOnSale() && product.SaleEndsAt() != nil
}
