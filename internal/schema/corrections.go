package schema

import "fmt"

// correctSeller points every offer's seller at the site organization when
// the site represents a named company.
func (e *Engine) correctSeller(doc Document, _ *buildContext) Document {
	if !e.settings.isCompany() || isEmpty(doc["offers"]) {
		return doc
	}

	offers := nodeList(doc["offers"])
	for _, offer := range offers {
		offer["seller"] = Ref(e.settings.organizationID())
	}
	doc["offers"] = toList(offers)
	return doc
}

// correctReviews re-keys the reviews as nodes nested under this product.
func (e *Engine) correctReviews(doc Document, bc *buildContext) Document {
	if isEmpty(doc["review"]) {
		return doc
	}

	reviews := nodeList(doc["review"])
	for i, review := range reviews {
		delete(review, "@type")
		delete(review, "itemReviewed")
		review["@id"] = fmt.Sprintf("%s#/schema/review/%s-%d", e.settings.siteURL(), bc.product.ID(), i)
		review["name"] = bc.product.Name()
	}
	doc["review"] = toList(reviews)
	return doc
}

// correctSKU drops the sku the generator fills with the product id when the
// product has none.
func (e *Engine) correctSKU(doc Document, bc *buildContext) Document {
	if bc.product.SKU() == "" {
		delete(doc, "sku")
	}
	return doc
}
