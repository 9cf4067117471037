package schema

// FilterWebPage adapts the page node: product pages become an ItemPage with
// a BuyAction, checkout pages a CheckoutPage without actions.
func FilterWebPage(page Page, webpage Document) Document {
	doc := webpage.Clone()
	if doc == nil {
		doc = Document{}
	}

	switch page.Kind {
	case PageProduct:
		doc["@type"] = []string{"WebPage", "ItemPage"}
		doc["potentialAction"] = Document{
			"@type":  "BuyAction",
			"target": page.Canonical,
		}
		delete(doc, "datePublished")
		delete(doc, "dateModified")
	case PageCheckout:
		doc["@type"] = "CheckoutPage"
		delete(doc, "potentialAction")
	}

	return doc
}

// RemoveBreadcrumbType drops the breadcrumb list from the node types the
// storefront renders itself; breadcrumbs are part of the site graph.
func RemoveBreadcrumbType(types []string) []string {
	kept := make([]string, 0, len(types))
	for _, t := range types {
		if t != "breadcrumblist" {
			kept = append(kept, t)
		}
	}
	return kept
}
