package schema

import (
	"strings"

	"product-schema-service/internal/catalog"
	"product-schema-service/internal/sanitize"
)

// enrichAttributes adds brand, manufacturer, color, pattern and material
// from the configured taxonomies.
func (e *Engine) enrichAttributes(doc Document, bc *buildContext) Document {
	bindings := e.settings.Taxonomies

	e.addOrganizationAttribute(doc, bc.product, "brand", bindings.Brand, "Brand")
	e.addOrganizationAttribute(doc, bc.product, "manufacturer", bindings.Manufacturer, "Organization")
	e.addTermAttribute(doc, bc, "color", bindings.Color)
	e.addTermAttribute(doc, bc, "pattern", bindings.Pattern)
	e.addTermAttribute(doc, bc, "material", bindings.Material)

	return doc
}

func (e *Engine) addOrganizationAttribute(doc Document, product catalog.Product, property, taxonomy, typ string) {
	if taxonomy == "" {
		return
	}
	term, ok := primaryOrFirstTerm(product, taxonomy)
	if !ok {
		return
	}
	doc[property] = Document{
		"@type": typ,
		"name":  sanitize.StripTags(term.Name),
	}
}

// addTermAttribute sets a single lower-cased term name. Several terms are
// only listed for variable products offered through an AggregateOffer;
// otherwise the property is left unset.
func (e *Engine) addTermAttribute(doc Document, bc *buildContext, property, taxonomy string) {
	if taxonomy == "" {
		return
	}

	terms := bc.product.Terms(taxonomy)
	switch {
	case len(terms) == 1:
		doc[property] = strings.ToLower(terms[0].Name)
	case len(terms) > 1 && bc.product.Kind() == catalog.KindVariable && bc.aggregateOffer:
		names := make([]interface{}, 0, len(terms))
		for _, t := range terms {
			names = append(names, strings.ToLower(t.Name))
		}
		doc[property] = names
	}
}

func primaryOrFirstTerm(product catalog.Product, taxonomy string) (catalog.Term, bool) {
	if term, ok := product.PrimaryTerm(taxonomy); ok {
		return term, true
	}
	if terms := product.Terms(taxonomy); len(terms) > 0 {
		return terms[0], true
	}
	return catalog.Term{}, false
}
