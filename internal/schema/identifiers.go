package schema

import "product-schema-service/internal/identifiers"

// mergeIdentifiers copies the product's non-empty global identifiers onto
// the node. An ISBN makes the product a Book as well.
func (e *Engine) mergeIdentifiers(doc Document, bc *buildContext) Document {
	for _, key := range identifiers.Keys() {
		value := bc.productIdentifiers.Get(key)
		if value == "" {
			continue
		}
		doc[string(key)] = value

		if key == identifiers.ISBN {
			bookFirst(doc)
		}
	}
	return doc
}

// bookFirst makes Book the node's first type, keeping the other types in order.
func bookFirst(doc Document) {
	types := doc.Types()
	if len(types) > 0 && types[0] == "Book" {
		return
	}
	if len(types) == 0 {
		types = []string{"Product"}
	}

	ordered := []string{"Book"}
	for _, t := range types {
		if t != "Book" {
			ordered = append(ordered, t)
		}
	}
	doc["@type"] = ordered
}
