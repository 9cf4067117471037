package identifiers

import "product-schema-service/internal/catalog"

// Scope selects which identifier record of an entity is addressed.
type Scope string

const (
	ScopeProduct   Scope = "product"
	ScopeVariation Scope = "variation"
)

// Storage keys of the two identifier records.
const (
	ProductStorageKey   = "global_identifier_values"
	VariationStorageKey = "variation_global_identifier_values"
)

// StorageKey returns the field name the scope is persisted under.
func (s Scope) StorageKey() string {
	if s == ScopeVariation {
		return VariationStorageKey
	}
	return ProductStorageKey
}

// ScopeFor returns the variation scope for variations and the product scope
// for every other kind.
func ScopeFor(kind catalog.Kind) Scope {
	if kind == catalog.KindVariation {
		return ScopeVariation
	}
	return ScopeProduct
}
