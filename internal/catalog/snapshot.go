package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductFields is the data a Snapshot is built from.
type ProductFields struct {
	ID            string
	Name          string
	Description   string
	Kind          Kind
	SKU           string
	Price         string
	DisplayPrice  decimal.Decimal
	PriceSuffix   string
	OnSale        bool
	SaleEndsAt    *time.Time
	StockStatus   StockStatus
	Permalink     string
	FeaturedImage *Image
	Terms         []Term
	Reviews       []Review
	Variations    []VariationFields
}

// VariationFields is the data behind one variation of a Snapshot.
type VariationFields struct {
	ID           string
	Attributes   []string
	Permalink    string
	DisplayPrice decimal.Decimal
	SKU          string
	Description  string
	Image        *Image
	// Purchasable variations are the only ones listed as available.
	Purchasable bool
}

// Snapshot is an immutable, already-fetched product. It satisfies
// VariableProduct for every kind; only variable products carry variations.
type Snapshot struct {
	fields ProductFields
}

var _ VariableProduct = (*Snapshot)(nil)

// NewSnapshot copies f into a Snapshot.
func NewSnapshot(f ProductFields) *Snapshot {
	f.Terms = append([]Term(nil), f.Terms...)
	f.Reviews = append([]Review(nil), f.Reviews...)
	f.Variations = append([]VariationFields(nil), f.Variations...)
	if f.Kind == "" {
		f.Kind = KindSimple
	}
	return &Snapshot{fields: f}
}

func (s *Snapshot) ID() string                    { return s.fields.ID }
func (s *Snapshot) Kind() Kind                    { return s.fields.Kind }
func (s *Snapshot) Name() string                  { return s.fields.Name }
func (s *Snapshot) Description() string           { return s.fields.Description }
func (s *Snapshot) SKU() string                   { return s.fields.SKU }
func (s *Snapshot) Price() string                 { return s.fields.Price }
func (s *Snapshot) DisplayPrice() decimal.Decimal { return s.fields.DisplayPrice }
func (s *Snapshot) PriceSuffix() string           { return s.fields.PriceSuffix }
func (s *Snapshot) IsOnSale() bool                { return s.fields.OnSale }
func (s *Snapshot) SaleEndsAt() *time.Time        { return s.fields.SaleEndsAt }
func (s *Snapshot) Permalink() string             { return s.fields.Permalink }
func (s *Snapshot) HasFeaturedImage() bool        { return s.fields.FeaturedImage != nil && s.fields.FeaturedImage.URL != "" }
func (s *Snapshot) FeaturedImage() *Image         { return s.fields.FeaturedImage }
func (s *Snapshot) Reviews() []Review             { return append([]Review(nil), s.fields.Reviews...) }
func (s *Snapshot) IsOnBackorder() bool           { return s.fields.StockStatus == StockOnBackorder }

// IsInStock is true for backordered products as well.
func (s *Snapshot) IsInStock() bool {
	return s.fields.StockStatus == StockInStock || s.fields.StockStatus == StockOnBackorder
}

// Terms returns the terms of taxonomy in assignment order.
func (s *Snapshot) Terms(taxonomy string) []Term {
	var terms []Term
	for _, t := range s.fields.Terms {
		if t.Taxonomy == taxonomy {
			terms = append(terms, t)
		}
	}
	return terms
}

// PrimaryTerm returns the term designated as primary for taxonomy, if any.
func (s *Snapshot) PrimaryTerm(taxonomy string) (Term, bool) {
	for _, t := range s.fields.Terms {
		if t.Taxonomy == taxonomy && t.Primary {
			return t, true
		}
	}
	return Term{}, false
}

// AvailableVariations lists purchasable variations in store order.
func (s *Snapshot) AvailableVariations() []Variation {
	if s.fields.Kind != KindVariable {
		return nil
	}
	variations := make([]Variation, 0, len(s.fields.Variations))
	for _, v := range s.fields.Variations {
		if !v.Purchasable {
			continue
		}
		variations = append(variations, variation{fields: v})
	}
	return variations
}

type variation struct {
	fields VariationFields
}

func (v variation) ID() string                    { return v.fields.ID }
func (v variation) Attributes() []string          { return append([]string(nil), v.fields.Attributes...) }
func (v variation) Permalink() string             { return v.fields.Permalink }
func (v variation) DisplayPrice() decimal.Decimal { return v.fields.DisplayPrice }
func (v variation) SKU() string                   { return v.fields.SKU }
func (v variation) Description() string           { return v.fields.Description }
func (v variation) Image() *Image                 { return v.fields.Image }

// Ref is a bare entity reference used when only identity and kind are known,
// e.g. when a tabular import row is matched to a product or variation.
type Ref struct {
	id   string
	kind Kind
}

// NewRef returns a reference to the entity id of the given kind.
func NewRef(id string, kind Kind) Ref {
	return Ref{id: id, kind: kind}
}

func (r Ref) ID() string { return r.id }
func (r Ref) Kind() Kind { return r.kind }
