package schema

import (
	"context"

	"github.com/sirupsen/logrus"
	"product-schema-service/internal/catalog"
	"product-schema-service/internal/identifiers"
	"product-schema-service/internal/pricing"
)

// IdentifierSource reads stored global identifier sets. identifiers.Store
// satisfies it.
type IdentifierSource interface {
	GetIdentifierSet(ctx context.Context, entityID string, scope identifiers.Scope) (identifiers.Set, error)
}

// DocumentFilter post-processes the finished product node.
type DocumentFilter func(doc Document) Document

// OfferFilter post-processes an offer. variation is nil for offers of a
// product without variants.
type OfferFilter func(offer Document, product catalog.Product, variation catalog.Variation) Document

// Option configures an Engine.
type Option func(*Engine)

// WithDocumentFilter registers a filter run on every finished document.
func WithDocumentFilter(f DocumentFilter) Option {
	return func(e *Engine) {
		e.documentFilters = append(e.documentFilters, f)
	}
}

// WithOfferFilter registers a filter run on every offer the engine emits.
func WithOfferFilter(f OfferFilter) Option {
	return func(e *Engine) {
		e.offerFilters = append(e.offerFilters, f)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.WithField("component", "schema-engine")
	}
}

// Engine turns the generic product node produced upstream into the final
// product node. It holds no per-build state and is safe for concurrent use.
type Engine struct {
	settings        Settings
	formatter       pricing.Formatter
	identifiers     IdentifierSource
	documentFilters []DocumentFilter
	offerFilters    []OfferFilter
	logger          *logrus.Entry
}

// NewEngine creates an engine. identifierSource may be nil, in which case no
// global identifiers are added.
func NewEngine(settings Settings, identifierSource IdentifierSource, opts ...Option) *Engine {
	e := &Engine{
		settings:    settings,
		formatter:   settings.formatter(),
		identifiers: identifierSource,
		logger:      logrus.StandardLogger().WithField("component", "schema-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// buildContext is the state of one Build call.
type buildContext struct {
	ctx     context.Context
	page    Page
	product catalog.Product

	// productIdentifiers is read once per build.
	productIdentifiers identifiers.Set
	// variantImages collects the image references of synthesized variants.
	variantImages []Document
	// aggregateOffer records whether the upstream node carried an
	// AggregateOffer, which is how variable products with differing variant
	// prices are offered.
	aggregateOffer bool
}

type step func(doc Document, bc *buildContext) Document

// Build returns the corrected product node. upstream is not modified.
// filters run after the engine's own document filters.
func (e *Engine) Build(ctx context.Context, page Page, product catalog.Product, upstream Document, filters ...DocumentFilter) Document {
	bc := &buildContext{
		ctx:                ctx,
		page:               page,
		product:            product,
		productIdentifiers: e.identifierSet(ctx, product.ID(), identifiers.ScopeProduct),
		aggregateOffer:     hasAggregateOffer(upstream),
	}

	steps := []step{
		e.correctSeller,
		e.correctReviews,
		e.correctSKU,
		e.offersOrVariants,
		e.linkPage,
		e.resolveImage,
		e.enrichAttributes,
		e.mergeIdentifiers,
	}

	doc := upstream.Clone()
	if doc == nil {
		doc = Document{}
	}
	for _, s := range steps {
		doc = s(doc.Clone(), bc)
	}

	for _, f := range e.documentFilters {
		doc = applyDocumentFilter(f, doc)
	}
	for _, f := range filters {
		doc = applyDocumentFilter(f, doc)
	}

	e.logger.WithFields(logrus.Fields{
		"product_id": product.ID(),
		"kind":       product.Kind(),
		"variants":   len(nodeList(doc["hasVariant"])),
	}).Debug("Built product schema")

	return doc
}

func (e *Engine) offersOrVariants(doc Document, bc *buildContext) Document {
	if variable, ok := bc.product.(catalog.VariableProduct); ok && bc.product.Kind() == catalog.KindVariable {
		return e.variantGroup(doc, bc, variable)
	}
	return e.simpleOffers(doc, bc)
}

func (e *Engine) linkPage(doc Document, bc *buildContext) Document {
	doc["mainEntityOfPage"] = Ref(bc.page.mainSchemaID())
	return doc
}

// identifierSet reads a stored set, treating a failed read as an empty set.
func (e *Engine) identifierSet(ctx context.Context, entityID string, scope identifiers.Scope) identifiers.Set {
	if e.identifiers == nil {
		return identifiers.NewSet()
	}
	set, err := e.identifiers.GetIdentifierSet(ctx, entityID, scope)
	if err != nil {
		e.logger.WithError(err).WithFields(logrus.Fields{
			"entity_id": entityID,
			"scope":     scope,
		}).Warn("Failed to read global identifiers")
		return identifiers.NewSet()
	}
	return set.Normalize()
}

func (e *Engine) applyOfferFilters(offer Document, product catalog.Product, variation catalog.Variation) Document {
	for _, f := range e.offerFilters {
		if filtered := f(offer, product, variation); filtered != nil {
			offer = filtered
		}
	}
	return offer
}

// A filter returning nil leaves the document as it was.
func applyDocumentFilter(f DocumentFilter, doc Document) Document {
	if filtered := f(doc); filtered != nil {
		return filtered
	}
	return doc
}

func hasAggregateOffer(doc Document) bool {
	for _, offer := range nodeList(doc["offers"]) {
		if offer.HasType("AggregateOffer") {
			return true
		}
	}
	return false
}
