package schema

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"product-schema-service/internal/catalog"
	"product-schema-service/internal/identifiers"
)

const (
	testSite      = "https://shop.example"
	testCanonical = "https://shop.example/product/linen-shirt/"
)

// identifierStub serves identifier sets keyed by "entityID|scope".
type identifierStub map[string]identifiers.Set

func (s identifierStub) GetIdentifierSet(_ context.Context, entityID string, scope identifiers.Scope) (identifiers.Set, error) {
	return s[entityID+"|"+string(scope)], nil
}

// MockIdentifierSource is a mock implementation of IdentifierSource
type MockIdentifierSource struct {
	mock.Mock
}

func (m *MockIdentifierSource) GetIdentifierSet(ctx context.Context, entityID string, scope identifiers.Scope) (identifiers.Set, error) {
	args := m.Called(ctx, entityID, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(identifiers.Set), args.Error(1)
}

func testSettings() Settings {
	return Settings{
		SiteURL:          testSite,
		CompanyOrPerson:  SiteRepresentsCompany,
		CompanyName:      "Acme",
		TaxEnabled:       true,
		PricesIncludeTax: true,
		PriceDecimals:    2,
		CurrencyCode:     "EUR",
		Taxonomies: TaxonomyBindings{
			Brand:        "product_brand",
			Manufacturer: "pa_maker",
			Color:        "pa_color",
			Pattern:      "pa_pattern",
		},
	}
}

func testPage() Page {
	return Page{Canonical: testCanonical, Kind: PageProduct}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func simpleFields() catalog.ProductFields {
	return catalog.ProductFields{
		ID:           "42",
		Name:         "Linen Shirt",
		Description:  "<p>Light summer shirt</p>",
		Kind:         catalog.KindSimple,
		SKU:          "LS-1",
		Price:        "19.99",
		DisplayPrice: dec("19.99"),
		StockStatus:  catalog.StockInStock,
		Permalink:    testCanonical,
		FeaturedImage: &catalog.Image{
			Title: "shirt",
			URL:   "https://shop.example/img/shirt.jpg",
		},
	}
}

func variableFields() catalog.ProductFields {
	f := simpleFields()
	f.Kind = catalog.KindVariable
	f.Variations = []catalog.VariationFields{
		{
			ID:           "101",
			Attributes:   []string{"Blue", "S"},
			Permalink:    testCanonical + "?attribute_color=blue",
			DisplayPrice: dec("20"),
			SKU:          "LS-B-S",
			Description:  "<p>Blue &amp; small</p>",
			Image:        &catalog.Image{Title: "blue", URL: "https://shop.example/img/blue.jpg", Caption: "Blue shirt"},
			Purchasable:  true,
		},
		{
			ID:           "102",
			Attributes:   []string{"Red", "M"},
			Permalink:    testCanonical + "?attribute_color=red",
			DisplayPrice: dec("25"),
			Image:        &catalog.Image{Title: "red", URL: "https://shop.example/img/red.jpg"},
			Purchasable:  true,
		},
		{
			ID:           "103",
			Attributes:   []string{"Green", "L"},
			DisplayPrice: dec("30"),
		},
	}
	return f
}

func fixedClock() time.Time {
	return time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
}

// build runs the generator and the engine the way the HTTP surface does.
func build(t *testing.T, settings Settings, source IdentifierSource, product catalog.Product, opts ...Option) Document {
	t.Helper()
	upstream := NewGenerator(settings).WithClock(fixedClock).Generate(testPage(), product)
	doc := NewEngine(settings, source, opts...).Build(context.Background(), testPage(), product, upstream)
	require.NotNil(t, doc)
	return doc
}

func offersOf(t *testing.T, doc Document) []Document {
	t.Helper()
	list, ok := doc["offers"].([]interface{})
	require.True(t, ok, "offers must be a list, got %T", doc["offers"])
	return nodeList(list)
}

func variantsOf(t *testing.T, doc Document) []Document {
	t.Helper()
	list, ok := doc["hasVariant"].([]interface{})
	require.True(t, ok, "hasVariant must be a list, got %T", doc["hasVariant"])
	return nodeList(list)
}

func priceSpecOf(t *testing.T, offer Document) Document {
	t.Helper()
	spec, ok := asDocument(offer["priceSpecification"])
	require.True(t, ok)
	return spec
}
