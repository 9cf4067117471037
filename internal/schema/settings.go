package schema

import (
	"strings"

	"product-schema-service/internal/pricing"
)

const (
	organizationHash     = "#organization"
	primaryImageHash     = "#primaryimage"
	placeholderImageHash = "#placeholderimage"
	productHash          = "#product"

	preOrderAvailability = "https://schema.org/PreOrder"
)

// CompanyOrPerson values for Settings.CompanyOrPerson.
const (
	SiteRepresentsCompany = "company"
	SiteRepresentsPerson  = "person"
)

// TaxonomyBindings names the taxonomy each property is read from. An empty
// binding disables the property.
type TaxonomyBindings struct {
	Brand        string
	Manufacturer string
	Color        string
	Pattern      string
	Material     string
}

// Settings is the store and site configuration the engine reads.
type Settings struct {
	SiteURL         string
	CompanyOrPerson string
	CompanyName     string

	TaxEnabled       bool
	PricesIncludeTax bool
	PriceDecimals    int
	CurrencyCode     string

	// PlaceholderImageURL is used when a product has no featured image.
	// Empty disables the fallback.
	PlaceholderImageURL string

	Taxonomies TaxonomyBindings
}

// siteURL returns the site URL with a trailing slash.
func (s Settings) siteURL() string {
	return trailingSlash(s.SiteURL)
}

func (s Settings) organizationID() string {
	return s.siteURL() + organizationHash
}

func (s Settings) isCompany() bool {
	return s.CompanyOrPerson == SiteRepresentsCompany && strings.TrimSpace(s.CompanyName) != ""
}

func (s Settings) formatter() pricing.Formatter {
	return pricing.NewFormatter(s.PriceDecimals, s.CurrencyCode)
}

// PageKind is the kind of page the document is rendered on.
type PageKind string

const (
	PageProduct  PageKind = "product"
	PageCheckout PageKind = "checkout"
	PageOther    PageKind = "other"
)

// Page describes the page being rendered.
type Page struct {
	Canonical string
	// MainSchemaID is the id of the page's main entity; defaults to Canonical.
	MainSchemaID string
	Kind         PageKind
}

func (p Page) mainSchemaID() string {
	if p.MainSchemaID != "" {
		return p.MainSchemaID
	}
	return p.Canonical
}

func trailingSlash(u string) string {
	return strings.TrimRight(u, "/\\") + "/"
}
