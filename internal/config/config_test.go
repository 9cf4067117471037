package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_StoreSettings(t *testing.T) {
	t.Setenv("TAX_ENABLED", "true")
	t.Setenv("PRICES_INCLUDE_TAX", "1")
	t.Setenv("PRICE_DECIMALS", "0")
	t.Setenv("CURRENCY_CODE", "JPY")
	t.Setenv("SITE_URL", "https://shop.example")
	t.Setenv("COMPANY_NAME", "Acme")
	t.Setenv("SCHEMA_BRAND", "product_brand")
	t.Setenv("SCHEMA_COLOR", "pa_color")
	t.Setenv("PREVIEW_LANGUAGE", "de")

	cfg := Load()

	settings := cfg.SchemaSettings()
	assert.True(t, settings.TaxEnabled)
	assert.True(t, settings.PricesIncludeTax)
	assert.Equal(t, 0, settings.PriceDecimals)
	assert.Equal(t, "JPY", settings.CurrencyCode)
	assert.Equal(t, "https://shop.example", settings.SiteURL)
	assert.Equal(t, "company", settings.CompanyOrPerson)
	assert.Equal(t, "Acme", settings.CompanyName)
	assert.Equal(t, "product_brand", settings.Taxonomies.Brand)
	assert.Equal(t, "pa_color", settings.Taxonomies.Color)
	assert.Empty(t, settings.Taxonomies.Manufacturer)

	assert.Equal(t, "de", cfg.PreviewConfig().Language)
	assert.True(t, cfg.PreviewConfig().ShowPrice)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("PRICE_DECIMALS", "two")
	t.Setenv("PREVIEW_SHOW_PRICE", "maybe")

	cfg := Load()

	assert.Equal(t, 2, cfg.PriceDecimals)
	assert.True(t, cfg.PreviewShowPrice)
}

func TestSnapshotOptions(t *testing.T) {
	t.Setenv("SITE_URL", "https://shop.example/")
	t.Setenv("PRICE_SUFFIX", "incl. VAT")

	opts := Load().SnapshotOptions()

	assert.Equal(t, "https://shop.example/product/", opts.PermalinkBase)
	assert.Equal(t, "incl. VAT", opts.PriceSuffix)
	assert.True(t, opts.Now.IsZero())
}

func TestLoad_CORSAllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example ")

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, Load().CORSAllowedOrigins)
}
