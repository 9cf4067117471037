package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const DefaultCurrency = "USD"

// symbols covers the currencies the storefronts are configured with; any
// other valid ISO code is rendered as a "CODE " prefix.
var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
	"AUD": "A$",
	"CAD": "CA$",
	"NZD": "NZ$",
	"BRL": "R$",
}

// Formatter renders amounts to the store's configured precision and currency.
type Formatter struct {
	decimals int32
	currency string
}

// NewFormatter normalizes the currency code through the ISO 4217 table,
// falling back to DefaultCurrency for codes it does not recognise.
func NewFormatter(decimals int, currencyCode string) Formatter {
	if decimals < 0 {
		decimals = 0
	}

	code := DefaultCurrency
	if unit, err := currency.ParseISO(strings.TrimSpace(currencyCode)); err == nil {
		code = unit.String()
	}

	return Formatter{decimals: int32(decimals), currency: code}
}

// Currency returns the ISO 4217 code.
func (f Formatter) Currency() string {
	return f.currency
}

// Decimals returns the configured number of decimal places.
func (f Formatter) Decimals() int {
	return int(f.decimals)
}

// Decimal formats d with exactly the configured number of decimals, rounding
// half away from zero.
func (f Formatter) Decimal(d decimal.Decimal) string {
	return d.StringFixed(f.decimals)
}

// Price formats d for display, prefixed with the currency symbol.
func (f Formatter) Price(d decimal.Decimal) string {
	if symbol, ok := symbols[f.currency]; ok {
		return symbol + f.Decimal(d)
	}
	return f.currency + " " + f.Decimal(d)
}

// ParseAmount parses a stored price string. Empty or malformed input reports false.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
