package preview

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	labelPrice        = "Price"
	labelAvailability = "Availability"
	inStock           = "In stock"
	outOfStock        = "Out of stock"
	onBackorder       = "On backorder"
)

var supported = []language.Tag{language.English, language.German}

var translations = map[language.Tag]map[string]string{
	language.German: {
		labelPrice:        "Preis",
		labelAvailability: "Verfügbarkeit",
		inStock:           "Vorrätig",
		outOfStock:        "Nicht vorrätig",
		onBackorder:       "Lieferrückstand",
	},
}

var (
	messages = newCatalog()
	matcher  = language.NewMatcher(supported)
)

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, key := range []string{labelPrice, labelAvailability, inStock, outOfStock, onBackorder} {
		_ = b.SetString(language.English, key, key)
	}
	for tag, msgs := range translations {
		for key, msg := range msgs {
			_ = b.SetString(tag, key, msg)
		}
	}
	return b
}

// printerFor returns a printer for the supported language closest to lang.
// Unknown or malformed tags get English.
func printerFor(lang string) *message.Printer {
	tag := language.English
	if parsed, err := language.Parse(lang); err == nil {
		if _, index, confidence := matcher.Match(parsed); confidence != language.No {
			tag = supported[index]
		}
	}
	return message.NewPrinter(tag, message.Catalog(messages))
}
