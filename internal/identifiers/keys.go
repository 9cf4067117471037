// Package identifiers exchanges global trade identifiers (GTIN-8/12/13/14,
// ISBN, MPN) between tabular import/export files and the identifier records
// kept for products and variations.
package identifiers

import "strings"

// Key is one of the canonical identifier field names.
type Key string

const (
	GTIN8  Key = "gtin8"
	GTIN12 Key = "gtin12"
	GTIN13 Key = "gtin13"
	GTIN14 Key = "gtin14"
	ISBN   Key = "isbn"
	MPN    Key = "mpn"
)

var allKeys = []Key{GTIN8, GTIN12, GTIN13, GTIN14, ISBN, MPN}

// Variations never carry an ISBN.
var variationKeys = []Key{GTIN8, GTIN12, GTIN13, GTIN14, MPN}

var displayLabels = map[Key]string{
	GTIN8:  "GTIN8",
	GTIN12: "GTIN12 / UPC",
	GTIN13: "GTIN13 / EAN",
	GTIN14: "GTIN14 / ITF-14",
	ISBN:   "ISBN",
	MPN:    "MPN",
}

// Bare synonyms accepted in import headers, besides the key and its label.
var synonyms = map[Key][]string{
	GTIN12: {"UPC"},
	GTIN13: {"EAN"},
	GTIN14: {"ITF-14"},
}

// Keys returns the canonical keys in column order.
func Keys() []Key {
	return append([]Key(nil), allKeys...)
}

// VariationKeys returns the keys resolved for variations, in column order.
func VariationKeys() []Key {
	return append([]Key(nil), variationKeys...)
}

// IsKey reports whether s is a canonical key.
func IsKey(s string) bool {
	_, ok := displayLabels[Key(s)]
	return ok
}

// Label returns the column label for k.
func Label(k Key) string {
	return displayLabels[k]
}

// ColumnHeaders returns the export columns and import mapping options as
// {key: label}.
func ColumnHeaders() map[string]string {
	headers := make(map[string]string, len(allKeys))
	for _, k := range allKeys {
		headers[string(k)] = displayLabels[k]
	}
	return headers
}

// HeaderAliases maps every header spelling a spreadsheet is likely to use to
// its canonical key, e.g. "GTIN12/UPC", "upc" and "UPC" all map to "gtin12".
func HeaderAliases() map[string]string {
	aliases := make(map[string]string)
	add := func(alias string, k Key) {
		aliases[alias] = string(k)
		aliases[strings.ToLower(alias)] = string(k)
	}

	for _, k := range allKeys {
		label := displayLabels[k]
		add(label, k)
		add(strings.ToUpper(string(k)), k)
		if strings.Contains(label, " / ") {
			add(strings.ReplaceAll(label, " / ", "/"), k)
		}
		for _, synonym := range synonyms[k] {
			add(synonym, k)
		}
	}
	return aliases
}

// ResolveHeader maps a raw header cell to a canonical key. Case, surrounding
// whitespace and a trailing required marker (" *") are ignored.
func ResolveHeader(header string) (Key, bool) {
	h := strings.TrimSpace(header)
	h = strings.TrimSpace(strings.TrimSuffix(h, "*"))
	if h == "" {
		return "", false
	}

	k, ok := HeaderAliases()[strings.ToLower(h)]
	if !ok {
		return "", false
	}
	return Key(k), true
}
