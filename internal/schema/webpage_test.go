package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterWebPage(t *testing.T) {
	webpage := Document{
		"@type":           "WebPage",
		"@id":             testCanonical,
		"datePublished":   "2026-01-01T00:00:00+00:00",
		"dateModified":    "2026-02-01T00:00:00+00:00",
		"potentialAction": []interface{}{Document{"@type": "ReadAction"}},
	}

	tests := []struct {
		name string
		kind PageKind
		want Document
	}{
		{
			name: "product page",
			kind: PageProduct,
			want: Document{
				"@type": []string{"WebPage", "ItemPage"},
				"@id":   testCanonical,
				"potentialAction": Document{
					"@type":  "BuyAction",
					"target": testCanonical,
				},
			},
		},
		{
			name: "checkout page",
			kind: PageCheckout,
			want: Document{
				"@type":         "CheckoutPage",
				"@id":           testCanonical,
				"datePublished": "2026-01-01T00:00:00+00:00",
				"dateModified":  "2026-02-01T00:00:00+00:00",
			},
		},
		{
			name: "other page",
			kind: PageOther,
			want: webpage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterWebPage(Page{Canonical: testCanonical, Kind: tt.kind}, webpage)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "WebPage", webpage["@type"])
}

func TestRemoveBreadcrumbType(t *testing.T) {
	assert.Equal(t, []string{"product", "review"}, RemoveBreadcrumbType([]string{"product", "breadcrumblist", "review"}))
	assert.Empty(t, RemoveBreadcrumbType(nil))
}
