package events

import (
	"testing"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/stretchr/testify/assert"
	"product-schema-service/internal/catalog"
	"product-schema-service/internal/identifiers"
)

func TestBuildIdentifierEvent(t *testing.T) {
	change := IdentifierChange{
		EntityID: "v-1",
		Kind:     catalog.KindVariation,
		SKU:      "LS-B",
		Name:     "Linen Shirt - Blue",
		Old:      identifiers.Set{"gtin13": "4006381333931", "mpn": "OLD"},
		New:      identifiers.Set{"gtin13": "4006381333931", "mpn": "NEW", "gtin8": "12345670"},
	}

	event := BuildIdentifierEvent("tenant-1", "user-1", change)

	assert.Equal(t, events.ProductUpdated, event.EventType)
	assert.Equal(t, "tenant-1", event.TenantID)
	assert.Equal(t, "v-1", event.ProductID)
	assert.Equal(t, "LS-B", event.SKU)
	assert.Equal(t, "user-1", event.ActorID)
	assert.Equal(t, ChangeTypeIdentifiersImported, event.ChangeType)
	assert.NotEmpty(t, event.SourceID)
	assert.Equal(t, []string{"gtin8", "mpn"}, event.ChangedFields)
	assert.Equal(t, map[string]interface{}{"scope": "variation", "gtin8": "", "mpn": "OLD"}, event.OldValue)
	assert.Equal(t, map[string]interface{}{"scope": "variation", "gtin8": "12345670", "mpn": "NEW"}, event.NewValue)
}

func TestBuildIdentifierEvent_NoChange(t *testing.T) {
	set := identifiers.Set{"isbn": "9780000000000"}

	event := BuildIdentifierEvent("tenant-1", "", IdentifierChange{EntityID: "p-1", Kind: catalog.KindSimple, Old: set, New: set})

	assert.Empty(t, event.ChangedFields)
	assert.Equal(t, "product", event.OldValue["scope"])
}
