package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"product-schema-service/internal/catalog"
	"product-schema-service/internal/events"
	"product-schema-service/internal/identifiers"
	"product-schema-service/internal/models"
	"product-schema-service/internal/repository"
)

const (
	shirtID = "5b1f3c1e-8a43-4c55-9a0e-0b9e3f0c2d11"
	blueID  = "9f6a7e2b-1c3d-4e5f-8a9b-0c1d2e3f4a5b"
)

var (
	shirtEntry = repository.CatalogEntry{EntityID: shirtID, EntityKind: catalog.KindSimple, SKU: "LS-1", Name: "Linen Shirt"}
	blueEntry  = repository.CatalogEntry{EntityID: blueID, EntityKind: catalog.KindVariation, SKU: "LS-B", Name: "Linen Shirt - Blue"}
)

func setupIdentifiersHandler(lookup *MockCatalogLookup, store identifiers.Store, publisher IdentifierEventPublisher, limits ImportLimits) http.Handler {
	h := NewIdentifiersHandler(lookup, tenantStores{store: store}, publisher, limits, quietLogger())

	router := newTestRouter()
	router.GET("/products/identifiers/template", h.GetImportTemplate)
	router.POST("/products/identifiers/import", h.ImportIdentifiers)
	router.GET("/products/identifiers/export", h.ExportIdentifiers)
	return router
}

func decodeImportResult(t *testing.T, w *httptest.ResponseRecorder) models.ImportResult {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result models.ImportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func TestGetImportTemplate(t *testing.T) {
	router := setupIdentifiersHandler(new(MockCatalogLookup), newMemoryStore(), nil, ImportLimits{})

	t.Run("json", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/identifiers/template", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success  bool                  `json:"success"`
			Template models.ImportTemplate `json:"template"`
			Headers  map[string]string     `json:"headers"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "global_identifiers", resp.Template.Entity)
		require.Len(t, resp.Template.Columns, 8)
		assert.Equal(t, "gtin12", resp.Template.Columns[3].Name)
		assert.Equal(t, "GTIN12 / UPC", resp.Template.Columns[3].Label)
		assert.Equal(t, "GTIN13 / EAN", resp.Headers["gtin13"])
	})

	t.Run("csv", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/identifiers/template?format=csv", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "id,sku,gtin8,gtin12,gtin13,gtin14,isbn,mpn\n", w.Body.String())
	})

	t.Run("xlsx", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/identifiers/template?format=xlsx", nil))
		require.Equal(t, http.StatusOK, w.Code)

		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(identifiersSheet)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, []string{"id", "sku", "gtin8", "gtin12", "gtin13", "gtin14", "isbn", "mpn"}, rows[0])
	})
}

func TestImportIdentifiers_CSV(t *testing.T) {
	lookup := new(MockCatalogLookup)
	lookup.On("FindByIDOrSKU", mock.Anything, testTenant, "", "LS-1").Return(&shirtEntry, nil)
	lookup.On("FindByIDOrSKU", mock.Anything, testTenant, "", "MISSING").Return(nil, gorm.ErrRecordNotFound)
	lookup.On("FindByIDOrSKU", mock.Anything, testTenant, blueID, "").Return(&blueEntry, nil)

	store := newMemoryStore()
	store.put(shirtID, identifiers.ScopeProduct, identifiers.Set{"mpn": "KEEP-ME"})

	publisher := new(MockEventPublisher)
	publisher.On("PublishIdentifiersImported", mock.Anything, testTenant, "user-1", mock.MatchedBy(func(change events.IdentifierChange) bool {
		return change.EntityID == shirtID && change.Old.Get(identifiers.GTIN12) == "" && change.New.Get(identifiers.GTIN12) == "012345678905"
	})).Return(nil).Once()
	publisher.On("PublishIdentifiersImported", mock.Anything, testTenant, "user-1", mock.MatchedBy(func(change events.IdentifierChange) bool {
		return change.EntityID == blueID && change.Kind == catalog.KindVariation
	})).Return(nil).Once()

	file := strings.Join([]string{
		"ID,SKU,UPC,GTIN13 / EAN *,Color",
		",LS-1,012345678905, <b>4006381333931</b> ,blue",
		",MISSING,1,2,",
		"not-a-uuid,,1,,",
		",,,,",
		blueID + ",,,4006381333948,",
		",,5,,",
	}, "\n")

	w := httptest.NewRecorder()
	router := setupIdentifiersHandler(lookup, store, publisher, ImportLimits{MaxRows: 100})
	router.ServeHTTP(w, multipartRequest(t, "/products/identifiers/import", "identifiers.csv", []byte(file), nil))

	result := decodeImportResult(t, w)
	assert.True(t, result.Success)
	assert.Equal(t, 6, result.TotalRows)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 2, result.UpdatedCount)
	assert.Equal(t, 3, result.FailedCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, []string{shirtID, blueID}, result.UpdatedIDs)
	assert.Equal(t, map[string]string{
		"ID":             "id",
		"SKU":            "sku",
		"UPC":            "gtin12",
		"GTIN13 / EAN *": "gtin13",
	}, result.ColumnMappings)

	require.Len(t, result.Errors, 3)
	assert.Equal(t, models.ImportRowError{Row: 3, Column: "sku", Code: "NOT_FOUND", Message: "No product or variation matches this row"}, result.Errors[0])
	assert.Equal(t, 4, result.Errors[1].Row)
	assert.Equal(t, "INVALID", result.Errors[1].Code)
	assert.Equal(t, 7, result.Errors[2].Row)
	assert.Equal(t, "REQUIRED", result.Errors[2].Code)

	shirt, _ := store.GetIdentifierSet(context.Background(), shirtID, identifiers.ScopeProduct)
	assert.Equal(t, "012345678905", shirt.Get(identifiers.GTIN12))
	assert.Equal(t, "4006381333931", shirt.Get(identifiers.GTIN13))
	assert.Equal(t, "KEEP-ME", shirt.Get(identifiers.MPN))

	blue, _ := store.GetIdentifierSet(context.Background(), blueID, identifiers.ScopeVariation)
	assert.Equal(t, "4006381333948", blue.Get(identifiers.GTIN13))

	publisher.AssertExpectations(t)
}

func TestImportIdentifiers_ValidateOnly(t *testing.T) {
	lookup := new(MockCatalogLookup)
	lookup.On("FindByIDOrSKU", mock.Anything, testTenant, "", "LS-1").Return(&shirtEntry, nil)
	store := newMemoryStore()
	publisher := new(MockEventPublisher)

	w := httptest.NewRecorder()
	router := setupIdentifiersHandler(lookup, store, publisher, ImportLimits{})
	router.ServeHTTP(w, multipartRequest(t, "/products/identifiers/import", "identifiers.csv",
		[]byte("sku,mpn\nLS-1,MPN-1\n"), map[string]string{"validateOnly": "true"}))

	result := decodeImportResult(t, w)
	assert.True(t, result.ValidateOnly)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 0, result.UpdatedCount)
	assert.Empty(t, store.sets)
	publisher.AssertNotCalled(t, "PublishIdentifiersImported", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestImportIdentifiers_XLSX(t *testing.T) {
	lookup := new(MockCatalogLookup)
	lookup.On("FindByIDOrSKU", mock.Anything, testTenant, "", "LS-1").Return(&shirtEntry, nil)
	store := newMemoryStore()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", identifiersSheet))
	require.NoError(t, f.SetSheetRow(identifiersSheet, "A1", &[]interface{}{"sku", "ISBN", "EAN"}))
	require.NoError(t, f.SetSheetRow(identifiersSheet, "A2", &[]interface{}{"LS-1", "9780306406157", "4006381333931"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router := setupIdentifiersHandler(lookup, store, nil, ImportLimits{})
	router.ServeHTTP(w, multipartRequest(t, "/products/identifiers/import", "identifiers.xlsx", buf.Bytes(), nil))

	result := decodeImportResult(t, w)
	assert.Equal(t, 1, result.UpdatedCount)

	shirt, _ := store.GetIdentifierSet(context.Background(), shirtID, identifiers.ScopeProduct)
	assert.Equal(t, "9780306406157", shirt.Get(identifiers.ISBN))
	assert.Equal(t, "4006381333931", shirt.Get(identifiers.GTIN13))
}

func TestImportIdentifiers_RejectedFiles(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		limits   ImportLimits
		wantCode string
	}{
		{name: "no file", wantCode: "FILE_REQUIRED"},
		{name: "unsupported format", filename: "identifiers.txt", content: "sku,mpn\nA,B\n", wantCode: "INVALID_FORMAT"},
		{name: "header only", filename: "identifiers.csv", content: "sku,mpn\n", wantCode: "EMPTY_FILE"},
		{name: "no identifier column", filename: "identifiers.csv", content: "sku,color\nA,blue\n", wantCode: "NO_IDENTIFIER_COLUMNS"},
		{name: "no match column", filename: "identifiers.csv", content: "name,mpn\nShirt,B\n", wantCode: "MATCH_COLUMN_REQUIRED"},
		{name: "two columns for one identifier", filename: "identifiers.csv", content: "sku,UPC,GTIN12\nA,012345678905,\n", wantCode: "DUPLICATE_COLUMNS"},
		{name: "two sku columns", filename: "identifiers.csv", content: "SKU,sku *,mpn\nA,A,1\n", wantCode: "DUPLICATE_COLUMNS"},
		{name: "too many rows", filename: "identifiers.csv", content: "sku,mpn\nA,1\nB,2\n", limits: ImportLimits{MaxRows: 1}, wantCode: "TOO_MANY_ROWS"},
		{name: "file too large", filename: "identifiers.csv", content: "sku,mpn\nA,1\n", limits: ImportLimits{MaxFileSize: 4}, wantCode: "FILE_TOO_LARGE"},
		{name: "malformed csv", filename: "identifiers.csv", content: "sku,mpn\n\"A,1\n", wantCode: "PARSE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := new(MockCatalogLookup)
			router := setupIdentifiersHandler(lookup, newMemoryStore(), nil, tt.limits)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, multipartRequest(t, "/products/identifiers/import", tt.filename, []byte(tt.content), nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
			lookup.AssertNotCalled(t, "FindByIDOrSKU", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestImportIdentifiers_UnchangedRowsAreNotUpdates(t *testing.T) {
	lookup := new(MockCatalogLookup)
	lookup.On("FindByIDOrSKU", mock.Anything, testTenant, "", "LS-1").Return(&shirtEntry, nil)
	lookup.On("FindByIDOrSKU", mock.Anything, testTenant, "", "LS-B").Return(&blueEntry, nil)

	store := newMemoryStore()
	store.put(shirtID, identifiers.ScopeProduct, identifiers.Set{"gtin12": "012345678905", "mpn": "LS-MPN"})

	publisher := new(MockEventPublisher)
	publisher.On("PublishIdentifiersImported", mock.Anything, testTenant, "user-1", mock.MatchedBy(func(change events.IdentifierChange) bool {
		return change.EntityID == blueID
	})).Return(nil).Once()

	file := "sku,UPC,mpn\nLS-1,012345678905,LS-MPN\nLS-B,,LS-B-MPN\n"

	w := httptest.NewRecorder()
	router := setupIdentifiersHandler(lookup, store, publisher, ImportLimits{})
	router.ServeHTTP(w, multipartRequest(t, "/products/identifiers/import", "identifiers.csv", []byte(file), nil))

	result := decodeImportResult(t, w)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.UpdatedCount)
	assert.Equal(t, []string{blueID}, result.UpdatedIDs)
	publisher.AssertExpectations(t)
}

func TestImportIdentifiers_LookupFailure(t *testing.T) {
	lookup := new(MockCatalogLookup)
	lookup.On("FindByIDOrSKU", mock.Anything, testTenant, "", "LS-1").Return(nil, errors.New("connection refused"))

	w := httptest.NewRecorder()
	router := setupIdentifiersHandler(lookup, newMemoryStore(), nil, ImportLimits{})
	router.ServeHTTP(w, multipartRequest(t, "/products/identifiers/import", "identifiers.csv", []byte("sku,mpn\nLS-1,M\n"), nil))

	result := decodeImportResult(t, w)
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "LOOKUP_FAILED", result.Errors[0].Code)
}

func exportStore() *memoryStore {
	store := newMemoryStore()
	store.put(shirtID, identifiers.ScopeProduct, identifiers.Set{"gtin12": "012345678905", "isbn": "9780306406157"})
	store.put(blueID, identifiers.ScopeVariation, identifiers.Set{"mpn": "LS-B-MPN"})
	return store
}

func TestExportIdentifiers_CSV(t *testing.T) {
	lookup := new(MockCatalogLookup)
	lookup.On("ListForExport", mock.Anything, testTenant).Return([]repository.CatalogEntry{shirtEntry, blueEntry}, nil)

	w := httptest.NewRecorder()
	router := setupIdentifiersHandler(lookup, exportStore(), nil, ImportLimits{})
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/identifiers/export", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "global_identifiers.csv")

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"id", "type", "sku", "name", "GTIN8", "GTIN12 / UPC", "GTIN13 / EAN", "GTIN14 / ITF-14", "ISBN", "MPN"}, records[0])
	assert.Equal(t, []string{shirtID, "simple", "LS-1", "Linen Shirt", "", "012345678905", "", "", "9780306406157", ""}, records[1])
	assert.Equal(t, []string{blueID, "variation", "LS-B", "Linen Shirt - Blue", "", "", "", "", "", "LS-B-MPN"}, records[2])
}

func TestExportIdentifiers_XLSXKeepsLeadingZeros(t *testing.T) {
	lookup := new(MockCatalogLookup)
	lookup.On("ListForExport", mock.Anything, testTenant).Return([]repository.CatalogEntry{shirtEntry}, nil)

	w := httptest.NewRecorder()
	router := setupIdentifiersHandler(lookup, exportStore(), nil, ImportLimits{})
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/identifiers/export?format=xlsx", nil))
	require.Equal(t, http.StatusOK, w.Code)

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue(identifiersSheet, "F2")
	require.NoError(t, err)
	assert.Equal(t, "012345678905", value)
}

func TestExportIdentifiers_ListFailure(t *testing.T) {
	lookup := new(MockCatalogLookup)
	lookup.On("ListForExport", mock.Anything, testTenant).Return(nil, errors.New("timeout"))

	w := httptest.NewRecorder()
	router := setupIdentifiersHandler(lookup, newMemoryStore(), nil, ImportLimits{})
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/identifiers/export", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "FETCH_FAILED")
}
