package models

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, uuid
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity     string                 `json:"entity"`
	Version    string                 `json:"version"`
	Columns    []ImportTemplateColumn `json:"columns"`
	SampleData []map[string]string    `json:"sampleData,omitempty"`
}

// ImportRowError represents an error for a specific row
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Success        bool              `json:"success"`
	TotalRows      int               `json:"totalRows"`
	SuccessCount   int               `json:"successCount"`
	UpdatedCount   int               `json:"updatedCount"`
	FailedCount    int               `json:"failedCount"`
	SkippedCount   int               `json:"skippedCount"`
	ValidateOnly   bool              `json:"validateOnly"`
	ColumnMappings map[string]string `json:"columnMappings,omitempty"`
	Errors         []ImportRowError  `json:"errors,omitempty"`
	UpdatedIDs     []string          `json:"updatedIds,omitempty"`
}

// Row-matching columns every identifier import file carries besides the
// identifier columns.
const (
	ImportColumnID  = "id"
	ImportColumnSKU = "sku"
)

// IdentifierImportTemplate returns the template definition for global
// identifier imports. columns holds the identifier columns in order.
func IdentifierImportTemplate(columns []ImportTemplateColumn) ImportTemplate {
	all := []ImportTemplateColumn{
		{Name: ImportColumnID, Description: "Product or variation UUID (use this OR sku)", Required: false, Type: "uuid", Example: ""},
		{Name: ImportColumnSKU, Description: "Product or variation SKU (use this OR id)", Required: false, Type: "string", Example: "TSH-BLU-001"},
	}
	all = append(all, columns...)

	return ImportTemplate{
		Entity:  "global_identifiers",
		Version: "1.0",
		Columns: all,
	}
}
