package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"product-schema-service/internal/events"
	"product-schema-service/internal/identifiers"
	"product-schema-service/internal/models"
	"product-schema-service/internal/repository"
)

const (
	identifiersSheet = "Identifiers"

	exportColumnType = "type"
	exportColumnName = "name"
)

// CatalogLookup resolves import rows and lists export rows
type CatalogLookup interface {
	FindByIDOrSKU(ctx context.Context, tenantID, id, sku string) (*repository.CatalogEntry, error)
	ListForExport(ctx context.Context, tenantID string) ([]repository.CatalogEntry, error)
}

// IdentifierEventPublisher publishes identifier import events
type IdentifierEventPublisher interface {
	PublishIdentifiersImported(ctx context.Context, tenantID, actorID string, change events.IdentifierChange) error
}

// ImportLimits bounds the size of an identifier import file
type ImportLimits struct {
	MaxRows     int
	MaxFileSize int64
}

type IdentifiersHandler struct {
	catalog   CatalogLookup
	stores    IdentifierStores
	publisher IdentifierEventPublisher
	limits    ImportLimits
	logger    *logrus.Logger
}

// NewIdentifiersHandler creates the identifier import/export handler.
// publisher may be nil when NATS is not configured.
func NewIdentifiersHandler(catalog CatalogLookup, stores IdentifierStores, publisher IdentifierEventPublisher, limits ImportLimits, logger *logrus.Logger) *IdentifiersHandler {
	return &IdentifiersHandler{
		catalog:   catalog,
		stores:    stores,
		publisher: publisher,
		limits:    limits,
		logger:    logger,
	}
}

// identifierTemplateColumns returns the identifier columns of the import
// template in column order
func identifierTemplateColumns() []models.ImportTemplateColumn {
	examples := map[identifiers.Key]string{
		identifiers.GTIN8:  "96385074",
		identifiers.GTIN12: "012345678905",
		identifiers.GTIN13: "4006381333931",
		identifiers.GTIN14: "10012345678902",
		identifiers.ISBN:   "9780306406157",
		identifiers.MPN:    "LS-2024-BLU",
	}

	var columns []models.ImportTemplateColumn
	for _, key := range identifiers.Keys() {
		description := identifiers.Label(key)
		if key == identifiers.ISBN {
			description += " (products only, ignored for variations in structured data)"
		}
		columns = append(columns, models.ImportTemplateColumn{
			Name:        string(key),
			Label:       identifiers.Label(key),
			Description: description,
			Type:        "string",
			Example:     examples[key],
		})
	}
	return columns
}

// GetImportTemplate returns the import template definition or file
// @Summary Get identifier import template
// @Tags Identifiers
// @Produce json
// @Param format query string false "json (default), csv or xlsx"
// @Success 200 {object} models.ImportTemplate
// @Router /products/identifiers/template [get]
func (h *IdentifiersHandler) GetImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	template := models.IdentifierImportTemplate(identifierTemplateColumns())

	switch format {
	case "csv":
		h.generateCSVTemplate(c, template)
	case "xlsx":
		h.generateXLSXTemplate(c, template)
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"template": template,
			"headers":  identifiers.ColumnHeaders(),
		})
	}
}

// generateCSVTemplate generates and downloads a CSV template (headers only)
func (h *IdentifiersHandler) generateCSVTemplate(c *gin.Context, template models.ImportTemplate) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=global_identifiers_import_template.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	writer.Write(headers)
}

// generateXLSXTemplate generates and downloads an Excel template
func (h *IdentifiersHandler) generateXLSXTemplate(c *gin.Context, template models.ImportTemplate) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", identifiersSheet)
	headerStyle := newHeaderStyle(f)

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(identifiersSheet, cell, col.Name)
		f.SetCellStyle(identifiersSheet, cell, cell, headerStyle)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(identifiersSheet, colName, colName, 20)
	}

	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Global Identifier Import Instructions")
	f.SetCellValue("Instructions", "A3", "Match each row to a product or variation with EITHER id OR sku.")
	f.SetCellValue("Instructions", "A4", "Headers may use the column labels (e.g. \"GTIN12 / UPC\") or common spellings such as UPC, EAN or ISBN.")
	f.SetCellValue("Instructions", "A5", "Empty cells clear the stored value. Columns left out of the file are not touched.")

	f.SetCellValue("Instructions", "A7", "Column")
	f.SetCellValue("Instructions", "B7", "Description")
	f.SetCellValue("Instructions", "C7", "Example")
	for i, col := range template.Columns {
		row := i + 8
		f.SetCellValue("Instructions", fmt.Sprintf("A%d", row), col.Name)
		f.SetCellValue("Instructions", fmt.Sprintf("B%d", row), col.Description)
		f.SetCellValue("Instructions", fmt.Sprintf("C%d", row), col.Example)
	}
	f.SetColWidth("Instructions", "A", "A", 20)
	f.SetColWidth("Instructions", "B", "B", 60)
	f.SetColWidth("Instructions", "C", "C", 25)

	sheetIdx, _ := f.GetSheetIndex(identifiersSheet)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=global_identifiers_import_template.xlsx")

	f.Write(c.Writer)
}

// ImportIdentifiers imports global identifiers from a CSV or Excel file
// @Summary Import global identifiers
// @Tags Identifiers
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Param validateOnly formData bool false "Dry run"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} models.ErrorResponse
// @Router /products/identifiers/import [post]
func (h *IdentifiersHandler) ImportIdentifiers(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	userID := c.GetString("user_id")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FILE_REQUIRED",
				Message: "Please upload a CSV or Excel file",
			},
		})
		return
	}
	defer file.Close()

	if h.limits.MaxFileSize > 0 && header.Size > h.limits.MaxFileSize {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FILE_TOO_LARGE",
				Message: fmt.Sprintf("File exceeds the maximum size of %d bytes", h.limits.MaxFileSize),
			},
		})
		return
	}

	validateOnly := c.DefaultPostForm("validateOnly", "false") == "true"

	var format models.ImportFormat
	filename := strings.ToLower(header.Filename)
	if strings.HasSuffix(filename, ".csv") {
		format = models.ImportFormatCSV
	} else if strings.HasSuffix(filename, ".xlsx") {
		format = models.ImportFormatXLSX
	} else {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_FORMAT",
				Message: "Only CSV and XLSX files are supported",
			},
		})
		return
	}

	var records [][]string
	if format == models.ImportFormatCSV {
		records, err = parseCSV(file)
	} else {
		records, err = parseXLSX(file)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "PARSE_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	if len(records) < 2 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "EMPTY_FILE",
				Message: "The file contains no data rows",
			},
		})
		return
	}

	if h.limits.MaxRows > 0 && len(records)-1 > h.limits.MaxRows {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "TOO_MANY_ROWS",
				Message: fmt.Sprintf("The file has %d rows, the maximum is %d", len(records)-1, h.limits.MaxRows),
			},
		})
		return
	}

	mapping := mapColumns(records[0])
	if len(mapping.duplicates) > 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "DUPLICATE_COLUMNS",
				Message: "Several columns map to the same field",
				Details: &models.JSON{"columns": mapping.duplicates},
			},
		})
		return
	}
	if !mapping.hasIdentifier() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "NO_IDENTIFIER_COLUMNS",
				Message: "The file has no global identifier column",
			},
		})
		return
	}
	if !mapping.hasMatchColumn() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "MATCH_COLUMN_REQUIRED",
				Message: "The file needs an id or sku column",
			},
		})
		return
	}

	result := h.processImport(c.Request.Context(), tenantID, userID, mapping, records[1:], validateOnly)
	c.JSON(http.StatusOK, result)
}

// processImport applies every data row; row problems are collected rather
// than aborting the file
func (h *IdentifiersHandler) processImport(ctx context.Context, tenantID, userID string, mapping columnMapping, records [][]string, validateOnly bool) *models.ImportResult {
	exchange := identifiers.NewExchange(h.stores.ForTenant(tenantID), h.logger)

	result := &models.ImportResult{
		TotalRows:      len(records),
		ValidateOnly:   validateOnly,
		ColumnMappings: mapping.mappings,
		Errors:         make([]models.ImportRowError, 0),
		UpdatedIDs:     make([]string, 0),
	}

	for i, record := range records {
		rowNum := i + 2 // 1-indexed, +1 for header
		row := mapping.row(record)

		if isBlankRow(row) {
			result.SkippedCount++
			continue
		}

		id, sku := row[models.ImportColumnID], row[models.ImportColumnSKU]
		if id == "" && sku == "" {
			h.addError(result, rowNum, models.ImportColumnSKU, "REQUIRED", "Either id or sku is required")
			continue
		}
		if id != "" {
			if _, err := uuid.Parse(id); err != nil {
				h.addError(result, rowNum, models.ImportColumnID, "INVALID", "id must be a valid UUID")
				continue
			}
		}

		entry, err := h.catalog.FindByIDOrSKU(ctx, tenantID, id, sku)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				h.addError(result, rowNum, matchColumn(id), "NOT_FOUND", "No product or variation matches this row")
			} else {
				h.addError(result, rowNum, matchColumn(id), "LOOKUP_FAILED", err.Error())
			}
			continue
		}

		if validateOnly {
			result.SuccessCount++
			continue
		}

		before, err := exchange.Values(ctx, entry)
		if err != nil {
			h.addError(result, rowNum, "", "READ_FAILED", err.Error())
			continue
		}
		if _, err := exchange.ApplyImportRow(ctx, entry, row); err != nil {
			h.addError(result, rowNum, "", "WRITE_FAILED", err.Error())
			continue
		}

		result.SuccessCount++

		after, err := exchange.Values(ctx, entry)
		if err != nil {
			h.logger.WithError(err).WithField("entity_id", entry.ID()).Warn("Failed to read identifiers after import")
			continue
		}
		if before.Equal(after) {
			continue
		}
		result.UpdatedCount++
		result.UpdatedIDs = append(result.UpdatedIDs, entry.ID())

		h.publishChange(ctx, tenantID, userID, entry, before, after)
	}

	result.FailedCount = len(result.Errors)
	result.Success = result.FailedCount == 0 || result.SuccessCount > 0

	h.logger.WithFields(logrus.Fields{
		"tenant_id":     tenantID,
		"total_rows":    result.TotalRows,
		"success_count": result.SuccessCount,
		"failed_count":  result.FailedCount,
		"validate_only": validateOnly,
	}).Info("Global identifier import finished")

	return result
}

func (h *IdentifiersHandler) publishChange(ctx context.Context, tenantID, userID string, entry *repository.CatalogEntry, before, after identifiers.Set) {
	if h.publisher == nil {
		return
	}

	change := events.IdentifierChange{
		EntityID: entry.EntityID,
		Kind:     entry.EntityKind,
		SKU:      entry.SKU,
		Name:     entry.Name,
		Old:      before,
		New:      after,
	}
	if err := h.publisher.PublishIdentifiersImported(ctx, tenantID, userID, change); err != nil {
		h.logger.WithError(err).WithField("entity_id", entry.ID()).Warn("Failed to publish identifier event")
	}
}

// ExportIdentifiers exports every product and variation with its identifiers
// @Summary Export global identifiers
// @Tags Identifiers
// @Produce octet-stream
// @Param format query string false "csv (default) or xlsx"
// @Success 200 {file} file
// @Failure 500 {object} models.ErrorResponse
// @Router /products/identifiers/export [get]
func (h *IdentifiersHandler) ExportIdentifiers(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	ctx := c.Request.Context()

	entries, err := h.catalog.ListForExport(ctx, tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve products",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	exchange := identifiers.NewExchange(h.stores.ForTenant(tenantID), h.logger)
	keys := identifiers.Keys()

	headers := []string{models.ImportColumnID, exportColumnType, models.ImportColumnSKU, exportColumnName}
	for _, key := range keys {
		headers = append(headers, identifiers.Label(key))
	}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		row := []string{entry.EntityID, string(entry.EntityKind), entry.SKU, entry.Name}
		for _, key := range keys {
			row = append(row, exchange.ExtractExportValue(ctx, entry, string(key)))
		}
		rows = append(rows, row)
	}

	if c.DefaultQuery("format", "csv") == "xlsx" {
		h.writeXLSXExport(c, headers, rows)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=global_identifiers.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(headers)
	for _, row := range rows {
		writer.Write(row)
	}
}

func (h *IdentifiersHandler) writeXLSXExport(c *gin.Context, headers []string, rows [][]string) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", identifiersSheet)
	headerStyle := newHeaderStyle(f)

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(identifiersSheet, cell, header)
		f.SetCellStyle(identifiersSheet, cell, cell, headerStyle)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(identifiersSheet, colName, colName, 20)
	}

	for r, row := range rows {
		for i, value := range row {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			// Strings keep leading zeros of GTIN-12 values
			f.SetCellStr(identifiersSheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "EXPORT_FAILED",
				Message: "Failed to write the export file",
			},
		})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=global_identifiers.xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// addError is a helper to add an error to the result
func (h *IdentifiersHandler) addError(result *models.ImportResult, rowNum int, column, code, message string) {
	result.Errors = append(result.Errors, models.ImportRowError{
		Row:     rowNum,
		Column:  column,
		Code:    code,
		Message: message,
	})
}

func newHeaderStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	return style
}

func matchColumn(id string) string {
	if id != "" {
		return models.ImportColumnID
	}
	return models.ImportColumnSKU
}

func isBlankRow(row map[string]string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
