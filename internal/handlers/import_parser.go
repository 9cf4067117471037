package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"product-schema-service/internal/identifiers"
	"product-schema-service/internal/models"
)

// parseCSV reads a CSV file into records, header first
func parseCSV(file io.Reader) ([][]string, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", len(records)+1, err)
		}
		records = append(records, record)
	}

	if len(records) > 0 && len(records[0]) > 0 {
		// Excel prepends a byte order mark to UTF-8 CSV exports
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

// parseXLSX reads the identifier sheet (or the first sheet) of an Excel file
func parseXLSX(file io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, identifiersSheet) {
			sheetName = name
			break
		}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	return rows, nil
}

// columnMapping maps file column positions to row keys: id, sku or a
// canonical identifier key
type columnMapping struct {
	columns    []string
	mappings   map[string]string // raw header -> key
	duplicates []string          // headers whose key an earlier column already maps
}

func mapColumns(headers []string) columnMapping {
	m := columnMapping{
		columns:  make([]string, len(headers)),
		mappings: make(map[string]string),
	}

	seen := make(map[string]bool)
	for i, header := range headers {
		var key string
		name := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(header), "*")))
		switch name {
		case models.ImportColumnID, models.ImportColumnSKU:
			key = name
		default:
			resolved, ok := identifiers.ResolveHeader(header)
			if !ok {
				continue
			}
			key = string(resolved)
		}

		if seen[key] {
			m.duplicates = append(m.duplicates, header)
			continue
		}
		seen[key] = true
		m.columns[i] = key
		m.mappings[header] = key
	}
	return m
}

// row returns the mapped cells of record, trimmed
func (m columnMapping) row(record []string) map[string]string {
	row := make(map[string]string)
	for i, key := range m.columns {
		if key == "" {
			continue
		}
		value := ""
		if i < len(record) {
			value = strings.TrimSpace(record[i])
		}
		row[key] = value
	}
	return row
}

func (m columnMapping) hasIdentifier() bool {
	for _, key := range m.columns {
		if identifiers.IsKey(key) {
			return true
		}
	}
	return false
}

func (m columnMapping) hasMatchColumn() bool {
	for _, key := range m.columns {
		if key == models.ImportColumnID || key == models.ImportColumnSKU {
			return true
		}
	}
	return false
}
