// Package importer reads cargo manifests from CSV and Excel files. It detects
// the CSV delimiter, recognizes header aliases case-insensitively and expands
// quantities into individual pieces.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/cargoplan/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation. Row problems are
// collected rather than aborting the whole file.
type ImportResult struct {
	Pieces   []model.CargoPiece
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
// Unmapped roles are -1.
type ColumnMapping struct {
	ID        int
	Label     int
	Length    int
	Width     int
	Height    int
	Weight    int
	Quantity  int
	Stackable int
	Rotatable int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"id":        {"id", "sku", "piece id", "item id", "ref", "reference"},
	"label":     {"label", "name", "description", "desc", "item", "piece"},
	"length":    {"length", "len", "l"},
	"width":     {"width", "w"},
	"height":    {"height", "h"},
	"weight":    {"weight", "wt", "mass", "gross weight", "kg", "lbs"},
	"quantity":  {"quantity", "qty", "count", "num", "pcs", "pieces"},
	"stackable": {"stackable", "stack", "stackable?", "can stack"},
	"rotatable": {"rotatable", "rotate", "turnable", "orientation", "orientations"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer consistency, then more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping (label, length, width, height, weight, quantity, stackable,
// rotatable) and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{-1, -1, -1, -1, -1, -1, -1, -1, -1}
	slots := map[string]*int{
		"id":        &mapping.ID,
		"label":     &mapping.Label,
		"length":    &mapping.Length,
		"width":     &mapping.Width,
		"height":    &mapping.Height,
		"weight":    &mapping.Weight,
		"quantity":  &mapping.Quantity,
		"stackable": &mapping.Stackable,
		"rotatable": &mapping.Rotatable,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if slot := slots[role]; *slot == -1 {
						*slot = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{
			ID:        -1,
			Label:     0,
			Length:    1,
			Width:     2,
			Height:    3,
			Weight:    4,
			Quantity:  5,
			Stackable: 6,
			Rotatable: 7,
		}, false
	}

	return mapping, true
}

// parseBool accepts the usual spreadsheet spellings of yes and no.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "t", "1", "x":
		return true, true
	case "no", "n", "false", "f", "0", "-":
		return false, true
	default:
		return false, false
	}
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parsePositive(row []string, idx int, name, rowLabel string) (float64, string) {
	s := getCell(row, idx)
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, name, s)
	}
	if v <= 0 {
		return 0, fmt.Sprintf("%s: %s must be positive", rowLabel, strings.ToUpper(name[:1])+name[1:])
	}
	return v, ""
}

// parseRow extracts the pieces described by one row. A quantity above one
// expands to pieces named <id>-1 .. <id>-n.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, itemNum int) ([]model.CargoPiece, string, []string) {
	var warnings []string

	label := getCell(row, mapping.Label)
	id := getCell(row, mapping.ID)
	if id == "" {
		id = label
	}
	if id == "" {
		id = fmt.Sprintf("item-%d", itemNum)
	}

	length, errMsg := parsePositive(row, mapping.Length, "length", rowLabel)
	if errMsg != "" {
		return nil, errMsg, nil
	}
	width, errMsg := parsePositive(row, mapping.Width, "width", rowLabel)
	if errMsg != "" {
		return nil, errMsg, nil
	}
	height, errMsg := parsePositive(row, mapping.Height, "height", rowLabel)
	if errMsg != "" {
		return nil, errMsg, nil
	}
	weight, errMsg := parsePositive(row, mapping.Weight, "weight", rowLabel)
	if errMsg != "" {
		return nil, errMsg, nil
	}

	qty := 1
	if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
		n, err := strconv.Atoi(qtyStr)
		if err != nil {
			return nil, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), nil
		}
		if n <= 0 {
			return nil, fmt.Sprintf("%s: Quantity must be positive", rowLabel), nil
		}
		qty = n
	}

	stackable := true
	if s := getCell(row, mapping.Stackable); s != "" {
		v, ok := parseBool(s)
		if ok {
			stackable = v
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: Unknown stackable value '%s', defaulting to yes", rowLabel, s))
		}
	}

	orientations := model.UprightOrientations()
	if s := getCell(row, mapping.Rotatable); s != "" {
		o, ok := model.ParseRotation(s)
		orientations = o
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s: Unknown rotatable value '%s', defaulting to upright turns", rowLabel, s))
		}
	}

	pieces := make([]model.CargoPiece, 0, qty)
	for n := 1; n <= qty; n++ {
		pieceID := id
		if qty > 1 {
			pieceID = fmt.Sprintf("%s-%d", id, n)
		}
		pieces = append(pieces, model.CargoPiece{
			ID:           pieceID,
			Label:        label,
			Length:       length,
			Width:        width,
			Height:       height,
			Weight:       weight,
			Stackable:    stackable,
			Orientations: append([]model.Orientation(nil), orientations...),
		})
	}
	return pieces, "", warnings
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports a cargo manifest from a CSV file.
// It detects the delimiter and maps columns by header names.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", warnings)
}

// ImportCSVFromReader imports a manifest from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	records, err := readCSV(reader, delimiter)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importFromRows(records, "Line", nil)
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1
	csvReader.Comment = '#'
	return csvReader.ReadAll()
}

// ImportExcel imports a manifest from the first sheet of an Excel workbook.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// ImportFile picks the importer from the file extension.
func ImportFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return ImportExcel(path)
	default:
		return ImportCSV(path)
	}
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		for _, col := range []struct {
			name string
			idx  int
		}{
			{"Length", mapping.Length},
			{"Width", mapping.Width},
			{"Height", mapping.Height},
			{"Weight", mapping.Weight},
		} {
			if col.idx == -1 {
				missing = append(missing, col.name)
			}
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 2 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			// Unrecognized header: skip it and keep the positional layout
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	seen := make(map[string]string)
	items := 0
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		items++

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		pieces, errMsg, warnings := parseRow(row, mapping, rowLabel, items)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Warnings = append(result.Warnings, warnings...)

		for _, p := range pieces {
			if first, dup := seen[p.ID]; dup {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: Duplicate id '%s' (first seen on %s)", rowLabel, p.ID, first))
				continue
			}
			seen[p.ID] = rowLabel
			result.Pieces = append(result.Pieces, p)
		}
	}

	return result
}
