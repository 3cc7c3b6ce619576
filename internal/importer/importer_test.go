package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/cargoplan/internal/model"
	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "id,length,width\na,1,2\nb,3,4\n", ','},
		{"semicolon", "id;length;width\na;1,5;2\nb;3;4\n", ';'},
		{"tab", "id\tlength\twidth\na\t1\t2\n", '\t'},
		{"pipe", "id|length|width\na|1|2\n", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCSVDelimiter([]byte(tt.data)); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, ok := DetectColumns([]string{"ID", "Label", "Length", "Width", "Height", "Weight", "Quantity", "Stackable", "Rotatable"})
	if !ok {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{ID: 0, Label: 1, Length: 2, Width: 3, Height: 4, Weight: 5, Quantity: 6, Stackable: 7, Rotatable: 8}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_AliasesAndOrder(t *testing.T) {
	mapping, ok := DetectColumns([]string{"wt", " QTY ", "h", "w", "l", "SKU"})
	if !ok {
		t.Fatal("expected header to be detected")
	}
	if mapping.Weight != 0 || mapping.Quantity != 1 || mapping.Height != 2 ||
		mapping.Width != 3 || mapping.Length != 4 || mapping.ID != 5 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
	if mapping.Label != -1 || mapping.Stackable != -1 || mapping.Rotatable != -1 {
		t.Errorf("unmapped roles should be -1, got %+v", mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, ok := DetectColumns([]string{"Crate", "48", "40", "36", "900"})
	if ok {
		t.Error("expected no header")
	}
	if mapping.ID != -1 || mapping.Label != 0 || mapping.Length != 1 || mapping.Weight != 4 || mapping.Rotatable != 7 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "ID,Label,Length,Width,Height,Weight,Quantity,Stackable,Rotatable\n" +
		"crate,Crate,48,40,36,900,1,no,no\n" +
		"drum,Drum,24,24,34,450,1,yes,any\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(result.Pieces))
	}

	crate := result.Pieces[0]
	if crate.ID != "crate" || crate.Label != "Crate" {
		t.Errorf("expected crate/Crate, got %s/%s", crate.ID, crate.Label)
	}
	if crate.Length != 48 || crate.Width != 40 || crate.Height != 36 || crate.Weight != 900 {
		t.Errorf("unexpected crate dimensions %+v", crate)
	}
	if crate.Stackable {
		t.Error("crate should not be stackable")
	}
	if len(crate.Orientations) != 1 || crate.Orientations[0] != model.OrientationAsGiven {
		t.Errorf("crate should keep its given orientation, got %v", crate.Orientations)
	}

	drum := result.Pieces[1]
	if !drum.Stackable {
		t.Error("drum should be stackable")
	}
	if len(drum.Orientations) != len(model.AllOrientations()) {
		t.Errorf("drum should allow every orientation, got %d", len(drum.Orientations))
	}
	if err := drum.Validate(); err != nil {
		t.Errorf("imported piece should validate: %v", err)
	}
}

func TestImportCSVFromReader_QuantityExpansion(t *testing.T) {
	data := "id,length,width,height,weight,qty\npallet,48,40,50,1200,3\nsingle,10,10,10,5,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Pieces) != 4 {
		t.Fatalf("expected 4 pieces, got %d (errors: %v)", len(result.Pieces), result.Errors)
	}
	want := []string{"pallet-1", "pallet-2", "pallet-3", "single"}
	for i, id := range want {
		if result.Pieces[i].ID != id {
			t.Errorf("piece %d: expected id %s, got %s", i, id, result.Pieces[i].ID)
		}
	}
}

func TestImportCSVFromReader_Defaults(t *testing.T) {
	data := "Label,Length,Width,Height,Weight\nBox,10,8,6,20\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d (errors: %v)", len(result.Pieces), result.Errors)
	}
	p := result.Pieces[0]
	if p.ID != "Box" {
		t.Errorf("id should fall back to the label, got %s", p.ID)
	}
	if !p.Stackable {
		t.Error("pieces are stackable by default")
	}
	if len(p.Orientations) != 2 {
		t.Errorf("pieces may turn on the floor by default, got %v", p.Orientations)
	}
}

func TestImportCSVFromReader_GeneratedID(t *testing.T) {
	data := "Length,Width,Height,Weight\n10,8,6,20\n12,8,6,20\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d (errors: %v)", len(result.Pieces), result.Errors)
	}
	if result.Pieces[0].ID != "item-1" || result.Pieces[1].ID != "item-2" {
		t.Errorf("expected item-1, item-2, got %s, %s", result.Pieces[0].ID, result.Pieces[1].ID)
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	data := "Crate,48,40,36,900,2\nDrum,24,24,34,450\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Pieces) != 3 {
		t.Fatalf("expected 3 pieces, got %d (errors: %v)", len(result.Pieces), result.Errors)
	}
	if result.Pieces[0].ID != "Crate-1" || result.Pieces[2].ID != "Drum" {
		t.Errorf("unexpected ids %s, %s", result.Pieces[0].ID, result.Pieces[2].ID)
	}
	if result.Pieces[2].Weight != 450 {
		t.Errorf("expected weight 450, got %f", result.Pieces[2].Weight)
	}
}

func TestImportCSVFromReader_UnrecognizedHeader(t *testing.T) {
	data := "Item name,Long,Wide,Tall,Mass kg\nCrate,48,40,36,900\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d (errors: %v)", len(result.Pieces), result.Errors)
	}
	if !hasMessage(result.Warnings, "Detected header row") {
		t.Errorf("expected header warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_RowErrors(t *testing.T) {
	tests := []struct {
		name string
		row  string
		msg  string
	}{
		{"invalid length", "a,abc,10,10,10,1", "Invalid length"},
		{"missing weight", "a,10,10,10,,1", "Missing weight"},
		{"negative width", "a,10,-10,10,10,1", "Width must be positive"},
		{"zero weight", "a,10,10,10,0,1", "Weight must be positive"},
		{"invalid quantity", "a,10,10,10,10,abc", "Invalid quantity"},
		{"zero quantity", "a,10,10,10,10,0", "Quantity must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "id,length,width,height,weight,quantity\n" + tt.row + "\n"
			result := ImportCSVFromReader(strings.NewReader(data), ',')

			if len(result.Pieces) != 0 {
				t.Errorf("expected no pieces, got %d", len(result.Pieces))
			}
			if !hasMessage(result.Errors, tt.msg) {
				t.Errorf("expected error containing %q, got %v", tt.msg, result.Errors)
			}
			if !hasMessage(result.Errors, "Line 2") {
				t.Errorf("error should name the line, got %v", result.Errors)
			}
		})
	}
}

func TestImportCSVFromReader_MixedValidAndInvalid(t *testing.T) {
	data := "id,length,width,height,weight\ngood,10,10,10,10\nbad,abc,10,10,10\nalso-good,5,5,5,5\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Pieces) != 2 {
		t.Errorf("expected 2 valid pieces, got %d", len(result.Pieces))
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %d", len(result.Errors))
	}
}

func TestImportCSVFromReader_EmptyRowsAndComments(t *testing.T) {
	data := "id,length,width,height,weight\n# staged at dock 4\na,10,10,10,10\n\n,,,,\nb,10,10,10,10\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Pieces) != 2 {
		t.Errorf("expected 2 pieces, got %d (errors: %v)", len(result.Pieces), result.Errors)
	}
}

func TestImportCSVFromReader_DuplicateIDs(t *testing.T) {
	data := "id,length,width,height,weight,qty\nbox,10,10,10,10,2\nbox-2,10,10,10,10,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Pieces) != 2 {
		t.Fatalf("expected duplicate to be dropped, got %d pieces", len(result.Pieces))
	}
	if !hasMessage(result.Warnings, "Duplicate id 'box-2'") {
		t.Errorf("expected duplicate warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_UnknownFlags(t *testing.T) {
	data := "id,length,width,height,weight,stackable,rotatable\na,10,10,10,10,maybe,sideways\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d (errors: %v)", len(result.Pieces), result.Errors)
	}
	if !result.Pieces[0].Stackable {
		t.Error("unknown stackable value should default to yes")
	}
	if !hasMessage(result.Warnings, "Unknown stackable value") || !hasMessage(result.Warnings, "Unknown rotatable value") {
		t.Errorf("expected warnings for both flags, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	data := "id,length,width\na,10,10\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if !hasMessage(result.Errors, "Required columns not found in header: Height, Weight") {
		t.Errorf("expected missing column error, got: %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(""), ',')

	if len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

func TestImportCSVFromReader_DecimalValues(t *testing.T) {
	data := "id,length,width,height,weight\na, 47.5 ,39.25,36,880.4\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d (errors: %v)", len(result.Pieces), result.Errors)
	}
	if result.Pieces[0].Length != 47.5 || result.Pieces[0].Weight != 880.4 {
		t.Errorf("unexpected values %+v", result.Pieces[0])
	}
}

// ─── CSV File Import Tests ──────────────────────────────────

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.csv")
	content := "id;length;width;height;weight\na;10;10;10;10\nb;20;10;10;10\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportCSV(path)

	if len(result.Pieces) != 2 {
		t.Errorf("expected 2 pieces, got %d (errors: %v)", len(result.Pieces), result.Errors)
	}
	if !hasMessage(result.Warnings, "semicolon") {
		t.Error("expected warning about semicolon delimiter detection")
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV("/nonexistent/path/manifest.csv")

	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportCSV(path)

	if !hasMessage(result.Errors, "File is empty") {
		t.Errorf("expected empty file error, got %v", result.Errors)
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"SKU", "Description", "Length", "Width", "Height", "Weight", "Qty"},
		{"A100", "Crate", 48, 40, 36, 900, 2},
		{"B200", "Drum", 24, 24, 34, 450.5, 1},
	})

	result := ImportExcel(path)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Pieces) != 3 {
		t.Fatalf("expected 3 pieces, got %d", len(result.Pieces))
	}
	if result.Pieces[1].ID != "A100-2" || result.Pieces[1].Label != "Crate" {
		t.Errorf("unexpected piece %+v", result.Pieces[1])
	}
	if result.Pieces[2].Weight != 450.5 {
		t.Errorf("expected weight 450.5, got %f", result.Pieces[2].Weight)
	}
}

func TestImportExcel_RowErrorsNameRows(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"id", "length", "width", "height", "weight"},
		{"a", "wide", 10, 10, 10},
	})

	result := ImportExcel(path)

	if !hasMessage(result.Errors, "Row 2: Invalid length") {
		t.Errorf("expected row error, got %v", result.Errors)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel("/nonexistent/manifest.xlsx")

	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportFile_PicksByExtension(t *testing.T) {
	xlsx := createTestExcel(t, [][]interface{}{
		{"id", "length", "width", "height", "weight"},
		{"a", 10, 10, 10, 10},
	})
	if got := ImportFile(xlsx); len(got.Pieces) != 1 {
		t.Errorf("xlsx: expected 1 piece, got %d (errors: %v)", len(got.Pieces), got.Errors)
	}

	csvPath := filepath.Join(t.TempDir(), "manifest.CSV")
	if err := os.WriteFile(csvPath, []byte("id,length,width,height,weight\na,1,1,1,1\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if got := ImportFile(csvPath); len(got.Pieces) != 1 {
		t.Errorf("csv: expected 1 piece, got %d (errors: %v)", len(got.Pieces), got.Errors)
	}
}

func hasMessage(msgs []string, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}
