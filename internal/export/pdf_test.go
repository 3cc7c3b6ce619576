package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/cargoplan/internal/model"
)

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.pdf")

	if err := ExportPDF(path, buildTestReport(t)); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	// Two pages with drawings and tables
	if info.Size() < 1000 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_EmptyLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	report := Report{Result: model.OptimizationResult{Container: testContainer()}}
	if err := ExportPDF(path, report); err != nil {
		t.Fatalf("ExportPDF returned error for empty load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
}

func TestExportPDF_NoContainerDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pdf")

	if err := ExportPDF(path, Report{}); err == nil {
		t.Fatal("expected error for container without dimensions, got nil")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be written on error")
	}
}

func TestExportPDF_AxleOutsideContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steer.pdf")

	report := buildTestReport(t)
	// Steer axle ahead of the cargo box is skipped in the drawing.
	report.Result.AxleLoads = append(report.Result.AxleLoads, model.AxleLoad{Index: 2, Label: "Steer", Position: -20, Capacity: 400})
	if err := ExportPDF(path, report); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{100, 50, 8},
		{100, 30, 7},
		{10, 100, 6},
	}
	for _, tt := range tests {
		if got := labelFontSize(tt.w, tt.h); got != tt.want {
			t.Errorf("labelFontSize(%v, %v) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}
