package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	sheetPlacements = "Placements"
	sheetAxles      = "Axles"
	sheetSummary    = "Summary"
)

// ExportXLSX writes the plan as a workbook with Placements, Axles and
// Summary sheets. Unplaced pieces are listed at the bottom of Placements.
func ExportXLSX(path string, report Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetPlacements); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{sheetAxles, sheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writePlacementsSheet(f, report, bold); err != nil {
		return err
	}
	if err := writeAxlesSheet(f, report, bold); err != nil {
		return err
	}
	if err := writeSummarySheet(f, report, bold); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writePlacementsSheet(f *excelize.File, report Report, headerStyle int) error {
	r := report.Result
	rows := [][]interface{}{{
		"Seq", "Piece ID", "Label", "Status", "Reason",
		"X", "Y", "Z", "Length", "Width", "Height", "Orientation", "Weight", "Stackable",
	}}
	for i, p := range r.Placed {
		rows = append(rows, []interface{}{
			i + 1, p.PieceID, p.Label, "placed", "",
			p.Position.X, p.Position.Y, p.Position.Z,
			p.Dimensions.Length, p.Dimensions.Width, p.Dimensions.Height,
			p.Orientation.String(), p.Weight, p.Stackable,
		})
	}
	for _, id := range r.Unplaced {
		rows = append(rows, []interface{}{"", id, "", "unplaced", string(report.rejectionReason(id))})
	}
	return writeRows(f, sheetPlacements, rows, headerStyle)
}

func writeAxlesSheet(f *excelize.File, report Report, headerStyle int) error {
	rows := [][]interface{}{{"#", "Axle group", "Position", "Load", "Capacity", "Load %"}}
	for _, a := range report.Result.AxleLoads {
		rows = append(rows, []interface{}{a.Index + 1, a.Label, a.Position, a.Load, a.Capacity, a.LoadPercentage})
	}
	return writeRows(f, sheetAxles, rows, headerStyle)
}

func writeSummarySheet(f *excelize.File, report Report, headerStyle int) error {
	r := report.Result
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Container", r.Container.DisplayName()},
		{"Placed", report.placedCount()},
		{"Unplaced", report.unplacedCount()},
		{"Volume utilization %", r.UtilizationPercent},
		{"Total weight", r.TotalWeight},
		{"Weight utilization %", r.WeightUtilizationPercent},
		{"Load meters", r.LoadMeters},
		{"COG X", r.CenterOfGravity.X},
		{"COG Y", r.CenterOfGravity.Y},
		{"COG Z", r.CenterOfGravity.Z},
		{"Stability score", r.StabilityScore},
		{"Lateral stability score", r.LateralStabilityScore},
	}
	for _, line := range exceptionLines(report.Exceptions) {
		rows = append(rows, []interface{}{"Exception", line})
	}
	for _, s := range report.Suggestions {
		rows = append(rows, []interface{}{"Suggestion", s})
	}
	for _, line := range alternativeLines(report.Alternatives) {
		rows = append(rows, []interface{}{"Alternative", line})
	}
	return writeRows(f, sheetSummary, rows, headerStyle)
}

// writeRows fills sheet from A1 and bolds the first row.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to create cell reference: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return fmt.Errorf("failed to create cell reference: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return nil
}
