package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/cargoplan/internal/advisor"
	"github.com/piwi3910/cargoplan/internal/model"
)

// pieceColor represents an RGB fill for a placed piece.
type pieceColor struct {
	R, G, B int
}

var pieceColors = []pieceColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 8.0
	viewGap      = 14.0
)

// ExportPDF writes a load report: a plan page with top and side views of the
// cargo, followed by an analysis page with the axle table, exceptions,
// suggestions and alternative containers.
func ExportPDF(path string, report Report) error {
	c := report.Result.Container
	if c.Length <= 0 || c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("container %q has no usable dimensions", c.DisplayName())
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderPlanPage(pdf, report)

	pdf.AddPage()
	renderAnalysisPage(pdf, report)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func renderPlanPage(pdf *fpdf.Fpdf, report Report) {
	r := report.Result
	c := r.Container

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Load plan: %s (%.0f x %.0f x %.0f)", c.DisplayName(), c.Length, c.Width, c.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Placed: %d | Unplaced: %d | Volume: %.1f%% | Weight: %.0f (%.1f%%) | Stability: %.0f | Load meters: %.0f",
		report.placedCount(), report.unplacedCount(), r.UtilizationPercent, r.TotalWeight,
		r.WeightUtilizationPercent, r.StabilityScore, r.LoadMeters)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - viewGap - 10

	// Both views share the length scale so they line up.
	scale := math.Min(drawWidth/c.Length, drawHeight/(c.Width+c.Height))
	canvasW := c.Length * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2

	topY := drawAreaTop
	drawTopView(pdf, r, scale, offsetX, topY)

	sideY := topY + c.Width*scale + viewGap
	drawSideView(pdf, r, scale, offsetX, sideY)

	drawPiecesLegend(pdf, r.Placed, sideY+c.Height*scale+6)
}

// drawTopView renders the load from above: x to the right, y downward.
// Higher boxes are drawn last so they stay visible.
func drawTopView(pdf *fpdf.Fpdf, r model.OptimizationResult, scale, offsetX, offsetY float64) {
	c := r.Container
	drawViewFrame(pdf, "Top view", c.Length*scale, c.Width*scale, offsetX, offsetY)

	for _, i := range drawOrder(r.Placed, func(p model.Placement) float64 { return p.Position.Z }) {
		p := r.Placed[i]
		drawPiece(pdf, i, p.Label, offsetX+p.Position.X*scale, offsetY+p.Position.Y*scale,
			p.Dimensions.Length*scale, p.Dimensions.Width*scale)
	}

	// Axle markers
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.3)
	pdf.SetDashPattern([]float64{1.5, 1}, 0)
	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(200, 0, 0)
	for _, a := range r.AxleLoads {
		if a.Position < 0 || a.Position > c.Length {
			continue
		}
		x := offsetX + a.Position*scale
		pdf.Line(x, offsetY, x, offsetY+c.Width*scale)
		pdf.SetXY(x-10, offsetY+c.Width*scale)
		pdf.CellFormat(20, 3, fmt.Sprintf("%.0f%%", a.LoadPercentage), "", 0, "C", false, 0, "")
	}
	pdf.SetDashPattern([]float64{}, 0)

	drawCOGMarker(pdf, offsetX+r.CenterOfGravity.X*scale, offsetY+r.CenterOfGravity.Y*scale)
	pdf.SetTextColor(0, 0, 0)
}

// drawSideView renders the load from the left wall: x to the right, z upward.
func drawSideView(pdf *fpdf.Fpdf, r model.OptimizationResult, scale, offsetX, offsetY float64) {
	c := r.Container
	canvasH := c.Height * scale
	drawViewFrame(pdf, "Side view", c.Length*scale, canvasH, offsetX, offsetY)

	// Boxes nearer the viewer (small y) go on top.
	for _, i := range drawOrder(r.Placed, func(p model.Placement) float64 { return -p.Position.Y }) {
		p := r.Placed[i]
		top := offsetY + canvasH - (p.Position.Z+p.Dimensions.Height)*scale
		drawPiece(pdf, i, p.Label, offsetX+p.Position.X*scale, top,
			p.Dimensions.Length*scale, p.Dimensions.Height*scale)
	}

	drawCOGMarker(pdf, offsetX+r.CenterOfGravity.X*scale, offsetY+canvasH-r.CenterOfGravity.Z*scale)
}

func drawViewFrame(pdf *fpdf.Fpdf, title string, w, h, x, y float64) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(80, 80, 80)
	pdf.SetXY(x, y-5)
	pdf.CellFormat(40, 4, title, "", 0, "L", false, 0, "")

	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(x, y, w, h, "FD")
	pdf.SetTextColor(0, 0, 0)
}

func drawPiece(pdf *fpdf.Fpdf, i int, label string, x, y, w, h float64) {
	col := pieceColors[i%len(pieceColors)]
	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.2)
	pdf.Rect(x, y, w, h, "FD")

	if w < 6 || h < 4 || label == "" {
		return
	}
	pdf.SetFont("Helvetica", "", labelFontSize(w, h))
	pdf.SetTextColor(255, 255, 255)
	text := truncate(pdf, label, w-1)
	pdf.SetXY(x, y+h/2-1.5)
	pdf.CellFormat(w, 3, text, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func drawCOGMarker(pdf *fpdf.Fpdf, x, y float64) {
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.4)
	pdf.Circle(x, y, 1.5, "D")
	pdf.Line(x-2.5, y, x+2.5, y)
	pdf.Line(x, y-2.5, x, y+2.5)
}

// drawOrder returns placement indices sorted by key ascending, stable.
func drawOrder(placed []model.Placement, key func(model.Placement) float64) []int {
	idx := make([]int, len(placed))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return key(placed[idx[a]]) < key(placed[idx[b]])
	})
	return idx
}

// drawPiecesLegend renders a compact legend of placed pieces under the views.
func drawPiecesLegend(pdf *fpdf.Fpdf, placed []model.Placement, startY float64) {
	if len(placed) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Pieces:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 18
	maxX := pageWidth - marginRight

	for i, p := range placed {
		if startY > pageHeight-marginBottom {
			break
		}
		col := pieceColors[i%len(pieceColors)]
		name := p.Label
		if name == "" {
			name = p.PieceID
		}
		label := fmt.Sprintf("%s %s", name, p.Orientation)
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderAnalysisPage draws the axle table and the advisor output.
func renderAnalysisPage(pdf *fpdf.Fpdf, report Report) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Load Analysis", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	y = renderAxleTable(pdf, report.Result.AxleLoads, y)

	y = renderSection(pdf, "Exceptions", exceptionLines(report.Exceptions), y, true)
	y = renderSection(pdf, "Suggestions", report.Suggestions, y, false)
	y = renderSection(pdf, "Alternative containers", alternativeLines(report.Alternatives), y, false)
	y = renderSection(pdf, "Automatic fixes", autoFixLines(report.AutoFixes), y, false)
	renderSection(pdf, "Unplaced pieces", unplacedLines(report), y, true)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	footer := fmt.Sprintf("Generated by cargoplan on %s", report.timestamp().Format("2006-01-02 15:04"))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, footer, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func renderAxleTable(pdf *fpdf.Fpdf, axles []model.AxleLoad, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Axle loads", "", 0, "L", false, 0, "")
	y += 9

	if len(axles) == 0 {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(100, 5, "No axle groups defined", "", 0, "L", false, 0, "")
		return y + 9
	}

	colWidths := []float64{15, 60, 35, 40, 40, 35}
	headers := []string{"#", "Axle group", "Position", "Load", "Capacity", "Load %"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, a := range axles {
		row := []string{
			fmt.Sprintf("%d", a.Index+1),
			a.Label,
			fmt.Sprintf("%.0f", a.Position),
			fmt.Sprintf("%.0f", a.Load),
			fmt.Sprintf("%.0f", a.Capacity),
			fmt.Sprintf("%.1f%%", a.LoadPercentage),
		}
		switch {
		case a.LoadPercentage > 100:
			pdf.SetFillColor(255, 205, 210)
		case i%2 == 0:
			pdf.SetFillColor(245, 245, 245)
		default:
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = marginLeft
		for j, cell := range row {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}
	return y + 6
}

// renderSection prints a titled bullet list and returns the next free y.
func renderSection(pdf *fpdf.Fpdf, title string, lines []string, y float64, warn bool) float64 {
	if len(lines) == 0 || y > pageHeight-marginBottom-12 {
		return y
	}
	pdf.SetFont("Helvetica", "B", 11)
	if warn {
		pdf.SetTextColor(200, 0, 0)
	}
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(200, 7, title, "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	y += 8

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range lines {
		if y > pageHeight-marginBottom-6 {
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(200, 5, "...", "", 0, "L", false, 0, "")
			return y + 5
		}
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(pageWidth-marginLeft-marginRight-5, 5, "- "+line, "", 0, "L", false, 0, "")
		y += 5
	}
	return y + 4
}

func exceptionLines(exceptions []advisor.Exception) []string {
	lines := make([]string, 0, len(exceptions))
	for _, ex := range exceptions {
		lines = append(lines, fmt.Sprintf("[%s] %s", strings.ToUpper(ex.Severity().String()), ex.Message()))
	}
	return lines
}

func alternativeLines(alts []advisor.Alternative) []string {
	lines := make([]string, 0, len(alts))
	for _, a := range alts {
		lines = append(lines, fmt.Sprintf("%s: %s", a.Container.DisplayName(), a.Reason))
	}
	return lines
}

func unplacedLines(report Report) []string {
	lines := make([]string, 0, len(report.Result.Unplaced))
	for _, id := range report.Result.Unplaced {
		lines = append(lines, fmt.Sprintf("%s (%s)", id, report.rejectionReason(id)))
	}
	return lines
}

// labelFontSize returns a font size that fits the rectangle.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}

// truncate shortens s with an ellipsis until it fits in width.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
