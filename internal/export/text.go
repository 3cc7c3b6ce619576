package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/piwi3910/cargoplan/internal/advisor"
)

// WriteText writes a plain-text load report suitable for a terminal or an
// email body.
func WriteText(w io.Writer, report Report) error {
	r := report.Result
	c := r.Container

	b := &strings.Builder{}
	fmt.Fprintf(b, "Load plan for %s (%.0f x %.0f x %.0f, max gross %.0f)\n",
		c.DisplayName(), c.Length, c.Width, c.Height, c.MaxGrossWeight)
	fmt.Fprintf(b, "Generated %s\n\n", report.timestamp().Format("2006-01-02 15:04:05"))

	fmt.Fprintf(b, "Placed:           %d\n", report.placedCount())
	fmt.Fprintf(b, "Unplaced:         %d\n", report.unplacedCount())
	fmt.Fprintf(b, "Volume used:      %.1f%%\n", r.UtilizationPercent)
	fmt.Fprintf(b, "Total weight:     %.0f (%.1f%%)\n", r.TotalWeight, r.WeightUtilizationPercent)
	fmt.Fprintf(b, "Load meters:      %.0f\n", r.LoadMeters)
	fmt.Fprintf(b, "Center of grav.:  (%.1f, %.1f, %.1f)\n", r.CenterOfGravity.X, r.CenterOfGravity.Y, r.CenterOfGravity.Z)
	fmt.Fprintf(b, "Stability:        %.0f (lateral %.0f)\n", r.StabilityScore, r.LateralStabilityScore)

	if len(r.Placed) > 0 {
		b.WriteString("\nPlacements\n")
		tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tID\tLabel\tPosition\tSize\tTurn\tWeight")
		for i, p := range r.Placed {
			fmt.Fprintf(tw, "%d\t%s\t%s\t(%.0f, %.0f, %.0f)\t%.0f x %.0f x %.0f\t%s\t%.0f\n",
				i+1, p.PieceID, p.Label, p.Position.X, p.Position.Y, p.Position.Z,
				p.Dimensions.Length, p.Dimensions.Width, p.Dimensions.Height, p.Orientation, p.Weight)
		}
		tw.Flush()
	}

	if len(r.AxleLoads) > 0 {
		b.WriteString("\nAxle loads\n")
		tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Axle\tPosition\tLoad\tCapacity\tPercent")
		for _, a := range r.AxleLoads {
			fmt.Fprintf(tw, "%s\t%.0f\t%.0f\t%.0f\t%.1f%%\n", a.Label, a.Position, a.Load, a.Capacity, a.LoadPercentage)
		}
		tw.Flush()
	}

	if lines := unplacedLines(report); len(lines) > 0 {
		writeList(b, "Unplaced", lines)
	}
	writeList(b, "Exceptions", exceptionLines(report.Exceptions))
	writeList(b, "Suggestions", report.Suggestions)
	writeList(b, "Alternative containers", alternativeLines(report.Alternatives))
	writeList(b, "Automatic fixes", autoFixLines(report.AutoFixes))

	if len(report.Exceptions) == 0 {
		b.WriteString("\nNo exceptions: load is within limits.\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func writeList(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", title)
	for _, l := range lines {
		fmt.Fprintf(b, "  - %s\n", l)
	}
}

func autoFixLines(fixes []advisor.AutoFix) []string {
	lines := make([]string, 0, len(fixes))
	for _, f := range fixes {
		line := fmt.Sprintf("%s: %s", f.Action, f.Description)
		if len(f.AffectedIDs) > 0 {
			line += " (" + strings.Join(f.AffectedIDs, ", ") + ")"
		}
		lines = append(lines, line)
	}
	return lines
}
