package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var csvHeader = []string{
	"seq", "piece_id", "label", "status", "reason",
	"x", "y", "z", "length", "width", "height", "orientation", "weight", "stackable",
}

// WriteCSV writes one record per placed piece in loading order, then one
// record per unplaced piece with its reject reason, then a SUMMARY record.
// The summary carries the container in piece_id/label, the counts and volume
// utilization in status/reason and the total weight in weight.
func WriteCSV(w io.Writer, report Report) error {
	r := report.Result
	cw := csv.NewWriter(w)

	records := [][]string{csvHeader}
	for i, p := range r.Placed {
		records = append(records, []string{
			strconv.Itoa(i + 1), p.PieceID, p.Label, "placed", "",
			num(p.Position.X), num(p.Position.Y), num(p.Position.Z),
			num(p.Dimensions.Length), num(p.Dimensions.Width), num(p.Dimensions.Height),
			p.Orientation.String(), num(p.Weight), strconv.FormatBool(p.Stackable),
		})
	}
	for _, id := range r.Unplaced {
		records = append(records, []string{
			"", id, "", "unplaced", string(report.rejectionReason(id)),
			"", "", "", "", "", "", "", "", "",
		})
	}
	records = append(records, []string{
		"SUMMARY", r.Container.ID, r.Container.DisplayName(),
		fmt.Sprintf("%d placed, %.1f%% volume", report.placedCount(), r.UtilizationPercent),
		fmt.Sprintf("%d unplaced", report.unplacedCount()),
		"", "", "", "", "", "", "",
		num(r.TotalWeight), "",
	})

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
