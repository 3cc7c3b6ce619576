// Package export writes finished load plans to text, CSV, JSON, XLSX, PDF,
// DXF and label sheets.
package export

import (
	"time"

	"github.com/piwi3910/cargoplan/internal/advisor"
	"github.com/piwi3910/cargoplan/internal/model"
)

// Report bundles a plan with the advice derived from it. All writers in this
// package take a Report so they render the same facts.
type Report struct {
	Result       model.OptimizationResult
	Exceptions   []advisor.Exception
	Suggestions  []string
	Alternatives []advisor.Alternative
	AutoFixes    []advisor.AutoFix
	GeneratedAt  time.Time
}

// BuildReport runs the advisor over result and stamps the report with the
// current time.
func BuildReport(result model.OptimizationResult, th model.Thresholds, catalog []model.ContainerSpec) Report {
	exceptions := advisor.Analyze(result, result.Container, th)
	return Report{
		Result:       result,
		Exceptions:   exceptions,
		Suggestions:  advisor.Suggest(exceptions),
		Alternatives: advisor.AlternativeContainers(result.Container, exceptions, catalog),
		AutoFixes:    advisor.AutoFixes(exceptions),
		GeneratedAt:  time.Now(),
	}
}

// placedCount and unplacedCount keep summary lines consistent across writers.
func (r Report) placedCount() int   { return len(r.Result.Placed) }
func (r Report) unplacedCount() int { return len(r.Result.Unplaced) }

// rejectionReason returns why id was not placed, or "" when it was.
func (r Report) rejectionReason(id string) model.RejectReason {
	for _, rej := range r.Result.Rejections {
		if rej.PieceID == id {
			return rej.Reason
		}
	}
	return ""
}

func (r Report) timestamp() time.Time {
	if r.GeneratedAt.IsZero() {
		return time.Now()
	}
	return r.GeneratedAt
}
