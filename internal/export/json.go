package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/piwi3910/cargoplan/internal/advisor"
	"github.com/piwi3910/cargoplan/internal/model"
)

// ExceptionRecord is the serialized form of an advisor exception.
type ExceptionRecord struct {
	Kind        advisor.Kind     `json:"kind"`
	Severity    advisor.Severity `json:"severity"`
	Message     string           `json:"message"`
	AffectedIDs []string         `json:"affected_ids"`
	AutoFixable bool             `json:"auto_fixable"`
}

// ExceptionRecords flattens exceptions for serialization, keeping their order.
func ExceptionRecords(exceptions []advisor.Exception) []ExceptionRecord {
	out := make([]ExceptionRecord, 0, len(exceptions))
	for _, ex := range exceptions {
		ids := ex.AffectedIDs()
		if ids == nil {
			ids = []string{}
		}
		out = append(out, ExceptionRecord{
			Kind:        ex.Kind(),
			Severity:    ex.Severity(),
			Message:     ex.Message(),
			AffectedIDs: ids,
			AutoFixable: ex.AutoFixable(),
		})
	}
	return out
}

// Document is the JSON layout written by WriteJSON.
type Document struct {
	Metadata     Metadata              `json:"metadata"`
	Optimization Optimization          `json:"optimization"`
	Cargo        Cargo                 `json:"cargo"`
	Exceptions   []ExceptionRecord     `json:"exceptions"`
	Suggestions  []string              `json:"suggestions"`
	Alternatives []advisor.Alternative `json:"alternatives"`
	AutoFixes    []advisor.AutoFix     `json:"auto_fixes"`
}

type Metadata struct {
	Generator   string              `json:"generator"`
	GeneratedAt time.Time           `json:"generated_at"`
	Container   model.ContainerSpec `json:"container"`
}

type Optimization struct {
	PlacedCount              int              `json:"placed_count"`
	UnplacedCount            int              `json:"unplaced_count"`
	UtilizationPercent       float64          `json:"utilization_percent"`
	TotalWeight              float64          `json:"total_weight"`
	WeightUtilizationPercent float64          `json:"weight_utilization_percent"`
	CenterOfGravity          model.Point3D    `json:"center_of_gravity"`
	StabilityScore           float64          `json:"stability_score"`
	LateralStabilityScore    float64          `json:"lateral_stability_score"`
	LoadMeters               float64          `json:"load_meters"`
	AxleLoads                []model.AxleLoad `json:"axle_loads"`
}

type Cargo struct {
	Placed     []model.Placement `json:"placed"`
	Unplaced   []string          `json:"unplaced"`
	Rejections []model.Rejection `json:"rejections"`
}

// NewDocument lays a report out for JSON output. Slices are never nil so
// consumers always see arrays.
func NewDocument(report Report) Document {
	r := report.Result
	doc := Document{
		Metadata: Metadata{
			Generator:   "cargoplan",
			GeneratedAt: report.timestamp().UTC(),
			Container:   r.Container,
		},
		Optimization: Optimization{
			PlacedCount:              report.placedCount(),
			UnplacedCount:            report.unplacedCount(),
			UtilizationPercent:       r.UtilizationPercent,
			TotalWeight:              r.TotalWeight,
			WeightUtilizationPercent: r.WeightUtilizationPercent,
			CenterOfGravity:          r.CenterOfGravity,
			StabilityScore:           r.StabilityScore,
			LateralStabilityScore:    r.LateralStabilityScore,
			LoadMeters:               r.LoadMeters,
			AxleLoads:                nonNil(r.AxleLoads),
		},
		Cargo: Cargo{
			Placed:     nonNil(r.Placed),
			Unplaced:   nonNil(r.Unplaced),
			Rejections: nonNil(r.Rejections),
		},
		Exceptions:   ExceptionRecords(report.Exceptions),
		Suggestions:  nonNil(report.Suggestions),
		Alternatives: nonNil(report.Alternatives),
		AutoFixes:    nonNil(report.AutoFixes),
	}
	return doc
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(report)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
