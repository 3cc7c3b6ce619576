// Package advisor inspects a finished load plan and turns problems into
// ranked exceptions, human suggestions and alternative container picks.
package advisor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/piwi3910/cargoplan/internal/model"
)

// Severity ranks how urgently an exception needs attention.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "info"
	}
}

// MarshalText lets severities appear as words in JSON and YAML.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Kind names an exception variant.
type Kind string

const (
	KindOverloadedAxle      Kind = "overloaded_axle"
	KindAxleNearLimit       Kind = "axle_near_limit"
	KindWeightNearLimit     Kind = "weight_near_limit"
	KindUnplacedItems       Kind = "unplaced_items"
	KindLowStability        Kind = "low_stability"
	KindLowLateralStability Kind = "low_lateral_stability"
	KindLowUtilization      Kind = "low_utilization"
)

// kindRank orders kinds of equal severity.
var kindRank = map[Kind]int{
	KindOverloadedAxle:      0,
	KindAxleNearLimit:       1,
	KindWeightNearLimit:     2,
	KindUnplacedItems:       3,
	KindLowStability:        4,
	KindLowLateralStability: 5,
	KindLowUtilization:      6,
}

// Exception is one problem found in a plan. The set of implementations is
// closed: only the variants in this package satisfy it.
type Exception interface {
	Kind() Kind
	Severity() Severity
	Message() string
	AffectedIDs() []string
	AutoFixable() bool

	exception()
}

// OverloadedAxle is raised when an axle group carries more than its limit.
type OverloadedAxle struct {
	Axle            model.AxleLoad
	Limit           float64  // overload threshold in percent
	PieceIDs        []string // pieces bearing on this axle group
	Redistributable bool     // other axle groups have spare rating for the excess
	CriticalPct     float64  // above this the overload is critical
}

func (OverloadedAxle) Kind() Kind { return KindOverloadedAxle }

func (e OverloadedAxle) Severity() Severity {
	if e.Axle.LoadPercentage > e.CriticalPct {
		return SeverityCritical
	}
	return SeverityHigh
}

func (e OverloadedAxle) Message() string {
	return fmt.Sprintf("%s overloaded at %.1f%% (%.0f of %.0f)",
		axleName(e.Axle), e.Axle.LoadPercentage, e.Axle.Load, e.Axle.Capacity)
}

func (e OverloadedAxle) AffectedIDs() []string { return e.PieceIDs }
func (e OverloadedAxle) AutoFixable() bool     { return e.Redistributable }
func (OverloadedAxle) exception()              {}

// AxleNearLimit is raised when an axle group is close to, but within, its limit.
type AxleNearLimit struct {
	Axle     model.AxleLoad
	Limit    float64
	PieceIDs []string
}

func (AxleNearLimit) Kind() Kind              { return KindAxleNearLimit }
func (AxleNearLimit) Severity() Severity      { return SeverityMedium }
func (AxleNearLimit) AutoFixable() bool       { return false }
func (e AxleNearLimit) AffectedIDs() []string { return e.PieceIDs }
func (AxleNearLimit) exception()              {}

func (e AxleNearLimit) Message() string {
	return fmt.Sprintf("%s near limit at %.1f%% (%.0f of %.0f)",
		axleName(e.Axle), e.Axle.LoadPercentage, e.Axle.Load, e.Axle.Capacity)
}

// UnplacedItems reports pieces that did not make it into the load.
type UnplacedItems struct {
	PieceIDs []string
	ByReason map[model.RejectReason]int
}

func (UnplacedItems) Kind() Kind              { return KindUnplacedItems }
func (e UnplacedItems) AffectedIDs() []string { return e.PieceIDs }
func (UnplacedItems) exception()              {}

// AutoFixable is true when some pieces were turned away for lack of room,
// which another loading order may find.
func (e UnplacedItems) AutoFixable() bool { return e.Count(model.RejectNoSpace) > 0 }

// Severity is informational when every unplaced piece was bad input rather
// than a capacity problem.
func (e UnplacedItems) Severity() Severity {
	if e.Count(model.RejectInvalid)+e.Count(model.RejectDuplicate) == len(e.PieceIDs) {
		return SeverityInfo
	}
	return SeverityMedium
}

// Count returns the number of pieces rejected for reason.
func (e UnplacedItems) Count(reason model.RejectReason) int {
	return e.ByReason[reason]
}

func (e UnplacedItems) Message() string {
	reasons := make([]string, 0, len(e.ByReason))
	for r, n := range e.ByReason {
		reasons = append(reasons, fmt.Sprintf("%d %s", n, r))
	}
	sort.Strings(reasons)
	return fmt.Sprintf("%d item(s) could not be placed (%s)", len(e.PieceIDs), strings.Join(reasons, ", "))
}

// WeightNearLimit is raised when gross weight utilization passes the warning level.
type WeightNearLimit struct {
	TotalWeight float64
	MaxGross    float64
	Percent     float64
	Limit       float64
}

func (WeightNearLimit) Kind() Kind            { return KindWeightNearLimit }
func (WeightNearLimit) Severity() Severity    { return SeverityMedium }
func (WeightNearLimit) AffectedIDs() []string { return nil }
func (WeightNearLimit) AutoFixable() bool     { return false }
func (WeightNearLimit) exception()            {}

func (e WeightNearLimit) Message() string {
	return fmt.Sprintf("High weight utilization: %.1f%% (%.0f of %.0f)", e.Percent, e.TotalWeight, e.MaxGross)
}

// LowStability is raised when the center of gravity sits far from the
// longitudinal midpoint.
type LowStability struct {
	Score    float64
	Floor    float64
	COG      float64
	Midpoint float64
	PieceIDs []string // pieces on the heavy side of the midpoint
}

func (LowStability) Kind() Kind              { return KindLowStability }
func (LowStability) Severity() Severity      { return SeverityMedium }
func (LowStability) exception()              {}
func (e LowStability) AffectedIDs() []string { return e.PieceIDs }

// AutoFixable is true when there are pieces that could be moved back toward the middle.
func (e LowStability) AutoFixable() bool { return len(e.PieceIDs) > 0 }

// Direction is the end of the container the load leans toward.
func (e LowStability) Direction() string {
	if e.COG < e.Midpoint {
		return "front"
	}
	return "rear"
}

func (e LowStability) Message() string {
	return fmt.Sprintf("Low stability score: %.0f%% (center of gravity toward the %s)", e.Score, e.Direction())
}

// LowLateralStability is raised when the load leans to one side.
type LowLateralStability struct {
	Score    float64
	Floor    float64
	COG      float64
	Midpoint float64
	PieceIDs []string
}

func (LowLateralStability) Kind() Kind              { return KindLowLateralStability }
func (LowLateralStability) Severity() Severity      { return SeverityMedium }
func (LowLateralStability) exception()              {}
func (e LowLateralStability) AffectedIDs() []string { return e.PieceIDs }
func (e LowLateralStability) AutoFixable() bool     { return len(e.PieceIDs) > 0 }

// Direction is the side the load leans toward. Y grows to the right.
func (e LowLateralStability) Direction() string {
	if e.COG < e.Midpoint {
		return "left"
	}
	return "right"
}

func (e LowLateralStability) Message() string {
	return fmt.Sprintf("Low lateral stability score: %.0f%% (load leans %s)", e.Score, e.Direction())
}

// LowUtilization is raised when a load that fits completely leaves much of
// the container empty.
type LowUtilization struct {
	Utilization  float64 // placed volume as a percentage of container volume
	Floor        float64
	PlacedVolume float64
	TotalWeight  float64
}

func (LowUtilization) Kind() Kind            { return KindLowUtilization }
func (LowUtilization) Severity() Severity    { return SeverityInfo }
func (LowUtilization) AffectedIDs() []string { return nil }
func (LowUtilization) AutoFixable() bool     { return false }
func (LowUtilization) exception()            {}

func (e LowUtilization) Message() string {
	return fmt.Sprintf("Low volume utilization at %.1f%%", e.Utilization)
}

func axleName(a model.AxleLoad) string {
	if a.Label != "" {
		return a.Label
	}
	return fmt.Sprintf("Axle group %d", a.Index+1)
}

// Rank sorts exceptions by severity, then kind, then axle index.
func Rank(exceptions []Exception) {
	sort.SliceStable(exceptions, func(i, j int) bool {
		a, b := exceptions[i], exceptions[j]
		if a.Severity() != b.Severity() {
			return a.Severity() > b.Severity()
		}
		if a.Kind() != b.Kind() {
			return kindRank[a.Kind()] < kindRank[b.Kind()]
		}
		return axleIndex(a) < axleIndex(b)
	})
}

func axleIndex(e Exception) int {
	switch v := e.(type) {
	case OverloadedAxle:
		return v.Axle.Index
	case AxleNearLimit:
		return v.Axle.Index
	default:
		return 0
	}
}
