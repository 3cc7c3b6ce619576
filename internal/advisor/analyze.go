package advisor

import (
	"github.com/piwi3910/cargoplan/internal/engine"
	"github.com/piwi3910/cargoplan/internal/model"
)

// criticalMargin is how many percentage points past the overload threshold an
// axle must be before the overload is critical.
const criticalMargin = 10.0

// Analyze checks a plan against the thresholds and returns the exceptions
// found, most severe first. An empty slice means the load is acceptable.
func Analyze(result model.OptimizationResult, container model.ContainerSpec, th model.Thresholds) []Exception {
	exceptions := make([]Exception, 0)

	totalLoad := 0.0
	for _, a := range result.AxleLoads {
		totalLoad += a.Load
	}
	canRedistribute := len(result.AxleLoads) > 1 && totalLoad <= container.TotalAxleCapacity()

	for _, a := range result.AxleLoads {
		switch {
		case a.LoadPercentage > th.OverloadPercent:
			exceptions = append(exceptions, OverloadedAxle{
				Axle:            a,
				Limit:           th.OverloadPercent,
				PieceIDs:        axleContributors(result.Placed, container, a.Index),
				Redistributable: canRedistribute,
				CriticalPct:     th.OverloadPercent + criticalMargin,
			})
		case a.LoadPercentage > th.NearLimitPercent:
			exceptions = append(exceptions, AxleNearLimit{
				Axle:     a,
				Limit:    th.NearLimitPercent,
				PieceIDs: axleContributors(result.Placed, container, a.Index),
			})
		}
	}

	if len(result.Unplaced) > 0 {
		exceptions = append(exceptions, UnplacedItems{
			PieceIDs: append([]string(nil), result.Unplaced...),
			ByReason: result.RejectionCounts(),
		})
	}

	if container.MaxGrossWeight > 0 {
		pct := result.TotalWeight / container.MaxGrossWeight * 100
		if pct > th.WeightWarningPercent {
			exceptions = append(exceptions, WeightNearLimit{
				TotalWeight: result.TotalWeight,
				MaxGross:    container.MaxGrossWeight,
				Percent:     pct,
				Limit:       th.WeightWarningPercent,
			})
		}
	}

	if result.StabilityScore < th.StabilityFloor {
		mid := container.Length / 2
		exceptions = append(exceptions, LowStability{
			Score:    result.StabilityScore,
			Floor:    th.StabilityFloor,
			COG:      result.CenterOfGravity.X,
			Midpoint: mid,
			PieceIDs: heavySide(result.Placed, result.CenterOfGravity.X, mid, func(p model.Point3D) float64 { return p.X }),
		})
	}

	if th.LateralStabilityFloor > 0 && result.LateralStabilityScore < th.LateralStabilityFloor {
		mid := container.Width / 2
		exceptions = append(exceptions, LowLateralStability{
			Score:    result.LateralStabilityScore,
			Floor:    th.LateralStabilityFloor,
			COG:      result.CenterOfGravity.Y,
			Midpoint: mid,
			PieceIDs: heavySide(result.Placed, result.CenterOfGravity.Y, mid, func(p model.Point3D) float64 { return p.Y }),
		})
	}

	if th.UtilizationFloor > 0 && len(result.Placed) > 0 && len(result.Unplaced) == 0 &&
		result.UtilizationPercent < th.UtilizationFloor {
		exceptions = append(exceptions, LowUtilization{
			Utilization:  result.UtilizationPercent,
			Floor:        th.UtilizationFloor,
			PlacedVolume: result.PlacedVolume(),
			TotalWeight:  result.TotalWeight,
		})
	}

	Rank(exceptions)
	return exceptions
}

// axleContributors lists pieces that put any weight on the given axle group.
func axleContributors(placed []model.Placement, container model.ContainerSpec, axle int) []string {
	var ids []string
	for _, p := range placed {
		share := engine.ComputeAxleLoads([]model.Placement{p}, container)
		if axle < len(share) && share[axle].Load > 0 {
			ids = append(ids, p.PieceID)
		}
	}
	return ids
}

// heavySide lists pieces whose centers lie on the same side of mid as the
// center of gravity.
func heavySide(placed []model.Placement, cog, mid float64, axis func(model.Point3D) float64) []string {
	var ids []string
	for _, p := range placed {
		c := axis(p.Center())
		if (cog < mid && c < mid) || (cog > mid && c > mid) {
			ids = append(ids, p.PieceID)
		}
	}
	return ids
}
