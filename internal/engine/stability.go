package engine

import (
	"math"

	"github.com/piwi3910/cargoplan/internal/model"
)

// CenterOfGravity returns the weight-weighted mean of the placed box centers.
// An empty load reports the container's geometric center.
func CenterOfGravity(placed []model.Placement, container model.ContainerSpec) model.Point3D {
	var total float64
	var sum model.Point3D
	for _, p := range placed {
		c := p.Center()
		sum.X += c.X * p.Weight
		sum.Y += c.Y * p.Weight
		sum.Z += c.Z * p.Weight
		total += p.Weight
	}
	if total <= 0 {
		return model.Point3D{X: container.Length / 2, Y: container.Width / 2, Z: container.Height / 2}
	}
	return model.Point3D{X: sum.X / total, Y: sum.Y / total, Z: sum.Z / total}
}

// StabilityScore rates how close the center of gravity sits to the
// longitudinal midpoint: 100 dead center, 0 at either end wall.
func StabilityScore(cog model.Point3D, container model.ContainerSpec) float64 {
	return balanceScore(cog.X, container.Length)
}

// LateralStabilityScore is StabilityScore across the width.
func LateralStabilityScore(cog model.Point3D, container model.ContainerSpec) float64 {
	return balanceScore(cog.Y, container.Width)
}

func balanceScore(pos, extent float64) float64 {
	half := extent / 2
	if half <= 0 {
		return 0
	}
	score := (1 - math.Abs(pos-half)/half) * 100
	return math.Max(0, math.Min(100, score))
}
