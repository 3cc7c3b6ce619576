package engine

import (
	"sort"

	"github.com/piwi3910/cargoplan/internal/model"
)

// ComputeAxleLoads distributes the weight of each placed piece over the
// container's axle groups, treating the load floor as a rigid beam resting on
// them. A piece's weight acts at its longitudinal center and is split between
// the two axle groups either side of it by the lever rule, so the nearer axle
// carries more and a piece directly over an axle puts all its weight there.
//
// Pieces ahead of the first or behind the last axle group are assigned wholly
// to that outermost group instead of producing cantilever moments. This keeps
// every load non-negative but understates the outer axle and ignores the
// unloading of the opposite one; confirm with vehicle data before relying on
// it for cargo hanging well past an axle.
//
// Results follow the container's axle order.
func ComputeAxleLoads(placed []model.Placement, container model.ContainerSpec) []model.AxleLoad {
	loads := make([]model.AxleLoad, len(container.AxleGroups))
	for i, a := range container.AxleGroups {
		loads[i] = model.AxleLoad{
			Index:    i,
			Label:    a.Label,
			Position: a.Position,
			Capacity: a.Capacity,
		}
	}
	if len(loads) == 0 {
		return loads
	}

	order := make([]int, len(loads))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return loads[order[i]].Position < loads[order[j]].Position
	})

	for _, p := range placed {
		distributeLoad(loads, order, p.Position.X+p.Dimensions.Length/2, p.Weight)
	}

	for i := range loads {
		if loads[i].Capacity > 0 {
			loads[i].LoadPercentage = loads[i].Load / loads[i].Capacity * 100
		}
	}
	return loads
}

// distributeLoad adds weight acting at x to the bracketing axle groups.
// order lists load indices by ascending axle position.
func distributeLoad(loads []model.AxleLoad, order []int, x, weight float64) {
	first, last := order[0], order[len(order)-1]
	if x <= loads[first].Position {
		loads[first].Load += weight
		return
	}
	if x >= loads[last].Position {
		loads[last].Load += weight
		return
	}

	for k := 0; k+1 < len(order); k++ {
		a, b := order[k], order[k+1]
		pa, pb := loads[a].Position, loads[b].Position
		if x < pa || x > pb {
			continue
		}
		span := pb - pa
		if span <= 0 {
			loads[a].Load += weight
			return
		}
		loads[a].Load += weight * (pb - x) / span
		loads[b].Load += weight * (x - pa) / span
		return
	}
}
