package advisor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/piwi3910/cargoplan/internal/model"
)

// Alternative is a catalog container that addresses the current exceptions.
type Alternative struct {
	Container model.ContainerSpec `json:"container"`
	Reason    string              `json:"reason"`
	Capacity  float64             `json:"capacity"` // gross weight limit
}

// needs summarizes what a replacement container must offer.
type needs struct {
	weight bool
	axle   bool
	space  bool
	// smaller is set for a load that fits with room to spare; it is only
	// acted on when nothing calls for a bigger container.
	smaller *LowUtilization
}

func (n needs) bigger() bool { return n.weight || n.axle || n.space }

func needsFrom(exceptions []Exception) needs {
	var n needs
	for _, ex := range exceptions {
		switch e := ex.(type) {
		case OverloadedAxle, AxleNearLimit:
			n.axle = true
		case WeightNearLimit:
			n.weight = true
		case UnplacedItems:
			if e.Count(model.RejectWeight) > 0 {
				n.weight = true
			}
			if e.Count(model.RejectNoSpace)+e.Count(model.RejectOversize) > 0 {
				n.space = true
			}
		case LowUtilization:
			n.smaller = &e
		}
	}
	return n
}

// AlternativeContainers picks catalog containers that improve on current for
// every capacity problem in exceptions: a higher gross limit for weight
// problems, more axle rating for axle problems and more room (no dimension
// smaller) for pieces that did not fit. Without such problems, a poorly
// utilized load is offered smaller containers that still hold its volume
// and weight. Stability exceptions need no other container. Results are
// ordered by gross limit, then volume, smallest first.
func AlternativeContainers(current model.ContainerSpec, exceptions []Exception, catalog []model.ContainerSpec) []Alternative {
	n := needsFrom(exceptions)
	if !n.bigger() {
		if n.smaller != nil {
			return smallerContainers(current, *n.smaller, catalog)
		}
		return nil
	}

	var alts []Alternative
	for _, c := range catalog {
		if sameContainer(c, current) || c.Validate() != nil {
			continue
		}
		var reasons []string
		if n.weight {
			if c.MaxGrossWeight <= current.MaxGrossWeight {
				continue
			}
			reasons = append(reasons, fmt.Sprintf("higher gross weight limit (%.0f vs %.0f)", c.MaxGrossWeight, current.MaxGrossWeight))
		}
		if n.axle {
			if c.TotalAxleCapacity() <= current.TotalAxleCapacity() {
				continue
			}
			reasons = append(reasons, fmt.Sprintf("more axle capacity (%.0f vs %.0f)", c.TotalAxleCapacity(), current.TotalAxleCapacity()))
		}
		if n.space {
			if c.Volume() <= current.Volume() || c.Length < current.Length || c.Width < current.Width || c.Height < current.Height {
				continue
			}
			reasons = append(reasons, fmt.Sprintf("more cargo space (%.0f vs %.0f)", c.Volume(), current.Volume()))
		}
		alts = append(alts, Alternative{
			Container: c,
			Reason:    capitalize(strings.Join(reasons, ", ")),
			Capacity:  c.MaxGrossWeight,
		})
	}

	sortAlternatives(alts)
	return alts
}

// smallerContainers lists containers with less volume than current that can
// still take the placed volume and weight.
func smallerContainers(current model.ContainerSpec, low LowUtilization, catalog []model.ContainerSpec) []Alternative {
	var alts []Alternative
	for _, c := range catalog {
		if sameContainer(c, current) || c.Validate() != nil {
			continue
		}
		if c.Volume() >= current.Volume() || c.Volume() < low.PlacedVolume || c.MaxGrossWeight < low.TotalWeight {
			continue
		}
		alts = append(alts, Alternative{
			Container: c,
			Reason: fmt.Sprintf("Smaller container for better utilization (%.0f%% vs %.0f%%)",
				low.PlacedVolume/c.Volume()*100, low.Utilization),
			Capacity: c.MaxGrossWeight,
		})
	}
	sortAlternatives(alts)
	return alts
}

func sortAlternatives(alts []Alternative) {
	sort.SliceStable(alts, func(i, j int) bool {
		a, b := alts[i].Container, alts[j].Container
		if a.MaxGrossWeight != b.MaxGrossWeight {
			return a.MaxGrossWeight < b.MaxGrossWeight
		}
		return a.Volume() < b.Volume()
	})
}

func sameContainer(a, b model.ContainerSpec) bool {
	if a.ID != "" || b.ID != "" {
		return a.ID == b.ID
	}
	return a.Name == b.Name
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
