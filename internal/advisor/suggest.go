package advisor

import (
	"fmt"

	"github.com/piwi3910/cargoplan/internal/model"
)

// Suggest turns exceptions into actionable advice. Every exception variant
// produces at least one line; repeated lines are dropped, first one wins.
// Some combinations add a line of their own, and a clean load gets a single
// confirming line.
func Suggest(exceptions []Exception) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, ex := range exceptions {
		switch e := ex.(type) {
		case OverloadedAxle:
			if e.AutoFixable() {
				add(fmt.Sprintf("Shift %d heavy piece(s) off the %s toward the other axle groups", len(e.PieceIDs), axleName(e.Axle)))
			} else {
				add(fmt.Sprintf("Remove weight from the %s or switch to equipment with higher axle ratings", axleName(e.Axle)))
			}
		case AxleNearLimit:
			add(fmt.Sprintf("Avoid adding weight over the %s; it is at %.0f%% of its rating", axleName(e.Axle), e.Axle.LoadPercentage))
		case UnplacedItems:
			suggestUnplaced(e, add)
		case WeightNearLimit:
			add(fmt.Sprintf("Verify scale weights before dispatch; gross weight is at %.0f%% of the limit", e.Percent))
		case LowStability:
			opposite := "rear"
			if e.Direction() == "rear" {
				opposite = "front"
			}
			add(fmt.Sprintf("Redistribute weight toward the %s; the load is %s-heavy", opposite, e.Direction()))
		case LowLateralStability:
			add(fmt.Sprintf("Balance the load across the width; it leans %s", e.Direction()))
		case LowUtilization:
			add(fmt.Sprintf("Consider adding more items or using a smaller container; only %.0f%% of the volume is used", e.Utilization))
		}
	}

	var overloaded, axleTrouble, unplaced, unstable bool
	for _, ex := range exceptions {
		switch ex.(type) {
		case OverloadedAxle:
			overloaded, axleTrouble = true, true
		case AxleNearLimit:
			axleTrouble = true
		case UnplacedItems:
			unplaced = true
		case LowStability, LowLateralStability:
			unstable = true
		}
	}
	if overloaded && unplaced {
		add("Consider splitting the load across multiple containers")
	}
	if unstable && axleTrouble {
		add("Try the genetic ordering, which weighs balance when choosing the loading order")
	}
	if len(exceptions) == 0 {
		add("Load looks good; compare other containers or constraints to see if a better fit exists")
	}
	return out
}

func suggestUnplaced(e UnplacedItems, add func(string)) {
	if n := e.Count(model.RejectWeight); n > 0 {
		add(fmt.Sprintf("Split the shipment: %d item(s) exceed the remaining gross weight", n))
	}
	if n := e.Count(model.RejectNoSpace); n > 0 {
		add(fmt.Sprintf("Use a larger container or a second load for %d item(s) that did not fit", n))
	}
	if n := e.Count(model.RejectOversize); n > 0 {
		add(fmt.Sprintf("Allow more orientations or choose a bigger container for %d oversize item(s)", n))
	}
	if n := e.Count(model.RejectInvalid); n > 0 {
		add(fmt.Sprintf("Correct dimensions, weight or orientations of %d invalid item(s)", n))
	}
	if n := e.Count(model.RejectDuplicate); n > 0 {
		add(fmt.Sprintf("Give %d item(s) unique ids", n))
	}
	if len(e.ByReason) == 0 {
		add(fmt.Sprintf("Review %d unplaced item(s)", len(e.PieceIDs)))
	}
}
