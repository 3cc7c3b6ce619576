package advisor

import "slices"

// Auto-fix actions.
const (
	ActionRetryOptimization = "retry-optimization"
	ActionRebalanceLoad     = "rebalance-load"
)

// AutoFix is a corrective action the planner can attempt without user input.
type AutoFix struct {
	Action      string   `json:"action"`
	Description string   `json:"description"`
	Kinds       []Kind   `json:"kinds"`
	AffectedIDs []string `json:"affected_ids"`
}

// AutoFixes groups the auto-fixable exceptions into actions: pieces left out
// for lack of room call for another loading order, and unbalanced loads or
// redistributable axle overloads call for rebalancing. Actions come in that
// order and only when some exception needs them.
func AutoFixes(exceptions []Exception) []AutoFix {
	retry := AutoFix{Action: ActionRetryOptimization, Description: "Retry with the genetic loading order"}
	rebalance := AutoFix{Action: ActionRebalanceLoad, Description: "Rebalance the center of gravity and axle loads"}

	for _, ex := range exceptions {
		if !ex.AutoFixable() {
			continue
		}
		switch ex.(type) {
		case UnplacedItems:
			retry.add(ex)
		case OverloadedAxle, LowStability, LowLateralStability:
			rebalance.add(ex)
		}
	}

	var fixes []AutoFix
	for _, f := range []AutoFix{retry, rebalance} {
		if len(f.Kinds) > 0 {
			fixes = append(fixes, f)
		}
	}
	return fixes
}

func (f *AutoFix) add(ex Exception) {
	f.Kinds = append(f.Kinds, ex.Kind())
	if f.AffectedIDs == nil {
		f.AffectedIDs = []string{}
	}
	for _, id := range ex.AffectedIDs() {
		if !slices.Contains(f.AffectedIDs, id) {
			f.AffectedIDs = append(f.AffectedIDs, id)
		}
	}
}
