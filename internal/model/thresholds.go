package model

// Thresholds configure when the advisor raises an exception.
type Thresholds struct {
	OverloadPercent       float64 `json:"overload_percent"`        // axle load above this is overloaded
	NearLimitPercent      float64 `json:"near_limit_percent"`      // axle load above this is near the limit
	WeightWarningPercent  float64 `json:"weight_warning_percent"`  // gross weight utilization warning
	StabilityFloor        float64 `json:"stability_floor"`         // longitudinal score below this is unstable
	LateralStabilityFloor float64 `json:"lateral_stability_floor"` // 0 disables the lateral check
	UtilizationFloor      float64 `json:"utilization_floor"`       // volume use below this on a complete load; 0 disables
}

// DefaultThresholds returns the standard advisory thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		OverloadPercent:       100,
		NearLimitPercent:      80,
		WeightWarningPercent:  90,
		StabilityFloor:        70,
		LateralStabilityFloor: 0,
		UtilizationFloor:      60,
	}
}
