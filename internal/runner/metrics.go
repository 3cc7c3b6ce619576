package runner

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for cargoplan_plans_total.
const (
	outcomeOK       = "ok"
	outcomeStale    = "stale"
	outcomeError    = "error"
	outcomeCanceled = "canceled"
)

// Metrics holds the runner's Prometheus collectors.
type Metrics struct {
	// Plans counts finished submissions by outcome
	Plans *prometheus.CounterVec
	// Duration records planning time in seconds
	Duration prometheus.Histogram
	// Pieces counts pieces by placed or unplaced
	Pieces *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Plans: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "cargoplan_plans_total", Help: "Load plans by outcome."},
			[]string{"outcome"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{Name: "cargoplan_plan_duration_seconds", Help: "Time to plan and analyze one load.", Buckets: prometheus.DefBuckets},
		),
		Pieces: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "cargoplan_pieces_total", Help: "Cargo pieces planned, by placement state."},
			[]string{"state"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Plans, m.Duration, m.Pieces)
	}
	return m
}
