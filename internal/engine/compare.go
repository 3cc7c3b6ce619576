package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/cargoplan/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.PackSettings
}

// ComparisonResult holds one plan and the statistics used to rank it.
type ComparisonResult struct {
	Scenario      ComparisonScenario
	Container     model.ContainerSpec
	Result        model.OptimizationResult
	PlacedCount   int
	UnplacedCount int
	Utilization   float64
	MaxAxlePct    float64
}

func newComparisonResult(scenario ComparisonScenario, container model.ContainerSpec, result model.OptimizationResult) ComparisonResult {
	return ComparisonResult{
		Scenario:      scenario,
		Container:     container,
		Result:        result,
		PlacedCount:   len(result.Placed),
		UnplacedCount: len(result.Unplaced),
		Utilization:   result.UtilizationPercent,
		MaxAxlePct:    result.MaxAxlePercentage(),
	}
}

// CompareScenarios plans the same cargo and container under each scenario's
// settings, returning results in scenario order.
func CompareScenarios(scenarios []ComparisonScenario, pieces []model.CargoPiece, container model.ContainerSpec) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(scenarios))
	for _, scenario := range scenarios {
		result, err := New(scenario.Settings).Plan(pieces, container)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
		results = append(results, newComparisonResult(scenario, container, result))
	}
	return results, nil
}

// BuildDefaultScenarios varies the current settings to show what-if alternatives.
func BuildDefaultScenarios(base model.PackSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{{Name: "Current Settings", Settings: base}}

	alt := base
	if base.Algorithm == model.AlgorithmGenetic {
		alt.Algorithm = model.AlgorithmGreedy
		scenarios = append(scenarios, ComparisonScenario{Name: "Greedy Ordering", Settings: alt})
	} else {
		alt.Algorithm = model.AlgorithmGenetic
		scenarios = append(scenarios, ComparisonScenario{Name: "Genetic Ordering", Settings: alt})
	}

	// Relaxed support lets pieces overhang their supports a little.
	if base.SupportFraction == 0 || base.SupportFraction > 0.8 {
		relaxed := base
		relaxed.SupportFraction = 0.8
		scenarios = append(scenarios, ComparisonScenario{Name: "80% Support", Settings: relaxed})
	}
	return scenarios
}

// CompareContainers plans the cargo against every valid container in the
// catalog concurrently. Results keep catalog order; invalid containers are
// skipped.
func CompareContainers(ctx context.Context, opt *Optimizer, pieces []model.CargoPiece, catalog []model.ContainerSpec) ([]ComparisonResult, error) {
	scenario := ComparisonScenario{Name: "Current Settings", Settings: opt.Settings}
	slots := make([]*ComparisonResult, len(catalog))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, container := range catalog {
		if container.Validate() != nil {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := opt.Plan(pieces, container)
			if err != nil {
				return fmt.Errorf("container %q: %w", container.DisplayName(), err)
			}
			r := newComparisonResult(scenario, container, result)
			slots[i] = &r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]ComparisonResult, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results, nil
}

// RankComparisons orders results best first: fewest unplaced pieces, then
// least axle overload, then highest volume utilization.
func RankComparisons(results []ComparisonResult) []ComparisonResult {
	ranked := append([]ComparisonResult(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.UnplacedCount != b.UnplacedCount {
			return a.UnplacedCount < b.UnplacedCount
		}
		ao, bo := overload(a.MaxAxlePct), overload(b.MaxAxlePct)
		if ao != bo {
			return ao < bo
		}
		return a.Utilization > b.Utilization
	})
	return ranked
}

func overload(pct float64) float64 {
	if pct > 100 {
		return pct - 100
	}
	return 0
}
