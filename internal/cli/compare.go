package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/cargoplan/internal/engine"
)

type compareFlags struct {
	algorithm string
	scenarios bool
	container string
}

// NewCompareCommand creates the "compare" command.
func NewCompareCommand() *cobra.Command {
	flags := &compareFlags{}

	cmd := &cobra.Command{
		Use:   "compare <manifest>",
		Short: "Plan the cargo against every catalog container and rank them",
		Long: `Plan the same cargo against each container in the catalog and rank
the results: fewest unplaced pieces first, then least axle overload,
then highest volume utilization.

With --scenarios the container stays fixed and the cargo is planned
under alternative settings instead: the current settings, the other
ordering algorithm and a relaxed 80% support requirement.

Examples:
  cargoplan compare shipment.json
  cargoplan compare cargo.xlsx --json
  cargoplan compare shipment.json --scenarios --container dry-van-53`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.algorithm, "algorithm", "", "Placement ordering: greedy or genetic")
	cmd.Flags().BoolVar(&flags.scenarios, "scenarios", false, "Compare alternative settings on one container instead of containers")
	cmd.Flags().StringVarP(&flags.container, "container", "c", "", "Container id or name for --scenarios")
	return cmd
}

func runCompare(cmd *cobra.Command, path string, flags *compareFlags) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	load, err := loadCargo(path)
	if err != nil {
		return err
	}
	for _, w := range load.warnings {
		env.logger.Warn("cargo input", "file", path, "warning", w)
	}
	opt, err := env.optimizer(flags.algorithm, load.manifest)
	if err != nil {
		return err
	}

	if flags.scenarios {
		container, err := env.container(flags.container, load.manifest)
		if err != nil {
			return err
		}
		results, err := engine.CompareScenarios(engine.BuildDefaultScenarios(opt.Settings), load.pieces, container)
		if err != nil {
			return inputError("comparison failed", err)
		}
		ranked := engine.RankComparisons(results)
		env.logger.Debug("scenarios compared", "scenarios", len(ranked), "container", container.DisplayName())
		if IsJSONOutput() {
			return printCompareJSON(cmd.OutOrStdout(), ranked)
		}
		return printScenarioText(cmd.OutOrStdout(), container.DisplayName(), ranked)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results, err := engine.CompareContainers(ctx, opt, load.pieces, env.catalog)
	if err != nil {
		return inputError("comparison failed", err)
	}
	ranked := engine.RankComparisons(results)
	env.logger.Debug("containers compared", "containers", len(ranked), "pieces", len(load.pieces))

	if IsJSONOutput() {
		return printCompareJSON(cmd.OutOrStdout(), ranked)
	}
	return printCompareText(cmd.OutOrStdout(), ranked)
}

type compareJSON struct {
	Rank          int     `json:"rank"`
	Scenario      string  `json:"scenario"`
	ContainerID   string  `json:"container_id"`
	ContainerName string  `json:"container_name"`
	Placed        int     `json:"placed"`
	Unplaced      int     `json:"unplaced"`
	Utilization   float64 `json:"utilization_percent"`
	TotalWeight   float64 `json:"total_weight"`
	MaxAxlePct    float64 `json:"max_axle_percent"`
	Stability     float64 `json:"stability_score"`
}

func compareRows(ranked []engine.ComparisonResult) []compareJSON {
	rows := make([]compareJSON, 0, len(ranked))
	for i, r := range ranked {
		rows = append(rows, compareJSON{
			Rank:          i + 1,
			Scenario:      r.Scenario.Name,
			ContainerID:   r.Container.ID,
			ContainerName: r.Container.DisplayName(),
			Placed:        r.PlacedCount,
			Unplaced:      r.UnplacedCount,
			Utilization:   r.Utilization,
			TotalWeight:   r.Result.TotalWeight,
			MaxAxlePct:    r.MaxAxlePct,
			Stability:     r.Result.StabilityScore,
		})
	}
	return rows
}

func printCompareJSON(w io.Writer, ranked []engine.ComparisonResult) error {
	return printJSON(w, compareRows(ranked))
}

func printCompareText(w io.Writer, ranked []engine.ComparisonResult) error {
	if len(ranked) == 0 {
		fmt.Fprintln(w, "No valid containers in the catalog.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCONTAINER\tPLACED\tUNPLACED\tVOLUME\tWEIGHT\tMAX AXLE\tSTABILITY")
	for _, r := range compareRows(ranked) {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.1f%%\t%.0f\t%.1f%%\t%.0f%%\n",
			r.Rank, r.ContainerName, r.Placed, r.Unplaced, r.Utilization, r.TotalWeight, r.MaxAxlePct, r.Stability)
	}
	return tw.Flush()
}

func printScenarioText(w io.Writer, container string, ranked []engine.ComparisonResult) error {
	fmt.Fprintf(w, "Container: %s\n\n", container)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCENARIO\tPLACED\tUNPLACED\tVOLUME\tWEIGHT\tMAX AXLE\tSTABILITY")
	for _, r := range compareRows(ranked) {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.1f%%\t%.0f\t%.1f%%\t%.0f%%\n",
			r.Rank, r.Scenario, r.Placed, r.Unplaced, r.Utilization, r.TotalWeight, r.MaxAxlePct, r.Stability)
	}
	return tw.Flush()
}
