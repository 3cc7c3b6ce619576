package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/cargoplan/internal/model"
)

type estimateFlags struct {
	container  string
	fillFactor float64
}

// NewEstimateCommand creates the "estimate" command.
func NewEstimateCommand() *cobra.Command {
	flags := &estimateFlags{}

	cmd := &cobra.Command{
		Use:   "estimate <manifest>",
		Short: "Estimate how many containers the cargo needs",
		Long: `Estimate the number of containers needed by volume, assuming only the
fill factor of each container can be used, and by gross weight.
No placement is run.

Examples:
  cargoplan estimate shipment.json
  cargoplan estimate cargo.csv --container dry-van-48 --fill-factor 75`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.container, "container", "c", "", "Container id or name from the catalog")
	cmd.Flags().Float64Var(&flags.fillFactor, "fill-factor", 0, "Usable share of container volume in percent (default from config)")
	return cmd
}

func runEstimate(cmd *cobra.Command, path string, flags *estimateFlags) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	load, err := loadCargo(path)
	if err != nil {
		return err
	}
	container, err := env.container(flags.container, load.manifest)
	if err != nil {
		return err
	}
	if err := container.Validate(); err != nil {
		return inputError("cannot estimate", err)
	}

	fill := flags.fillFactor
	if fill == 0 {
		fill = env.cfg.Defaults.FillFactor
	}
	est := model.EstimateContainers(load.pieces, container, fill)

	w := cmd.OutOrStdout()
	if IsJSONOutput() {
		out := struct {
			Container string `json:"container"`
			model.ContainerEstimate
		}{container.DisplayName(), est}
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "Container:        %s\n", container.DisplayName())
	fmt.Fprintf(w, "Cargo volume:     %.0f (%d invalid, %d oversize pieces skipped)\n",
		est.TotalVolume, est.InvalidPieceCount, est.OversizePieceCount)
	fmt.Fprintf(w, "Cargo weight:     %.0f\n", est.TotalWeight)
	fmt.Fprintf(w, "By volume:        %d (%.2f at %.0f%% fill)\n", est.ByVolume, est.ByVolumeExact, est.FillFactorPercent)
	fmt.Fprintf(w, "By weight:        %d\n", est.ByWeight)
	limit := "volume"
	if est.LimitedByWeight {
		limit = "weight"
	}
	fmt.Fprintf(w, "Recommended:      %d (limited by %s)\n", est.Recommended, limit)
	return nil
}
