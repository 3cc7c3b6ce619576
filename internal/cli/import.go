package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/cargoplan/internal/project"
)

type importFlags struct {
	output    string
	container string
	name      string
}

// NewImportCommand creates the "import" command.
func NewImportCommand() *cobra.Command {
	flags := &importFlags{}

	cmd := &cobra.Command{
		Use:   "import <sheet>",
		Short: "Convert a CSV or Excel cargo sheet into a JSON manifest",
		Long: `Convert a CSV or Excel cargo sheet into a JSON manifest that can be
edited and planned. Quantities are expanded into one item per piece.

Examples:
  cargoplan import cargo.csv -o shipment.json
  cargoplan import cargo.xlsx -o shipment.json --container reefer-53`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Manifest path (default: sheet name with .json)")
	cmd.Flags().StringVarP(&flags.container, "container", "c", "", "Container to record in the manifest")
	cmd.Flags().StringVar(&flags.name, "name", "", "Shipment name (default: sheet file name)")
	return cmd
}

func runImport(cmd *cobra.Command, path string, flags *importFlags) error {
	if !isSheet(path) {
		return NewCLIError(ExitInvalidInput, fmt.Sprintf("%s is not a CSV or Excel file", filepath.Base(path)))
	}
	load, err := loadCargo(path)
	if err != nil {
		return err
	}
	for _, w := range load.warnings {
		VerboseLog("%s", w)
	}

	name := flags.name
	if name == "" {
		name = load.manifest.Name
	}
	out := flags.output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
	}

	m := project.ManifestFromPieces(name, flags.container, load.pieces)
	if err := project.SaveManifest(out, m); err != nil {
		return WrapCLIError(ExitGeneralError, "failed to save manifest", err)
	}

	if IsJSONOutput() {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"manifest": out,
			"pieces":   len(load.pieces),
			"warnings": nonNilStrings(load.warnings),
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d pieces into %s\n", len(load.pieces), out)
	for _, w := range load.warnings {
		fmt.Fprintf(cmd.OutOrStdout(), "  warning: %s\n", w)
	}
	return nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
