package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/cargoplan/internal/model"
	"github.com/piwi3910/cargoplan/internal/project"
)

// NewCatalogCommand creates the "catalog" command group.
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and share the container catalog",
		Long: `Inspect and share the container catalog. Without a catalog file the
built-in trailers and intermodal containers are used.`,
	}
	cmd.AddCommand(newCatalogListCommand())
	cmd.AddCommand(newCatalogExportCommand())
	cmd.AddCommand(newCatalogAddCommand())
	return cmd
}

func newCatalogListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog containers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			if IsJSONOutput() {
				return printJSON(cmd.OutOrStdout(), env.catalog)
			}
			return printCatalogText(cmd.OutOrStdout(), env.catalog)
		},
	}
}

func printCatalogText(w io.Writer, catalog []model.ContainerSpec) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tL x W x H\tMAX GROSS\tAXLES")
	for _, c := range catalog {
		fmt.Fprintf(tw, "%s\t%s\t%g x %g x %g\t%.0f\t%d\n",
			c.ID, c.Name, c.Length, c.Width, c.Height, c.MaxGrossWeight, len(c.AxleGroups))
	}
	return tw.Flush()
}

type catalogExportFlags struct {
	container string
}

func newCatalogExportCommand() *cobra.Command {
	flags := &catalogExportFlags{}

	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Write the catalog, or one container, to a YAML file",
		Long: `Write the whole catalog to a YAML file, or a single container when
--container is given. The file can be used as catalog.path in the config
or added to another catalog with "catalog add".

Examples:
  cargoplan catalog export containers.yaml
  cargoplan catalog export reefer.yaml --container reefer-53`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			if flags.container == "" {
				if err := project.SaveCatalog(args[0], env.catalog); err != nil {
					return WrapCLIError(ExitGeneralError, "failed to export catalog", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d containers to %s\n", len(env.catalog), args[0])
				return nil
			}
			c, ok := model.FindContainer(env.catalog, flags.container)
			if !ok {
				return NewCLIError(ExitInvalidInput, fmt.Sprintf("container %q is not in the catalog", flags.container))
			}
			if err := project.ExportContainer(args[0], c); err != nil {
				return WrapCLIError(ExitGeneralError, "failed to export container", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", c.DisplayName(), args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.container, "container", "c", "", "Export only this container")
	return cmd
}

func newCatalogAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <container.yaml>",
		Short: "Add an exported container to the catalog file",
		Long: `Add a container exported with "catalog export --container" to the
catalog file. An entry with the same id is replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			c, err := project.ImportContainer(args[0])
			if err != nil {
				return inputError("failed to import container", err)
			}

			catalog := append([]model.ContainerSpec(nil), env.catalog...)
			replaced := false
			for i := range catalog {
				if catalog[i].ID == c.ID {
					catalog[i] = c
					replaced = true
				}
			}
			if !replaced {
				catalog = append(catalog, c)
			}
			if err := project.SaveCatalog(env.catalogPath, catalog); err != nil {
				return WrapCLIError(ExitGeneralError, "failed to save catalog", err)
			}
			env.logger.Info("catalog updated", "container", c.ID, "replaced", replaced, "path", env.catalogPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", c.DisplayName(), env.catalogPath)
			return nil
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return WrapCLIError(ExitGeneralError, "failed to marshal output", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
