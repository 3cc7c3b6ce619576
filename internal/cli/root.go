// Package cli implements the cargoplan commands. Each subcommand lives in its
// own file; this file holds the root command, global flags and error output.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Global flags, bound to persistent flags on the root command.
var (
	jsonOutput bool
	verbose    bool
	configPath string
)

// Build information, injected from main.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates the root command with every subcommand registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cargoplan",
		Short: "3D cargo load planner with axle and stability checks",
		Long: `cargoplan places cargo pieces into a trailer or container, computes axle
loads, center of gravity and stability, and reports exceptions with
suggestions and alternative containers.

Cargo comes from a JSON manifest (comments allowed) or a CSV/Excel sheet.
Containers come from the catalog, see "cargoplan catalog list".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.cargoplan/config.yaml)")

	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewCompareCommand())
	rootCmd.AddCommand(NewEstimateCommand())
	rootCmd.AddCommand(NewImportCommand())
	rootCmd.AddCommand(NewCatalogCommand())

	return rootCmd
}

// Execute runs the root command and exits with the code its error carries.
func Execute(rootCmd *cobra.Command) {
	os.Exit(int(Run(rootCmd)))
}

// Run executes the root command and returns the exit code instead of exiting.
func Run(rootCmd *cobra.Command) ExitCode {
	err := rootCmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		printError(rootCmd.ErrOrStderr(), cliErr.Message, cliErr.Err)
		return cliErr.Code
	}
	// Flag and argument errors from cobra itself.
	printError(rootCmd.ErrOrStderr(), err.Error(), nil)
	return ExitInvalidInput
}

// printError writes the error as JSON or text. Stdout is left for command output.
func printError(w io.Writer, message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}
	if underlying != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}

// VerboseLog prints to stderr when --verbose is set.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput reports whether --json is set.
func IsJSONOutput() bool {
	return jsonOutput
}
