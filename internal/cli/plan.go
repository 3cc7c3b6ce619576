package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/piwi3910/cargoplan/internal/advisor"
	"github.com/piwi3910/cargoplan/internal/export"
	"github.com/piwi3910/cargoplan/internal/runner"
)

type planFlags struct {
	container string
	algorithm string
	format    string
	output    string
	pdf       string
	xlsx      string
	dxf       string
	labels    string
	failOn    string
	keepOrder bool
}

// NewPlanCommand creates the "plan" command.
func NewPlanCommand() *cobra.Command {
	flags := &planFlags{}

	cmd := &cobra.Command{
		Use:   "plan <manifest>",
		Short: "Plan a load and report axle loads, stability and exceptions",
		Long: `Plan a load from a JSON manifest or a CSV/Excel cargo sheet.

The report goes to stdout as text, JSON or CSV. Additional documents
(PDF report, Excel workbook, DXF wireframe, QR label sheet) are written
when their paths are given.

Examples:
  cargoplan plan shipment.json
  cargoplan plan cargo.csv --container reefer-53 --pdf load.pdf
  cargoplan plan shipment.json --format csv -o placements.csv
  cargoplan plan shipment.json --fail-on high
  cargoplan plan stops.json --keep-order`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.container, "container", "c", "", "Container id or name from the catalog")
	cmd.Flags().StringVar(&flags.algorithm, "algorithm", "", "Placement ordering: greedy or genetic")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "Report format: text, json, csv")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&flags.pdf, "pdf", "", "Write a PDF load report")
	cmd.Flags().StringVar(&flags.xlsx, "xlsx", "", "Write an Excel workbook")
	cmd.Flags().StringVar(&flags.dxf, "dxf", "", "Write a DXF wireframe of the load")
	cmd.Flags().StringVar(&flags.labels, "labels", "", "Write a PDF sheet of QR load labels")
	cmd.Flags().BoolVar(&flags.keepOrder, "keep-order", false, "Load pieces in manifest order instead of optimizing the order")
	cmd.Flags().StringVar(&flags.failOn, "fail-on", "", "Exit with an error when an exception reaches this severity: medium, high, critical")

	return cmd
}

func runPlan(cmd *cobra.Command, path string, flags *planFlags) error {
	format := strings.ToLower(flags.format)
	if IsJSONOutput() {
		format = "json"
	}
	switch format {
	case "text", "json", "csv":
	default:
		return NewCLIError(ExitInvalidInput, fmt.Sprintf("invalid format %q: valid values are text, json, csv", flags.format))
	}
	failOn, err := parseSeverity(flags.failOn)
	if err != nil {
		return err
	}

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
	container, err := env.container(flags.container, load.manifest)
	if err != nil {
		return err
	}
	opt, err := env.optimizer(flags.algorithm, load.manifest)
	if err != nil {
		return err
	}
	VerboseLog("Planning %d pieces into %s with %s ordering", len(load.pieces), container.DisplayName(), opt.Settings.Algorithm)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	req := runner.Request{
		Pieces:     load.pieces,
		Container:  container,
		Thresholds: env.cfg.ThresholdSet(),
		Catalog:    env.catalog,
	}
	if flags.keepOrder {
		req.Order = make([]int, len(load.pieces))
		for i := range req.Order {
			req.Order[i] = i
		}
	}
	r := runner.New(opt, runner.NewMetrics(prometheus.NewRegistry()), env.logger)
	outcome := <-r.Submit(ctx, req)
	if outcome.Err != nil {
		return inputError("planning failed", outcome.Err)
	}
	report := outcome.Report

	if err := writeReport(cmd.OutOrStdout(), flags.output, format, report); err != nil {
		return WrapCLIError(ExitGeneralError, "failed to write report", err)
	}
	if err := writeDocuments(flags, report); err != nil {
		return WrapCLIError(ExitGeneralError, "failed to export", err)
	}

	if failOn != nil {
		for _, ex := range report.Exceptions {
			if ex.Severity() >= *failOn {
				return NewCLIError(ExitGeneralError, fmt.Sprintf("load has %s exception: %s", ex.Severity(), ex.Message()))
			}
		}
	}
	return nil
}

func writeReport(stdout io.Writer, output, format string, report export.Report) (err error) {
	w := stdout
	if output != "" {
		f, cerr := os.Create(output)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}
	switch format {
	case "json":
		return export.WriteJSON(w, report)
	case "csv":
		return export.WriteCSV(w, report)
	default:
		return export.WriteText(w, report)
	}
}

func writeDocuments(flags *planFlags, report export.Report) error {
	if flags.pdf != "" {
		if err := export.ExportPDF(flags.pdf, report); err != nil {
			return err
		}
		VerboseLog("Wrote PDF report to %s", flags.pdf)
	}
	if flags.xlsx != "" {
		if err := export.ExportXLSX(flags.xlsx, report); err != nil {
			return err
		}
		VerboseLog("Wrote workbook to %s", flags.xlsx)
	}
	if flags.dxf != "" {
		if err := export.ExportDXF(flags.dxf, report.Result); err != nil {
			return err
		}
		VerboseLog("Wrote DXF to %s", flags.dxf)
	}
	if flags.labels != "" && len(report.Result.Placed) > 0 {
		if err := export.ExportLabels(flags.labels, report.Result); err != nil {
			return err
		}
		VerboseLog("Wrote labels to %s", flags.labels)
	}
	return nil
}

// parseSeverity returns nil for an empty value.
func parseSeverity(s string) (*advisor.Severity, error) {
	var sev advisor.Severity
	switch strings.ToLower(s) {
	case "":
		return nil, nil
	case "info":
		sev = advisor.SeverityInfo
	case "medium":
		sev = advisor.SeverityMedium
	case "high":
		sev = advisor.SeverityHigh
	case "critical":
		sev = advisor.SeverityCritical
	default:
		return nil, NewCLIError(ExitInvalidInput, fmt.Sprintf("invalid severity %q: valid values are info, medium, high, critical", s))
	}
	return &sev, nil
}
