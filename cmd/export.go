package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/civica-dev/civica/internal/model"
)

// NewCmdExport creates the export command.
func NewCmdExport(opts *Options) *cobra.Command {
	var (
		report string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export one analytics report as CSV (admin)",
		Long: `Render one report server-side as CSV under the same window flags the
dashboard takes. The file lands next to you, named by the service unless
--out says otherwise.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts, report, out)
		},
	}

	cmd.Flags().StringVarP(&report, "report", "r", string(model.ExportIssues),
		fmt.Sprintf("Report to export (%s)", exportReportNames()))
	cmd.Flags().StringVar(&out, "out", "", "Output path (default: service-chosen filename, - for stdout)")
	cmd.Flags().StringVarP(&opts.District, "district", "d", "", "Scope the report to one district (default: configured district)")
	cmd.Flags().StringVar(&opts.From, "from", "", "Window start: a date (2025-06-01) or a duration in the past (30d)")
	cmd.Flags().StringVar(&opts.To, "to", "", "Window end: same forms as --from (default: today)")
	addCommonFlags(cmd, opts)
	return cmd
}

func runExport(cmd *cobra.Command, opts *Options, report, out string) error {
	cleanup, err := setupRuntime(opts, false)
	if err != nil {
		return err
	}
	defer cleanup()

	kind, err := parseExportReport(report)
	if err != nil {
		return err
	}

	e, err := buildEnv()
	if err != nil {
		return err
	}

	window, err := buildWindow(opts, e)
	if err != nil {
		return err
	}

	if err := e.signIn(cmd.Context()); err != nil {
		return err
	}
	if err := e.app.Dashboard.SetWindow(window); err != nil {
		return err
	}

	export, err := e.app.Dashboard.Export(cmd.Context(), kind)
	if err != nil {
		return err
	}

	if out == "-" {
		fmt.Print(export.Content)
		return nil
	}

	path := out
	if path == "" {
		path = export.Filename
	}
	if err := os.WriteFile(path, []byte(export.Content), 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	fmt.Printf("Wrote %s (%s to %s).\n", path, export.Period.StartDate, export.Period.EndDate)
	return nil
}

// parseExportReport validates the --report value against the reports the
// service can produce.
func parseExportReport(s string) (model.ExportReport, error) {
	for _, report := range model.AllExportReports {
		if s == string(report) {
			return report, nil
		}
	}
	return "", fmt.Errorf("unknown report %q (use %s)", s, exportReportNames())
}

func exportReportNames() string {
	names := ""
	for i, report := range model.AllExportReports {
		if i > 0 {
			names += ", "
		}
		names += string(report)
	}
	return names
}
