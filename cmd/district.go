package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/civica-dev/civica/internal/log"
	"github.com/civica-dev/civica/internal/output"
)

// NewCmdDistrict creates the district command.
func NewCmdDistrict(opts *Options) *cobra.Command {
	var statewide bool

	cmd := &cobra.Command{
		Use:   "district",
		Short: "Show resolution counts for your district",
		Long: `Show how many reports have been resolved in your home district, with a
status and category breakdown. With --state, show the state-wide counts
instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDistrict(cmd, opts, statewide)
		},
	}

	cmd.Flags().BoolVar(&statewide, "state", false, "Show state-wide counts instead of your district")
	addCommonFlags(cmd, opts)
	return cmd
}

func runDistrict(cmd *cobra.Command, opts *Options, statewide bool) error {
	cleanup, err := setupRuntime(opts, false)
	if err != nil {
		return err
	}
	defer cleanup()

	e, err := buildEnv()
	if err != nil {
		return err
	}
	if err := e.signIn(cmd.Context()); err != nil {
		return err
	}

	cred, err := e.app.Session.Credential()
	if err != nil {
		return err
	}

	var view output.DistrictView
	if statewide {
		view.Summary, err = e.client.StateOverview(cmd.Context(), cred.Token)
		if err != nil {
			return err
		}
	} else {
		view.Summary, err = e.client.DistrictSummary(cmd.Context(), cred.Token)
		if err != nil {
			return err
		}
		// The breakdown is an extra; the headline still renders without it.
		if view.Detail, err = e.client.DistrictDetail(cmd.Context(), cred.Token); err != nil {
			log.Warn("district breakdown unavailable", "error", err)
		}
	}

	return e.formatter(opts).District(view, os.Stdout)
}
