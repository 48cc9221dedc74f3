package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// NewCmdIssues creates the issues command.
func NewCmdIssues(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issues",
		Short: "List your reported issues (same as bare 'civica')",
		Long: `Fetch the issues you have reported, newest first as the service
returns them.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIssues(cmd, opts)
		},
	}

	addListFlags(cmd, opts)
	return cmd
}

// addListFlags adds the issue-feed flags to a command. Shared with the
// root command so `civica` and `civica issues` work identically.
func addListFlags(cmd *cobra.Command, opts *Options) {
	addCommonFlags(cmd, opts)
	addProfilingFlags(cmd, opts)
}

func runIssues(cmd *cobra.Command, opts *Options) error {
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

	if err := e.app.Issues.Load(cmd.Context()); err != nil {
		return err
	}

	return e.formatter(opts).Issues(e.app.Issues.State().Data, os.Stdout)
}
