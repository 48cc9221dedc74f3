package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCmdVerify creates the verify command.
func NewCmdVerify(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <id>",
		Short: "Confirm a completed issue was actually fixed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, opts, args[0])
		},
	}

	addCommonFlags(cmd, opts)
	return cmd
}

func runVerify(cmd *cobra.Command, opts *Options, arg string) error {
	cleanup, err := setupRuntime(opts, false)
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := parseIssueID(arg)
	if err != nil {
		return err
	}

	e, err := buildEnv()
	if err != nil {
		return err
	}
	if err := e.signIn(cmd.Context()); err != nil {
		return err
	}

	issue, err := e.app.Issues.Verify(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Printf("Issue #%d verified as %s.\n", issue.ID, issue.Status)
	return nil
}
