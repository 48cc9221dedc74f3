package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewCmdIssue creates the single-issue detail command.
func NewCmdIssue(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue <id>",
		Short: "Show one reported issue in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIssue(cmd, opts, args[0])
		},
	}

	addCommonFlags(cmd, opts)
	return cmd
}

// parseIssueID converts a positional argument, with or without a leading
// '#', into an issue id.
func parseIssueID(arg string) (int, error) {
	if len(arg) > 0 && arg[0] == '#' {
		arg = arg[1:]
	}
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid issue id: %s", arg)
	}
	return id, nil
}

func runIssue(cmd *cobra.Command, opts *Options, arg string) error {
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

	if err := e.app.Detail.Load(cmd.Context(), id); err != nil {
		return err
	}

	return e.formatter(opts).Issue(e.app.Detail.State().Data, os.Stdout)
}
