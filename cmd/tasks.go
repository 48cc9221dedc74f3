package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// NewCmdTasks creates the tasks command.
func NewCmdTasks(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the tasks assigned to you",
		Long:  `Fetch the issues currently assigned to your worker account.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTasks(cmd, opts)
		},
	}

	addCommonFlags(cmd, opts)
	addProfilingFlags(cmd, opts)
	return cmd
}

func runTasks(cmd *cobra.Command, opts *Options) error {
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

	if err := e.app.Tasks.Load(cmd.Context()); err != nil {
		return err
	}

	return e.formatter(opts).Issues(e.app.Tasks.State().Data, os.Stdout)
}
