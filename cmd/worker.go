package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// NewCmdWorker creates the worker command group.
func NewCmdWorker(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Worker account commands",
	}

	cmd.AddCommand(NewCmdWorkerStats(opts))
	return cmd
}

// NewCmdWorkerStats creates the worker stats subcommand.
func NewCmdWorkerStats(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show your completion counts and citizen ratings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkerStats(cmd, opts)
		},
	}

	addCommonFlags(cmd, opts)
	return cmd
}

func runWorkerStats(cmd *cobra.Command, opts *Options) error {
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
	stats, err := e.client.WorkerStats(cmd.Context(), cred.Token)
	if err != nil {
		return err
	}

	return e.formatter(opts).WorkerStats(stats, os.Stdout)
}
