package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// NewCmdWhoami creates the whoami command.
func NewCmdWhoami(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWhoami(cmd, opts)
		},
	}

	addCommonFlags(cmd, opts)
	return cmd
}

func runWhoami(cmd *cobra.Command, opts *Options) error {
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

	return e.formatter(opts).Profile(e.app.Session.State().Identity, os.Stdout)
}
