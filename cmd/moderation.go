package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// NewCmdModeration creates the moderation command.
func NewCmdModeration(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "moderation",
		Short: "List every reported issue (admin)",
		Long: `Fetch the service-wide issue queue. The service rejects this call for
accounts without the admin role.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runModeration(cmd, opts)
		},
	}

	addCommonFlags(cmd, opts)
	addProfilingFlags(cmd, opts)
	return cmd
}

func runModeration(cmd *cobra.Command, opts *Options) error {
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

	if err := e.app.Moderation.Load(cmd.Context()); err != nil {
		return err
	}

	return e.formatter(opts).Issues(e.app.Moderation.State().Data, os.Stdout)
}
