package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCmdLogout creates the logout command.
func NewCmdLogout(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and erase the stored credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogout(opts)
		},
	}

	addCommonFlags(cmd, opts)
	return cmd
}

func runLogout(opts *Options) error {
	cleanup, err := setupRuntime(opts, false)
	if err != nil {
		return err
	}
	defer cleanup()

	e, err := buildEnv()
	if err != nil {
		return err
	}

	// Logout clears in-memory state and the persisted credential whether
	// or not the token was still valid; no server round trip is needed.
	e.app.Session.Logout()
	fmt.Println("Signed out.")
	return nil
}
