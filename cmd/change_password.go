package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civica-dev/civica/internal/model"
)

// NewCmdChangePassword creates the change-password command.
func NewCmdChangePassword(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Change your account password",
		Long: `Change the signed-in account's password. The current session stays
valid; other devices keep their tokens until they expire.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChangePassword(cmd, opts)
		},
	}

	addCommonFlags(cmd, opts)
	return cmd
}

func runChangePassword(cmd *cobra.Command, opts *Options) error {
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

	change, err := promptPasswordChange()
	if err != nil {
		return err
	}

	cred, err := e.app.Session.Credential()
	if err != nil {
		return err
	}
	if err := e.client.ChangePassword(cmd.Context(), cred.Token, change); err != nil {
		return err
	}

	fmt.Println("Password changed.")
	return nil
}

// promptPasswordChange collects the old and new passwords, confirming the
// new one before anything reaches the service.
func promptPasswordChange() (model.PasswordChange, error) {
	var change model.PasswordChange
	var err error

	if change.OldPassword, err = promptPassword("Current password: "); err != nil {
		return model.PasswordChange{}, err
	}
	if change.NewPassword, err = promptPassword("New password: "); err != nil {
		return model.PasswordChange{}, err
	}
	confirm, err := promptPassword("Confirm new password: ")
	if err != nil {
		return model.PasswordChange{}, err
	}
	if confirm != change.NewPassword {
		return model.PasswordChange{}, fmt.Errorf("passwords do not match")
	}
	if change.NewPassword == change.OldPassword {
		return model.PasswordChange{}, fmt.Errorf("new password matches the current one")
	}
	return change, nil
}
