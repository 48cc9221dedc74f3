package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civica-dev/civica/internal/model"
)

// NewCmdRegister creates the register command.
func NewCmdRegister(opts *Options) *cobra.Command {
	var reg model.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a citizen account and sign in",
		Long: `Create a citizen account and sign in with the same credentials in one
step. If the account is created but the sign-in step fails, the account
still exists; sign in manually with 'civica login'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRegister(cmd, opts, &reg)
		},
	}

	cmd.Flags().StringVar(&reg.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&reg.District, "district", "", "Home district")
	cmd.Flags().StringVar(&reg.Pincode, "pincode", "", "Postal code")
	addCommonFlags(cmd, opts)
	return cmd
}

func runRegister(cmd *cobra.Command, opts *Options, reg *model.Registration) error {
	cleanup, err := setupRuntime(opts, false)
	if err != nil {
		return err
	}
	defer cleanup()

	e, err := buildEnv()
	if err != nil {
		return err
	}

	if err := fillRegistration(reg); err != nil {
		return err
	}

	if err := e.app.Session.Register(cmd.Context(), *reg); err != nil {
		if hint := loginRetryHint(err); hint != "" {
			return fmt.Errorf("%w\n%s", err, hint)
		}
		return err
	}

	fmt.Printf("Account created. Signed in as %s.\n", e.identityLabel())
	return nil
}

// fillRegistration prompts for any field not supplied by flags.
func fillRegistration(reg *model.Registration) error {
	var err error
	if reg.FullName == "" {
		if reg.FullName, err = promptLine("Full name: "); err != nil {
			return err
		}
	}
	if reg.Email == "" {
		if reg.Email, err = promptLine("Email: "); err != nil {
			return err
		}
	}
	if reg.District == "" {
		if reg.District, err = promptLine("District: "); err != nil {
			return err
		}
	}
	if reg.Pincode == "" {
		if reg.Pincode, err = promptLine("Pincode: "); err != nil {
			return err
		}
	}
	if reg.Password, err = promptPassword("Password: "); err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if confirm != reg.Password {
		return fmt.Errorf("passwords do not match")
	}
	return nil
}
