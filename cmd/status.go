package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/civica-dev/civica/internal/credstore"
	"github.com/civica-dev/civica/internal/format"
)

// NewCmdStatus creates the status command.
func NewCmdStatus(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show server reachability and session state",
		Long: `Probe the configured server and report whether a credential is stored
and when it expires. Nothing here refreshes or invalidates the session.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, opts)
		},
	}

	addCommonFlags(cmd, opts)
	return cmd
}

func runStatus(cmd *cobra.Command, opts *Options) error {
	cleanup, err := setupRuntime(opts, false)
	if err != nil {
		return err
	}
	defer cleanup()

	e, err := buildEnv()
	if err != nil {
		return err
	}

	fmt.Printf("Server: %s\n", e.client.BaseURL())
	if version, err := e.client.Health(cmd.Context()); err != nil {
		fmt.Printf("  Reachable: %s (%s)\n", color.RedString("no"), err)
	} else if version != "" {
		fmt.Printf("  Reachable: %s (version %s)\n", color.GreenString("yes"), version)
	} else {
		fmt.Printf("  Reachable: %s\n", color.GreenString("yes"))
	}

	fmt.Println("Session:")
	if token := e.cfg.TokenFromEnv(); token != "" {
		fmt.Println("  Credential: from environment (CIVICA_TOKEN)")
		printTokenInfo(token)
		return nil
	}

	creds, err := e.creds.Load()
	if err != nil {
		return fmt.Errorf("failed to read stored credential: %w", err)
	}
	if creds == nil {
		fmt.Println("  Credential: none (run 'civica login')")
		return nil
	}

	fmt.Printf("  Credential: stored for %s\n", creds.Email)
	printTokenInfo(creds.AccessToken)
	return nil
}

// printTokenInfo surfaces display metadata from the token claims. The
// claims are not verified locally; only the service's acceptance counts.
func printTokenInfo(token string) {
	info, err := credstore.Inspect(token)
	if err != nil {
		fmt.Println("  Token: not inspectable")
		return
	}

	if info.Expired() {
		fmt.Printf("  Token: %s\n", color.RedString("expired"))
		return
	}
	if remaining := info.ExpiresIn(); remaining > 0 {
		fmt.Printf("  Token: valid, expires in %s\n", format.FormatAge(remaining))
	} else {
		fmt.Println("  Token: valid")
	}
}
