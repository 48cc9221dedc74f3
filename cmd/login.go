package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/civica-dev/civica/internal/faults"
)

// NewCmdLogin creates the login command.
func NewCmdLogin(opts *Options) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the civic issue service",
		Long: `Sign in with your email and password. On success the access token is
persisted so later commands run without signing in again.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, opts, email)
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (prompted when omitted)")
	addCommonFlags(cmd, opts)
	return cmd
}

func runLogin(cmd *cobra.Command, opts *Options, email string) error {
	cleanup, err := setupRuntime(opts, false)
	if err != nil {
		return err
	}
	defer cleanup()

	e, err := buildEnv()
	if err != nil {
		return err
	}

	if email == "" {
		email, err = promptLine("Email: ")
		if err != nil {
			return err
		}
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	if err := e.app.Session.Login(cmd.Context(), email, password); err != nil {
		return err
	}

	fmt.Printf("Signed in as %s.\n", e.identityLabel())
	return nil
}

// promptLine reads one line from stdin.
func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echoing when stdin is a
// terminal, falling back to a plain read when it is not (tests, pipes).
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(prompt)
	}

	fmt.Print(prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(secret), nil
}

// loginRetryHint converts the register saga's distinguishable failure into
// guidance: the account exists, so the fix is a manual sign-in, not a
// second registration.
func loginRetryHint(err error) string {
	if errors.Is(err, faults.ErrRegisteredLoginFailed) {
		return "Your account was created. Run 'civica login' to sign in."
	}
	return ""
}
