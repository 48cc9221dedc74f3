package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/civica-dev/civica/internal/civicapi"
	"github.com/civica-dev/civica/internal/model"
)

// NewCmdComplete creates the complete command.
func NewCmdComplete(opts *Options) *cobra.Command {
	var (
		proof model.CompletionProof
		photo string
	)

	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete an assigned task with proof",
		Long: `Mark an assigned task complete. The proof photo and your coordinates
must place you at the problem site.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplete(cmd, opts, args[0], proof, photo)
		},
	}

	cmd.Flags().Float64Var(&proof.Location.Latitude, "lat", 0, "Your latitude at the site (required)")
	cmd.Flags().Float64Var(&proof.Location.Longitude, "lng", 0, "Your longitude at the site (required)")
	cmd.Flags().StringVarP(&photo, "photo", "p", "", "Path to the proof photo (required)")

	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	_ = cmd.MarkFlagRequired("photo")

	addCommonFlags(cmd, opts)
	return cmd
}

func runComplete(cmd *cobra.Command, opts *Options, arg string, proof model.CompletionProof, photo string) error {
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

	file, err := os.Open(photo)
	if err != nil {
		return fmt.Errorf("failed to open proof photo: %w", err)
	}
	defer func() { _ = file.Close() }()

	issue, err := e.app.Tasks.Complete(cmd.Context(), id, proof, civicapi.Upload{
		Name:   filepath.Base(photo),
		Reader: file,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Task #%d completed; awaiting citizen verification (status %s).\n", issue.ID, issue.Status)
	return nil
}
