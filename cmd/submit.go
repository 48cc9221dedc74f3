package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/civica-dev/civica/internal/civicapi"
	"github.com/civica-dev/civica/internal/model"
)

// NewCmdSubmit creates the submit command.
func NewCmdSubmit(opts *Options) *cobra.Command {
	var (
		draft model.IssueDraft
		photo string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Report a new civic issue",
		Long: `Report a new issue with a photo and coordinates. The photo must be a
real capture of the problem; edited or generated images are rejected by
the service.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSubmit(cmd, opts, draft, photo)
		},
	}

	cmd.Flags().StringVarP(&draft.Title, "title", "t", "", "Short title (required)")
	cmd.Flags().StringVarP(&draft.Description, "description", "d", "", "What is wrong and where")
	cmd.Flags().StringVarP(&draft.Category, "category", "c", "", "Problem category, e.g. pothole, garbage, streetlight (required)")
	cmd.Flags().StringVar(&draft.District, "district", "", "District (defaults to the configured district)")
	cmd.Flags().Float64Var(&draft.Location.Latitude, "lat", 0, "Latitude of the problem site (required)")
	cmd.Flags().Float64Var(&draft.Location.Longitude, "lng", 0, "Longitude of the problem site (required)")
	cmd.Flags().StringVarP(&photo, "photo", "p", "", "Path to the photo (required)")

	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	_ = cmd.MarkFlagRequired("photo")

	addCommonFlags(cmd, opts)
	return cmd
}

func runSubmit(cmd *cobra.Command, opts *Options, draft model.IssueDraft, photo string) error {
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

	if draft.District == "" {
		draft.District = e.cfg.District
	}
	if draft.District == "" {
		return fmt.Errorf("no district given and none configured; pass --district")
	}

	file, err := os.Open(photo)
	if err != nil {
		return fmt.Errorf("failed to open photo: %w", err)
	}
	defer func() { _ = file.Close() }()

	issue, err := e.app.Issues.Submit(cmd.Context(), draft, civicapi.Upload{
		Name:   filepath.Base(photo),
		Reader: file,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Issue #%d submitted.\n", issue.ID)
	return nil
}
