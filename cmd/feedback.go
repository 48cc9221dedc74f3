package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civica-dev/civica/internal/model"
)

// NewCmdFeedback creates the feedback command.
func NewCmdFeedback(opts *Options) *cobra.Command {
	var draft model.FeedbackDraft

	cmd := &cobra.Command{
		Use:   "feedback <id>",
		Short: "Rate a completed issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeedback(cmd, opts, args[0], draft)
		},
	}

	cmd.Flags().IntVarP(&draft.Rating, "rating", "r", 0, "Rating from 1 to 5 (required)")
	cmd.Flags().StringVarP(&draft.Comment, "comment", "c", "", "Feedback comment")
	_ = cmd.MarkFlagRequired("rating")

	addCommonFlags(cmd, opts)
	return cmd
}

func runFeedback(cmd *cobra.Command, opts *Options, arg string, draft model.FeedbackDraft) error {
	cleanup, err := setupRuntime(opts, false)
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := parseIssueID(arg)
	if err != nil {
		return err
	}
	if draft.Rating < 1 || draft.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", draft.Rating)
	}

	e, err := buildEnv()
	if err != nil {
		return err
	}
	if err := e.signIn(cmd.Context()); err != nil {
		return err
	}

	if _, err := e.app.Issues.Feedback(cmd.Context(), id, draft); err != nil {
		return err
	}

	fmt.Printf("Feedback recorded for issue #%d.\n", id)
	return nil
}
