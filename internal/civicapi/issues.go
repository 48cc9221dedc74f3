package civicapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/civica-dev/civica/internal/model"
)

// SubmitIssue reports a new civic issue with its photo attachment. The
// server runs duplicate and content checks before accepting; rejections come
// back as classified faults.
func (c *Client) SubmitIssue(ctx context.Context, token string, draft model.IssueDraft, photo Upload) (*model.Issue, error) {
	fields := map[string]string{
		"title":        draft.Title,
		"description":  draft.Description,
		"problem_type": draft.Category,
		"district":     draft.District,
		"latitude":     formatCoord(draft.Location.Latitude),
		"longitude":    formatCoord(draft.Location.Longitude),
	}

	var issue model.Issue
	if err := c.postMultipart(ctx, "/users/issues", token, "file", photo, fields, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// MyIssues lists the signed-in resident's reports, newest first.
func (c *Client) MyIssues(ctx context.Context, token string) ([]model.Issue, error) {
	var issues []model.Issue
	if err := c.do(ctx, http.MethodGet, "/users/issues", token, nil, nil, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// Issue fetches a single report by id. The service only serves reports the
// caller submitted.
func (c *Client) Issue(ctx context.Context, token string, id int) (*model.Issue, error) {
	var issue model.Issue
	path := fmt.Sprintf("/users/issues/%d", id)
	if err := c.do(ctx, http.MethodGet, path, token, nil, nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// SubmitFeedback rates a completed report. The server rejects feedback on
// reports that are not yet completed or verified.
func (c *Client) SubmitFeedback(ctx context.Context, token string, issueID int, draft model.FeedbackDraft) (*model.Feedback, error) {
	var feedback model.Feedback
	path := fmt.Sprintf("/users/issues/%d/feedback", issueID)
	if err := c.do(ctx, http.MethodPost, path, token, nil, draft, &feedback); err != nil {
		return nil, err
	}
	return &feedback, nil
}

// VerifyIssue confirms that a completed report was actually fixed, moving it
// to the verified state.
func (c *Client) VerifyIssue(ctx context.Context, token string, issueID int) (*model.Issue, error) {
	var issue model.Issue
	path := fmt.Sprintf("/users/issues/%d/verify", issueID)
	if err := c.do(ctx, http.MethodPost, path, token, nil, nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// formatCoord renders a coordinate with enough precision for street-level
// placement without trailing float noise.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
