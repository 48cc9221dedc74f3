package state

import (
	"context"

	"github.com/civica-dev/civica/internal/civicapi"
	"github.com/civica-dev/civica/internal/model"
)

// IssueAPI is the slice of the service client the issue containers drive.
type IssueAPI interface {
	MyIssues(ctx context.Context, token string) ([]model.Issue, error)
	Issue(ctx context.Context, token string, id int) (*model.Issue, error)
	SubmitIssue(ctx context.Context, token string, draft model.IssueDraft, photo civicapi.Upload) (*model.Issue, error)
	SubmitFeedback(ctx context.Context, token string, issueID int, draft model.FeedbackDraft) (*model.Feedback, error)
	VerifyIssue(ctx context.Context, token string, issueID int) (*model.Issue, error)
}

// IssueFeed holds the signed-in resident's own reports, newest first as the
// service returns them. Writes go through the service and then re-load the
// collection so observers only ever see server-authoritative ordering.
type IssueFeed struct {
	feed[[]model.Issue]
	api IssueAPI
}

// NewIssueFeed returns an empty feed gated on the given session.
func NewIssueFeed(api IssueAPI, session *Session) *IssueFeed {
	f := &IssueFeed{api: api}
	f.session = session
	return f
}

// Load fetches the resident's reports.
func (f *IssueFeed) Load(ctx context.Context) error {
	cred, fault := f.begin()
	if fault != nil {
		return fault
	}

	issues, err := f.api.MyIssues(ctx, cred.Token)
	return faultOrNil(f.finish(cred, issues, err))
}

// Submit reports a new issue with its photo. On acceptance the feed is
// re-loaded; the created report is returned for immediate display.
func (f *IssueFeed) Submit(ctx context.Context, draft model.IssueDraft, photo civicapi.Upload) (*model.Issue, error) {
	cred, fault := f.begin()
	if fault != nil {
		return nil, fault
	}

	issue, err := f.api.SubmitIssue(ctx, cred.Token, draft, photo)
	if fault := f.settle(cred, err); fault != nil {
		return nil, fault
	}
	if !f.session.Current(cred.Epoch) {
		return issue, nil
	}
	return issue, f.Load(ctx)
}

// Feedback rates a completed report and re-loads the feed so the stored
// rating shows up on the record.
func (f *IssueFeed) Feedback(ctx context.Context, issueID int, draft model.FeedbackDraft) (*model.Feedback, error) {
	cred, fault := f.begin()
	if fault != nil {
		return nil, fault
	}

	feedback, err := f.api.SubmitFeedback(ctx, cred.Token, issueID, draft)
	if fault := f.settle(cred, err); fault != nil {
		return nil, fault
	}
	if !f.session.Current(cred.Epoch) {
		return feedback, nil
	}
	return feedback, f.Load(ctx)
}

// Verify confirms a completed report was actually fixed and re-loads the
// feed to pick up the verified status.
func (f *IssueFeed) Verify(ctx context.Context, issueID int) (*model.Issue, error) {
	cred, fault := f.begin()
	if fault != nil {
		return nil, fault
	}

	issue, err := f.api.VerifyIssue(ctx, cred.Token, issueID)
	if fault := f.settle(cred, err); fault != nil {
		return nil, fault
	}
	if !f.session.Current(cred.Epoch) {
		return issue, nil
	}
	return issue, f.Load(ctx)
}

// IssueDetail holds one report looked up by id.
type IssueDetail struct {
	feed[*model.Issue]
	api IssueAPI
}

// NewIssueDetail returns an empty detail container gated on the session.
func NewIssueDetail(api IssueAPI, session *Session) *IssueDetail {
	d := &IssueDetail{api: api}
	d.session = session
	return d
}

// Load fetches one report. Loading a different id replaces the previous
// record entirely.
func (d *IssueDetail) Load(ctx context.Context, id int) error {
	cred, fault := d.begin()
	if fault != nil {
		return fault
	}

	issue, err := d.api.Issue(ctx, cred.Token, id)
	return faultOrNil(d.finish(cred, issue, err))
}
