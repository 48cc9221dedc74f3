package state

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/civica-dev/civica/internal/civicapi"
	"github.com/civica-dev/civica/internal/faults"
	"github.com/civica-dev/civica/internal/model"
)

// fakeIssues implements IssueAPI. When started/release are set, MyIssues
// signals entry and blocks until released, for in-flight logout tests.
type fakeIssues struct {
	mu          sync.Mutex
	issues      []model.Issue
	issuesErr   error
	detail      *model.Issue
	detailErr   error
	created     *model.Issue
	submitErr   error
	feedback    *model.Feedback
	feedbackErr error
	verified    *model.Issue
	verifyErr   error
	listCalls   int

	started chan struct{}
	release chan struct{}
}

func (f *fakeIssues) MyIssues(ctx context.Context, token string) ([]model.Issue, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.issues, f.issuesErr
}

func (f *fakeIssues) Issue(ctx context.Context, token string, id int) (*model.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detail, f.detailErr
}

func (f *fakeIssues) SubmitIssue(ctx context.Context, token string, draft model.IssueDraft, photo civicapi.Upload) (*model.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created, f.submitErr
}

func (f *fakeIssues) SubmitFeedback(ctx context.Context, token string, issueID int, draft model.FeedbackDraft) (*model.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.feedback, f.feedbackErr
}

func (f *fakeIssues) VerifyIssue(ctx context.Context, token string, issueID int) (*model.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verified, f.verifyErr
}

func (f *fakeIssues) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func TestIssueFeedLoadLifecycle(t *testing.T) {
	api := &fakeIssues{issues: []model.Issue{{ID: 1, Title: "Pothole on Mall Road"}}}
	feed := NewIssueFeed(api, signedIn(t))

	var states []Resource[[]model.Issue]
	feed.Subscribe(func() { states = append(states, feed.State()) })

	if err := feed.Load(context.Background()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(states) != 2 {
		t.Fatalf("published %d states, want 2", len(states))
	}
	if !states[0].Loading || states[0].Err != nil {
		t.Errorf("first publish = %+v, want loading with no error", states[0])
	}
	if states[1].Loading || states[1].Err != nil {
		t.Errorf("second publish = %+v, want settled with no error", states[1])
	}
	if len(states[1].Data) != 1 || states[1].Data[0].Title != "Pothole on Mall Road" {
		t.Errorf("loaded data = %+v", states[1].Data)
	}
}

func TestIssueFeedNewLoadClearsPreviousError(t *testing.T) {
	api := &fakeIssues{issuesErr: errors.New("boom")}
	feed := NewIssueFeed(api, signedIn(t))

	if err := feed.Load(context.Background()); err == nil {
		t.Fatal("Load() expected error")
	}
	if feed.State().Err == nil {
		t.Fatal("failure not recorded")
	}

	api.mu.Lock()
	api.issuesErr = nil
	api.issues = []model.Issue{{ID: 2, Title: "Streetlight out"}}
	api.mu.Unlock()

	var first Resource[[]model.Issue]
	captured := false
	unsubscribe := feed.Subscribe(func() {
		if !captured {
			first = feed.State()
			captured = true
		}
	})
	defer unsubscribe()

	if err := feed.Load(context.Background()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !captured {
		t.Fatal("no publish observed")
	}
	if first.Err != nil {
		t.Error("previous error survived into the new operation")
	}
	if !first.Loading {
		t.Error("first publish of a new operation is not loading")
	}
}

func TestIssueFeedFailsFastWhenSignedOut(t *testing.T) {
	api := &fakeIssues{issues: []model.Issue{{ID: 1}}}
	session := NewSession(&fakeAuth{}, &memStore{})
	feed := NewIssueFeed(api, session)

	err := feed.Load(context.Background())
	if err == nil {
		t.Fatal("Load() expected error without a session")
	}

	var fault *faults.Fault
	if !errors.As(err, &fault) || fault.Category != faults.AuthenticationRequired {
		t.Errorf("error = %v, want an authentication fault", err)
	}
	if api.calls() != 0 {
		t.Error("transport called without a credential")
	}
	if st := feed.State(); st.Loading || st.Err == nil {
		t.Errorf("state = %+v, want settled with the fault recorded", st)
	}
}

func TestIssueFeedAuthRejectionSignsOut(t *testing.T) {
	api := &fakeIssues{issuesErr: authRejection()}
	session := signedIn(t)
	feed := NewIssueFeed(api, session)
	session.OnLogout(feed.Reset)

	if err := feed.Load(context.Background()); err == nil {
		t.Fatal("Load() expected error")
	}

	if session.State().Authenticated {
		t.Error("session survived an auth rejection")
	}
	if st := feed.State(); st.Err != nil || st.Loading || len(st.Data) != 0 {
		t.Errorf("state = %+v, want reset by the cascade", st)
	}
}

func TestIssueFeedSubmitReloads(t *testing.T) {
	created := &model.Issue{ID: 9, Title: "Garbage dump near school"}
	api := &fakeIssues{
		created: created,
		issues:  []model.Issue{*created},
	}
	feed := NewIssueFeed(api, signedIn(t))

	draft := model.IssueDraft{
		Title:       "Garbage dump near school",
		Description: "Waste piling up for two weeks",
		Category:    "garbage",
		District:    "Karnal",
		Location:    model.Coordinates{Latitude: 29.6857, Longitude: 76.9905},
	}
	photo := civicapi.Upload{Name: "dump.jpg", Reader: strings.NewReader("jpeg-bytes")}

	issue, err := feed.Submit(context.Background(), draft, photo)
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if issue == nil || issue.ID != 9 {
		t.Fatalf("Submit() = %+v", issue)
	}

	if api.calls() != 1 {
		t.Errorf("list fetched %d times, want 1 reload after the write", api.calls())
	}
	if st := feed.State(); len(st.Data) != 1 || st.Data[0].ID != 9 {
		t.Errorf("state after submit = %+v, want the reloaded list", st.Data)
	}
}

func TestIssueFeedSubmitRejectionSkipsReload(t *testing.T) {
	api := &fakeIssues{
		submitErr: faults.FromResponse(409, "duplicate_submission", "Duplicate image detected"),
	}
	feed := NewIssueFeed(api, signedIn(t))

	_, err := feed.Submit(context.Background(), model.IssueDraft{Title: "x"}, civicapi.Upload{
		Name:   "x.jpg",
		Reader: strings.NewReader("x"),
	})
	if err == nil {
		t.Fatal("Submit() expected error")
	}

	var fault *faults.Fault
	if !errors.As(err, &fault) || fault.Category != faults.DuplicateSubmission {
		t.Errorf("error = %v, want a duplicate-submission fault", err)
	}
	if api.calls() != 0 {
		t.Error("rejected write still reloaded the feed")
	}
	if feed.State().Err == nil {
		t.Error("rejection not recorded on the feed")
	}
}

func TestIssueFeedVerifyReloads(t *testing.T) {
	verified := &model.Issue{ID: 4, Status: model.StatusVerified}
	api := &fakeIssues{
		verified: verified,
		issues:   []model.Issue{*verified},
	}
	feed := NewIssueFeed(api, signedIn(t))

	issue, err := feed.Verify(context.Background(), 4)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if issue.Status != model.StatusVerified {
		t.Errorf("status = %s", issue.Status)
	}
	if api.calls() != 1 {
		t.Errorf("list fetched %d times, want 1", api.calls())
	}
}

func TestStaleLoadDiscardedAfterLogout(t *testing.T) {
	api := &fakeIssues{
		issues:  []model.Issue{{ID: 1, Title: "stale"}},
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	session := signedIn(t)
	feed := NewIssueFeed(api, session)
	session.OnLogout(feed.Reset)

	done := make(chan error, 1)
	go func() { done <- feed.Load(context.Background()) }()

	select {
	case <-api.started:
	case <-time.After(time.Second):
		t.Fatal("transport call never started")
	}

	session.Logout()
	close(api.release)

	if err := <-done; err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	st := feed.State()
	if len(st.Data) != 0 {
		t.Error("stale result resurrected data after logout")
	}
	if st.Loading || st.Err != nil {
		t.Errorf("state = %+v, want the reset state", st)
	}
}

func TestIssueDetailLoad(t *testing.T) {
	api := &fakeIssues{detail: &model.Issue{ID: 3, Title: "Broken drain cover"}}
	detail := NewIssueDetail(api, signedIn(t))

	if err := detail.Load(context.Background(), 3); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	st := detail.State()
	if st.Data == nil || st.Data.ID != 3 {
		t.Errorf("detail = %+v", st.Data)
	}
}

func TestIssueDetailNotFound(t *testing.T) {
	api := &fakeIssues{detailErr: faults.FromResponse(404, "", "Problem not found")}
	detail := NewIssueDetail(api, signedIn(t))

	err := detail.Load(context.Background(), 99)
	if err == nil {
		t.Fatal("Load() expected error")
	}

	var fault *faults.Fault
	if !errors.As(err, &fault) || fault.Category != faults.ServerRejected {
		t.Errorf("error = %v, want server-rejected", err)
	}
	if fault.Message != "Problem not found" {
		t.Errorf("message = %q, want the service text verbatim", fault.Message)
	}
}
