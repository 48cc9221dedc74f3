package state

import (
	"context"
	"errors"
	"testing"

	"github.com/civica-dev/civica/internal/civicapi"
	"github.com/civica-dev/civica/internal/faults"
	"github.com/civica-dev/civica/internal/model"
)

// fakeAPI composes the per-container fakes into the full service surface.
type fakeAPI struct {
	*fakeAuth
	*fakeIssues
	*fakeTasks
	*fakeModeration
	*fakeAnalytics
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		fakeAuth: &fakeAuth{
			loginTok: &civicapi.Token{AccessToken: "tok-1", TokenType: "bearer"},
			profile:  testProfile(),
		},
		fakeIssues:     &fakeIssues{issues: []model.Issue{{ID: 1, Title: "Pothole"}}},
		fakeTasks:      &fakeTasks{tasks: []model.Issue{{ID: 2, Status: model.StatusAssigned}}},
		fakeModeration: &fakeModeration{queue: []model.Issue{{ID: 3}}},
		fakeAnalytics: &fakeAnalytics{
			trends: []model.TrendPoint{{Date: "2025-06-01", Created: 1}},
		},
	}
}

func TestAppLogoutResetsContainers(t *testing.T) {
	api := newFakeAPI()
	app := NewApp(api, &memStore{})
	ctx := context.Background()

	if err := app.Session.Login(ctx, "asha@example.com", "secret"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if err := app.Issues.Load(ctx); err != nil {
		t.Fatalf("Issues.Load() error: %v", err)
	}
	if err := app.Tasks.Load(ctx); err != nil {
		t.Fatalf("Tasks.Load() error: %v", err)
	}
	if err := app.Moderation.Load(ctx); err != nil {
		t.Fatalf("Moderation.Load() error: %v", err)
	}
	if err := app.Dashboard.Load(ctx); err != nil {
		t.Fatalf("Dashboard.Load() error: %v", err)
	}
	app.Inbox.Ingest(model.Notice{Title: "Issue Update: Pothole"})

	app.Session.Logout()

	if len(app.Issues.State().Data) != 0 {
		t.Error("issue feed survived logout")
	}
	if len(app.Tasks.State().Data) != 0 {
		t.Error("task board survived logout")
	}
	if len(app.Moderation.State().Data) != 0 {
		t.Error("moderation queue survived logout")
	}
	if st := app.Dashboard.State(); len(st.Bundle.Trends) != 0 {
		t.Error("dashboard bundle survived logout")
	}

	// The inbox is device local; its notices outlive the session.
	if got := len(app.Inbox.State().Notices); got != 1 {
		t.Errorf("inbox holds %d notices after logout, want 1", got)
	}

	err := app.Issues.Load(ctx)
	if err == nil {
		t.Fatal("Load() after logout expected to fail fast")
	}
	var fault *faults.Fault
	if !errors.As(err, &fault) || fault.Category != faults.AuthenticationRequired {
		t.Errorf("error = %v, want an authentication fault", err)
	}
}

func TestAppAuthRejectionCascadesEverywhere(t *testing.T) {
	api := newFakeAPI()
	app := NewApp(api, &memStore{})
	ctx := context.Background()

	if err := app.Session.Login(ctx, "asha@example.com", "secret"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if err := app.Tasks.Load(ctx); err != nil {
		t.Fatalf("Tasks.Load() error: %v", err)
	}

	api.fakeIssues.mu.Lock()
	api.fakeIssues.issuesErr = authRejection()
	api.fakeIssues.mu.Unlock()

	if err := app.Issues.Load(ctx); err == nil {
		t.Fatal("Load() expected error")
	}

	if app.Session.State().Authenticated {
		t.Error("session survived an auth rejection")
	}
	if len(app.Tasks.State().Data) != 0 {
		t.Error("sibling container survived the cascade")
	}
}
