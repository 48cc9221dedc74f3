package state

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/civica-dev/civica/internal/civicapi"
	"github.com/civica-dev/civica/internal/credstore"
	"github.com/civica-dev/civica/internal/faults"
	"github.com/civica-dev/civica/internal/model"
)

// fakeAuth implements AuthAPI with canned responses.
type fakeAuth struct {
	mu            sync.Mutex
	loginTok      *civicapi.Token
	loginErr      error
	profile       *model.Profile
	profileErr    error
	registered    *model.Profile
	registerErr   error
	loginCalls    int
	profileCalls  int
	registerCalls int
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*civicapi.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginTok, nil
}

func (f *fakeAuth) Profile(ctx context.Context, token string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeAuth) Register(ctx context.Context, reg model.Registration) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerCalls++
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registered, nil
}

// memStore implements TokenStore in memory.
type memStore struct {
	mu     sync.Mutex
	creds  *credstore.Credentials
	saves  int
	clears int
}

func (m *memStore) Save(creds credstore.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	c := creds
	m.creds = &c
	return nil
}

func (m *memStore) Load() (*credstore.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds == nil {
		return nil, nil
	}
	c := *m.creds
	return &c, nil
}

func (m *memStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	m.creds = nil
	return nil
}

func (m *memStore) stored() *credstore.Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds
}

func testProfile() *model.Profile {
	return &model.Profile{
		ID:       7,
		FullName: "Asha Verma",
		Email:    "asha@example.com",
		District: "Karnal",
		Pincode:  "132001",
		Role:     model.RoleCitizen,
		IsActive: true,
	}
}

// authRejection mimics the service refusing a credential.
func authRejection() *faults.Fault {
	return faults.FromResponse(http.StatusUnauthorized, "", "Could not validate credentials")
}

// signedIn builds a session already authenticated as the test profile.
func signedIn(t *testing.T) *Session {
	t.Helper()

	api := &fakeAuth{
		loginTok: &civicapi.Token{AccessToken: "tok-1", TokenType: "bearer"},
		profile:  testProfile(),
	}
	s := NewSession(api, &memStore{})
	if err := s.Login(context.Background(), "asha@example.com", "secret"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	return s
}
