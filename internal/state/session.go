package state

import (
	"context"
	"sync"

	"github.com/civica-dev/civica/internal/civicapi"
	"github.com/civica-dev/civica/internal/credstore"
	"github.com/civica-dev/civica/internal/faults"
	"github.com/civica-dev/civica/internal/log"
	"github.com/civica-dev/civica/internal/model"
)

// AuthAPI is the slice of the service client the session drives.
type AuthAPI interface {
	Register(ctx context.Context, reg model.Registration) (*model.Profile, error)
	Login(ctx context.Context, email, password string) (*civicapi.Token, error)
	Profile(ctx context.Context, token string) (*model.Profile, error)
}

// TokenStore persists credentials across runs.
type TokenStore interface {
	Save(creds credstore.Credentials) error
	Load() (*credstore.Credentials, error)
	Clear() error
}

// Credential is the token snapshot a container captures before dispatching
// an authenticated call, together with the session epoch it was issued
// under. The epoch goes back into finish so results that complete after a
// logout are discarded instead of resurrecting signed-out state.
type Credential struct {
	Token string
	Epoch uint64
}

// SessionState is the observable snapshot of the credential holder.
// Identity is non-nil exactly while the session is authenticated.
type SessionState struct {
	Identity      *model.Profile
	Authenticated bool
	Busy          bool
	Err           *faults.Fault
}

// Session owns the access token and the authenticated identity, which are
// set and cleared strictly together. Every other container consults it
// before an authenticated call; only the session mutates its own state.
type Session struct {
	mu     sync.Mutex
	signal Signal
	api    AuthAPI
	store  TokenStore

	token    string
	identity *model.Profile
	busy     bool
	err      *faults.Fault
	epoch    uint64

	onLogout []func()
}

// NewSession returns an unauthenticated session backed by the given
// transport and credential store.
func NewSession(api AuthAPI, store TokenStore) *Session {
	return &Session{api: api, store: store}
}

// Subscribe registers an observer for session transitions.
func (s *Session) Subscribe(fn func()) (unsubscribe func()) {
	return s.signal.Subscribe(fn)
}

// State returns the current session snapshot.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionState{
		Identity:      s.identity,
		Authenticated: s.token != "",
		Busy:          s.busy,
		Err:           s.err,
	}
}

// Credential returns the token for an authenticated call and the epoch it
// was issued under, or ErrNotAuthenticated when signed out.
func (s *Session) Credential() (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return Credential{}, faults.ErrNotAuthenticated
	}
	return Credential{Token: s.token, Epoch: s.epoch}, nil
}

// Current reports whether the given epoch is still the live one. A false
// return means a logout happened after the credential was captured.
func (s *Session) Current(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return epoch == s.epoch
}

// OnLogout registers a hook run during the logout cascade, after the
// session itself is cleared. Hooks run outside the session lock.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Restore loads the persisted credential, if any, and validates it by
// fetching the owner's profile. Any failure discards the stored credential
// and leaves the session signed out; a half-valid session never survives
// startup. A missing credential is not an error.
func (s *Session) Restore(ctx context.Context) error {
	s.beginAuth()

	creds, err := s.store.Load()
	if err != nil {
		s.discardStored()
		return s.record(faults.Classify(err))
	}
	if creds == nil {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
		s.signal.Notify()
		return nil
	}

	profile, err := s.api.Profile(ctx, creds.AccessToken)
	if err != nil {
		s.discardStored()
		return s.record(faults.Classify(err))
	}

	s.commit(creds.AccessToken, creds.TokenType, profile, false)
	return nil
}

// AdoptToken validates an externally supplied token (for example from the
// environment) and signs the session in under it without persisting it.
func (s *Session) AdoptToken(ctx context.Context, token string) error {
	s.beginAuth()

	profile, err := s.api.Profile(ctx, token)
	if err != nil {
		return s.record(faults.Classify(err))
	}

	s.commit(token, "bearer", profile, false)
	return nil
}

// Login exchanges the credentials for a token, fetches the identity under
// it, then persists and publishes. On any failure no partial token is
// retained and the classified fault is both recorded and returned.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.beginAuth()

	tok, err := s.api.Login(ctx, email, password)
	if err != nil {
		return s.record(faults.Classify(err))
	}

	if fault := s.establish(ctx, tok); fault != nil {
		return s.record(fault)
	}
	return nil
}

// Register creates the account and then signs in with the same submitted
// credentials. A failure in the sign-in phase is wrapped so callers can
// tell "account created, sign in manually" apart from a failed
// registration; errors.Is against faults.ErrRegisteredLoginFailed matches
// the wrapped form.
func (s *Session) Register(ctx context.Context, reg model.Registration) error {
	s.beginAuth()

	if _, err := s.api.Register(ctx, reg); err != nil {
		return s.record(faults.Classify(err))
	}

	tok, err := s.api.Login(ctx, reg.Email, reg.Password)
	if err != nil {
		return s.record(faults.RegisteredLoginFailed(faults.Classify(err)))
	}

	if fault := s.establish(ctx, tok); fault != nil {
		return s.record(faults.RegisteredLoginFailed(fault))
	}
	return nil
}

// Logout clears the token and identity, erases the persisted credential,
// moves the epoch so in-flight authenticated results get discarded, and
// runs the logout hooks. Publication is deferred to the next scheduling
// opportunity so subscribers tearing down on this very call stack are not
// re-entered.
func (s *Session) Logout() {
	s.mu.Lock()
	s.token = ""
	s.identity = nil
	s.busy = false
	s.err = nil
	s.epoch++
	hooks := append([]func(){}, s.onLogout...)
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		log.Warn("failed to erase stored credentials", "error", err)
	}

	for _, hook := range hooks {
		hook()
	}

	s.signal.NotifyLater()
}

// Refresh re-fetches the identity under the current token. Any failure is
// treated as credential invalidation and runs the full logout sequence,
// never a mere error flag.
func (s *Session) Refresh(ctx context.Context) error {
	cred, err := s.Credential()
	if err != nil {
		return faults.Classify(err)
	}

	profile, apiErr := s.api.Profile(ctx, cred.Token)
	if apiErr != nil {
		fault := faults.Classify(apiErr)
		log.Debug("refresh rejected, signing out", "category", string(fault.Category))
		s.Logout()
		return fault
	}

	s.mu.Lock()
	if cred.Epoch != s.epoch {
		s.mu.Unlock()
		return nil
	}
	s.identity = profile
	s.mu.Unlock()
	s.signal.Notify()
	return nil
}

// Invalidate runs the logout cascade in response to an authenticated call
// rejected for credentials. A signed-out session is a no-op, so concurrent
// rejections collapse into one cascade.
func (s *Session) Invalidate() {
	s.mu.Lock()
	signedIn := s.token != ""
	s.mu.Unlock()
	if !signedIn {
		return
	}

	log.Debug("credential rejected by service, signing out")
	s.Logout()
}

// beginAuth marks the transient loading sub-state covering login, register
// and restore.
func (s *Session) beginAuth() {
	s.mu.Lock()
	s.busy = true
	s.err = nil
	s.mu.Unlock()
	s.signal.Notify()
}

// establish fetches the identity under a fresh token and commits the
// authenticated state. The returned fault, if any, has not been recorded
// yet; the caller decides how to surface it.
func (s *Session) establish(ctx context.Context, tok *civicapi.Token) *faults.Fault {
	profile, err := s.api.Profile(ctx, tok.AccessToken)
	if err != nil {
		return faults.Classify(err)
	}
	s.commit(tok.AccessToken, tok.TokenType, profile, true)
	return nil
}

// commit installs the token/identity pair and publishes. With persist set
// the credential is also written to the store; a write failure keeps the
// in-memory session and is only logged.
func (s *Session) commit(token, tokenType string, profile *model.Profile, persist bool) {
	s.mu.Lock()
	s.token = token
	s.identity = profile
	s.busy = false
	s.err = nil
	s.mu.Unlock()

	if persist {
		err := s.store.Save(credstore.Credentials{
			AccessToken: token,
			TokenType:   tokenType,
			Email:       profile.Email,
		})
		if err != nil {
			log.Warn("failed to persist credentials", "error", err)
		}
	}

	s.signal.Notify()
}

// record stores the terminal fault for the current auth attempt and
// returns it.
func (s *Session) record(fault *faults.Fault) error {
	s.mu.Lock()
	s.busy = false
	s.err = fault
	s.mu.Unlock()
	s.signal.Notify()
	return fault
}

// discardStored drops an unusable persisted credential.
func (s *Session) discardStored() {
	if err := s.store.Clear(); err != nil {
		log.Warn("failed to discard stored credentials", "error", err)
	}
}
