// Package credstore persists the signed-in user's access token and the
// stable device identifier under the user config directory. Tokens are
// stored with owner-only permissions and written atomically so a crash
// mid-save never leaves a torn credentials file.
package credstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	credentialsFile = "credentials.json"
	deviceFile      = "device.json"
)

// Credentials is the persisted session material.
type Credentials struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Email       string    `json:"email,omitempty"`
	SavedAt     time.Time `json:"saved_at"`
}

// device is the persisted installation identity. It survives logout.
type device struct {
	DeviceID  string    `json:"device_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages credential persistence for a single config directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a credential store under the user config directory.
func NewStore() (*Store, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(configDir, "civica")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	return &Store{dir: dir}, nil
}

// NewStoreWithDir creates a store rooted at the given directory (for testing).
func NewStoreWithDir(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the location of the credentials file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, credentialsFile)
}

// Save writes the credentials to disk with owner-only permissions.
func (s *Store) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if creds.SavedAt.IsZero() {
		creds.SavedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	return writeFileAtomic(s.Path(), data)
}

// Load reads the stored credentials. A missing file is not an error;
// it returns (nil, nil) so callers can treat absence as signed out.
func (s *Store) Load() (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}

	if creds.AccessToken == "" {
		return nil, nil
	}

	return &creds, nil
}

// Clear removes the stored credentials. Clearing an empty store is not an
// error. The device identifier is left in place.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.Path())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DeviceID returns the stable installation identifier, generating and
// persisting one on first use. Logout does not reset it.
func (s *Store) DeviceID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, deviceFile)

	data, err := os.ReadFile(path)
	if err == nil {
		var d device
		if jsonErr := json.Unmarshal(data, &d); jsonErr == nil && d.DeviceID != "" {
			return d.DeviceID, nil
		}
		// Unreadable device file: fall through and mint a fresh identity.
	} else if !os.IsNotExist(err) {
		return "", err
	}

	d := device{
		DeviceID:  uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", err
	}
	if err := writeFileAtomic(path, out); err != nil {
		return "", err
	}

	return d.DeviceID, nil
}

// writeFileAtomic writes data to path via a temp file and rename so readers
// never observe a partial write.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
