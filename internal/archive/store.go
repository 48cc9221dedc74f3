// Package archive persists notice history across runs. The in-memory inbox
// holds only the newest records for the session; the archive is the longer
// on-disk ledger behind `civica inbox`, including read state. Re-delivered
// frames collapse into one entry via the notice key.
package archive

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/civica-dev/civica/internal/constants"
	"github.com/civica-dev/civica/internal/log"
	"github.com/civica-dev/civica/internal/model"
)

// Entry is one archived notice
type Entry struct {
	Notice     model.Notice `json:"notice"`
	ArchivedAt time.Time    `json:"archivedAt"`
}

// Store manages persistence of archived notices
type Store struct {
	path    string
	entries map[string]Entry
	limit   int
	mu      sync.RWMutex
}

// NewStore creates a notice archive under the user cache directory
func NewStore() (*Store, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(cacheDir, "civica")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return NewStoreWithPath(filepath.Join(dir, "notices.json")), nil
}

// NewStoreWithPath creates an archive backed by the given file (for testing)
func NewStoreWithPath(path string) *Store {
	s := &Store{
		path:    path,
		entries: make(map[string]Entry),
		limit:   constants.ArchiveMaxNotices,
	}

	if err := s.load(); err != nil {
		log.Debug("could not load notice archive, starting fresh", "error", err)
	}

	return s
}

// load reads the archived entries from disk
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return json.Unmarshal(data, &s.entries)
}

// save writes the archived entries to disk atomically so a crash mid-write
// never leaves a truncated ledger behind
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Record archives a notice, keyed so a replayed delivery updates the
// existing entry instead of duplicating it, and prunes to the newest
// ArchiveMaxNotices.
func (s *Store) Record(notice model.Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := notice.Key()
	if prev, ok := s.entries[key]; ok && prev.Notice.Read {
		// A replay never un-reads a notice.
		notice.Read = true
	}

	s.entries[key] = Entry{
		Notice:     notice,
		ArchivedAt: time.Now().UTC(),
	}

	s.prune()
	return s.save()
}

// Ingest records a notice, logging instead of failing so the archive can sit
// behind the push sink next to the live inbox.
func (s *Store) Ingest(notice model.Notice) {
	if err := s.Record(notice); err != nil {
		log.Warn("failed to archive notice", "error", err)
	}
}

// MarkRead flips the read flag on one archived notice
func (s *Store) MarkRead(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || entry.Notice.Read {
		return nil
	}

	entry.Notice.Read = true
	s.entries[key] = entry
	return s.save()
}

// MarkAllRead flips the read flag on every archived notice
func (s *Store) MarkAllRead() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		entry.Notice.Read = true
		s.entries[key] = entry
	}
	return s.save()
}

// Notices returns the archived notices, newest first
func (s *Store) Notices() []model.Notice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notices := make([]model.Notice, 0, len(s.entries))
	for _, entry := range s.entries {
		notices = append(notices, entry.Notice)
	}

	sort.Slice(notices, func(i, j int) bool {
		return notices[i].ReceivedAt.After(notices[j].ReceivedAt)
	})

	return notices
}

// Unread returns the number of archived notices not yet read
func (s *Store) Unread() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	unread := 0
	for _, entry := range s.entries {
		if !entry.Notice.Read {
			unread++
		}
	}
	return unread
}

// Count returns the number of archived notices
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Clear empties the archive
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]Entry)
	return s.save()
}

// prune drops the oldest entries once the archive exceeds its limit.
// Caller holds the lock.
func (s *Store) prune() {
	if len(s.entries) <= s.limit {
		return
	}

	type keyed struct {
		key      string
		received time.Time
	}
	ordered := make([]keyed, 0, len(s.entries))
	for key, entry := range s.entries {
		ordered = append(ordered, keyed{key: key, received: entry.Notice.ReceivedAt})
	}

	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].received.Before(ordered[j].received)
	})

	for _, k := range ordered[:len(s.entries)-s.limit] {
		delete(s.entries, k.key)
	}
}
