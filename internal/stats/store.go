// Package stats keeps a local history of dashboard loads so trends can be
// compared across runs without refetching the analytics endpoints.
package stats

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/civica-dev/civica/internal/constants"
	"github.com/civica-dev/civica/internal/log"
)

// Snapshot captures aggregate figures from a single dashboard load.
// Counts are summed over the trend window the load was scoped to.
type Snapshot struct {
	Timestamp      time.Time      `json:"ts"`
	District       string         `json:"district,omitempty"`
	WindowStart    string         `json:"windowStart,omitempty"`
	WindowEnd      string         `json:"windowEnd,omitempty"`
	CreatedCount   int            `json:"created"`
	AssignedCount  int            `json:"assigned"`
	CompletedCount int            `json:"completed"`
	VerifiedCount  int            `json:"verified"`
	CategoryCounts map[string]int `json:"categories,omitempty"`
	HotspotCount   int            `json:"hotspots"`
	HighCount      int            `json:"high"`
	ElevatedCount  int            `json:"elevated"`
}

// Delta is the change between two snapshots of the same scope.
type Delta struct {
	From      time.Time
	To        time.Time
	Created   int
	Assigned  int
	Completed int
	Verified  int
	Hotspots  int
	High      int
}

// DeltaFrom returns the change from an earlier snapshot to this one.
func (s Snapshot) DeltaFrom(prev Snapshot) Delta {
	return Delta{
		From:      prev.Timestamp,
		To:        s.Timestamp,
		Created:   s.CreatedCount - prev.CreatedCount,
		Assigned:  s.AssignedCount - prev.AssignedCount,
		Completed: s.CompletedCount - prev.CompletedCount,
		Verified:  s.VerifiedCount - prev.VerifiedCount,
		Hotspots:  s.HotspotCount - prev.HotspotCount,
		High:      s.HighCount - prev.HighCount,
	}
}

// LatestFor returns the newest snapshot scoped to the given district, or nil.
// Snapshots of different districts never delta against each other.
func LatestFor(records []Snapshot, district string) *Snapshot {
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].District == district {
			return &records[i]
		}
	}
	return nil
}

// Store manages persistence of dashboard snapshots as JSON Lines.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a snapshot store at ~/.cache/civica/dashboard.jsonl.
func NewStore() (*Store, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(cacheDir, "civica")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Store{
		path: filepath.Join(dir, "dashboard.jsonl"),
	}, nil
}

// NewStoreWithPath creates a store at the given path (for testing).
func NewStoreWithPath(path string) *Store {
	return &Store{path: path}
}

// Append adds a snapshot and prunes to the last StatsMaxSnapshots entries.
func (s *Store) Append(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		log.Debug("could not read snapshot history, starting fresh", "error", err)
		records = nil
	}

	records = append(records, snap)

	if len(records) > constants.StatsMaxSnapshots {
		records = records[len(records)-constants.StatsMaxSnapshots:]
	}

	return s.writeAll(records)
}

// Recent returns the last n snapshots (or fewer if not enough exist).
func (s *Store) Recent(n int) []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil
	}

	if len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}

// readAll reads all snapshots from disk.
func (s *Store) readAll() ([]Snapshot, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var records []Snapshot
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(line, &snap); err != nil {
			continue // skip malformed lines
		}
		records = append(records, snap)
	}
	return records, scanner.Err()
}

// writeAll writes all snapshots to disk atomically.
func (s *Store) writeAll(records []Snapshot) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, s.path)
}
