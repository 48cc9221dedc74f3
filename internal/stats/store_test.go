package stats

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/civica-dev/civica/internal/constants"
)

func TestAppendAndRecent(t *testing.T) {
	dir := t.TempDir()
	s := NewStoreWithPath(filepath.Join(dir, "dashboard.jsonl"))

	// Empty store returns nil
	got := s.Recent(10)
	if len(got) != 0 {
		t.Fatalf("expected 0 records, got %d", len(got))
	}

	// Append a snapshot
	snap := Snapshot{
		Timestamp:    time.Now(),
		District:     "Karnal",
		CreatedCount: 42,
		HotspotCount: 7,
		HighCount:    2,
	}
	if err := s.Append(snap); err != nil {
		t.Fatal(err)
	}

	got = s.Recent(10)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].CreatedCount != 42 {
		t.Fatalf("expected CreatedCount 42, got %d", got[0].CreatedCount)
	}
	if got[0].District != "Karnal" {
		t.Fatalf("expected District Karnal, got %q", got[0].District)
	}

	// Append another
	snap2 := Snapshot{
		Timestamp:    time.Now(),
		CreatedCount: 50,
	}
	if err := s.Append(snap2); err != nil {
		t.Fatal(err)
	}

	got = s.Recent(10)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[1].CreatedCount != 50 {
		t.Fatalf("expected CreatedCount 50, got %d", got[1].CreatedCount)
	}
}

func TestRecentLimitsResults(t *testing.T) {
	dir := t.TempDir()
	s := NewStoreWithPath(filepath.Join(dir, "dashboard.jsonl"))

	for i := 0; i < 10; i++ {
		if err := s.Append(Snapshot{CreatedCount: i}); err != nil {
			t.Fatal(err)
		}
	}

	got := s.Recent(3)
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	// Should be the last 3 entries
	if got[0].CreatedCount != 7 {
		t.Fatalf("expected CreatedCount 7, got %d", got[0].CreatedCount)
	}
	if got[2].CreatedCount != 9 {
		t.Fatalf("expected CreatedCount 9, got %d", got[2].CreatedCount)
	}
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	s := NewStoreWithPath(filepath.Join(dir, "dashboard.jsonl"))

	// Write StatsMaxSnapshots + 5 entries
	for i := 0; i < constants.StatsMaxSnapshots+5; i++ {
		if err := s.Append(Snapshot{CreatedCount: i}); err != nil {
			t.Fatal(err)
		}
	}

	got := s.Recent(constants.StatsMaxSnapshots + 100)
	if len(got) != constants.StatsMaxSnapshots {
		t.Fatalf("expected %d records after prune, got %d", constants.StatsMaxSnapshots, len(got))
	}
	// First record should be the 6th one written (0-indexed: 5)
	if got[0].CreatedCount != 5 {
		t.Fatalf("expected first record CreatedCount 5, got %d", got[0].CreatedCount)
	}
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.jsonl")

	// Write with one store instance
	s1 := NewStoreWithPath(path)
	snap := Snapshot{
		CreatedCount:   99,
		CategoryCounts: map[string]int{"pothole": 12, "sewage": 3},
	}
	if err := s1.Append(snap); err != nil {
		t.Fatal(err)
	}

	// Read with a new store instance
	s2 := NewStoreWithPath(path)
	got := s2.Recent(10)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].CreatedCount != 99 {
		t.Fatalf("expected CreatedCount 99, got %d", got[0].CreatedCount)
	}
	if got[0].CategoryCounts["pothole"] != 12 {
		t.Fatalf("expected 12 potholes, got %d", got[0].CategoryCounts["pothole"])
	}
}

func TestMissingFile(t *testing.T) {
	s := NewStoreWithPath(filepath.Join(t.TempDir(), "nonexistent", "dashboard.jsonl"))

	// Recent on non-existent file returns nil
	got := s.Recent(10)
	if len(got) != 0 {
		t.Fatalf("expected 0 records, got %d", len(got))
	}
}

func TestMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.jsonl")

	// Write some valid and invalid lines
	content := `{"ts":"2026-08-01T00:00:00Z","created":10}
not json at all
{"ts":"2026-08-02T00:00:00Z","created":20}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStoreWithPath(path)
	got := s.Recent(10)
	if len(got) != 2 {
		t.Fatalf("expected 2 valid records, got %d", len(got))
	}
	if got[0].CreatedCount != 10 {
		t.Fatalf("expected CreatedCount 10, got %d", got[0].CreatedCount)
	}
	if got[1].CreatedCount != 20 {
		t.Fatalf("expected CreatedCount 20, got %d", got[1].CreatedCount)
	}
}

func TestDeltaFrom(t *testing.T) {
	earlier := Snapshot{
		Timestamp:      time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC),
		CreatedCount:   40,
		CompletedCount: 10,
		HotspotCount:   6,
		HighCount:      3,
	}
	later := Snapshot{
		Timestamp:      time.Date(2026, 8, 21, 8, 0, 0, 0, time.UTC),
		CreatedCount:   55,
		CompletedCount: 22,
		HotspotCount:   5,
		HighCount:      1,
	}

	d := later.DeltaFrom(earlier)
	if d.Created != 15 {
		t.Errorf("Delta.Created = %d, want 15", d.Created)
	}
	if d.Completed != 12 {
		t.Errorf("Delta.Completed = %d, want 12", d.Completed)
	}
	if d.Hotspots != -1 {
		t.Errorf("Delta.Hotspots = %d, want -1", d.Hotspots)
	}
	if d.High != -2 {
		t.Errorf("Delta.High = %d, want -2", d.High)
	}
	if !d.From.Equal(earlier.Timestamp) || !d.To.Equal(later.Timestamp) {
		t.Error("delta endpoints do not match the snapshots")
	}
}

func TestLatestFor(t *testing.T) {
	records := []Snapshot{
		{District: "", CreatedCount: 1},
		{District: "Karnal", CreatedCount: 2},
		{District: "", CreatedCount: 3},
		{District: "Karnal", CreatedCount: 4},
	}

	if got := LatestFor(records, "Karnal"); got == nil || got.CreatedCount != 4 {
		t.Errorf("LatestFor(Karnal) = %+v, want CreatedCount 4", got)
	}
	if got := LatestFor(records, ""); got == nil || got.CreatedCount != 3 {
		t.Errorf("LatestFor(all districts) = %+v, want CreatedCount 3", got)
	}
	if got := LatestFor(records, "Ambala"); got != nil {
		t.Errorf("LatestFor(Ambala) = %+v, want nil", got)
	}
}
