package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "naive datetime",
			input: `"2025-06-01T10:30:00"`,
			want:  time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "naive datetime with microseconds",
			input: `"2025-06-01T10:30:00.123456"`,
			want:  time.Date(2025, 6, 1, 10, 30, 0, 123456000, time.UTC),
		},
		{
			name:  "rfc3339",
			input: `"2025-06-01T10:30:00Z"`,
			want:  time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "null",
			input: `null`,
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			if err := json.Unmarshal([]byte(tt.input), &ts); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.input, err)
			}
			if !ts.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, ts.Time)
			}
		})
	}
}

func TestTimestampUnmarshalRejectsGarbage(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Fatal("expected error for unparseable timestamp")
	}
}

func TestTimestampMarshalZeroAsNull(t *testing.T) {
	data, err := json.Marshal(Timestamp{})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("expected null for zero timestamp, got %s", data)
	}
}

func TestStatusResolved(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, false},
		{StatusAssigned, false},
		{StatusCompleted, true},
		{StatusVerified, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Resolved(); got != tt.want {
				t.Errorf("Status(%s).Resolved() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}
