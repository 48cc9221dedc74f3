package rank

import (
	"testing"
)

func TestSeverityDisplay(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityHigh, "High"},
		{SeverityElevated, "Elevated"},
		{SeverityNormal, "Normal"},
		{Severity("unknown"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			got := tt.severity.Display()
			if got != tt.want {
				t.Errorf("Severity(%q).Display() = %q, want %q", tt.severity, got, tt.want)
			}
		})
	}
}
