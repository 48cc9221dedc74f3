package rank

import (
	"github.com/civica-dev/civica/internal/model"
)

// Severity represents how much attention a hotspot needs (displayed in table)
type Severity string

const (
	SeverityHigh     Severity = "high"
	SeverityElevated Severity = "elevated"
	SeverityNormal   Severity = "normal"
)

// Display returns a human-readable severity
func (s Severity) Display() string {
	switch s {
	case SeverityHigh:
		return "High"
	case SeverityElevated:
		return "Elevated"
	case SeverityNormal:
		return "Normal"
	default:
		return string(s)
	}
}

// Hotspot wraps a heat-map cluster with ranking information
type Hotspot struct {
	Cluster  model.HeatPoint `json:"cluster"`
	Score    int             `json:"score"`
	Severity Severity        `json:"severity"`
}

// CategoryRank is one issue category weighted by its urgency
type CategoryRank struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Urgency    int     `json:"urgency"`
	Score      int     `json:"score"`
}
