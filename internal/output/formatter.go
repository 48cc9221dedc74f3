// Package output renders the client's views as terminal tables or JSON.
// Formatters are selected by the --format flag, falling back to the
// configured default.
package output

import (
	"io"

	"github.com/civica-dev/civica/internal/faults"
	"github.com/civica-dev/civica/internal/model"
	"github.com/civica-dev/civica/internal/rank"
	"github.com/civica-dev/civica/internal/state"
	"github.com/civica-dev/civica/internal/stats"
)

// Format represents the output format
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// DashboardView is everything the dashboard screen renders in one pass:
// the joined bundle, the rankings derived from it, and the delta against
// the previous recorded load.
type DashboardView struct {
	Window     model.Window
	Bundle     state.AnalyticsBundle
	Failed     map[state.Report]*faults.Fault
	Hotspots   []rank.Hotspot
	Categories []rank.CategoryRank
	Delta      *stats.Delta
}

// DistrictView is the citizen-facing resolution summary: the headline
// counts for one scope plus, when the scope is a district, its status and
// category breakdown. Detail is nil for the state-wide scope.
type DistrictView struct {
	Summary *model.DistrictSummary
	Detail  *model.DistrictDetail
}

// Formatter defines the interface for output formatters
type Formatter interface {
	Issues(issues []model.Issue, w io.Writer) error
	Issue(issue *model.Issue, w io.Writer) error
	Notices(notices []model.Notice, w io.Writer) error
	Profile(profile *model.Profile, w io.Writer) error
	WorkerStats(stats *model.WorkerStats, w io.Writer) error
	District(view DistrictView, w io.Writer) error
	Dashboard(view DashboardView, w io.Writer) error
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	default:
		return NewTableFormatter()
	}
}
