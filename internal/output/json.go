package output

import (
	"encoding/json"
	"io"

	"github.com/civica-dev/civica/internal/model"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

func (f *JSONFormatter) encode(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// Issues outputs reports as a JSON array
func (f *JSONFormatter) Issues(issues []model.Issue, w io.Writer) error {
	if issues == nil {
		issues = []model.Issue{}
	}
	return f.encode(issues, w)
}

// Issue outputs one report as a JSON object
func (f *JSONFormatter) Issue(issue *model.Issue, w io.Writer) error {
	return f.encode(issue, w)
}

// Notices outputs archived or buffered notices as a JSON array
func (f *JSONFormatter) Notices(notices []model.Notice, w io.Writer) error {
	if notices == nil {
		notices = []model.Notice{}
	}
	return f.encode(notices, w)
}

// Profile outputs the signed-in account as a JSON object
func (f *JSONFormatter) Profile(profile *model.Profile, w io.Writer) error {
	return f.encode(profile, w)
}

// WorkerStats outputs a worker's performance summary as a JSON object
func (f *JSONFormatter) WorkerStats(stats *model.WorkerStats, w io.Writer) error {
	return f.encode(stats, w)
}

// districtJSON is the wire shape of a district summary render
type districtJSON struct {
	Summary *model.DistrictSummary `json:"summary"`
	Detail  *model.DistrictDetail  `json:"detail,omitempty"`
}

// District outputs the resolution summary as one JSON object
func (f *JSONFormatter) District(view DistrictView, w io.Writer) error {
	return f.encode(districtJSON{Summary: view.Summary, Detail: view.Detail}, w)
}

// dashboardJSON is the wire shape of a dashboard render. Failed reports
// are listed by name with their display message so scripted consumers can
// tell a degraded slice from a genuinely empty one.
type dashboardJSON struct {
	Window     windowJSON        `json:"window"`
	Bundle     any               `json:"bundle"`
	Failed     map[string]string `json:"failed,omitempty"`
	Hotspots   any               `json:"hotspots,omitempty"`
	Categories any               `json:"categories,omitempty"`
	Delta      any               `json:"delta,omitempty"`
}

type windowJSON struct {
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	District string `json:"district,omitempty"`
}

// Dashboard outputs the joined analytics view as one JSON object
func (f *JSONFormatter) Dashboard(view DashboardView, w io.Writer) error {
	out := dashboardJSON{
		Bundle:     view.Bundle,
		Hotspots:   view.Hotspots,
		Categories: view.Categories,
	}
	if !view.Window.Start.IsZero() {
		out.Window.Start = view.Window.Start.Format("2006-01-02")
	}
	if !view.Window.End.IsZero() {
		out.Window.End = view.Window.End.Format("2006-01-02")
	}
	out.Window.District = view.Window.District

	if len(view.Failed) > 0 {
		out.Failed = make(map[string]string, len(view.Failed))
		for report, fault := range view.Failed {
			out.Failed[string(report)] = fault.Message
		}
	}
	if view.Delta != nil {
		out.Delta = view.Delta
	}
	return f.encode(out, w)
}
