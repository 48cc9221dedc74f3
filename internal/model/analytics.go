package model

import (
	"fmt"
	"time"
)

// Window is the date range every analytics report is scoped to.
// Zero bounds mean "service default" (trailing 30 days).
type Window struct {
	Start    time.Time
	End      time.Time
	District string // empty = all districts
}

// Validate enforces start <= end and end <= now. A zero bound is left to
// the service default and not checked.
func (w Window) Validate() error {
	now := time.Now()
	if !w.Start.IsZero() && !w.End.IsZero() && w.End.Before(w.Start) {
		return fmt.Errorf("window end %s precedes start %s",
			w.End.Format(time.DateOnly), w.Start.Format(time.DateOnly))
	}
	if !w.End.IsZero() && w.End.After(now) {
		return fmt.Errorf("window end %s is in the future", w.End.Format(time.DateOnly))
	}
	if !w.Start.IsZero() && w.Start.After(now) {
		return fmt.Errorf("window start %s is in the future", w.Start.Format(time.DateOnly))
	}
	return nil
}

// Period echoes the range the service actually applied to a report.
type Period struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	District  string `json:"district,omitempty"`
}

// TrendPoint is one day of issue activity.
type TrendPoint struct {
	Date      string `json:"date"`
	Created   int    `json:"created"`
	Assigned  int    `json:"assigned"`
	Completed int    `json:"completed"`
	Verified  int    `json:"verified"`
}

// DepartmentPerf summarizes one department's throughput in the window.
type DepartmentPerf struct {
	Department         string   `json:"department"`
	TotalIssues        int      `json:"total_issues"`
	CompletedIssues    int      `json:"completed_issues"`
	CompletionRate     float64  `json:"completion_rate"`
	AvgResolutionHours *float64 `json:"avg_resolution_hours,omitempty"`
}

// WorkerPerf summarizes one worker's throughput in the window.
type WorkerPerf struct {
	WorkerName     string   `json:"worker_name"`
	Department     string   `json:"department"`
	TotalAssigned  int      `json:"total_assigned"`
	CompletedTasks int      `json:"completed_tasks"`
	CompletionRate float64  `json:"completion_rate"`
	AvgRating      *float64 `json:"avg_rating,omitempty"`
}

// TypeCount is one slice of the issue-category distribution.
type TypeCount struct {
	Category   string  `json:"problem_type"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// HeatPoint is a geographic cluster of open issues.
type HeatPoint struct {
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	IssueCount  int      `json:"issue_count"`
	AvgPriority *float64 `json:"avg_priority,omitempty"`
}

// ExportReport names a CSV export the service can produce.
type ExportReport string

const (
	ExportTrends      ExportReport = "trends"
	ExportDepartments ExportReport = "departments"
	ExportWorkers     ExportReport = "workers"
	ExportIssues      ExportReport = "issues"
)

// AllExportReports contains every report_type the export endpoint accepts.
var AllExportReports = []ExportReport{
	ExportTrends,
	ExportDepartments,
	ExportWorkers,
	ExportIssues,
}

// CSVExport is a rendered report returned by the export endpoint.
type CSVExport struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
	Period      Period `json:"period"`
}
