package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/civica-dev/civica/internal/format"
	"github.com/civica-dev/civica/internal/model"
	"github.com/civica-dev/civica/internal/rank"
)

// hotPriority is the service priority score at which a report gets the
// fire marker in listings.
const hotPriority = 7.5

// fallbackWidth is used when stdout is not a terminal
const fallbackWidth = 100

// TableFormatter formats output as terminal tables
type TableFormatter struct {
	// Width overrides terminal detection when > 0 (used in tests)
	Width int
}

// NewTableFormatter creates a table formatter sized to the terminal
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

func (f *TableFormatter) width() int {
	if f.Width > 0 {
		return f.Width
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallbackWidth
}

// Issues outputs reports as a table. Used for the citizen's own reports,
// the worker's task board and the admin moderation queue alike.
func (f *TableFormatter) Issues(issues []model.Issue, w io.Writer) error {
	if len(issues) == 0 {
		fmt.Fprintln(w, "No reports found.")
		return nil
	}

	const (
		colID       = 6
		colStatus   = 13
		colCategory = 16
		colDistrict = 12
		colAge      = 5
	)
	colTitle := max(24, f.width()-colID-colStatus-colCategory-colDistrict-colAge-10)

	fmt.Fprintf(w, "%-*s  %-*s  %-*s  %-*s  %-*s  %s\n",
		colID, "ID",
		colStatus, "Status",
		colCategory, "Category",
		colTitle, "Title",
		colDistrict, "District",
		"Age")
	fmt.Fprintln(w, strings.Repeat("-", colID+colStatus+colCategory+colTitle+colDistrict+colAge+10))

	for _, issue := range issues {
		title := issue.Title
		if issue.Priority >= hotPriority {
			title = "\U0001F525 " + title
		}
		title, visible := format.TruncateToWidth(title, colTitle)

		status := format.StatusIcon(issue.Status) + " " + colorStatus(issue.Status)
		statusWidth := format.DisplayWidth(format.StatusIcon(issue.Status)) + 1 + len(statusLabel(issue.Status))

		category, _ := format.TruncateToWidth(issue.Category, colCategory)
		district, _ := format.TruncateToWidth(issue.District, colDistrict)

		fmt.Fprintf(w, "%-*s  %s  %s  %s  %s  %s\n",
			colID, fmt.Sprintf("#%d", issue.ID),
			format.PadRight(status, statusWidth, colStatus),
			format.PadRight(category, format.DisplayWidth(category), colCategory),
			format.PadRight(title, visible, colTitle),
			format.PadRight(district, format.DisplayWidth(district), colDistrict),
			format.FormatAge(issue.Age()),
		)
	}

	printIssuesFooter(issues, w)
	return nil
}

// printIssuesFooter prints counts the reader would otherwise tally by hand
func printIssuesFooter(issues []model.Issue, w io.Writer) {
	var hot, awaiting int
	for _, issue := range issues {
		if issue.Priority >= hotPriority {
			hot++
		}
		if issue.Status == model.StatusCompleted {
			awaiting++
		}
	}

	if hot == 0 && awaiting == 0 {
		return
	}

	fmt.Fprintln(w)
	if hot > 0 {
		fmt.Fprintf(w, "  \U0001F525 %s high-priority reports\n", color.RedString("%d", hot))
	}
	if awaiting > 0 {
		fmt.Fprintf(w, "  %s %d completed reports awaiting verification\n",
			color.GreenString(format.CompletedIcon), awaiting)
	}
}

// Issue outputs one report in full
func (f *TableFormatter) Issue(issue *model.Issue, w io.Writer) error {
	if issue == nil {
		fmt.Fprintln(w, "No report loaded.")
		return nil
	}

	fmt.Fprintf(w, "#%d: %s\n", issue.ID, issue.Title)
	fmt.Fprintf(w, "  Status: %s %s | Priority: %.1f | Age: %s\n",
		format.StatusIcon(issue.Status), colorStatus(issue.Status),
		issue.Priority, format.FormatAge(issue.Age()))
	fmt.Fprintf(w, "  Category: %s | District: %s\n", issue.Category, issue.District)
	fmt.Fprintf(w, "  Reported by: %s\n", issue.SubmittedBy.FullName)

	if issue.Description != "" {
		fmt.Fprintf(w, "  Description: %s\n", issue.Description)
	}
	if issue.AssignedTo != nil {
		fmt.Fprintf(w, "  Assigned to: %s (%s)\n",
			issue.AssignedTo.User.FullName, issue.AssignedTo.Department.Name)
	}
	if len(issue.Media) > 0 {
		kinds := make([]string, 0, len(issue.Media))
		for _, m := range issue.Media {
			kinds = append(kinds, string(m.Kind))
		}
		fmt.Fprintf(w, "  Attachments: %s\n", strings.Join(kinds, ", "))
	}
	for _, fb := range issue.Feedback {
		fmt.Fprintf(w, "  Feedback: %s %s\n", stars(fb.Rating), fb.Comment)
	}

	return nil
}

// Notices outputs the inbox as a table, newest first
func (f *TableFormatter) Notices(notices []model.Notice, w io.Writer) error {
	if len(notices) == 0 {
		fmt.Fprintln(w, "No notifications.")
		return nil
	}

	const colTitle = 28
	colBody := max(24, f.width()-format.IconWidth-colTitle-5-8)

	unread := 0
	for _, n := range notices {
		if !n.Read {
			unread++
		}

		title, visible := format.TruncateToWidth(n.Title, colTitle)
		body, bodyVisible := format.TruncateToWidth(n.Body, colBody)

		fmt.Fprintf(w, "%s %s  %s  %s\n",
			format.NoticeIcon(n.Read),
			format.PadRight(title, visible, colTitle),
			format.PadRight(body, bodyVisible, colBody),
			format.FormatAge(time.Since(n.ReceivedAt)),
		)
	}

	fmt.Fprintln(w)
	if unread > 0 {
		fmt.Fprintf(w, "  %s unread of %d\n", color.CyanString("%d", unread), len(notices))
	} else {
		fmt.Fprintf(w, "  all %d read\n", len(notices))
	}
	return nil
}

// Profile outputs the signed-in account
func (f *TableFormatter) Profile(profile *model.Profile, w io.Writer) error {
	if profile == nil {
		fmt.Fprintln(w, "Not signed in.")
		return nil
	}

	fmt.Fprintf(w, "%s <%s>\n", color.New(color.Bold).Sprint(profile.FullName), profile.Email)
	fmt.Fprintf(w, "  Role: %s | District: %s %s\n",
		roleLabel(profile.Role), profile.District, profile.Pincode)

	account := color.GreenString("active")
	if !profile.IsActive {
		account = color.RedString("inactive")
	}
	fmt.Fprintf(w, "  Account: %s\n", account)
	return nil
}

// WorkerStats outputs a worker's own performance summary
func (f *TableFormatter) WorkerStats(stats *model.WorkerStats, w io.Writer) error {
	if stats == nil {
		fmt.Fprintln(w, "No statistics available.")
		return nil
	}

	fmt.Fprintf(w, "Worker: %s\n", stats.WorkerName)
	fmt.Fprintf(w, "  Tasks completed: %d\n", stats.TasksCompleted)
	if stats.AverageRating != nil {
		fmt.Fprintf(w, "  Average rating: %s %.1f\n", stars(int(*stats.AverageRating+0.5)), *stats.AverageRating)
	} else {
		fmt.Fprintln(w, "  Average rating: no ratings yet")
	}
	return nil
}

// District outputs the resolution summary for a district or the whole
// state, with breakdowns when the service provided them
func (f *TableFormatter) District(view DistrictView, w io.Writer) error {
	if view.Summary == nil {
		fmt.Fprintln(w, "No summary available.")
		return nil
	}

	scope := view.Summary.Scope
	if scope == "" {
		scope = "your district"
	}
	fmt.Fprintf(w, "Resolved in %s\n", color.New(color.Bold).Sprint(scope))
	fmt.Fprintf(w, "  All time: %s | Last 30 days: %s\n",
		color.GreenString("%d", view.Summary.TotalResolved),
		color.GreenString("%d", view.Summary.ResolvedLast30))

	if view.Detail == nil {
		return nil
	}

	fmt.Fprintf(w, "\n%s: %d open and resolved reports\n",
		view.Detail.DistrictName, view.Detail.TotalIssues)

	if len(view.Detail.StatusBreakdown) > 0 {
		fmt.Fprintln(w, "  By status:")
		for _, status := range model.AllStatuses {
			if count, ok := view.Detail.StatusBreakdown[string(status)]; ok {
				fmt.Fprintf(w, "    %s %-10s %d\n",
					format.StatusIcon(status), statusLabel(status), count)
			}
		}
	}

	if len(view.Detail.TypeBreakdown) > 0 {
		fmt.Fprintln(w, "  By category:")
		for _, category := range sortedKeys(view.Detail.TypeBreakdown) {
			fmt.Fprintf(w, "    %-18s %d\n", category, view.Detail.TypeBreakdown[category])
		}
	}

	return nil
}

// sortedKeys returns map keys in a stable order for rendering
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dashboard outputs the joined analytics bundle section by section.
// Failed slices are footnoted instead of blanking the whole screen.
func (f *TableFormatter) Dashboard(view DashboardView, w io.Writer) error {
	fmt.Fprintln(w, dashboardHeading(view.Window))

	created, assigned, completed, verified := sumTrends(view.Bundle.Trends)
	fmt.Fprintln(w, "\nActivity")
	fmt.Fprintf(w, "  Created %d | Assigned %d | Completed %d | Verified %d\n",
		created, assigned, completed, verified)
	if view.Delta != nil {
		d := view.Delta
		fmt.Fprintf(w, "  Since %s: %s created, %s completed\n",
			d.From.Format("Jan 2 15:04"), signed(d.Created), signed(d.Completed))
	}

	if len(view.Bundle.Departments) > 0 {
		fmt.Fprintln(w, "\nDepartments")
		fmt.Fprintf(w, "  %-20s  %7s  %9s  %6s  %9s\n", "Department", "Issues", "Completed", "Rate", "Avg hours")
		for _, d := range view.Bundle.Departments {
			name, _ := format.TruncateToWidth(d.Department, 20)
			hours := "-"
			if d.AvgResolutionHours != nil {
				hours = fmt.Sprintf("%.1f", *d.AvgResolutionHours)
			}
			fmt.Fprintf(w, "  %s  %7d  %9d  %5.1f%%  %9s\n",
				format.PadRight(name, format.DisplayWidth(name), 20),
				d.TotalIssues, d.CompletedIssues, d.CompletionRate, hours)
		}
	}

	if len(view.Bundle.Workers) > 0 {
		fmt.Fprintln(w, "\nWorkers")
		fmt.Fprintf(w, "  %-20s  %-16s  %8s  %9s  %6s\n", "Worker", "Department", "Assigned", "Completed", "Rate")
		for _, p := range view.Bundle.Workers {
			name := format.TruncateName(p.WorkerName, 20)
			dept, _ := format.TruncateToWidth(p.Department, 16)
			fmt.Fprintf(w, "  %s  %s  %8d  %9d  %5.1f%%\n",
				format.PadRight(name, format.DisplayWidth(name), 20),
				format.PadRight(dept, format.DisplayWidth(dept), 16),
				p.TotalAssigned, p.CompletedTasks, p.CompletionRate)
		}
	}

	if len(view.Categories) > 0 {
		fmt.Fprintln(w, "\nCategories by pressure")
		fmt.Fprintf(w, "  %-18s  %6s  %6s  %7s\n", "Category", "Count", "Share", "Urgency")
		for _, c := range view.Categories {
			fmt.Fprintf(w, "  %-18s  %6d  %5.1f%%  %7d\n", c.Category, c.Count, c.Percentage, c.Urgency)
		}
	}

	if len(view.Hotspots) > 0 {
		fmt.Fprintln(w, "\nHotspots")
		fmt.Fprintf(w, "  %-10s  %7s  %12s  %s\n", "Severity", "Reports", "Avg priority", "Location")
		for _, h := range view.Hotspots {
			avg := "-"
			if h.Cluster.AvgPriority != nil {
				avg = fmt.Sprintf("%.1f", *h.Cluster.AvgPriority)
			}
			fmt.Fprintf(w, "  %s  %7d  %12s  %.4f, %.4f\n",
				format.PadRight(colorSeverity(h.Severity), len(h.Severity.Display()), 10),
				h.Cluster.IssueCount, avg, h.Cluster.Latitude, h.Cluster.Longitude)
		}
	}

	if len(view.Failed) > 0 {
		fmt.Fprintln(w)
		for report, fault := range view.Failed {
			fmt.Fprintf(w, "  %s %s unavailable: %s\n", color.YellowString("!"), report, fault.Message)
		}
	}

	return nil
}

func dashboardHeading(window model.Window) string {
	heading := "Dashboard"
	if !window.Start.IsZero() || !window.End.IsZero() {
		start, end := "...", "today"
		if !window.Start.IsZero() {
			start = window.Start.Format(time.DateOnly)
		}
		if !window.End.IsZero() {
			end = window.End.Format(time.DateOnly)
		}
		heading += fmt.Sprintf(" (%s to %s)", start, end)
	} else {
		heading += " (service default window)"
	}
	if window.District != "" {
		heading += ", district " + window.District
	}
	return heading
}

func sumTrends(trends []model.TrendPoint) (created, assigned, completed, verified int) {
	for _, p := range trends {
		created += p.Created
		assigned += p.Assigned
		completed += p.Completed
		verified += p.Verified
	}
	return created, assigned, completed, verified
}

func signed(n int) string {
	if n >= 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func statusLabel(s model.Status) string {
	switch s {
	case model.StatusPending:
		return "Pending"
	case model.StatusAssigned:
		return "Assigned"
	case model.StatusCompleted:
		return "Completed"
	case model.StatusVerified:
		return "Verified"
	default:
		return string(s)
	}
}

func colorStatus(s model.Status) string {
	label := statusLabel(s)
	switch s {
	case model.StatusPending:
		return color.YellowString(label)
	case model.StatusAssigned:
		return color.CyanString(label)
	case model.StatusCompleted:
		return color.GreenString(label)
	case model.StatusVerified:
		return color.HiGreenString(label)
	default:
		return label
	}
}

func colorSeverity(s rank.Severity) string {
	label := s.Display()
	switch s {
	case rank.SeverityHigh:
		return color.RedString(label)
	case rank.SeverityElevated:
		return color.YellowString(label)
	default:
		return color.WhiteString(label)
	}
}

func roleLabel(r model.Role) string {
	switch r {
	case model.RoleCitizen:
		return "Citizen"
	case model.RoleWorker:
		return "Worker"
	case model.RoleAdmin:
		return "Administrator"
	case model.RoleSuperAdmin:
		return "Super Administrator"
	default:
		return string(r)
	}
}
