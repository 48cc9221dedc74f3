package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/civica-dev/civica/internal/constants"
	"github.com/civica-dev/civica/internal/duration"
	"github.com/civica-dev/civica/internal/faults"
	"github.com/civica-dev/civica/internal/log"
	"github.com/civica-dev/civica/internal/model"
	"github.com/civica-dev/civica/internal/output"
	"github.com/civica-dev/civica/internal/rank"
	"github.com/civica-dev/civica/internal/state"
	"github.com/civica-dev/civica/internal/stats"
	"github.com/civica-dev/civica/internal/tui"
)

// dashRuntime bundles TUI-related state threaded through the dashboard command.
type dashRuntime struct {
	useTUI  bool
	events  chan tui.Event
	tuiDone chan error
}

// startTUI initializes and starts the TUI goroutine if TUI mode is enabled.
func (rt *dashRuntime) startTUI() {
	if !rt.useTUI {
		return
	}
	rt.events = make(chan tui.Event, 100)
	rt.tuiDone = make(chan error, 1)
	go func() {
		rt.tuiDone <- tui.Run(rt.events)
	}()
}

// close closes the event channel and waits for the TUI to finish.
func (rt *dashRuntime) close() {
	if rt.events == nil {
		return
	}
	close(rt.events)
	if rt.tuiDone != nil {
		<-rt.tuiDone
	}
	rt.events = nil
}

// sendEvent sends a task event to the TUI channel if it exists.
func (rt *dashRuntime) sendEvent(task tui.TaskID, status tui.TaskStatus, opts ...tui.TaskEventOption) {
	if rt.events == nil {
		return
	}
	tui.SendTaskEvent(rt.events, task, status, opts...)
}

// NewCmdDashboard creates the dashboard command.
func NewCmdDashboard(opts *Options) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the municipal analytics dashboard (admin)",
		Long: `Fetch the five analytics reports in parallel and render them as one
dashboard: daily trends, department and worker performance, the issue-type
distribution, and heat-map clusters ranked by severity. Reports fail
independently; a slice the service could not produce is footnoted while the
rest render normally.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd, opts, save)
		},
	}

	addDashboardFlags(cmd, opts)
	cmd.Flags().BoolVar(&save, "save", false, "Record this load for delta comparison on future runs")
	return cmd
}

// addDashboardFlags adds the window and TUI flags shared with export.
func addDashboardFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.District, "district", "d", "", "Scope reports to one district (default: configured district)")
	cmd.Flags().StringVar(&opts.From, "from", "", "Window start: a date (2025-06-01) or a duration in the past (30d)")
	cmd.Flags().StringVar(&opts.To, "to", "", "Window end: same forms as --from (default: today)")
	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable TUI progress (default: auto-detect)")
	addCommonFlags(cmd, opts)
	addProfilingFlags(cmd, opts)
}

func runDashboard(cmd *cobra.Command, opts *Options, save bool) error {
	ctx := cmd.Context()

	useTUI := shouldUseTUI(opts)
	cleanup, err := setupRuntime(opts, useTUI)
	if err != nil {
		return err
	}
	defer cleanup()

	rt := &dashRuntime{useTUI: useTUI}
	rt.startTUI()
	defer rt.close()

	e, err := buildEnv()
	if err != nil {
		return err
	}

	window, err := buildWindow(opts, e)
	if err != nil {
		return err
	}

	rt.sendEvent(tui.TaskAuth, tui.StatusRunning)
	if err := e.signIn(ctx); err != nil {
		rt.sendEvent(tui.TaskAuth, tui.StatusError, tui.WithError(err))
		return err
	}
	rt.sendEvent(tui.TaskAuth, tui.StatusComplete, tui.WithMessage(e.identityLabel()))

	dashboard := e.app.Dashboard
	if err := dashboard.SetWindow(window); err != nil {
		return err
	}

	for _, report := range state.AllReports {
		rt.sendEvent(taskFor(report), tui.StatusRunning)
	}
	dashboard.OnReport(func(report state.Report, fault *faults.Fault) {
		if fault != nil {
			rt.sendEvent(taskFor(report), tui.StatusError, tui.WithError(fault))
			return
		}
		rt.sendEvent(taskFor(report), tui.StatusComplete)
	})

	if err := dashboard.Load(ctx); err != nil {
		return err
	}
	rt.close()

	st := dashboard.State()
	engine := rank.NewEngine(e.cfg.GetSeverityWeights())
	hotspots := engine.RankHotspots(st.Bundle.HeatMap)
	categories := engine.RankCategories(st.Bundle.Types)

	view := output.DashboardView{
		Window:     st.Window,
		Bundle:     st.Bundle,
		Failed:     st.Failed,
		Hotspots:   hotspots,
		Categories: categories,
		Delta:      recordSnapshot(st, hotspots, window.District, save),
	}

	return e.formatter(opts).Dashboard(view, os.Stdout)
}

// buildWindow resolves the analytics window from the flags, falling back to
// the configured district. Zero bounds leave the service default in place.
func buildWindow(opts *Options, e *env) (model.Window, error) {
	window := model.Window{District: opts.District}
	if window.District == "" {
		window.District = e.cfg.District
	}

	if opts.From != "" {
		start, err := duration.ParseBound(opts.From)
		if err != nil {
			return model.Window{}, err
		}
		window.Start = start
	}
	if opts.To != "" {
		end, err := duration.ParseBound(opts.To)
		if err != nil {
			return model.Window{}, err
		}
		window.End = end
	}

	return window, nil
}

// recordSnapshot computes the delta against the last recorded load of the
// same district and, when requested, appends this load to the history. The
// history is advisory: failures degrade to a missing delta, never an error.
func recordSnapshot(st state.DashboardState, hotspots []rank.Hotspot, district string, save bool) *stats.Delta {
	store, err := stats.NewStore()
	if err != nil {
		log.Debug("snapshot history unavailable", "error", err)
		return nil
	}

	snap := buildSnapshot(st, hotspots, district)

	var delta *stats.Delta
	if prev := stats.LatestFor(store.Recent(constants.StatsMaxSnapshots), district); prev != nil {
		d := snap.DeltaFrom(*prev)
		delta = &d
	}

	if save {
		if err := store.Append(snap); err != nil {
			log.Warn("failed to record dashboard snapshot", "error", err)
		}
	}

	return delta
}

// buildSnapshot aggregates one dashboard load into the figures the history
// keeps: trend totals, per-category counts, and hotspot severity counts.
func buildSnapshot(st state.DashboardState, hotspots []rank.Hotspot, district string) stats.Snapshot {
	snap := stats.Snapshot{
		Timestamp:     time.Now().UTC(),
		District:      district,
		HotspotCount:  len(hotspots),
		HighCount:     len(rank.FilterBySeverity(hotspots, rank.SeverityHigh)),
		ElevatedCount: len(rank.FilterBySeverity(hotspots, rank.SeverityElevated)),
	}

	if !st.Window.Start.IsZero() {
		snap.WindowStart = st.Window.Start.Format(time.DateOnly)
	}
	if !st.Window.End.IsZero() {
		snap.WindowEnd = st.Window.End.Format(time.DateOnly)
	}

	for _, point := range st.Bundle.Trends {
		snap.CreatedCount += point.Created
		snap.AssignedCount += point.Assigned
		snap.CompletedCount += point.Completed
		snap.VerifiedCount += point.Verified
	}

	if len(st.Bundle.Types) > 0 {
		snap.CategoryCounts = make(map[string]int, len(st.Bundle.Types))
		for _, tc := range st.Bundle.Types {
			snap.CategoryCounts[tc.Category] = tc.Count
		}
	}

	return snap
}

// taskFor maps a dashboard report to its TUI progress row.
func taskFor(report state.Report) tui.TaskID {
	switch report {
	case state.ReportTrends:
		return tui.TaskTrends
	case state.ReportDepartments:
		return tui.TaskDepartments
	case state.ReportWorkers:
		return tui.TaskWorkers
	case state.ReportTypes:
		return tui.TaskTypes
	default:
		return tui.TaskHeatMap
	}
}
