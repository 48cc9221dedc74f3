package state

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/civica-dev/civica/internal/faults"
	"github.com/civica-dev/civica/internal/log"
	"github.com/civica-dev/civica/internal/model"
)

// Report names one slice of the analytics bundle.
type Report string

const (
	ReportTrends      Report = "daily_trends"
	ReportDepartments Report = "department_performance"
	ReportWorkers     Report = "worker_performance"
	ReportTypes       Report = "issue_types"
	ReportHeatMap     Report = "heat_map"
)

// AllReports lists the slices a dashboard load fans out to.
var AllReports = []Report{
	ReportTrends,
	ReportDepartments,
	ReportWorkers,
	ReportTypes,
	ReportHeatMap,
}

// AnalyticsAPI is the slice of the service client the dashboard drives.
type AnalyticsAPI interface {
	DailyTrends(ctx context.Context, token string, window model.Window) ([]model.TrendPoint, error)
	DepartmentPerformance(ctx context.Context, token string, window model.Window) ([]model.DepartmentPerf, error)
	WorkerPerformance(ctx context.Context, token string, window model.Window) ([]model.WorkerPerf, error)
	TypeDistribution(ctx context.Context, token string, window model.Window) ([]model.TypeCount, error)
	HeatMap(ctx context.Context, token string, district string) ([]model.HeatPoint, error)
	ExportCSV(ctx context.Context, token string, report model.ExportReport, window model.Window) (*model.CSVExport, error)
}

// AnalyticsBundle is the dashboard payload: five independently fetched
// reports. A slice whose fetch failed is left empty.
type AnalyticsBundle struct {
	Trends      []model.TrendPoint
	Departments []model.DepartmentPerf
	Workers     []model.WorkerPerf
	Types       []model.TypeCount
	HeatMap     []model.HeatPoint
}

// DashboardState is the observable snapshot of the aggregator. Err is
// reserved for failures that prevented dispatch entirely (no session);
// per-report failures land in Failed and degrade that slice to empty data
// so the dashboard still renders partially.
type DashboardState struct {
	Window  model.Window
	Bundle  AnalyticsBundle
	Failed  map[Report]*faults.Fault
	Loading bool
	Err     *faults.Fault
}

// Dashboard joins the five analytics fetches into a single loading state.
// Loading flips true before the fan-out and false only after every report
// has settled, success or failure, with no early exit.
type Dashboard struct {
	mu      sync.Mutex
	signal  Signal
	session *Session
	api     AnalyticsAPI

	window  model.Window
	bundle  AnalyticsBundle
	failed  map[Report]*faults.Fault
	loading bool
	err     *faults.Fault

	onReport func(Report, *faults.Fault)
}

// NewDashboard returns an empty dashboard gated on the given session. The
// window starts zero, which the service reads as its default range.
func NewDashboard(api AnalyticsAPI, session *Session) *Dashboard {
	return &Dashboard{api: api, session: session}
}

// Subscribe registers an observer for dashboard changes.
func (d *Dashboard) Subscribe(fn func()) (unsubscribe func()) {
	return d.signal.Subscribe(fn)
}

// State returns a snapshot of the dashboard. The failure map is copied;
// bundle slices are shared and must not be mutated by observers.
func (d *Dashboard) State() DashboardState {
	d.mu.Lock()
	defer d.mu.Unlock()

	failed := make(map[Report]*faults.Fault, len(d.failed))
	for report, fault := range d.failed {
		failed[report] = fault
	}

	return DashboardState{
		Window:  d.window,
		Bundle:  d.bundle,
		Failed:  failed,
		Loading: d.loading,
		Err:     d.err,
	}
}

// OnReport registers a hook invoked as each report settles during a load,
// with a nil fault on success. The hook runs on the fetch goroutines, so a
// UI feeding from it must tolerate concurrent calls; the progress event
// channel does.
func (d *Dashboard) OnReport(fn func(Report, *faults.Fault)) {
	d.mu.Lock()
	d.onReport = fn
	d.mu.Unlock()
}

// SetWindow records the date range for subsequent loads. Changing the
// window never refetches on its own; the caller decides when to reload.
func (d *Dashboard) SetWindow(window model.Window) error {
	if err := window.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	d.window = window
	d.mu.Unlock()
	d.signal.Notify()
	return nil
}

// Window returns the range the next load will use.
func (d *Dashboard) Window() model.Window {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.window
}

// Load fans out the five report fetches and joins them. Reports fail
// independently: a failed slice stays empty and is recorded in Failed
// while its siblings land normally. Only a missing session sets the
// aggregate error, before anything is dispatched.
func (d *Dashboard) Load(ctx context.Context) error {
	cred, err := d.session.Credential()
	if err != nil {
		fault := faults.Classify(err)
		d.mu.Lock()
		d.loading = false
		d.err = fault
		d.mu.Unlock()
		d.signal.Notify()
		return fault
	}

	d.mu.Lock()
	window := d.window
	onReport := d.onReport
	d.err = nil
	d.loading = true
	d.mu.Unlock()
	d.signal.Notify()

	var (
		bundle AnalyticsBundle
		failMu sync.Mutex
		failed = map[Report]*faults.Fault{}
	)
	settle := func(report Report, fault *faults.Fault) {
		if onReport != nil {
			onReport(report, fault)
		}
	}
	fail := func(report Report, err error) {
		fault := faults.Classify(err)
		log.Warn("dashboard report failed",
			"report", string(report),
			"category", string(fault.Category),
			"detail", fault.Detail)
		failMu.Lock()
		failed[report] = fault
		failMu.Unlock()
		settle(report, fault)
	}

	// Each goroutine records its own failure and returns nil so the join
	// waits for all five; one report failing must not cancel its siblings.
	var g errgroup.Group
	g.Go(func() error {
		trends, err := d.api.DailyTrends(ctx, cred.Token, window)
		if err != nil {
			fail(ReportTrends, err)
			return nil
		}
		bundle.Trends = trends
		settle(ReportTrends, nil)
		return nil
	})
	g.Go(func() error {
		departments, err := d.api.DepartmentPerformance(ctx, cred.Token, window)
		if err != nil {
			fail(ReportDepartments, err)
			return nil
		}
		bundle.Departments = departments
		settle(ReportDepartments, nil)
		return nil
	})
	g.Go(func() error {
		workers, err := d.api.WorkerPerformance(ctx, cred.Token, window)
		if err != nil {
			fail(ReportWorkers, err)
			return nil
		}
		bundle.Workers = workers
		settle(ReportWorkers, nil)
		return nil
	})
	g.Go(func() error {
		types, err := d.api.TypeDistribution(ctx, cred.Token, window)
		if err != nil {
			fail(ReportTypes, err)
			return nil
		}
		bundle.Types = types
		settle(ReportTypes, nil)
		return nil
	})
	g.Go(func() error {
		points, err := d.api.HeatMap(ctx, cred.Token, window.District)
		if err != nil {
			fail(ReportHeatMap, err)
			return nil
		}
		bundle.HeatMap = points
		settle(ReportHeatMap, nil)
		return nil
	})
	_ = g.Wait()

	if !d.session.Current(cred.Epoch) {
		log.Debug("discarding stale dashboard results after session reset")
		return nil
	}

	d.mu.Lock()
	d.bundle = bundle
	d.failed = failed
	d.loading = false
	d.mu.Unlock()
	d.signal.Notify()

	for _, fault := range failed {
		if fault.IsAuth() {
			d.session.Invalidate()
			break
		}
	}
	return nil
}

// Export renders one report as CSV server-side under the current window.
// Exports are not aggregated: without a session the call fails outright,
// and failures propagate to the caller instead of the dashboard state.
func (d *Dashboard) Export(ctx context.Context, report model.ExportReport) (*model.CSVExport, error) {
	cred, err := d.session.Credential()
	if err != nil {
		return nil, faults.Classify(err)
	}

	export, apiErr := d.api.ExportCSV(ctx, cred.Token, report, d.Window())
	if apiErr != nil {
		fault := faults.Classify(apiErr)
		if fault.IsAuth() && d.session.Current(cred.Epoch) {
			d.session.Invalidate()
		}
		return nil, fault
	}
	return export, nil
}

// Reset returns the dashboard to its initial state. Runs during the logout
// cascade.
func (d *Dashboard) Reset() {
	d.mu.Lock()
	d.window = model.Window{}
	d.bundle = AnalyticsBundle{}
	d.failed = nil
	d.loading = false
	d.err = nil
	d.mu.Unlock()
	d.signal.Notify()
}
