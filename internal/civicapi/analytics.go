package civicapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/civica-dev/civica/internal/model"
)

// windowQuery renders an analytics window as the service's query parameters.
// Zero bounds are omitted; the server then applies its default range.
func windowQuery(window model.Window) url.Values {
	query := url.Values{}
	if !window.Start.IsZero() {
		query.Set("start_date", window.Start.Format("2006-01-02T15:04:05"))
	}
	if !window.End.IsZero() {
		query.Set("end_date", window.End.Format("2006-01-02T15:04:05"))
	}
	if window.District != "" {
		query.Set("district", window.District)
	}
	return query
}

// DailyTrends fetches per-day issue counts by status over the window.
func (c *Client) DailyTrends(ctx context.Context, token string, window model.Window) ([]model.TrendPoint, error) {
	var resp struct {
		Period model.Period       `json:"period"`
		Trends []model.TrendPoint `json:"daily_trends"`
	}
	if err := c.do(ctx, http.MethodGet, "/analytics/trends/daily", token, windowQuery(window), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Trends, nil
}

// DepartmentPerformance fetches per-department completion statistics.
func (c *Client) DepartmentPerformance(ctx context.Context, token string, window model.Window) ([]model.DepartmentPerf, error) {
	var resp struct {
		Period      model.Period           `json:"period"`
		Departments []model.DepartmentPerf `json:"departments"`
	}
	if err := c.do(ctx, http.MethodGet, "/analytics/department-performance", token, windowQuery(window), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Departments, nil
}

// WorkerPerformance fetches per-worker completion statistics.
func (c *Client) WorkerPerformance(ctx context.Context, token string, window model.Window) ([]model.WorkerPerf, error) {
	var resp struct {
		Period  model.Period       `json:"period"`
		Workers []model.WorkerPerf `json:"workers"`
	}
	if err := c.do(ctx, http.MethodGet, "/analytics/worker-performance", token, windowQuery(window), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Workers, nil
}

// TypeDistribution fetches issue counts and shares per category.
func (c *Client) TypeDistribution(ctx context.Context, token string, window model.Window) ([]model.TypeCount, error) {
	var resp struct {
		Period model.Period      `json:"period"`
		Total  int               `json:"total_issues"`
		Types  []model.TypeCount `json:"issue_types"`
	}
	if err := c.do(ctx, http.MethodGet, "/analytics/issue-types-distribution", token, windowQuery(window), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Types, nil
}

// HeatMap fetches location clusters of open and resolved issues. Only the
// district filter applies; the endpoint ignores time bounds.
func (c *Client) HeatMap(ctx context.Context, token string, district string) ([]model.HeatPoint, error) {
	query := url.Values{}
	if district != "" {
		query.Set("district", district)
	}

	var resp struct {
		District string            `json:"district"`
		Points   []model.HeatPoint `json:"heat_points"`
		Total    int               `json:"total_clusters"`
	}
	if err := c.do(ctx, http.MethodGet, "/analytics/heat-map-data", token, query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Points, nil
}

// ExportCSV renders one analytics report as CSV on the server and returns
// its content.
func (c *Client) ExportCSV(ctx context.Context, token string, report model.ExportReport, window model.Window) (*model.CSVExport, error) {
	query := windowQuery(window)
	query.Set("report_type", string(report))

	var export model.CSVExport
	if err := c.do(ctx, http.MethodGet, "/analytics/export/csv", token, query, nil, &export); err != nil {
		return nil, err
	}
	return &export, nil
}
