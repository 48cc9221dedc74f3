package civicapi

import (
	"context"
	"net/http"

	"github.com/civica-dev/civica/internal/model"
)

// DistrictSummary fetches resolution counts scoped to the signed-in user's
// district.
func (c *Client) DistrictSummary(ctx context.Context, token string) (*model.DistrictSummary, error) {
	var summary model.DistrictSummary
	if err := c.do(ctx, http.MethodGet, "/users/dashboard/my-district", token, nil, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// DistrictDetail fetches the per-status and per-category breakdown for the
// signed-in user's district.
func (c *Client) DistrictDetail(ctx context.Context, token string) (*model.DistrictDetail, error) {
	var detail model.DistrictDetail
	if err := c.do(ctx, http.MethodGet, "/users/dashboard/my-district/details", token, nil, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// StateOverview fetches state-wide resolution counts.
func (c *Client) StateOverview(ctx context.Context, token string) (*model.DistrictSummary, error) {
	var summary model.DistrictSummary
	if err := c.do(ctx, http.MethodGet, "/users/dashboard/haryana-overview", token, nil, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ModerationQueue lists every report in the signed-in admin's district.
func (c *Client) ModerationQueue(ctx context.Context, token string) ([]model.Issue, error) {
	var issues []model.Issue
	if err := c.do(ctx, http.MethodGet, "/admin/problems", token, nil, nil, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}
