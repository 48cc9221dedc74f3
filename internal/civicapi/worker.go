package civicapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/civica-dev/civica/internal/model"
)

// Tasks lists the issues currently assigned to the signed-in worker.
func (c *Client) Tasks(ctx context.Context, token string) ([]model.Issue, error) {
	var tasks []model.Issue
	if err := c.do(ctx, http.MethodGet, "/worker/tasks", token, nil, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CompleteTask marks an assigned task done, attaching the proof photo and
// the worker's on-site coordinates.
func (c *Client) CompleteTask(ctx context.Context, token string, taskID int, proof model.CompletionProof, photo Upload) (*model.Issue, error) {
	fields := map[string]string{
		"latitude":  formatCoord(proof.Location.Latitude),
		"longitude": formatCoord(proof.Location.Longitude),
	}

	var issue model.Issue
	path := fmt.Sprintf("/worker/tasks/%d/complete", taskID)
	if err := c.postMultipart(ctx, path, token, "proof_file", photo, fields, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// WorkerStats fetches the signed-in worker's completion record.
func (c *Client) WorkerStats(ctx context.Context, token string) (*model.WorkerStats, error) {
	var stats model.WorkerStats
	if err := c.do(ctx, http.MethodGet, "/worker/me/stats", token, nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
