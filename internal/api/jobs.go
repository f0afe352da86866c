package api

import (
	"context"
	"fmt"

	"github.com/Kimutaijeremy/handyproconnect/internal/models"
)

// ListJobs returns every job visible to the caller: the whole pool for
// professionals, their own jobs for customers.
func (c *Client) ListJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	if err := c.get(ctx, "list jobs", "/jobs/", &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// ListOpenJobs returns jobs still accepting quotes. Professionals only.
func (c *Client) ListOpenJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	if err := c.get(ctx, "list open jobs", "/jobs/open", &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob retrieves a job by ID.
func (c *Client) GetJob(ctx context.Context, jobID int64) (*models.Job, error) {
	var job models.Job
	if err := c.get(ctx, "get job", fmt.Sprintf("/jobs/%d", jobID), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJob posts a new job for the calling customer.
func (c *Client) CreateJob(ctx context.Context, draft models.JobDraft) (*models.Job, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	var job models.Job
	if err := c.post(ctx, "create job", "/jobs/", draft, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
