package repository

import (
	"context"
	"time"

	"gaia/internal/model"
)

// JobRepository defines data access for monitoring jobs.
type JobRepository interface {
	// Create inserts a new job row and returns the stored job.
	Create(ctx context.Context, job *model.Job) (*model.Job, error)

	// FindByID returns a job by its ID.
	FindByID(ctx context.Context, id string) (*model.Job, error)

	// List returns a paginated list of jobs, newest first.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Job], error)

	// ListRecurring returns all jobs with the given recurrence.
	ListRecurring(ctx context.Context, recurrence string) ([]model.Job, error)

	// UpdateStatus sets the job status, error text and updated_at.
	UpdateStatus(ctx context.Context, id string, status model.JobStatus, errText string) error

	// SetLastRun records the last scheduler execution of a recurring job.
	SetLastRun(ctx context.Context, id string, at time.Time) error
}
