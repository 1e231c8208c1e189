package postgres

import (
	"context"
	"database/sql"
	"time"

	"gaia/internal/model"
	"gaia/internal/repository"
)

// JobPostgres is a PostgreSQL implementation of repository.JobRepository.
type JobPostgres struct {
	db *sql.DB
}

// NewJobPostgres creates a new JobPostgres repository.
func NewJobPostgres(db *sql.DB) *JobPostgres {
	return &JobPostgres{db: db}
}

var _ repository.JobRepository = (*JobPostgres)(nil)

const jobColumns = `id, status, sensor, window_start, window_end,
	bbox_min_x, bbox_min_y, bbox_max_x, bbox_max_y,
	recurrence, parent_job_id, tag, error, last_run, created_at, updated_at`

func scanJob(row interface{ Scan(...any) error }) (*model.Job, error) {
	var (
		j      model.Job
		parent sql.NullString
		last   sql.NullTime
	)
	if err := row.Scan(
		&j.ID,
		&j.Status,
		&j.Sensor,
		&j.WindowStart,
		&j.WindowEnd,
		&j.BBox[0],
		&j.BBox[1],
		&j.BBox[2],
		&j.BBox[3],
		&j.Recurrence,
		&parent,
		&j.Tag,
		&j.Error,
		&last,
		&j.CreatedAt,
		&j.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if parent.Valid {
		j.ParentJobID = parent.String
	}
	if last.Valid {
		t := last.Time
		j.LastRun = &t
	}
	return &j, nil
}

// nullableID maps an empty string to SQL NULL for optional UUID columns.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}

// Create inserts a new job row and returns the stored record.
func (r *JobPostgres) Create(ctx context.Context, job *model.Job) (*model.Job, error) {
	const q = `
		INSERT INTO jobs (id, status, sensor, window_start, window_end,
			bbox_min_x, bbox_min_y, bbox_max_x, bbox_max_y,
			recurrence, parent_job_id, tag, error, last_run, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + jobColumns
	return scanJob(r.db.QueryRowContext(ctx, q,
		job.ID,
		job.Status,
		job.Sensor,
		job.WindowStart,
		job.WindowEnd,
		job.BBox[0],
		job.BBox[1],
		job.BBox[2],
		job.BBox[3],
		job.Recurrence,
		nullableID(job.ParentJobID),
		job.Tag,
		job.Error,
		job.LastRun,
		job.CreatedAt,
		job.UpdatedAt,
	))
}

// FindByID fetches a single job by its ID.
func (r *JobPostgres) FindByID(ctx context.Context, id string) (*model.Job, error) {
	const q = `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	return scanJob(r.db.QueryRowContext(ctx, q, id))
}

// List returns jobs using LIMIT/OFFSET pagination and a total count.
func (r *JobPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Job], error) {
	const qCount = `SELECT COUNT(*) FROM jobs`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + jobColumns + `
		FROM jobs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Job]{Items: items, Total: total}, nil
}

// ListRecurring returns all jobs with the given recurrence.
func (r *JobPostgres) ListRecurring(ctx context.Context, recurrence string) ([]model.Job, error) {
	const q = `SELECT ` + jobColumns + ` FROM jobs WHERE recurrence = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, recurrence)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *j)
	}
	return items, rows.Err()
}

// UpdateStatus sets the job status and error text.
func (r *JobPostgres) UpdateStatus(ctx context.Context, id string, status model.JobStatus, errText string) error {
	const q = `UPDATE jobs SET status = $2, error = $3, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, status, errText)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetLastRun records the last scheduler execution of a recurring job.
func (r *JobPostgres) SetLastRun(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE jobs SET last_run = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, at)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
