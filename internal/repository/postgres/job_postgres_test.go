package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"gaia/internal/model"
	"gaia/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jobCols = []string{
	"id", "status", "sensor", "window_start", "window_end",
	"bbox_min_x", "bbox_min_y", "bbox_max_x", "bbox_max_y",
	"recurrence", "parent_job_id", "tag", "error", "last_run", "created_at", "updated_at",
}

func jobRow(id string, recurrence string, lastRun any, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(jobCols).AddRow(
		id, "PENDING", "OPTICAL", now.Add(-24*time.Hour), now,
		16.2, 48.1, 16.5, 48.3,
		recurrence, nil, "", "", lastRun, now, now,
	)
}

func TestJobPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewJobPostgres(db)
	now := time.Now().UTC()

	job := &model.Job{
		ID:          "job-uuid",
		Status:      model.JobPending,
		Sensor:      model.SensorOptical,
		WindowStart: now.Add(-24 * time.Hour),
		WindowEnd:   now,
		BBox:        model.BBox{16.2, 48.1, 16.5, 48.3},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectQuery("INSERT INTO jobs").
		WillReturnRows(jobRow(job.ID, "", nil, now))

	result, err := repo.Create(context.Background(), job)

	assert.NoError(t, err)
	assert.Equal(t, job.ID, result.ID)
	assert.Empty(t, result.ParentJobID)
	assert.Nil(t, result.LastRun)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewJobPostgres(db)
	now := time.Now().UTC()

	t.Run("found with last_run", func(t *testing.T) {
		lastRun := now.Add(-2 * time.Hour)
		mock.ExpectQuery("SELECT (.+) FROM jobs WHERE id = ?").
			WithArgs("job-id").
			WillReturnRows(jobRow("job-id", "DAILY", lastRun, now))

		job, err := repo.FindByID(context.Background(), "job-id")

		assert.NoError(t, err)
		assert.Equal(t, model.RecurrenceDaily, job.Recurrence)
		require.NotNil(t, job.LastRun)
		assert.WithinDuration(t, lastRun, *job.LastRun, time.Second)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM jobs WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		job, err := repo.FindByID(context.Background(), "missing")

		assert.True(t, IsNoRowsError(err))
		assert.Nil(t, job)
	})
}

func TestJobPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewJobPostgres(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM jobs").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT (.+) FROM jobs ORDER BY").
		WithArgs(10, 0).
		WillReturnRows(jobRow("job-id", "", nil, time.Now()))

	res, err := repo.List(context.Background(), repository.PageQuery{Limit: 10, Offset: 0})

	assert.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Items, 1)
}

func TestJobPostgres_ListRecurring(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewJobPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM jobs WHERE recurrence = ?").
		WithArgs("DAILY").
		WillReturnRows(jobRow("job-id", "DAILY", nil, time.Now()))

	jobs, err := repo.ListRecurring(context.Background(), model.RecurrenceDaily)

	assert.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestJobPostgres_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewJobPostgres(db)

	t.Run("updated", func(t *testing.T) {
		mock.ExpectExec("UPDATE jobs SET status").
			WithArgs("job-id", model.JobFailed, "no scenes in window").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(context.Background(), "job-id", model.JobFailed, "no scenes in window")
		assert.NoError(t, err)
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec("UPDATE jobs SET status").
			WithArgs("missing", model.JobRunning, "").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(context.Background(), "missing", model.JobRunning, "")
		assert.True(t, IsNoRowsError(err))
	})
}

func TestJobPostgres_SetLastRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewJobPostgres(db)
	at := time.Now().UTC()

	mock.ExpectExec("UPDATE jobs SET last_run").
		WithArgs("job-id", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.SetLastRun(context.Background(), "job-id", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
