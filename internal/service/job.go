package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gaia/internal/model"
	"gaia/internal/repository"
)

// DailyRunTag marks child jobs the scheduler spawns from a standing mission.
const DailyRunTag = "DAILY_RUN"

var (
	ErrInvalidSensor     = errors.New("sensor must be OPTICAL or RADAR")
	ErrInvalidWindow     = errors.New("window_start must be before window_end")
	ErrInvalidBBox       = errors.New("bbox is not a valid WGS84 box")
	ErrInvalidRecurrence = errors.New("recurrence must be empty or DAILY")
	ErrBadTransition     = errors.New("illegal job status transition")
)

// CreateJobInput is a request to register a monitoring mission.
type CreateJobInput struct {
	Sensor      string
	WindowStart time.Time
	WindowEnd   time.Time
	BBox        model.BBox
	Recurrence  string
}

// JobListResult is the service-level DTO for paginated jobs.
type JobListResult struct {
	Items []model.Job `json:"data"`
	Total int         `json:"total"`
}

// JobService manages the monitoring job lifecycle. Status moves only along
// PENDING -> RUNNING -> COMPLETED|FAILED; terminal jobs never change again.
type JobService interface {
	// Create validates and registers a new mission in PENDING state.
	Create(ctx context.Context, in CreateJobInput) (*model.Job, error)

	// Get returns a job by ID.
	Get(ctx context.Context, id string) (*model.Job, error)

	// List returns jobs using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*JobListResult, error)

	// Transition moves a job to the next status, rejecting illegal steps.
	// errText is recorded only for FAILED.
	Transition(ctx context.Context, id string, next model.JobStatus, errText string) (*model.Job, error)

	// SpawnDailyRun creates a PENDING child job for a DAILY mission covering
	// the trailing 24 hours, and stamps the parent's last_run.
	SpawnDailyRun(ctx context.Context, parent *model.Job, now time.Time) (*model.Job, error)
}

type jobService struct {
	repo repository.JobRepository
}

// NewJobService constructs a new JobService.
func NewJobService(repo repository.JobRepository) JobService {
	return &jobService{repo: repo}
}

func (s *jobService) Create(ctx context.Context, in CreateJobInput) (*model.Job, error) {
	if in.Sensor != model.SensorOptical && in.Sensor != model.SensorRadar {
		return nil, ErrInvalidSensor
	}
	if in.WindowStart.IsZero() || in.WindowEnd.IsZero() || !in.WindowStart.Before(in.WindowEnd) {
		return nil, ErrInvalidWindow
	}
	if !in.BBox.Valid() {
		return nil, ErrInvalidBBox
	}
	if in.Recurrence != "" && in.Recurrence != model.RecurrenceDaily {
		return nil, ErrInvalidRecurrence
	}

	now := time.Now().UTC()
	job := &model.Job{
		ID:          uuid.New().String(),
		Status:      model.JobPending,
		Sensor:      in.Sensor,
		WindowStart: in.WindowStart.UTC(),
		WindowEnd:   in.WindowEnd.UTC(),
		BBox:        in.BBox,
		Recurrence:  in.Recurrence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return s.repo.Create(ctx, job)
}

func (s *jobService) Get(ctx context.Context, id string) (*model.Job, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

func (s *jobService) List(ctx context.Context, limit, offset int) (*JobListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &JobListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *jobService) Transition(ctx context.Context, id string, next model.JobStatus, errText string) (*model.Job, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrBadTransition, job.Status, next)
	}
	if next != model.JobFailed {
		errText = ""
	}
	if err := s.repo.UpdateStatus(ctx, id, next, errText); err != nil {
		return nil, err
	}
	job.Status = next
	job.Error = errText
	job.UpdatedAt = time.Now().UTC()
	return job, nil
}

func (s *jobService) SpawnDailyRun(ctx context.Context, parent *model.Job, now time.Time) (*model.Job, error) {
	if parent.Recurrence != model.RecurrenceDaily {
		return nil, fmt.Errorf("%w: parent %s is not DAILY", ErrInvalidRecurrence, parent.ID)
	}
	now = now.UTC()
	child := &model.Job{
		ID:          uuid.New().String(),
		Status:      model.JobPending,
		Sensor:      parent.Sensor,
		WindowStart: now.Add(-24 * time.Hour),
		WindowEnd:   now,
		BBox:        parent.BBox,
		ParentJobID: parent.ID,
		Tag:         DailyRunTag,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	stored, err := s.repo.Create(ctx, child)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetLastRun(ctx, parent.ID, now); err != nil {
		return nil, fmt.Errorf("child %s created but parent last_run update failed: %w", stored.ID, err)
	}
	return stored, nil
}
