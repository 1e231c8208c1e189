package model

import "time"

// JobStatus is the lifecycle state of a monitoring job.
type JobStatus string

const (
	JobPending   JobStatus = "PENDING"
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
)

// Sensor families the platform accepts missions for.
const (
	SensorOptical = "OPTICAL"
	SensorRadar   = "RADAR"
)

// RecurrenceDaily marks a job as a standing daily mission. The scheduler
// spawns a child job per execution; the parent only tracks last_run.
const RecurrenceDaily = "DAILY"

// Job is one monitoring mission over an area of interest and time window.
type Job struct {
	ID          string     `json:"id"`
	Status      JobStatus  `json:"status"`
	Sensor      string     `json:"sensor"`
	WindowStart time.Time  `json:"window_start"`
	WindowEnd   time.Time  `json:"window_end"`
	BBox        BBox       `json:"bbox"`
	Recurrence  string     `json:"recurrence,omitempty"`
	ParentJobID string     `json:"parent_job_id,omitempty"`
	Tag         string     `json:"tag,omitempty"`
	Error       string     `json:"error,omitempty"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CanTransition reports whether moving from the current status to next is a
// legal lifecycle step. Terminal states never transition.
func (j *Job) CanTransition(next JobStatus) bool {
	switch j.Status {
	case JobPending:
		return next == JobRunning || next == JobFailed
	case JobRunning:
		return next == JobCompleted || next == JobFailed
	default:
		return false
	}
}
