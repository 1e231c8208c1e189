package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"gaia/internal/model"
	"gaia/internal/service"
)

// createJobRequest is the JSON body for registering a mission.
type createJobRequest struct {
	Sensor      string     `json:"sensor"`
	WindowStart time.Time  `json:"window_start"`
	WindowEnd   time.Time  `json:"window_end"`
	BBox        model.BBox `json:"bbox"`
	Recurrence  string     `json:"recurrence,omitempty"`
}

// CreateJob registers a monitoring mission.
//
// @Summary Create a monitoring job
// @Tags jobs
// @Accept json
// @Param job body handler.createJobRequest true "mission definition"
// @Success 201 {object} model.Job
// @Failure 400 {object} handler.errorPayload
// @Router /jobs [post]
func CreateJob(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createJobRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		job, err := svc.Create(c.UserContext(), service.CreateJobInput{
			Sensor:      req.Sensor,
			WindowStart: req.WindowStart,
			WindowEnd:   req.WindowEnd,
			BBox:        req.BBox,
			Recurrence:  req.Recurrence,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidSensor),
				errors.Is(err, service.ErrInvalidWindow),
				errors.Is(err, service.ErrInvalidBBox),
				errors.Is(err, service.ErrInvalidRecurrence):
				return writeError(c, fiber.StatusBadRequest, "INVALID_JOB", err.Error())
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(job)
	}
}

// ListJobs returns a paginated job listing.
//
// @Summary List jobs
// @Tags jobs
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} service.JobListResult
// @Router /jobs [get]
func ListJobs(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return err
		}
		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetJob returns one job by ID.
//
// @Summary Get a job
// @Tags jobs
// @Param id path string true "job id"
// @Success 200 {object} model.Job
// @Failure 404 {object} handler.errorPayload
// @Router /jobs/{id} [get]
func GetJob(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		job, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "job not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(job)
	}
}
