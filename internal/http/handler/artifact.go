package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"gaia/internal/model"
	"gaia/internal/naming"
	"gaia/internal/quality"
	"gaia/internal/service"
)

// RegisterArtifact registers a derived artifact (multipart field "file") with
// its declared index statistics.
//
// @Summary Register a derived artifact
// @Tags artifacts
// @Accept multipart/form-data
// @Param file formData file true "artifact payload"
// @Success 201 {object} model.Artifact
// @Failure 400 {object} handler.errorPayload
// @Router /artifacts [post]
func RegisterArtifact(svc service.ArtifactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		if fh.Size == 0 {
			return writeError(c, fiber.StatusBadRequest, "EMPTY_FILE", "uploaded file is empty")
		}

		stats, err := statsFromForm(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_STATS", err.Error())
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		artifact, err := svc.Register(c.UserContext(), f, service.RegisterInput{
			SceneID:     c.FormValue("scene_id"),
			JobID:       c.FormValue("job_id"),
			Kind:        model.ArtifactKind(c.FormValue("kind")),
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Stats:       stats,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "scene not found")
			case errors.Is(err, service.ErrIDRequired):
				return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "scene_id is required")
			case errors.Is(err, quality.ErrIndexOutOfRange), errors.Is(err, quality.ErrStatsInconsistent):
				return writeError(c, fiber.StatusBadRequest, "INDEX_OUT_OF_RANGE", err.Error())
			case errors.Is(err, service.ErrUnknownArtifactKind):
				return writeError(c, fiber.StatusBadRequest, "INVALID_KIND", err.Error())
			case errors.Is(err, service.ErrBadZonalHeader):
				return writeError(c, fiber.StatusBadRequest, "INVALID_ZONAL_CSV", err.Error())
			case errors.Is(err, naming.ErrBadAnalysisName), errors.Is(err, naming.ErrBadZonalName):
				return writeError(c, fiber.StatusBadRequest, "INVALID_FILENAME", err.Error())
			case errors.Is(err, service.ErrEmptyUpload):
				return writeError(c, fiber.StatusBadRequest, "EMPTY_FILE", "uploaded file is empty")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(artifact)
	}
}

// GetArtifact returns one artifact by ID.
//
// @Summary Get an artifact
// @Tags artifacts
// @Param id path string true "artifact id"
// @Success 200 {object} model.Artifact
// @Failure 404 {object} handler.errorPayload
// @Router /artifacts/{id} [get]
func GetArtifact(svc service.ArtifactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		artifact, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "artifact not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(artifact)
	}
}

// ListSceneArtifacts returns the artifacts derived from a scene.
//
// @Summary List a scene's artifacts
// @Tags artifacts
// @Param id path string true "scene id"
// @Success 200 {array} model.Artifact
// @Router /scenes/{id}/artifacts [get]
func ListSceneArtifacts(svc service.ArtifactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		artifacts, err := svc.ListByScene(c.UserContext(), id)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(artifacts)
	}
}

// DownloadArtifact returns a time-limited URL for the artifact object.
//
// @Summary Presign an artifact download
// @Tags artifacts
// @Param id path string true "artifact id"
// @Success 200 {object} map[string]string
// @Router /artifacts/{id}/download [get]
func DownloadArtifact(svc service.ArtifactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		url, err := svc.PresignDownload(c.UserContext(), id, presignExpiry)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "artifact not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"url": url, "expires_in": presignExpiry.String()})
	}
}

// statsFromForm parses the declared index statistics fields.
func statsFromForm(c *fiber.Ctx) (model.IndexStats, error) {
	var stats model.IndexStats
	for field, dst := range map[string]*float64{
		"stats_min":  &stats.Min,
		"stats_mean": &stats.Mean,
		"stats_max":  &stats.Max,
	} {
		raw := c.FormValue(field)
		if raw == "" {
			return stats, errors.New(field + " is required")
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return stats, errors.New(field + " must be a number")
		}
		*dst = v
	}
	return stats, nil
}
