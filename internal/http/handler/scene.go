package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"gaia/internal/model"
	"gaia/internal/naming"
	"gaia/internal/quality"
	"gaia/internal/service"
)

// presignExpiry is how long generated download URLs stay valid.
const presignExpiry = 15 * time.Minute

// ListScenes returns a paginated scene listing.
//
// @Summary List ingested scenes
// @Tags scenes
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} service.SceneListResult
// @Router /scenes [get]
func ListScenes(svc service.SceneService) fiber.Handler {
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

// UploadScene ingests a raw scene (multipart field "file") together with its
// provenance form fields. The filename must follow {date}_{sensor}_{tileID}.tif.
//
// @Summary Ingest a raw scene
// @Tags scenes
// @Accept multipart/form-data
// @Param file formData file true "scene payload"
// @Success 201 {object} model.Scene
// @Failure 400 {object} handler.errorPayload
// @Router /scenes [post]
func UploadScene(svc service.SceneService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		if fh.Size == 0 {
			return writeError(c, fiber.StatusBadRequest, "EMPTY_FILE", "uploaded file is empty")
		}

		prov, cloudCover, err := provenanceFromForm(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PROVENANCE", err.Error())
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		scene, err := svc.Ingest(c.UserContext(), f, service.IngestInput{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			CloudCover:  cloudCover,
			Provenance:  prov,
		})
		if err != nil {
			switch {
			case errors.Is(err, naming.ErrBadSceneName):
				return writeError(c, fiber.StatusBadRequest, "INVALID_FILENAME", err.Error())
			case errors.Is(err, service.ErrInvalidProvenance):
				return writeError(c, fiber.StatusBadRequest, "INVALID_PROVENANCE", err.Error())
			case errors.Is(err, quality.ErrCloudCoverRange):
				return writeError(c, fiber.StatusBadRequest, "INVALID_CLOUD_COVER", err.Error())
			case errors.Is(err, service.ErrEmptyUpload):
				return writeError(c, fiber.StatusBadRequest, "EMPTY_FILE", "uploaded file is empty")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(scene)
	}
}

// GetScene returns one scene by ID.
//
// @Summary Get a scene
// @Tags scenes
// @Param id path string true "scene id"
// @Success 200 {object} model.Scene
// @Failure 404 {object} handler.errorPayload
// @Router /scenes/{id} [get]
func GetScene(svc service.SceneService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		scene, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return sceneError(c, err)
		}
		return c.JSON(scene)
	}
}

// GetSceneProvenance returns the provenance record of a scene.
//
// @Summary Get scene provenance
// @Tags scenes
// @Param id path string true "scene id"
// @Success 200 {object} model.Provenance
// @Router /scenes/{id}/provenance [get]
func GetSceneProvenance(svc service.SceneService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		prov, err := svc.GetProvenance(c.UserContext(), id)
		if err != nil {
			return sceneError(c, err)
		}
		return c.JSON(prov)
	}
}

// DeleteScene removes a scene and its stored objects.
//
// @Summary Delete a scene
// @Tags scenes
// @Param id path string true "scene id"
// @Success 204
// @Router /scenes/{id} [delete]
func DeleteScene(svc service.SceneService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return sceneError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadScene returns a time-limited URL for the raw object.
//
// @Summary Presign a scene download
// @Tags scenes
// @Param id path string true "scene id"
// @Success 200 {object} map[string]string
// @Router /scenes/{id}/download [get]
func DownloadScene(svc service.SceneService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		url, err := svc.PresignDownload(c.UserContext(), id, presignExpiry)
		if err != nil {
			return sceneError(c, err)
		}
		return c.JSON(fiber.Map{"url": url, "expires_in": presignExpiry.String()})
	}
}

// VerifyScene re-hashes the stored object against the ingestion record.
//
// @Summary Verify scene integrity
// @Tags scenes
// @Param id path string true "scene id"
// @Success 200 {object} service.VerificationResult
// @Router /scenes/{id}/verify [post]
func VerifyScene(svc service.SceneService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		res, err := svc.Verify(c.UserContext(), id)
		if err != nil {
			return sceneError(c, err)
		}
		return c.JSON(res)
	}
}

// ArchiveScene moves a scene to the cold-storage vault.
//
// @Summary Archive a scene
// @Tags scenes
// @Param id path string true "scene id"
// @Success 200 {object} model.Scene
// @Router /scenes/{id}/archive [post]
func ArchiveScene(svc service.ArchiveService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		scene, err := svc.Archive(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrAlreadyArchived) {
				return writeError(c, fiber.StatusConflict, "ALREADY_ARCHIVED", "scene is already archived")
			}
			return sceneError(c, err)
		}
		return c.JSON(scene)
	}
}

// RestoreScene brings an archived scene back to the hot prefix.
//
// @Summary Restore an archived scene
// @Tags scenes
// @Param id path string true "scene id"
// @Success 200 {object} model.Scene
// @Router /scenes/{id}/restore [post]
func RestoreScene(svc service.ArchiveService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		scene, err := svc.Restore(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotArchived) {
				return writeError(c, fiber.StatusConflict, "NOT_ARCHIVED", "scene is not archived")
			}
			return sceneError(c, err)
		}
		return c.JSON(scene)
	}
}

// pathID validates the :id path parameter as a UUID.
func pathID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}
	return id, nil
}

// pageParams parses limit/offset query parameters.
func pageParams(c *fiber.Ctx) (limit, offset int, err error) {
	limit, err = strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		return 0, 0, writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		return 0, 0, writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
	}
	return limit, offset, nil
}

// sceneError maps service errors to the standard error envelope.
func sceneError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "scene not found")
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "id is required")
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// provenanceFromForm parses the provenance form fields of a scene upload.
func provenanceFromForm(c *fiber.Ctx) (model.Provenance, float64, error) {
	var prov model.Provenance
	prov.SourceURL = c.FormValue("source_url")
	prov.ProductID = c.FormValue("product_id")
	prov.ProcessingLevel = c.FormValue("processing_level")

	if raw := c.FormValue("acquisition_time"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return prov, 0, errors.New("acquisition_time must be RFC 3339")
		}
		prov.AcquisitionTime = at
	}

	bbox, err := parseBBox(c.FormValue("bbox"))
	if err != nil {
		return prov, 0, err
	}
	prov.BBox = bbox

	cloudCover := 0.0
	if raw := c.FormValue("cloud_cover"); raw != "" {
		cloudCover, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return prov, 0, errors.New("cloud_cover must be a number")
		}
	}
	return prov, cloudCover, nil
}

// parseBBox parses "minX,minY,maxX,maxY".
func parseBBox(raw string) (model.BBox, error) {
	var bbox model.BBox
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return bbox, errors.New("bbox must be minX,minY,maxX,maxY")
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return bbox, errors.New("bbox must contain four numbers")
		}
		bbox[i] = v
	}
	return bbox, nil
}
