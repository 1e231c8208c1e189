package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"gaia/internal/service"
)

// AssemblePack assembles an evidence pack for a job.
//
// @Summary Assemble an evidence pack
// @Tags packs
// @Param id path string true "job id"
// @Success 201 {object} model.EvidencePack
// @Failure 422 {object} handler.errorPayload
// @Router /jobs/{id}/pack [post]
func AssemblePack(svc service.PackService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		jobID, err := pathID(c)
		if err != nil {
			return err
		}
		pack, err := svc.Assemble(c.UserContext(), jobID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "job not found")
			case errors.Is(err, service.ErrNoEvidence):
				return writeError(c, fiber.StatusUnprocessableEntity, "NO_EVIDENCE", "no scenes or artifacts in the job window")
			case errors.Is(err, service.ErrUnhealthyMember):
				return writeError(c, fiber.StatusUnprocessableEntity, "UNHEALTHY_MEMBER", err.Error())
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(pack)
	}
}

// GetJobPack returns the latest pack assembled for a job.
//
// @Summary Get a job's latest pack
// @Tags packs
// @Param id path string true "job id"
// @Success 200 {object} model.EvidencePack
// @Router /jobs/{id}/pack [get]
func GetJobPack(svc service.PackService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		jobID, err := pathID(c)
		if err != nil {
			return err
		}
		pack, err := svc.GetByJob(c.UserContext(), jobID)
		if err != nil {
			return packError(c, err)
		}
		return c.JSON(pack)
	}
}

// GetPack returns one pack by ID.
//
// @Summary Get an evidence pack
// @Tags packs
// @Param id path string true "pack id"
// @Success 200 {object} model.EvidencePack
// @Router /packs/{id} [get]
func GetPack(svc service.PackService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		pack, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return packError(c, err)
		}
		return c.JSON(pack)
	}
}

// DownloadPack returns a time-limited URL for the pack document.
//
// @Summary Presign a pack download
// @Tags packs
// @Param id path string true "pack id"
// @Success 200 {object} map[string]string
// @Router /packs/{id}/download [get]
func DownloadPack(svc service.PackService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		url, err := svc.PresignDownload(c.UserContext(), id, presignExpiry)
		if err != nil {
			return packError(c, err)
		}
		return c.JSON(fiber.Map{"url": url, "expires_in": presignExpiry.String()})
	}
}

// VerifyPack re-hashes every pack member against the sealed manifest.
//
// @Summary Verify an evidence pack
// @Tags packs
// @Param id path string true "pack id"
// @Success 200 {object} service.PackVerification
// @Router /packs/{id}/verify [post]
func VerifyPack(svc service.PackService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		res, err := svc.Verify(c.UserContext(), id)
		if err != nil {
			return packError(c, err)
		}
		return c.JSON(res)
	}
}

func packError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrNotFound) {
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "pack not found")
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
