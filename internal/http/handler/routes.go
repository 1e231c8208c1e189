package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"gaia/internal/service"
)

// Services bundles the use-case dependencies the HTTP layer needs.
type Services struct {
	Scenes    service.SceneService
	Artifacts service.ArtifactService
	Jobs      service.JobService
	Packs     service.PackService
	Archive   service.ArchiveService
}

// RegisterRoutes attaches all HTTP routes to the provided Fiber app.
// Handlers stay thin: parse, delegate, translate errors.
func RegisterRoutes(app *fiber.App, db *sql.DB, svcs Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/scenes", ListScenes(svcs.Scenes))
	app.Post("/scenes", UploadScene(svcs.Scenes))
	app.Get("/scenes/:id", GetScene(svcs.Scenes))
	app.Delete("/scenes/:id", DeleteScene(svcs.Scenes))
	app.Get("/scenes/:id/provenance", GetSceneProvenance(svcs.Scenes))
	app.Get("/scenes/:id/download", DownloadScene(svcs.Scenes))
	app.Post("/scenes/:id/verify", VerifyScene(svcs.Scenes))
	app.Post("/scenes/:id/archive", ArchiveScene(svcs.Archive))
	app.Post("/scenes/:id/restore", RestoreScene(svcs.Archive))
	app.Get("/scenes/:id/artifacts", ListSceneArtifacts(svcs.Artifacts))

	app.Post("/artifacts", RegisterArtifact(svcs.Artifacts))
	app.Get("/artifacts/:id", GetArtifact(svcs.Artifacts))
	app.Get("/artifacts/:id/download", DownloadArtifact(svcs.Artifacts))

	app.Post("/jobs", CreateJob(svcs.Jobs))
	app.Get("/jobs", ListJobs(svcs.Jobs))
	app.Get("/jobs/:id", GetJob(svcs.Jobs))
	app.Post("/jobs/:id/pack", AssemblePack(svcs.Packs))
	app.Get("/jobs/:id/pack", GetJobPack(svcs.Packs))

	app.Get("/packs/:id", GetPack(svcs.Packs))
	app.Get("/packs/:id/download", DownloadPack(svcs.Packs))
	app.Post("/packs/:id/verify", VerifyPack(svcs.Packs))
}
