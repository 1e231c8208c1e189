package repository

import (
	"context"

	"gaia/internal/model"
)

// ArtifactRepository defines data access for derived artifacts.
type ArtifactRepository interface {
	// Create inserts an artifact row and returns the stored artifact.
	Create(ctx context.Context, a *model.Artifact) (*model.Artifact, error)

	// FindByID returns an artifact by its ID.
	FindByID(ctx context.Context, id string) (*model.Artifact, error)

	// ListByScene returns all artifacts derived from a scene.
	ListByScene(ctx context.Context, sceneID string) ([]model.Artifact, error)

	// ListByJob returns all artifacts attributed to a job.
	ListByJob(ctx context.Context, jobID string) ([]model.Artifact, error)
}

// PackRepository defines data access for assembled evidence packs.
type PackRepository interface {
	// Create inserts an evidence pack row and returns the stored pack.
	Create(ctx context.Context, p *model.EvidencePack) (*model.EvidencePack, error)

	// FindByID returns a pack by its ID.
	FindByID(ctx context.Context, id string) (*model.EvidencePack, error)

	// FindByJob returns the most recent pack assembled for a job.
	FindByJob(ctx context.Context, jobID string) (*model.EvidencePack, error)
}
