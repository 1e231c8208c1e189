package postgres

import (
	"context"
	"database/sql"

	"gaia/internal/model"
	"gaia/internal/repository"
)

// ArtifactPostgres is a PostgreSQL implementation of repository.ArtifactRepository.
type ArtifactPostgres struct {
	db *sql.DB
}

// NewArtifactPostgres creates a new ArtifactPostgres repository.
func NewArtifactPostgres(db *sql.DB) *ArtifactPostgres {
	return &ArtifactPostgres{db: db}
}

var _ repository.ArtifactRepository = (*ArtifactPostgres)(nil)

const artifactColumns = `id, scene_id, job_id, kind, index_name, filename, storage_path,
	size, sha256, stat_min, stat_mean, stat_max, alert_level, created_at`

func scanArtifact(row interface{ Scan(...any) error }) (*model.Artifact, error) {
	var (
		a     model.Artifact
		jobID sql.NullString
	)
	if err := row.Scan(
		&a.ID,
		&a.SceneID,
		&jobID,
		&a.Kind,
		&a.IndexName,
		&a.Filename,
		&a.StoragePath,
		&a.Size,
		&a.SHA256,
		&a.Stats.Min,
		&a.Stats.Mean,
		&a.Stats.Max,
		&a.AlertLevel,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	if jobID.Valid {
		a.JobID = jobID.String
	}
	return &a, nil
}

// Create inserts a new artifact row and returns the stored record.
func (r *ArtifactPostgres) Create(ctx context.Context, a *model.Artifact) (*model.Artifact, error) {
	const q = `
		INSERT INTO artifacts (id, scene_id, job_id, kind, index_name, filename, storage_path,
			size, sha256, stat_min, stat_mean, stat_max, alert_level, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + artifactColumns
	return scanArtifact(r.db.QueryRowContext(ctx, q,
		a.ID,
		a.SceneID,
		nullableID(a.JobID),
		a.Kind,
		a.IndexName,
		a.Filename,
		a.StoragePath,
		a.Size,
		a.SHA256,
		a.Stats.Min,
		a.Stats.Mean,
		a.Stats.Max,
		a.AlertLevel,
		a.CreatedAt,
	))
}

// FindByID fetches a single artifact by its ID.
func (r *ArtifactPostgres) FindByID(ctx context.Context, id string) (*model.Artifact, error) {
	const q = `SELECT ` + artifactColumns + ` FROM artifacts WHERE id = $1`
	return scanArtifact(r.db.QueryRowContext(ctx, q, id))
}

// ListByScene returns all artifacts derived from a scene, oldest first.
func (r *ArtifactPostgres) ListByScene(ctx context.Context, sceneID string) ([]model.Artifact, error) {
	const q = `SELECT ` + artifactColumns + ` FROM artifacts WHERE scene_id = $1 ORDER BY created_at ASC`
	return r.listArtifacts(ctx, q, sceneID)
}

// ListByJob returns all artifacts attributed to a job, oldest first.
func (r *ArtifactPostgres) ListByJob(ctx context.Context, jobID string) ([]model.Artifact, error) {
	const q = `SELECT ` + artifactColumns + ` FROM artifacts WHERE job_id = $1 ORDER BY created_at ASC`
	return r.listArtifacts(ctx, q, jobID)
}

func (r *ArtifactPostgres) listArtifacts(ctx context.Context, query, arg string) ([]model.Artifact, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}
