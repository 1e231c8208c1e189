package postgres

import (
	"context"
	"database/sql"

	"gaia/internal/model"
	"gaia/internal/repository"
)

// PackPostgres is a PostgreSQL implementation of repository.PackRepository.
type PackPostgres struct {
	db *sql.DB
}

// NewPackPostgres creates a new PackPostgres repository.
func NewPackPostgres(db *sql.DB) *PackPostgres {
	return &PackPostgres{db: db}
}

var _ repository.PackRepository = (*PackPostgres)(nil)

const packColumns = `id, job_id, filename, storage_path, size, sha256, artifact_count, created_at`

func scanPack(row interface{ Scan(...any) error }) (*model.EvidencePack, error) {
	var p model.EvidencePack
	if err := row.Scan(
		&p.ID,
		&p.JobID,
		&p.Filename,
		&p.StoragePath,
		&p.Size,
		&p.SHA256,
		&p.ArtifactCount,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new pack row and returns the stored record.
func (r *PackPostgres) Create(ctx context.Context, p *model.EvidencePack) (*model.EvidencePack, error) {
	const q = `
		INSERT INTO evidence_packs (id, job_id, filename, storage_path, size, sha256, artifact_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + packColumns
	return scanPack(r.db.QueryRowContext(ctx, q,
		p.ID,
		p.JobID,
		p.Filename,
		p.StoragePath,
		p.Size,
		p.SHA256,
		p.ArtifactCount,
		p.CreatedAt,
	))
}

// FindByID fetches a single pack by its ID.
func (r *PackPostgres) FindByID(ctx context.Context, id string) (*model.EvidencePack, error) {
	const q = `SELECT ` + packColumns + ` FROM evidence_packs WHERE id = $1`
	return scanPack(r.db.QueryRowContext(ctx, q, id))
}

// FindByJob returns the most recent pack assembled for a job.
func (r *PackPostgres) FindByJob(ctx context.Context, jobID string) (*model.EvidencePack, error) {
	const q = `
		SELECT ` + packColumns + `
		FROM evidence_packs
		WHERE job_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanPack(r.db.QueryRowContext(ctx, q, jobID))
}
