package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gaia/internal/model"
	"gaia/internal/repository"
)

// ScenePostgres is a PostgreSQL implementation of repository.SceneRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ScenePostgres struct {
	db *sql.DB
}

// NewScenePostgres creates a new ScenePostgres repository.
func NewScenePostgres(db *sql.DB) *ScenePostgres {
	return &ScenePostgres{db: db}
}

var _ repository.SceneRepository = (*ScenePostgres)(nil)

// IsNoRowsError reports whether err is the driver's no-rows sentinel.
func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

const sceneColumns = `id, filename, storage_path, archive_path, size, content_type, sha256,
	acquired_date, sensor, tile_id, cloud_cover, confidence, created_at`

func scanScene(row interface{ Scan(...any) error }) (*model.Scene, error) {
	var s model.Scene
	if err := row.Scan(
		&s.ID,
		&s.Filename,
		&s.StoragePath,
		&s.ArchivePath,
		&s.Size,
		&s.ContentType,
		&s.SHA256,
		&s.AcquiredDate,
		&s.Sensor,
		&s.TileID,
		&s.CloudCover,
		&s.Confidence,
		&s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts the scene and its provenance record in one transaction.
func (r *ScenePostgres) Create(ctx context.Context, scene *model.Scene, prov *model.Provenance) (*model.Scene, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const qScene = `
		INSERT INTO scenes (id, filename, storage_path, archive_path, size, content_type, sha256,
			acquired_date, sensor, tile_id, cloud_cover, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + sceneColumns
	out, err := scanScene(tx.QueryRowContext(ctx, qScene,
		scene.ID,
		scene.Filename,
		scene.StoragePath,
		scene.ArchivePath,
		scene.Size,
		scene.ContentType,
		scene.SHA256,
		scene.AcquiredDate,
		scene.Sensor,
		scene.TileID,
		scene.CloudCover,
		scene.Confidence,
		scene.CreatedAt,
	))
	if err != nil {
		return nil, err
	}

	const qProv = `
		INSERT INTO provenance (scene_id, source_url, product_id, acquisition_time, processing_level,
			bbox_min_x, bbox_min_y, bbox_max_x, bbox_max_y, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if _, err := tx.ExecContext(ctx, qProv,
		out.ID,
		prov.SourceURL,
		prov.ProductID,
		prov.AcquisitionTime,
		prov.ProcessingLevel,
		prov.BBox[0],
		prov.BBox[1],
		prov.BBox[2],
		prov.BBox[3],
		prov.RecordedAt,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return out, nil
}

// FindByID fetches a single scene by its ID.
func (r *ScenePostgres) FindByID(ctx context.Context, id string) (*model.Scene, error) {
	const q = `SELECT ` + sceneColumns + ` FROM scenes WHERE id = $1`
	return scanScene(r.db.QueryRowContext(ctx, q, id))
}

// FindProvenance fetches the provenance record for a scene.
func (r *ScenePostgres) FindProvenance(ctx context.Context, sceneID string) (*model.Provenance, error) {
	const q = `
		SELECT scene_id, source_url, product_id, acquisition_time, processing_level,
			bbox_min_x, bbox_min_y, bbox_max_x, bbox_max_y, recorded_at
		FROM provenance
		WHERE scene_id = $1
	`
	var p model.Provenance
	if err := r.db.QueryRowContext(ctx, q, sceneID).Scan(
		&p.SceneID,
		&p.SourceURL,
		&p.ProductID,
		&p.AcquisitionTime,
		&p.ProcessingLevel,
		&p.BBox[0],
		&p.BBox[1],
		&p.BBox[2],
		&p.BBox[3],
		&p.RecordedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns scenes using LIMIT/OFFSET pagination and a total count.
func (r *ScenePostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Scene], error) {
	const qCount = `SELECT COUNT(*) FROM scenes`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + sceneColumns + `
		FROM scenes
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Scene, 0)
	for rows.Next() {
		s, err := scanScene(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Scene]{Items: items, Total: total}, nil
}

// ListByWindow returns scenes acquired inside [start, end), joined through provenance.
func (r *ScenePostgres) ListByWindow(ctx context.Context, start, end time.Time) ([]model.Scene, error) {
	const q = `
		SELECT s.id, s.filename, s.storage_path, s.archive_path, s.size, s.content_type, s.sha256,
			s.acquired_date, s.sensor, s.tile_id, s.cloud_cover, s.confidence, s.created_at
		FROM scenes s
		JOIN provenance p ON p.scene_id = s.id
		WHERE p.acquisition_time >= $1 AND p.acquisition_time < $2
		ORDER BY p.acquisition_time ASC
	`
	rows, err := r.db.QueryContext(ctx, q, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Scene
	for rows.Next() {
		s, err := scanScene(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	return items, rows.Err()
}

// ListByWindowAndBBox returns scenes acquired inside [start, end) whose
// recorded footprint sits within box, with tol slack per coordinate.
func (r *ScenePostgres) ListByWindowAndBBox(ctx context.Context, start, end time.Time, box model.BBox, tol float64) ([]model.Scene, error) {
	const q = `
		SELECT s.id, s.filename, s.storage_path, s.archive_path, s.size, s.content_type, s.sha256,
			s.acquired_date, s.sensor, s.tile_id, s.cloud_cover, s.confidence, s.created_at
		FROM scenes s
		JOIN provenance p ON p.scene_id = s.id
		WHERE p.acquisition_time >= $1 AND p.acquisition_time < $2
			AND p.bbox_min_x >= $3 - $7 AND p.bbox_min_y >= $4 - $7
			AND p.bbox_max_x <= $5 + $7 AND p.bbox_max_y <= $6 + $7
		ORDER BY p.acquisition_time ASC
	`
	rows, err := r.db.QueryContext(ctx, q, start, end, box[0], box[1], box[2], box[3], tol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Scene
	for rows.Next() {
		s, err := scanScene(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	return items, rows.Err()
}

// SetArchivePath records the cold-storage location of a scene.
func (r *ScenePostgres) SetArchivePath(ctx context.Context, id, archivePath string) error {
	const q = `UPDATE scenes SET archive_path = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, archivePath)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a scene by ID. Provenance rows cascade in the schema.
func (r *ScenePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM scenes WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
