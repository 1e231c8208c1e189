package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"gaia/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var packCols = []string{
	"id", "job_id", "filename", "storage_path", "size", "sha256", "artifact_count", "created_at",
}

func packRow(id string, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(packCols).AddRow(
		id, "job-1", "Evidence_Pack_"+id+".txt", "reports/Evidence_Pack_"+id+".txt", 512,
		"cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc",
		3, now,
	)
}

func TestPackPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPackPostgres(db)
	now := time.Now().UTC()

	pack := &model.EvidencePack{
		ID:            "pack-1",
		JobID:         "job-1",
		Filename:      "Evidence_Pack_pack-1.txt",
		StoragePath:   "reports/Evidence_Pack_pack-1.txt",
		Size:          512,
		SHA256:        "cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc",
		ArtifactCount: 3,
		CreatedAt:     now,
	}

	mock.ExpectQuery("INSERT INTO evidence_packs").
		WithArgs(pack.ID, pack.JobID, pack.Filename, pack.StoragePath, pack.Size,
			pack.SHA256, pack.ArtifactCount, pack.CreatedAt).
		WillReturnRows(packRow("pack-1", now))

	result, err := repo.Create(context.Background(), pack)

	assert.NoError(t, err)
	assert.Equal(t, "pack-1", result.ID)
	assert.Equal(t, 3, result.ArtifactCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPackPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPackPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM evidence_packs WHERE id = ?").
			WithArgs("pack-1").
			WillReturnRows(packRow("pack-1", time.Now()))

		pack, err := repo.FindByID(ctx, "pack-1")

		assert.NoError(t, err)
		assert.Equal(t, "job-1", pack.JobID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM evidence_packs WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		pack, err := repo.FindByID(ctx, "missing")

		assert.True(t, IsNoRowsError(err))
		assert.Nil(t, pack)
	})
}

func TestPackPostgres_FindByJob(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPackPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM evidence_packs").
		WithArgs("job-1").
		WillReturnRows(packRow("pack-2", time.Now()))

	pack, err := repo.FindByJob(context.Background(), "job-1")

	assert.NoError(t, err)
	assert.Equal(t, "pack-2", pack.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
