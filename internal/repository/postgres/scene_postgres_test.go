package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"gaia/internal/model"
	"gaia/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sceneCols = []string{
	"id", "filename", "storage_path", "archive_path", "size", "content_type", "sha256",
	"acquired_date", "sensor", "tile_id", "cloud_cover", "confidence", "created_at",
}

func sceneRow(id string, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(sceneCols).AddRow(
		id, "20231025_S2_T33UUE.tif", "raw/20231025_S2_T33UUE.tif", "", 2048, "image/tiff",
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"20231025", "S2", "T33UUE", 12.5, "HIGH", now,
	)
}

func TestScenePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScenePostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	scene := &model.Scene{
		ID:           "test-uuid",
		Filename:     "20231025_S2_T33UUE.tif",
		StoragePath:  "raw/20231025_S2_T33UUE.tif",
		Size:         2048,
		ContentType:  "image/tiff",
		SHA256:       "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		AcquiredDate: "20231025",
		Sensor:       "S2",
		TileID:       "T33UUE",
		CloudCover:   12.5,
		Confidence:   model.ConfidenceHigh,
		CreatedAt:    now,
	}
	prov := &model.Provenance{
		SourceURL:       "https://catalog.example.com/items/T33UUE",
		ProductID:       "S2A_MSIL2A_20231025",
		AcquisitionTime: now,
		ProcessingLevel: "L2A",
		BBox:            model.BBox{16.2, 48.1, 16.5, 48.3},
		RecordedAt:      now,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO scenes").
		WillReturnRows(sceneRow(scene.ID, now))
	mock.ExpectExec("INSERT INTO provenance").
		WithArgs(scene.ID, prov.SourceURL, prov.ProductID, prov.AcquisitionTime, prov.ProcessingLevel,
			16.2, 48.1, 16.5, 48.3, prov.RecordedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.Create(ctx, scene, prov)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, scene.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScenePostgres_Create_ProvenanceFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScenePostgres(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO scenes").
		WillReturnRows(sceneRow("test-uuid", now))
	mock.ExpectExec("INSERT INTO provenance").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err = repo.Create(context.Background(), &model.Scene{ID: "test-uuid", CreatedAt: now}, &model.Provenance{RecordedAt: now})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScenePostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScenePostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM scenes WHERE id = ?").
			WithArgs("test-id").
			WillReturnRows(sceneRow("test-id", time.Now()))

		scene, err := repo.FindByID(ctx, "test-id")

		assert.NoError(t, err)
		assert.NotNil(t, scene)
		assert.Equal(t, "T33UUE", scene.TileID)
		assert.Equal(t, model.ConfidenceHigh, scene.Confidence)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM scenes WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		scene, err := repo.FindByID(ctx, "missing")

		assert.Error(t, err)
		assert.True(t, IsNoRowsError(err))
		assert.Nil(t, scene)
	})
}

func TestScenePostgres_FindProvenance(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScenePostgres(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"scene_id", "source_url", "product_id", "acquisition_time", "processing_level",
		"bbox_min_x", "bbox_min_y", "bbox_max_x", "bbox_max_y", "recorded_at",
	}).AddRow("test-id", "https://catalog.example.com/x", "S2A_MSIL2A", now, "L2A", 16.2, 48.1, 16.5, 48.3, now)

	mock.ExpectQuery("SELECT (.+) FROM provenance").
		WithArgs("test-id").
		WillReturnRows(rows)

	prov, err := repo.FindProvenance(context.Background(), "test-id")

	assert.NoError(t, err)
	assert.Equal(t, model.BBox{16.2, 48.1, 16.5, 48.3}, prov.BBox)
	assert.Equal(t, "L2A", prov.ProcessingLevel)
}

func TestScenePostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScenePostgres(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM scenes").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM scenes ORDER BY").
		WithArgs(10, 0).
		WillReturnRows(sceneRow("test-id", time.Now()))

	res, err := repo.List(context.Background(), repository.PageQuery{Limit: 10, Offset: 0})

	assert.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Len(t, res.Items, 1)
}

func TestScenePostgres_ListByWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScenePostgres(db)
	start := time.Now().Add(-24 * time.Hour)
	end := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM scenes s").
		WithArgs(start, end).
		WillReturnRows(sceneRow("test-id", time.Now()))

	items, err := repo.ListByWindow(context.Background(), start, end)

	assert.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestScenePostgres_ListByWindowAndBBox(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScenePostgres(db)
	start := time.Now().Add(-24 * time.Hour)
	end := time.Now()
	box := model.BBox{16.0, 48.0, 16.6, 48.4}

	mock.ExpectQuery("SELECT (.+) FROM scenes s").
		WithArgs(start, end, 16.0, 48.0, 16.6, 48.4, 0.01).
		WillReturnRows(sceneRow("test-id", time.Now()))

	items, err := repo.ListByWindowAndBBox(context.Background(), start, end, box, 0.01)

	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScenePostgres_SetArchivePath(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScenePostgres(db)

	t.Run("updated", func(t *testing.T) {
		mock.ExpectExec("UPDATE scenes SET archive_path").
			WithArgs("test-id", "vault/20231025_S2_T33UUE.tif").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SetArchivePath(context.Background(), "test-id", "vault/20231025_S2_T33UUE.tif")
		assert.NoError(t, err)
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec("UPDATE scenes SET archive_path").
			WithArgs("missing", "vault/x.tif").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SetArchivePath(context.Background(), "missing", "vault/x.tif")
		assert.True(t, IsNoRowsError(err))
	})
}

func TestScenePostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewScenePostgres(db)

	mock.ExpectExec("DELETE FROM scenes").
		WithArgs("test-id").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), "test-id"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
