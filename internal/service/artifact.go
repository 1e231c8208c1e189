package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"gaia/internal/alert"
	"gaia/internal/integrity"
	"gaia/internal/model"
	"gaia/internal/naming"
	"gaia/internal/quality"
	"gaia/internal/repository"
	"gaia/internal/storage"
)

var (
	ErrUnknownArtifactKind = errors.New("unknown artifact kind")
	ErrBadZonalHeader      = errors.New("zonal csv header must be zone,index,min,mean,max,count")
)

var zonalHeader = []string{"zone", "index", "min", "mean", "max", "count"}

// RegisterInput carries a derived artifact upload and its declared summary.
type RegisterInput struct {
	SceneID     string
	JobID       string
	Kind        model.ArtifactKind
	Filename    string
	ContentType string
	Size        int64
	Stats       model.IndexStats
}

// ArtifactService defines the use cases for derived evidence artifacts.
type ArtifactService interface {
	// Register streams an analysis raster or zonal table into storage,
	// validates its declared index statistics, grades the result, and
	// records the artifact row. A HIGH-graded result triggers an alert.
	Register(ctx context.Context, r io.Reader, in RegisterInput) (*model.Artifact, error)

	// Get returns an artifact by ID.
	Get(ctx context.Context, id string) (*model.Artifact, error)

	// ListByScene returns the artifacts derived from a scene.
	ListByScene(ctx context.Context, sceneID string) ([]model.Artifact, error)

	// PresignDownload returns a time-limited download URL for the artifact.
	PresignDownload(ctx context.Context, id string, expiry time.Duration) (string, error)
}

type artifactService struct {
	store    storage.Storage
	repo     repository.ArtifactRepository
	scenes   repository.SceneRepository
	notifier alert.Notifier
}

// NewArtifactService constructs a new ArtifactService.
func NewArtifactService(store storage.Storage, repo repository.ArtifactRepository, scenes repository.SceneRepository, notifier alert.Notifier) ArtifactService {
	return &artifactService{store: store, repo: repo, scenes: scenes, notifier: notifier}
}

func (s *artifactService) Register(ctx context.Context, r io.Reader, in RegisterInput) (*model.Artifact, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if in.Size == 0 {
		return nil, ErrEmptyUpload
	}
	if in.SceneID == "" {
		return nil, ErrIDRequired
	}

	scene, err := s.scenes.FindByID(ctx, in.SceneID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var key, indexName, contentType string
	switch in.Kind {
	case model.ArtifactAnalysis:
		if _, indexName, err = naming.ParseAnalysisName(in.Filename); err != nil {
			return nil, err
		}
		key = naming.AnalysisPath(in.Filename)
		contentType = "image/tiff"
	case model.ArtifactZonal:
		if _, indexName, err = naming.ParseZonalName(in.Filename); err != nil {
			return nil, err
		}
		key = naming.ZonalPath(in.Filename)
		contentType = "text/csv"
		// Validate the header before anything hits storage.
		if r, err = checkZonalHeader(r); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownArtifactKind, in.Kind)
	}
	if in.ContentType != "" {
		contentType = in.ContentType
	}

	if err := quality.ValidateIndexStats(in.Stats); err != nil {
		return nil, err
	}
	level := quality.AlertLevelFor(in.Stats.Mean, scene.CloudCover)

	hr := integrity.NewHashingReader(r)
	objInfo, err := s.store.Put(ctx, key, hr, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}
	if hr.BytesRead() == 0 {
		_ = s.store.Delete(ctx, key)
		return nil, ErrEmptyUpload
	}

	artifact := &model.Artifact{
		ID:          uuid.New().String(),
		SceneID:     scene.ID,
		JobID:       in.JobID,
		Kind:        in.Kind,
		IndexName:   indexName,
		Filename:    in.Filename,
		StoragePath: objInfo.Key,
		Size:        hr.BytesRead(),
		SHA256:      string(hr.Sum()),
		Stats:       in.Stats,
		AlertLevel:  level,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, artifact)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	if level == model.AlertHigh {
		s.dispatchAlert(ctx, scene, stored)
	}
	return stored, nil
}

// dispatchAlert sends a HIGH alert. Delivery failure never fails the
// registration; it is logged and the artifact row stands.
func (s *artifactService) dispatchAlert(ctx context.Context, scene *model.Scene, a *model.Artifact) {
	if s.notifier == nil {
		return
	}
	n := alert.Notification{
		Level: a.AlertLevel,
		Message: fmt.Sprintf("%s mean %.3f below threshold for tile %s (%s)",
			a.IndexName, a.Stats.Mean, scene.TileID, scene.AcquiredDate),
		SceneID: scene.ID,
		JobID:   a.JobID,
		SentAt:  time.Now().UTC(),
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		log.Printf(`{"level":"error","msg":"alert delivery failed","artifact_id":"%s","error":"%v"}`, a.ID, err)
	}
}

func (s *artifactService) Get(ctx context.Context, id string) (*model.Artifact, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *artifactService) ListByScene(ctx context.Context, sceneID string) ([]model.Artifact, error) {
	if sceneID == "" {
		return nil, ErrIDRequired
	}
	return s.repo.ListByScene(ctx, sceneID)
}

func (s *artifactService) PresignDownload(ctx context.Context, id string, expiry time.Duration) (string, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.store.PresignGet(ctx, a.StoragePath, expiry)
}

// checkZonalHeader reads the first CSV record from r, validates it, and
// returns a reader that replays the consumed bytes followed by the rest.
func checkZonalHeader(r io.Reader) (io.Reader, error) {
	var buf bytes.Buffer
	tee := io.TeeReader(r, &buf)
	rec, err := csv.NewReader(tee).Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadZonalHeader, err)
	}
	if len(rec) != len(zonalHeader) {
		return nil, ErrBadZonalHeader
	}
	for i, col := range zonalHeader {
		if rec[i] != col {
			return nil, ErrBadZonalHeader
		}
	}
	return io.MultiReader(&buf, r), nil
}
