package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"gaia/internal/integrity"
	"gaia/internal/model"
	"gaia/internal/naming"
	"gaia/internal/quality"
	"gaia/internal/repository"
	"gaia/internal/storage"
)

var (
	ErrIDRequired        = errors.New("id is required")
	ErrNotFound          = errors.New("not found")
	ErrReaderNil         = errors.New("reader is nil")
	ErrEmptyUpload       = errors.New("upload is empty (0 bytes)")
	ErrInvalidProvenance = errors.New("provenance record incomplete or invalid")
)

// IngestInput carries one raw scene upload and its declared provenance.
type IngestInput struct {
	Filename    string
	ContentType string
	Size        int64
	CloudCover  float64
	Provenance  model.Provenance
}

// VerificationResult reports an integrity re-check of a stored object.
type VerificationResult struct {
	ID             string `json:"id"`
	StoragePath    string `json:"storage_path"`
	RecordedSHA256 string `json:"recorded_sha256"`
	ComputedSHA256 string `json:"computed_sha256"`
	SizeOK         bool   `json:"size_ok"`
	Match          bool   `json:"match"`
}

// SceneListResult is the service-level DTO for paginated scenes.
type SceneListResult struct {
	Items []model.Scene `json:"data"`
	Total int           `json:"total"`
}

// SceneService defines the use cases for raw scene ingestion and custody.
type SceneService interface {
	// Ingest streams the upload to object storage while hashing it, writes
	// the provenance sidecar, and records scene + provenance rows. Storage
	// writes are rolled back if the DB save fails.
	Ingest(ctx context.Context, r io.Reader, in IngestInput) (*model.Scene, error)

	// Verify re-streams the stored object and compares its digest and size
	// against the ingestion record. Archived scenes are verified from their
	// vault copy.
	Verify(ctx context.Context, id string) (*VerificationResult, error)

	// Get returns a single scene by its ID.
	Get(ctx context.Context, id string) (*model.Scene, error)

	// GetProvenance returns the provenance record of a scene.
	GetProvenance(ctx context.Context, id string) (*model.Provenance, error)

	// List returns scenes using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*SceneListResult, error)

	// Delete removes a scene from storage (object + sidecar), then its rows.
	Delete(ctx context.Context, id string) error

	// PresignDownload returns a time-limited download URL for the raw object.
	PresignDownload(ctx context.Context, id string, expiry time.Duration) (string, error)
}

type sceneService struct {
	store storage.Storage
	repo  repository.SceneRepository
}

// NewSceneService constructs a new SceneService.
func NewSceneService(store storage.Storage, repo repository.SceneRepository) SceneService {
	return &sceneService{store: store, repo: repo}
}

func (s *sceneService) Ingest(ctx context.Context, r io.Reader, in IngestInput) (*model.Scene, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if in.Size == 0 {
		return nil, ErrEmptyUpload
	}

	parsed, err := naming.ParseSceneName(in.Filename)
	if err != nil {
		return nil, err
	}
	if err := validateProvenance(in.Provenance); err != nil {
		return nil, err
	}
	confidence, err := quality.ConfidenceFromCloudCover(in.CloudCover)
	if err != nil {
		return nil, err
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Hash the payload while it streams to storage.
	key := naming.ScenePath(in.Filename)
	hr := integrity.NewHashingReader(r)
	objInfo, err := s.store.Put(ctx, key, hr, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: contentType,
		Metadata: map[string]string{
			"product-id": in.Provenance.ProductID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}
	if hr.BytesRead() == 0 {
		// Declared size lied; remove the empty object.
		_ = s.store.Delete(ctx, key)
		return nil, ErrEmptyUpload
	}
	digest := hr.Sum()

	sceneID := uuid.New().String()
	prov := in.Provenance
	prov.SceneID = sceneID
	prov.RecordedAt = time.Now().UTC()

	// The sidecar makes the provenance record recoverable without the DB.
	sidecar, err := json.MarshalIndent(prov, "", "  ")
	if err != nil {
		_ = s.store.Delete(ctx, key)
		return nil, fmt.Errorf("marshal provenance: %w", err)
	}
	sidecarKey := naming.ProvenancePath(in.Filename)
	if _, err := s.store.Put(ctx, sidecarKey, bytes.NewReader(sidecar), storage.PutObjectOptions{
		Size:        int64(len(sidecar)),
		ContentType: "application/json",
	}); err != nil {
		_ = s.store.Delete(ctx, key)
		return nil, fmt.Errorf("write provenance sidecar: %w", err)
	}

	scene := &model.Scene{
		ID:           sceneID,
		Filename:     in.Filename,
		StoragePath:  objInfo.Key,
		Size:         hr.BytesRead(),
		ContentType:  contentType,
		SHA256:       string(digest),
		AcquiredDate: parsed.Date,
		Sensor:       parsed.Sensor,
		TileID:       parsed.TileID,
		CloudCover:   in.CloudCover,
		Confidence:   confidence,
		CreatedAt:    time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, scene, &prov)
	if err != nil {
		// Rollback: delete both objects from storage
		delErr := errors.Join(s.store.Delete(ctx, key), s.store.Delete(ctx, sidecarKey))
		if delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *sceneService) Verify(ctx context.Context, id string) (*VerificationResult, error) {
	scene, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// An archived scene's only copy lives in the vault.
	objectKey := scene.StoragePath
	if scene.ArchivePath != "" {
		objectKey = scene.ArchivePath
	}

	rc, info, err := s.store.Get(ctx, objectKey)
	if err != nil {
		return nil, fmt.Errorf("fetch object for verification: %w", err)
	}
	defer rc.Close()

	digest, n, err := integrity.HashAll(rc)
	if err != nil {
		return nil, fmt.Errorf("hash object: %w", err)
	}

	return &VerificationResult{
		ID:             scene.ID,
		StoragePath:    objectKey,
		RecordedSHA256: scene.SHA256,
		ComputedSHA256: string(digest),
		SizeOK:         n == scene.Size && info.Size == scene.Size,
		Match:          string(digest) == scene.SHA256,
	}, nil
}

func (s *sceneService) Get(ctx context.Context, id string) (*model.Scene, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	scene, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return scene, nil
}

func (s *sceneService) GetProvenance(ctx context.Context, id string) (*model.Provenance, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	prov, err := s.repo.FindProvenance(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return prov, nil
}

// List returns paginated scenes without exposing repository types.
func (s *sceneService) List(ctx context.Context, limit, offset int) (*SceneListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &SceneListResult{Items: res.Items, Total: res.Total}, nil
}

// Delete removes a scene's objects from storage, then deletes its rows.
func (s *sceneService) Delete(ctx context.Context, id string) error {
	scene, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	objectKey := scene.StoragePath
	sidecarKey := naming.ProvenancePath(scene.Filename)
	if scene.ArchivePath != "" {
		// Archival already removed the hot pair; the vault holds the copies.
		objectKey = scene.ArchivePath
		sidecarKey = naming.VaultPath(sidecarKey)
	}

	// Delete from storage first; if this fails, keep DB row to avoid orphaned storage reference loss
	if err := s.store.Delete(ctx, objectKey); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.store.Delete(ctx, sidecarKey); err != nil {
		return fmt.Errorf("delete provenance sidecar: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

func (s *sceneService) PresignDownload(ctx context.Context, id string, expiry time.Duration) (string, error) {
	scene, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.store.PresignGet(ctx, scene.StoragePath, expiry)
}

func validateProvenance(p model.Provenance) error {
	if p.SourceURL == "" || p.ProductID == "" || p.ProcessingLevel == "" {
		return fmt.Errorf("%w: source_url, product_id and processing_level are required", ErrInvalidProvenance)
	}
	if p.AcquisitionTime.IsZero() {
		return fmt.Errorf("%w: acquisition_time is required", ErrInvalidProvenance)
	}
	if !p.BBox.Valid() {
		return fmt.Errorf("%w: bbox is not a valid WGS84 box", ErrInvalidProvenance)
	}
	return nil
}
