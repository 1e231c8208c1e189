package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gaia/internal/model"
	"gaia/internal/naming"
	"gaia/internal/repository"
	"gaia/internal/storage"
)

var (
	ErrAlreadyArchived = errors.New("scene is already archived")
	ErrNotArchived     = errors.New("scene is not archived")
)

// ArchiveService moves raw scenes between the hot prefix and the cold-storage
// vault. Archival copies server-side and keeps the original until the copy
// succeeds, so evidence is never in flight without a durable source.
type ArchiveService interface {
	// Archive copies the raw object and its provenance sidecar under the
	// vault prefix, records the archive path, then removes the hot copies.
	Archive(ctx context.Context, sceneID string) (*model.Scene, error)

	// Restore copies an archived scene back to the hot prefix and clears the
	// archive path. The vault copy is kept.
	Restore(ctx context.Context, sceneID string) (*model.Scene, error)
}

type archiveService struct {
	store storage.Storage
	repo  repository.SceneRepository
}

// NewArchiveService constructs a new ArchiveService.
func NewArchiveService(store storage.Storage, repo repository.SceneRepository) ArchiveService {
	return &archiveService{store: store, repo: repo}
}

func (s *archiveService) Archive(ctx context.Context, sceneID string) (*model.Scene, error) {
	scene, err := s.find(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	if scene.ArchivePath != "" {
		return nil, ErrAlreadyArchived
	}

	vaultKey := naming.VaultPath(scene.StoragePath)
	sidecarKey := naming.ProvenancePath(scene.Filename)
	vaultSidecarKey := naming.VaultPath(sidecarKey)

	if _, err := s.store.Copy(ctx, scene.StoragePath, vaultKey); err != nil {
		return nil, fmt.Errorf("copy to vault: %w", err)
	}
	if _, err := s.store.Copy(ctx, sidecarKey, vaultSidecarKey); err != nil {
		return nil, fmt.Errorf("copy sidecar to vault: %w", err)
	}
	if err := s.repo.SetArchivePath(ctx, scene.ID, vaultKey); err != nil {
		return nil, fmt.Errorf("record archive path: %w", err)
	}
	// Hot copies go last; a failure here leaves duplicates, never a gap.
	if err := s.store.Delete(ctx, scene.StoragePath); err != nil {
		return nil, fmt.Errorf("remove hot object: %w", err)
	}
	if err := s.store.Delete(ctx, sidecarKey); err != nil {
		return nil, fmt.Errorf("remove hot sidecar: %w", err)
	}

	scene.ArchivePath = vaultKey
	return scene, nil
}

func (s *archiveService) Restore(ctx context.Context, sceneID string) (*model.Scene, error) {
	scene, err := s.find(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	if scene.ArchivePath == "" {
		return nil, ErrNotArchived
	}

	hotKey := naming.ScenePath(scene.Filename)
	sidecarKey := naming.ProvenancePath(scene.Filename)

	if _, err := s.store.Copy(ctx, scene.ArchivePath, hotKey); err != nil {
		return nil, fmt.Errorf("restore from vault: %w", err)
	}
	if _, err := s.store.Copy(ctx, naming.VaultPath(sidecarKey), sidecarKey); err != nil {
		return nil, fmt.Errorf("restore sidecar from vault: %w", err)
	}
	if err := s.repo.SetArchivePath(ctx, scene.ID, ""); err != nil {
		return nil, fmt.Errorf("clear archive path: %w", err)
	}

	scene.ArchivePath = ""
	return scene, nil
}

func (s *archiveService) find(ctx context.Context, id string) (*model.Scene, error) {
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
