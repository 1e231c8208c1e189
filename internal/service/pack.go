package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"gaia/internal/integrity"
	"gaia/internal/model"
	"gaia/internal/naming"
	"gaia/internal/repository"
	"gaia/internal/storage"
)

// bboxTolerance is the per-coordinate slack allowed between a scene's
// recorded footprint and the mission area when assembling evidence.
const bboxTolerance = 0.01

var (
	ErrNoEvidence      = errors.New("no scenes or artifacts in the job window")
	ErrUnhealthyMember = errors.New("evidence member failed health check")
)

// Renderer turns pack members into the stored evidence document. The digest
// returned is the manifest footer digest that seals the pack.
type Renderer interface {
	// Ext is the file extension the rendered document uses, without a dot.
	Ext() string
	// Render writes the document for the given entries and returns its seal.
	Render(w io.Writer, entries []integrity.Entry) (integrity.Digest, error)
}

// ManifestRenderer renders the pack as a plain-text integrity manifest. The
// document is fully deterministic: the same members always produce the same
// bytes and the same footer digest.
type ManifestRenderer struct{}

func (ManifestRenderer) Ext() string { return "txt" }

func (ManifestRenderer) Render(w io.Writer, entries []integrity.Entry) (integrity.Digest, error) {
	return integrity.WriteManifest(w, entries)
}

// PackVerification reports a re-check of a stored evidence pack against the
// live contents of object storage.
type PackVerification struct {
	ID         string               `json:"id"`
	Footer     string               `json:"footer_sha256"`
	Members    int                  `json:"members"`
	Mismatches []integrity.Mismatch `json:"mismatches,omitempty"`
	Intact     bool                 `json:"intact"`
}

// PackService assembles and verifies evidence packs.
type PackService interface {
	// Assemble health-checks every scene acquired in the job window whose
	// footprint sits in the mission area, and every artifact attributed to
	// the job: each member object must exist, be non-empty, keep its
	// recorded size and hash to its recorded digest. Healthy members are
	// rendered into the manifest document, stored under reports/, and the
	// pack row recorded. Any unhealthy member aborts assembly with an error
	// naming it.
	Assemble(ctx context.Context, jobID string) (*model.EvidencePack, error)

	// Get returns a pack by ID.
	Get(ctx context.Context, id string) (*model.EvidencePack, error)

	// GetByJob returns the most recent pack assembled for a job.
	GetByJob(ctx context.Context, jobID string) (*model.EvidencePack, error)

	// PresignDownload returns a time-limited download URL for the document.
	PresignDownload(ctx context.Context, id string, expiry time.Duration) (string, error)

	// Verify re-parses the stored document, re-hashes every member object
	// and reports any drift from the sealed manifest.
	Verify(ctx context.Context, id string) (*PackVerification, error)
}

type packService struct {
	store     storage.Storage
	packs     repository.PackRepository
	scenes    repository.SceneRepository
	artifacts repository.ArtifactRepository
	jobs      repository.JobRepository
	renderer  Renderer
}

// NewPackService constructs a new PackService. A nil renderer defaults to the
// plain-text manifest.
func NewPackService(store storage.Storage, packs repository.PackRepository, scenes repository.SceneRepository, artifacts repository.ArtifactRepository, jobs repository.JobRepository, renderer Renderer) PackService {
	if renderer == nil {
		renderer = ManifestRenderer{}
	}
	return &packService{
		store:     store,
		packs:     packs,
		scenes:    scenes,
		artifacts: artifacts,
		jobs:      jobs,
		renderer:  renderer,
	}
}

func (s *packService) Assemble(ctx context.Context, jobID string) (*model.EvidencePack, error) {
	if jobID == "" {
		return nil, ErrIDRequired
	}
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	scenes, err := s.scenes.ListByWindowAndBBox(ctx, job.WindowStart, job.WindowEnd, job.BBox, bboxTolerance)
	if err != nil {
		return nil, fmt.Errorf("list scenes in window: %w", err)
	}
	arts, err := s.artifacts.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list job artifacts: %w", err)
	}
	if len(scenes) == 0 && len(arts) == 0 {
		return nil, ErrNoEvidence
	}

	var (
		entries  []integrity.Entry
		problems []string
	)
	for i := range scenes {
		sc := &scenes[i]
		if issues := s.checkScene(ctx, sc, job.BBox); len(issues) > 0 {
			problems = append(problems, issues...)
			continue
		}
		entries = append(entries, integrity.Entry{Path: sc.StoragePath, Digest: integrity.Digest(sc.SHA256)})
	}
	for i := range arts {
		a := &arts[i]
		if issue := s.checkObject(ctx, a.StoragePath, a.Size, a.SHA256); issue != "" {
			problems = append(problems, issue)
			continue
		}
		entries = append(entries, integrity.Entry{Path: a.StoragePath, Digest: integrity.Digest(a.SHA256)})
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnhealthyMember, strings.Join(problems, "; "))
	}

	packID := uuid.New().String()
	filename := naming.PackName(packID, s.renderer.Ext())
	key := naming.PackPath(filename)

	var doc bytes.Buffer
	footer, err := s.renderer.Render(&doc, entries)
	if err != nil {
		return nil, fmt.Errorf("render pack document: %w", err)
	}

	if _, err := s.store.Put(ctx, key, bytes.NewReader(doc.Bytes()), storage.PutObjectOptions{
		Size:        int64(doc.Len()),
		ContentType: "text/plain; charset=utf-8",
	}); err != nil {
		return nil, fmt.Errorf("store pack document: %w", err)
	}

	pack := &model.EvidencePack{
		ID:            packID,
		JobID:         jobID,
		Filename:      filename,
		StoragePath:   key,
		Size:          int64(doc.Len()),
		SHA256:        string(footer),
		ArtifactCount: len(entries),
		CreatedAt:     time.Now().UTC(),
	}
	stored, err := s.packs.Create(ctx, pack)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// checkScene runs the per-scene health checks: the raw object must exist with
// its recorded size and digest, the provenance sidecar must exist, and the
// recorded footprint must sit within the mission area. Selection already
// filters by footprint, so a failing bbox check here means the provenance
// record drifted after selection.
func (s *packService) checkScene(ctx context.Context, sc *model.Scene, missionBox model.BBox) []string {
	var issues []string
	if issue := s.checkObject(ctx, sc.StoragePath, sc.Size, sc.SHA256); issue != "" {
		issues = append(issues, issue)
	}
	if _, err := s.store.Stat(ctx, naming.ProvenancePath(sc.Filename)); err != nil {
		issues = append(issues, fmt.Sprintf("%s: provenance sidecar missing: %v", sc.StoragePath, err))
	}
	prov, err := s.scenes.FindProvenance(ctx, sc.ID)
	if err != nil {
		issues = append(issues, fmt.Sprintf("%s: provenance record missing: %v", sc.StoragePath, err))
	} else if !prov.BBox.Within(missionBox, bboxTolerance) {
		issues = append(issues, fmt.Sprintf("%s: footprint %v outside mission area %v", sc.StoragePath, prov.BBox, missionBox))
	}
	return issues
}

// checkObject verifies the object exists in storage, is non-empty with the
// recorded size, and still hashes to the recorded digest. Returns an empty
// string when healthy.
func (s *packService) checkObject(ctx context.Context, key string, wantSize int64, wantDigest string) string {
	info, err := s.store.Stat(ctx, key)
	if err != nil {
		return fmt.Sprintf("%s: object missing: %v", key, err)
	}
	if info.Size == 0 {
		return fmt.Sprintf("%s: object is empty", key)
	}
	if info.Size != wantSize {
		return fmt.Sprintf("%s: size drift: recorded %d, found %d", key, wantSize, info.Size)
	}

	// A same-size rewrite slips past Stat; only the bytes settle it.
	rc, _, err := s.store.Get(ctx, key)
	if err != nil {
		return fmt.Sprintf("%s: object unreadable: %v", key, err)
	}
	defer rc.Close()
	digest, _, err := integrity.HashAll(rc)
	if err != nil {
		return fmt.Sprintf("%s: hash failed: %v", key, err)
	}
	if string(digest) != wantDigest {
		return fmt.Sprintf("%s: digest drift: recorded %s, computed %s", key, wantDigest, digest)
	}
	return ""
}

func (s *packService) Get(ctx context.Context, id string) (*model.EvidencePack, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	pack, err := s.packs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return pack, nil
}

func (s *packService) GetByJob(ctx context.Context, jobID string) (*model.EvidencePack, error) {
	if jobID == "" {
		return nil, ErrIDRequired
	}
	pack, err := s.packs.FindByJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return pack, nil
}

func (s *packService) PresignDownload(ctx context.Context, id string, expiry time.Duration) (string, error) {
	pack, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.store.PresignGet(ctx, pack.StoragePath, expiry)
}

func (s *packService) Verify(ctx context.Context, id string) (*PackVerification, error) {
	pack, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rc, _, err := s.store.Get(ctx, pack.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("fetch pack document: %w", err)
	}
	defer rc.Close()

	entries, footer, err := integrity.ParseManifest(rc)
	if err != nil {
		return nil, fmt.Errorf("parse pack document: %w", err)
	}
	if string(footer) != pack.SHA256 {
		return nil, fmt.Errorf("%w: recorded %s, document %s", integrity.ErrFooterMismatch, pack.SHA256, footer)
	}

	// Re-hash every member straight from storage.
	got := make(map[string]integrity.Digest, len(entries))
	for _, e := range entries {
		mrc, _, err := s.store.Get(ctx, e.Path)
		if err != nil {
			continue // reported as absent by Verify
		}
		digest, _, hashErr := integrity.HashAll(mrc)
		mrc.Close()
		if hashErr != nil {
			return nil, fmt.Errorf("hash member %s: %w", e.Path, hashErr)
		}
		got[e.Path] = digest
	}
	mismatches := integrity.Verify(entries, got)

	return &PackVerification{
		ID:         pack.ID,
		Footer:     string(footer),
		Members:    len(entries),
		Mismatches: mismatches,
		Intact:     len(mismatches) == 0,
	}, nil
}
