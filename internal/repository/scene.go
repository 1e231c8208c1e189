package repository

import (
	"context"
	"time"

	"gaia/internal/model"
)

// SceneRepository defines data access for ingested scenes and their
// provenance records using SQL queries only. No business logic here.
type SceneRepository interface {
	// Create inserts a scene row together with its provenance record in one
	// transaction. Returns the stored scene.
	Create(ctx context.Context, scene *model.Scene, prov *model.Provenance) (*model.Scene, error)

	// FindByID returns a scene by its ID.
	FindByID(ctx context.Context, id string) (*model.Scene, error)

	// FindProvenance returns the provenance record for a scene.
	FindProvenance(ctx context.Context, sceneID string) (*model.Provenance, error)

	// List returns a paginated list of scenes, newest first.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Scene], error)

	// ListByWindow returns scenes whose acquisition time falls inside
	// [start, end), joined through provenance.
	ListByWindow(ctx context.Context, start, end time.Time) ([]model.Scene, error)

	// ListByWindowAndBBox returns scenes whose acquisition time falls inside
	// [start, end) and whose recorded footprint sits within box, allowing
	// tol slack per coordinate.
	ListByWindowAndBBox(ctx context.Context, start, end time.Time, box model.BBox, tol float64) ([]model.Scene, error)

	// SetArchivePath records the cold-storage location of a scene.
	SetArchivePath(ctx context.Context, id, archivePath string) error

	// Delete removes a scene by ID; provenance cascades.
	Delete(ctx context.Context, id string) error
}
