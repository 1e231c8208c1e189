package model

import "time"

// Confidence grades a scene's usability for evidence purposes.
// A scene acquired under heavy cloud cover cannot support strong claims.
type Confidence string

const (
	ConfidenceHigh Confidence = "HIGH"
	ConfidenceLow  Confidence = "LOW"
)

// Scene represents one ingested raw imagery artifact.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Scene struct {
	ID           string     `json:"id"`
	Filename     string     `json:"filename"`
	StoragePath  string     `json:"storage_path"`
	ArchivePath  string     `json:"archive_path,omitempty"`
	Size         int64      `json:"size"`
	ContentType  string     `json:"content_type"`
	SHA256       string     `json:"sha256"`
	AcquiredDate string     `json:"acquired_date"`
	Sensor       string     `json:"sensor"`
	TileID       string     `json:"tile_id"`
	CloudCover   float64    `json:"cloud_cover"`
	Confidence   Confidence `json:"confidence"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Provenance is the metadata record accompanying every ingested scene.
// It is persisted alongside the scene row and mirrored as a JSON sidecar
// object in storage so the evidence chain survives the database.
type Provenance struct {
	SceneID         string    `json:"scene_id,omitempty"`
	SourceURL       string    `json:"source_url"`
	ProductID       string    `json:"product_id"`
	AcquisitionTime time.Time `json:"acquisition_time"`
	ProcessingLevel string    `json:"processing_level"`
	BBox            BBox      `json:"bbox"`
	RecordedAt      time.Time `json:"recorded_at"`
}

// BBox is a WGS84 bounding box: [minX, minY, maxX, maxY].
type BBox [4]float64

// Valid reports whether the box is well-formed and inside WGS84 bounds.
func (b BBox) Valid() bool {
	if b[0] >= b[2] || b[1] >= b[3] {
		return false
	}
	return b[0] >= -180 && b[2] <= 180 && b[1] >= -90 && b[3] <= 90
}

// Within reports whether every coordinate of b is within tol of o.
func (b BBox) Within(o BBox, tol float64) bool {
	for i := range b {
		d := b[i] - o[i]
		if d < 0 {
			d = -d
		}
		if d > tol {
			return false
		}
	}
	return true
}
