package model

import "time"

// ArtifactKind distinguishes derived artifact types in the evidence chain.
type ArtifactKind string

const (
	// ArtifactAnalysis is a processed index raster ({date}_{index}_analysis.tif).
	ArtifactAnalysis ArtifactKind = "analysis"
	// ArtifactZonal is a zonal statistics table ({date}_{index}_zonal.csv).
	ArtifactZonal ArtifactKind = "zonal"
)

// AlertLevel classifies how alarming an analysis result is.
type AlertLevel string

const (
	AlertLow    AlertLevel = "LOW"
	AlertMedium AlertLevel = "MEDIUM"
	AlertHigh   AlertLevel = "HIGH"
)

// IndexStats summarizes a spectral index result. Normalized difference
// indices are bounded to [-1.0, 1.0] by construction; values outside that
// range indicate a broken upstream computation and are rejected at
// registration time.
type IndexStats struct {
	Min  float64 `json:"min"`
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

// Artifact is a derived result (index raster or zonal stats) registered
// against an ingested scene, optionally attributed to a job run.
type Artifact struct {
	ID          string       `json:"id"`
	SceneID     string       `json:"scene_id"`
	JobID       string       `json:"job_id,omitempty"`
	Kind        ArtifactKind `json:"kind"`
	IndexName   string       `json:"index_name"`
	Filename    string       `json:"filename"`
	StoragePath string       `json:"storage_path"`
	Size        int64        `json:"size"`
	SHA256      string       `json:"sha256"`
	Stats       IndexStats   `json:"stats"`
	AlertLevel  AlertLevel   `json:"alert_level"`
	CreatedAt   time.Time    `json:"created_at"`
}
