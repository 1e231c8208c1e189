package model

import "time"

// EvidencePack is the assembled, tamper-evident report for a completed job.
// SHA256 is the manifest footer digest: it covers every member entry, so any
// change to a member artifact invalidates the pack.
type EvidencePack struct {
	ID            string    `json:"id"`
	JobID         string    `json:"job_id"`
	Filename      string    `json:"filename"`
	StoragePath   string    `json:"storage_path"`
	Size          int64     `json:"size"`
	SHA256        string    `json:"sha256"`
	ArtifactCount int       `json:"artifact_count"`
	CreatedAt     time.Time `json:"created_at"`
}
