// Package naming implements the platform's artifact path templates:
//
//	raw/{date}_{sensor}_{tileID}.tif
//	raw/{date}_{sensor}_{tileID}_provenance.json
//	processed/{date}_{index}_analysis.tif
//	stats/{date}_{index}_zonal.csv
//	reports/Evidence_Pack_{ID}.{ext}
//
// These names are a wire contract: downstream consumers locate artifacts by
// them, so parsing is strict and failures are typed.
package naming

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

const (
	RawPrefix       = "raw"
	ProcessedPrefix = "processed"
	StatsPrefix     = "stats"
	ReportsPrefix   = "reports"
	VaultPrefix     = "vault"
)

const dateLayout = "20060102"

var (
	ErrBadSceneName    = errors.New("scene filename does not match {date}_{sensor}_{tileID}.tif")
	ErrBadAnalysisName = errors.New("analysis filename does not match {date}_{index}_analysis.tif")
	ErrBadZonalName    = errors.New("zonal filename does not match {date}_{index}_zonal.csv")
)

// SceneName holds the parsed components of a raw scene filename.
type SceneName struct {
	Date   string // YYYYMMDD
	Sensor string
	TileID string
}

// ParseSceneName parses and validates a raw scene filename.
// The tile component may itself contain underscores (catalog item ids do);
// date and sensor may not.
func ParseSceneName(filename string) (SceneName, error) {
	base, ok := strings.CutSuffix(filename, ".tif")
	if !ok || base == "" {
		return SceneName{}, ErrBadSceneName
	}
	parts := strings.SplitN(base, "_", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return SceneName{}, ErrBadSceneName
	}
	if _, err := time.Parse(dateLayout, parts[0]); err != nil {
		return SceneName{}, fmt.Errorf("%w: bad date %q", ErrBadSceneName, parts[0])
	}
	return SceneName{Date: parts[0], Sensor: parts[1], TileID: parts[2]}, nil
}

// BuildSceneName formats a raw scene filename from its components.
func BuildSceneName(date time.Time, sensor, tileID string) string {
	return fmt.Sprintf("%s_%s_%s.tif", date.UTC().Format(dateLayout), sensor, tileID)
}

// ScenePath returns the storage key for a raw scene.
func ScenePath(filename string) string {
	return path.Join(RawPrefix, filename)
}

// ProvenanceName derives the provenance sidecar filename for a scene.
func ProvenanceName(sceneFilename string) string {
	return strings.TrimSuffix(sceneFilename, ".tif") + "_provenance.json"
}

// ProvenancePath returns the storage key for a scene's provenance sidecar.
func ProvenancePath(sceneFilename string) string {
	return path.Join(RawPrefix, ProvenanceName(sceneFilename))
}

// AnalysisName formats a processed index raster filename.
func AnalysisName(date, index string) string {
	return fmt.Sprintf("%s_%s_analysis.tif", date, index)
}

// ParseAnalysisName parses a processed raster filename into date and index.
func ParseAnalysisName(filename string) (date, index string, err error) {
	base, ok := strings.CutSuffix(filename, "_analysis.tif")
	if !ok {
		return "", "", ErrBadAnalysisName
	}
	parts := strings.SplitN(base, "_", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", ErrBadAnalysisName
	}
	if _, err := time.Parse(dateLayout, parts[0]); err != nil {
		return "", "", fmt.Errorf("%w: bad date %q", ErrBadAnalysisName, parts[0])
	}
	return parts[0], parts[1], nil
}

// AnalysisPath returns the storage key for a processed raster.
func AnalysisPath(filename string) string {
	return path.Join(ProcessedPrefix, filename)
}

// ZonalName formats a zonal statistics filename.
func ZonalName(date, index string) string {
	return fmt.Sprintf("%s_%s_zonal.csv", date, index)
}

// ParseZonalName parses a zonal statistics filename into date and index.
func ParseZonalName(filename string) (date, index string, err error) {
	base, ok := strings.CutSuffix(filename, "_zonal.csv")
	if !ok {
		return "", "", ErrBadZonalName
	}
	parts := strings.SplitN(base, "_", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", ErrBadZonalName
	}
	if _, err := time.Parse(dateLayout, parts[0]); err != nil {
		return "", "", fmt.Errorf("%w: bad date %q", ErrBadZonalName, parts[0])
	}
	return parts[0], parts[1], nil
}

// ZonalPath returns the storage key for a zonal statistics table.
func ZonalPath(filename string) string {
	return path.Join(StatsPrefix, filename)
}

// PackName formats an evidence pack filename. ext carries no leading dot.
func PackName(id, ext string) string {
	return fmt.Sprintf("Evidence_Pack_%s.%s", id, ext)
}

// PackPath returns the storage key for an evidence pack.
func PackPath(filename string) string {
	return path.Join(ReportsPrefix, filename)
}

// VaultPath returns the cold-storage key for an archived object.
func VaultPath(key string) string {
	return path.Join(VaultPrefix, path.Base(key))
}
