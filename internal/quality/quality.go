// Package quality implements the platform's data quality gates: acquisition
// confidence from cloud cover, index statistics validation, and alert levels
// for watchdog notifications.
package quality

import (
	"errors"
	"fmt"

	"gaia/internal/model"
)

const (
	// CloudCoverLowConfidence: scenes above this cloud percentage are graded
	// Low Confidence and cannot back strong evidence claims.
	CloudCoverLowConfidence = 20.0

	// CloudCoverUnreliable: above this, the scene is too obscured for any
	// alerting decision at all.
	CloudCoverUnreliable = 50.0

	// Alert thresholds on mean index value. Healthy monitored vegetation
	// sits above 0.4; a drop below 0.2 indicates clearing or die-off.
	alertHighBelow   = 0.2
	alertMediumBelow = 0.4
)

// ErrIndexOutOfRange rejects declared statistics outside the valid range of a
// normalized difference index.
var ErrIndexOutOfRange = errors.New("index statistics outside [-1.0, 1.0]")

// ErrStatsInconsistent rejects statistics where min/mean/max are not ordered.
var ErrStatsInconsistent = errors.New("index statistics inconsistent: require min <= mean <= max")

// ErrCloudCoverRange rejects cloud cover values outside [0, 100].
var ErrCloudCoverRange = errors.New("cloud cover outside [0, 100]")

// ConfidenceFromCloudCover grades a scene by its declared cloud cover.
func ConfidenceFromCloudCover(pct float64) (model.Confidence, error) {
	if pct < 0 || pct > 100 {
		return "", fmt.Errorf("%w: %.2f", ErrCloudCoverRange, pct)
	}
	if pct > CloudCoverLowConfidence {
		return model.ConfidenceLow, nil
	}
	return model.ConfidenceHigh, nil
}

// ValidateIndexStats checks declared index statistics against the invariant
// range of normalized difference indices.
func ValidateIndexStats(s model.IndexStats) error {
	for _, v := range []float64{s.Min, s.Mean, s.Max} {
		if v < -1.0 || v > 1.0 {
			return fmt.Errorf("%w: got min=%.4f mean=%.4f max=%.4f", ErrIndexOutOfRange, s.Min, s.Mean, s.Max)
		}
	}
	if s.Min > s.Mean || s.Mean > s.Max {
		return fmt.Errorf("%w: got min=%.4f mean=%.4f max=%.4f", ErrStatsInconsistent, s.Min, s.Mean, s.Max)
	}
	return nil
}

// AlertLevelFor derives the watchdog alert level from a mean index value and
// the scene's cloud cover. Too much cloud makes the result untrustworthy, so
// it never raises an alert on its own.
func AlertLevelFor(meanIndex, cloudCoverPct float64) model.AlertLevel {
	if cloudCoverPct > CloudCoverUnreliable {
		return model.AlertLow
	}
	switch {
	case meanIndex < alertHighBelow:
		return model.AlertHigh
	case meanIndex < alertMediumBelow:
		return model.AlertMedium
	default:
		return model.AlertLow
	}
}
