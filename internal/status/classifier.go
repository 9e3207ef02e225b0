// FilePath: internal/status/classifier.go

// Package status classifies a farm's current condition from its latest
// sensor reading and the farm's resolved threshold configuration.
package status

import "github.com/mirnanodes/broilink-backend/internal/models"

// Status is the farm condition severity. The values form a total order:
// unknown < normal < waspada < bahaya. The Indonesian tokens "waspada"
// (warning) and "bahaya" (critical) are the wire contract with existing
// consumers and must not be renamed.
type Status string

const (
	StatusUnknown  Status = "unknown"
	StatusNormal   Status = "normal"
	StatusWarning  Status = "waspada"
	StatusCritical Status = "bahaya"
)

// severity orders statuses for comparison.
func severity(s Status) int {
	switch s {
	case StatusNormal:
		return 1
	case StatusWarning:
		return 2
	case StatusCritical:
		return 3
	default:
		return 0
	}
}

// WorseThan reports whether s is more severe than other.
func (s Status) WorseThan(other Status) bool {
	return severity(s) > severity(other)
}

// Classify evaluates a reading against a threshold set. A nil reading or
// an entirely empty configuration yields StatusUnknown. The critical
// predicate is always evaluated first and wins over any warning condition.
//
// Boundary semantics are deliberately asymmetric: critical bounds are
// inclusive (a reading exactly at the critical limit is already bahaya)
// while the normal range is exclusive (a reading exactly at normal_max is
// still normal), so a single value never fires both sides of a boundary.
func Classify(reading *models.SensorReading, t Thresholds) Status {
	if reading == nil || t.Empty() {
		return StatusUnknown
	}

	critical := atOrBelow(reading.Temperature, t.TempCriticalLow) ||
		atOrAbove(reading.Temperature, t.TempCriticalHigh) ||
		atOrBelow(reading.Humidity, t.HumCriticalLow) ||
		atOrAbove(reading.Humidity, t.HumCriticalHigh) ||
		atOrAbove(reading.Ammonia, t.AmmoniaCriticalMax)
	if critical {
		return StatusCritical
	}

	warning := below(reading.Temperature, t.TempNormalMin) ||
		above(reading.Temperature, t.TempNormalMax) ||
		below(reading.Humidity, t.HumNormalMin) ||
		above(reading.Humidity, t.HumNormalMax) ||
		above(reading.Ammonia, t.AmmoniaWarnMax)
	if warning {
		return StatusWarning
	}

	return StatusNormal
}
