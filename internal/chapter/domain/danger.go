package domain

// DangerLevel classifies a unit's risk of loss from its remaining HP.
type DangerLevel string

const (
	DangerNone     DangerLevel = "none"
	DangerLow      DangerLevel = "low"
	DangerMedium   DangerLevel = "medium"
	DangerHigh     DangerLevel = "high"
	DangerCritical DangerLevel = "critical"
)

// Danger thresholds as fractions of max HP. A unit at or below a threshold
// is classified at that level or worse.
const (
	dangerLowRatio      = 0.75
	dangerMediumRatio   = 0.50
	dangerHighRatio     = 0.25
	dangerCriticalRatio = 0.10
)

// DangerForHP classifies current HP against max HP. Units with unknown max
// HP report DangerNone; a downed unit reports DangerCritical.
func DangerForHP(current, max int) DangerLevel {
	if max <= 0 {
		return DangerNone
	}
	if current <= 0 {
		return DangerCritical
	}

	ratio := float64(current) / float64(max)
	switch {
	case ratio <= dangerCriticalRatio:
		return DangerCritical
	case ratio <= dangerHighRatio:
		return DangerHigh
	case ratio <= dangerMediumRatio:
		return DangerMedium
	case ratio <= dangerLowRatio:
		return DangerLow
	}
	return DangerNone
}

// Severity orders danger levels from none (0) to critical (4).
func (d DangerLevel) Severity() int {
	switch d {
	case DangerLow:
		return 1
	case DangerMedium:
		return 2
	case DangerHigh:
		return 3
	case DangerCritical:
		return 4
	}
	return 0
}
