package shape

import "math"

// Status classifies how far a measured value deviates from its target.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFixable Status = "fixable"
	StatusError   Status = "error"
)

// Default tolerance values shared by rule sets.
const (
	DefaultTolerance      = 0.001 // mm or rad
	DefaultErrorThreshold = 0.1   // 10%
)

// SnapToGrid snaps a value to the nearest grid position, rounding halves
// to even. gridUnit must be positive; rule validation guards this.
func SnapToGrid(value, gridUnit float64) float64 {
	return math.RoundToEven(value/gridUnit) * gridUnit
}

// CheckGridAlignment reports whether value lies on the grid within
// tolerance, and the distance to the nearest grid line. gridUnit must
// be positive; rule validation guards this.
func CheckGridAlignment(value, gridUnit, tolerance float64) (bool, float64) {
	remainder := math.Mod(value, gridUnit)
	if remainder < 0 {
		remainder += gridUnit
	}
	deviation := math.Min(remainder, gridUnit-remainder)
	return deviation <= tolerance, deviation
}

// CheckValueMatch classifies the deviation of actual from expected.
// Deviations within tolerance are ok. Beyond that, the deviation ratio
// (relative to expected, or absolute when expected is 0) decides between
// fixable and error.
func CheckValueMatch(actual, expected, tolerance, errorThreshold float64) (Status, float64) {
	deviation := math.Abs(actual - expected)
	if deviation <= tolerance {
		return StatusOK, deviation
	}

	ratio := deviation
	if expected != 0 {
		ratio = deviation / expected
	}
	if ratio <= errorThreshold {
		return StatusFixable, deviation
	}
	return StatusError, deviation
}
