// Package units provides shared constants and conversion for distance units.
package units

import "strings"

// Unit constants
const (
	MM = "mm"
	CM = "cm"
	M  = "m"
	IN = "in"
	FT = "ft"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MM, CM, M, IN, FT}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// PerMillimetre returns how many target units one millimetre is.
// Sensor ranges are reported in millimetres; unknown units return 1.
func PerMillimetre(targetUnits string) float64 {
	switch targetUnits {
	case CM:
		return 0.1
	case M:
		return 0.001
	case IN:
		return 1 / 25.4
	case FT:
		return 1 / 304.8
	default:
		return 1
	}
}
