// Package units provides shared constants and conversions for speed units.
// Telemetry speeds are carried in km/h throughout the analysis packages.
package units

// Unit constants
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, MPH, KMPH, KPH}

const (
	kphPerMPS = 3.6
	mphPerMPS = 2.2369362920544
)

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
	return "mps, mph, kmph, kph"
}

// KPHToMPS converts km/h to m/s.
func KPHToMPS(speedKPH float64) float64 {
	return speedKPH / kphPerMPS
}

// ToKPH converts a speed expressed in the given units to km/h.
// Unknown units are treated as km/h.
func ToKPH(speed float64, fromUnits string) float64 {
	switch fromUnits {
	case MPS:
		return speed * kphPerMPS
	case MPH:
		return speed / mphPerMPS * kphPerMPS
	default:
		return speed
	}
}

// ConvertSpeed converts a speed from km/h to the target units.
func ConvertSpeed(speedKPH float64, targetUnits string) float64 {
	switch targetUnits {
	case MPS:
		return KPHToMPS(speedKPH)
	case MPH:
		return KPHToMPS(speedKPH) * mphPerMPS
	default:
		return speedKPH
	}
}

// Label returns the axis label for a speed unit.
func Label(unit string) string {
	switch unit {
	case MPS:
		return "m/s"
	case MPH:
		return "mph"
	default:
		return "km/h"
	}
}
