// Package units provides shared constants and conversions for speed and
// altitude units. Internal computation uses metres and m/s throughout;
// aviation-facing surfaces report knots and feet.
package units

// Unit constants
const (
	MPS  = "mps"
	KT   = "kt"
	KMPH = "kmph"
	KPH  = "kph"
	MPH  = "mph"
)

// Conversion factors
const (
	KnotsPerMps  = 1.94384
	FeetPerMeter = 3.28084
)

// ValidUnits contains all valid speed unit values
var ValidUnits = []string{MPS, KT, KMPH, KPH, MPH}

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
	return "mps, kt, kmph, kph, mph"
}

// MpsToKnots converts a speed in metres per second to knots.
func MpsToKnots(speedMPS float64) float64 {
	return speedMPS * KnotsPerMps
}

// MetersToFeet converts an altitude in metres to feet.
func MetersToFeet(meters float64) float64 {
	return meters * FeetPerMeter
}

// ConvertSpeed converts a speed from metres per second to the target units.
// Unknown units fall back to m/s.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case KT:
		return speedMPS * KnotsPerMps
	case KMPH, KPH:
		return speedMPS * 3.6
	case MPH:
		return speedMPS * 2.23694
	case MPS:
		return speedMPS
	default:
		return speedMPS
	}
}
