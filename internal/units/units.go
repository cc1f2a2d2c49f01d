// Package units provides shared constants, validation and conversion for
// sensor units
package units

// Accelerometer unit constants
const (
	AccelG   = "g"
	AccelMS2 = "ms2"
)

// Gyroscope unit constants
const (
	GyroDPS  = "dps"
	GyroRadS = "rads"
)

// ValidAccelUnits contains all valid accelerometer unit values
var ValidAccelUnits = []string{AccelG, AccelMS2}

// ValidGyroUnits contains all valid gyroscope unit values
var ValidGyroUnits = []string{GyroDPS, GyroRadS}

// IsValidAccelUnit checks if the given unit is a valid accelerometer unit
func IsValidAccelUnit(unit string) bool {
	for _, validUnit := range ValidAccelUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// IsValidGyroUnit checks if the given unit is a valid gyroscope unit
func IsValidGyroUnit(unit string) bool {
	for _, validUnit := range ValidGyroUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidAccelUnitsString returns a comma-separated string of valid
// accelerometer units for error messages
func GetValidAccelUnitsString() string {
	return "g, ms2"
}

// GetValidGyroUnitsString returns a comma-separated string of valid
// gyroscope units for error messages
func GetValidGyroUnitsString() string {
	return "dps, rads"
}

// ConvertAccel converts an accelerometer reading from the source units to g
// The pipeline works in g internally
func ConvertAccel(value float64, sourceUnits string) float64 {
	switch sourceUnits {
	case AccelMS2:
		return value / 9.80665 // m/s² to g (standard gravity)
	case AccelG:
		return value
	default:
		return value // default to g if unknown unit
	}
}

// ConvertGyro converts a gyroscope reading from the source units to deg/s
// The pipeline works in deg/s internally
func ConvertGyro(value float64, sourceUnits string) float64 {
	switch sourceUnits {
	case GyroRadS:
		return value * 57.29577951308232 // rad/s to deg/s
	case GyroDPS:
		return value
	default:
		return value // default to deg/s if unknown unit
	}
}
