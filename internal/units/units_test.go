package units

import (
	"math"
	"testing"
)

func TestIsValidAccelUnit(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid g", AccelG, true},
		{"valid ms2", AccelMS2, true},
		{"gyro unit is not an accel unit", GyroDPS, false},
		{"invalid unit", "invalid", false},
		{"empty string", "", false},
		{"case sensitive", "G", false},
		{"case sensitive", "MS2", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidAccelUnit(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValidAccelUnit(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestIsValidGyroUnit(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid dps", GyroDPS, true},
		{"valid rads", GyroRadS, true},
		{"accel unit is not a gyro unit", AccelG, false},
		{"invalid unit", "invalid", false},
		{"empty string", "", false},
		{"case sensitive", "DPS", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidGyroUnit(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValidGyroUnit(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestGetValidAccelUnitsString(t *testing.T) {
	expected := "g, ms2"
	result := GetValidAccelUnitsString()
	if result != expected {
		t.Errorf("GetValidAccelUnitsString() = %s, want %s", result, expected)
	}
}

func TestGetValidGyroUnitsString(t *testing.T) {
	expected := "dps, rads"
	result := GetValidGyroUnitsString()
	if result != expected {
		t.Errorf("GetValidGyroUnitsString() = %s, want %s", result, expected)
	}
}

func TestConvertAccel(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		units    string
		expected float64
	}{
		{"standard gravity in ms2 to g", 9.80665, AccelMS2, 1.0},
		{"1 ms2 to g", 1.0, AccelMS2, 0.101972},
		{"g passes through", 1.5, AccelG, 1.5},
		{"unknown units default to g", 2.0, "unknown", 2.0},
		{"zero", 0.0, AccelMS2, 0.0},
		{"negative ms2 to g", -19.6133, AccelMS2, -2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertAccel(tt.value, tt.units)
			if math.Abs(result-tt.expected) > 0.0001 {
				t.Errorf("ConvertAccel(%f, %s) = %f, want %f", tt.value, tt.units, result, tt.expected)
			}
		})
	}
}

func TestConvertGyro(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		units    string
		expected float64
	}{
		{"pi rad/s to deg/s", math.Pi, GyroRadS, 180.0},
		{"1 rad/s to deg/s", 1.0, GyroRadS, 57.29578},
		{"dps passes through", 210.5, GyroDPS, 210.5},
		{"unknown units default to deg/s", 42.0, "unknown", 42.0},
		{"zero", 0.0, GyroRadS, 0.0},
		{"negative rad/s to deg/s", -math.Pi / 2, GyroRadS, -90.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertGyro(tt.value, tt.units)
			if math.Abs(result-tt.expected) > 0.0001 {
				t.Errorf("ConvertGyro(%f, %s) = %f, want %f", tt.value, tt.units, result, tt.expected)
			}
		})
	}
}
