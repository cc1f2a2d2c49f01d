package gesture

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AxisStats summarises one axis of one window cycle.
type AxisStats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// SensorFeatures holds the per-axis statistics for one sensor's window.
type SensorFeatures struct {
	X AxisStats `json:"x"`
	Y AxisStats `json:"y"`
	Z AxisStats `json:"z"`
}

// FeatureFrame is the payload emitted once per full window cycle: both
// sensors' per-axis statistics, computed at the same step.
type FeatureFrame struct {
	Accel SensorFeatures `json:"accelerometer"`
	Gyro  SensorFeatures `json:"gyroscope"`
}

// axisStats computes mean/min/max over all buffered samples of one axis.
// An empty axis yields NaN for every statistic; it cannot happen while the
// lock-step invariant holds but keeps extraction total.
func axisStats(vals []float64) AxisStats {
	if len(vals) == 0 {
		nan := math.NaN()
		return AxisStats{Mean: nan, Min: nan, Max: nan}
	}
	return AxisStats{
		Mean: stat.Mean(vals, nil),
		Min:  floats.Min(vals),
		Max:  floats.Max(vals),
	}
}
