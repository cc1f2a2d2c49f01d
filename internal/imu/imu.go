// Package imu defines the sample types shared by every stage of the motion
// pipeline, plus parsers for the two wire encodings produced by sensor
// bridges (JSON objects and CSV lines).
package imu

import (
	"fmt"
	"time"
)

// Vec3 is one triaxial sensor reading in normalized units (accelerometer in
// g, gyroscope in deg/s unless the source says otherwise).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// CombinedSample pairs one accelerometer reading with one gyroscope reading
// taken at the same instant. It is the unit of pipeline advancement: every
// component steps exactly once per CombinedSample, in arrival order.
type CombinedSample struct {
	Accel Vec3
	Gyro  Vec3
	T     time.Time
}

// String renders a compact single-line form for logs.
func (s CombinedSample) String() string {
	return fmt.Sprintf("acc=(%.3f,%.3f,%.3f) gyro=(%.3f,%.3f,%.3f) t=%s",
		s.Accel.X, s.Accel.Y, s.Accel.Z,
		s.Gyro.X, s.Gyro.Y, s.Gyro.Z,
		s.T.Format(time.RFC3339Nano))
}
