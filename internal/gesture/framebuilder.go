package gesture

import (
	"fmt"

	"github.com/gesturelab/motionpipe/internal/imu"
)

// FrameBuilder owns the accelerometer and gyroscope windows and steps them
// in lock-step: every HandleSample appends exactly one sample to each, so
// the two windows can never drift apart. When both windows fill it extracts
// a FeatureFrame from each and slides both, advancing the stream by
// capacity-overlap samples per cycle.
type FrameBuilder struct {
	accel *Window
	gyro  *Window

	frames int64 // completed window cycles this session
}

// NewFrameBuilder creates the window pair. Both windows share the same
// capacity and overlap; that symmetry is what keeps them synchronized.
func NewFrameBuilder(capacity, overlap int) (*FrameBuilder, error) {
	accel, err := NewWindow(capacity, overlap)
	if err != nil {
		return nil, fmt.Errorf("accel window: %w", err)
	}
	gyro, err := NewWindow(capacity, overlap)
	if err != nil {
		return nil, fmt.Errorf("gyro window: %w", err)
	}
	return &FrameBuilder{accel: accel, gyro: gyro}, nil
}

// HandleSample appends one combined sample to both windows. It returns a
// non-nil FeatureFrame exactly when the append fills both windows: features
// are extracted over the whole buffered contents (overlap included) and both
// windows slide before returning. During warm-up it returns (nil, nil).
//
// A contract error from either window means the lock-step invariant was
// broken by the caller; the sample is not half-applied silently.
func (fb *FrameBuilder) HandleSample(accel, gyro imu.Vec3) (*FeatureFrame, error) {
	if err := fb.accel.AddSample(accel.X, accel.Y, accel.Z); err != nil {
		return nil, fmt.Errorf("accel window: %w", err)
	}
	if err := fb.gyro.AddSample(gyro.X, gyro.Y, gyro.Z); err != nil {
		return nil, fmt.Errorf("gyro window: %w", err)
	}

	if !fb.accel.Full() || !fb.gyro.Full() {
		return nil, nil
	}

	frame := &FeatureFrame{
		Accel: fb.accel.ExtractFeatures(),
		Gyro:  fb.gyro.ExtractFeatures(),
	}
	if err := fb.accel.Slide(); err != nil {
		return nil, fmt.Errorf("accel window: %w", err)
	}
	if err := fb.gyro.Slide(); err != nil {
		return nil, fmt.Errorf("gyro window: %w", err)
	}
	fb.frames++
	debugf("[FrameBuilder] frame %d complete (capacity=%d overlap=%d)",
		fb.frames, fb.accel.Capacity(), fb.accel.Overlap())
	return frame, nil
}

// Frames returns the number of completed window cycles this session.
func (fb *FrameBuilder) Frames() int64 {
	return fb.frames
}

// Capacity returns the shared window capacity.
func (fb *FrameBuilder) Capacity() int {
	return fb.accel.Capacity()
}

// Overlap returns the shared window overlap.
func (fb *FrameBuilder) Overlap() int {
	return fb.accel.Overlap()
}

// Reset discards all buffered samples, returning the builder to its warm-up
// state. Used when tuning geometry changes mid-session.
func (fb *FrameBuilder) Reset() {
	capacity, overlap := fb.accel.Capacity(), fb.accel.Overlap()
	fb.accel, _ = NewWindow(capacity, overlap)
	fb.gyro, _ = NewWindow(capacity, overlap)
	fb.frames = 0
}
