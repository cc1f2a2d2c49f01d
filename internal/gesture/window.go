// Package gesture implements the streaming core of the motion pipeline: the
// fixed-capacity sliding windows with overlap retention, per-axis feature
// extraction, the lock-step window pair that drives periodic feature frames,
// and the threshold state machine that cuts variable-length gesture captures
// out of the continuous stream.
package gesture

import (
	"errors"
	"fmt"
)

// Contract errors. Both indicate a bug in the caller's stepping discipline,
// never a data condition, and must stop processing of the offending sample.
var (
	// ErrWindowFull is returned by AddSample when the window already holds
	// capacity samples and nobody slid it.
	ErrWindowFull = errors.New("gesture: window at capacity")

	// ErrWindowNotFull is returned by Slide when the window has not yet
	// reached capacity.
	ErrWindowNotFull = errors.New("gesture: window not full")
)

// Window is a fixed-capacity buffer of recent triaxial samples. The three
// axis slices always advance together: one AddSample appends to all three.
// Slide drops the oldest capacity-overlap samples and keeps the newest
// overlap samples in place, so consecutive analysis windows share tail data.
type Window struct {
	capacity int // fixed sample budget, > 0
	overlap  int // samples retained across a slide, 0 <= overlap < capacity

	xAxis []float64
	yAxis []float64
	zAxis []float64
}

// NewWindow creates a window with the given capacity and overlap.
func NewWindow(capacity, overlap int) (*Window, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("gesture: capacity must be positive, got %d", capacity)
	}
	if overlap < 0 || overlap >= capacity {
		return nil, fmt.Errorf("gesture: overlap must be in [0,%d), got %d", capacity, overlap)
	}
	return &Window{
		capacity: capacity,
		overlap:  overlap,
		xAxis:    make([]float64, 0, capacity),
		yAxis:    make([]float64, 0, capacity),
		zAxis:    make([]float64, 0, capacity),
	}, nil
}

// AddSample appends one sample to every axis. Adding to a full window is a
// contract violation: the caller must Slide first.
func (w *Window) AddSample(x, y, z float64) error {
	if len(w.xAxis) >= w.capacity {
		return fmt.Errorf("%w (capacity %d)", ErrWindowFull, w.capacity)
	}
	w.xAxis = append(w.xAxis, x)
	w.yAxis = append(w.yAxis, y)
	w.zAxis = append(w.zAxis, z)
	return nil
}

// Full reports whether the window holds capacity samples.
func (w *Window) Full() bool {
	return len(w.xAxis) >= w.capacity
}

// Len returns the current sample count.
func (w *Window) Len() int {
	return len(w.xAxis)
}

// Capacity returns the fixed sample budget.
func (w *Window) Capacity() int {
	return w.capacity
}

// Overlap returns the number of samples retained across a slide.
func (w *Window) Overlap() int {
	return w.overlap
}

// Slide discards the oldest capacity-overlap samples from every axis,
// keeping the newest overlap samples in original order. Sliding a window
// that is not yet full is a contract violation.
func (w *Window) Slide() error {
	if len(w.xAxis) < w.capacity {
		return fmt.Errorf("%w (have %d of %d)", ErrWindowNotFull, len(w.xAxis), w.capacity)
	}
	keepFrom := w.capacity - w.overlap
	w.xAxis = append(w.xAxis[:0], w.xAxis[keepFrom:]...)
	w.yAxis = append(w.yAxis[:0], w.yAxis[keepFrom:]...)
	w.zAxis = append(w.zAxis[:0], w.zAxis[keepFrom:]...)
	return nil
}

// ExtractFeatures computes per-axis summary statistics over every sample
// currently buffered, including any samples retained from the previous
// cycle's overlap. Empty axes yield NaN statistics. The window is not
// mutated, so repeated calls return identical results.
func (w *Window) ExtractFeatures() SensorFeatures {
	return SensorFeatures{
		X: axisStats(w.xAxis),
		Y: axisStats(w.yAxis),
		Z: axisStats(w.zAxis),
	}
}
