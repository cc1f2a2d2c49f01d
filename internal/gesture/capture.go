package gesture

import (
	"time"

	"github.com/google/uuid"
)

// Capture is one closed, qualifying anomaly segment: the inverted
// gyroscope-Y samples and the accelerometer-X samples collected between the
// opening excursion and the end-band close, in arrival order.
type Capture struct {
	ID       string    `json:"id"`
	GyroY    []float64 `json:"gyro_y"`
	AccX     []float64 `json:"acc_x"`
	OpenedAt time.Time `json:"opened_at"`
	ClosedAt time.Time `json:"closed_at"`
}

// newCapture copies the accumulator slices so the segmenter can reuse them.
func newCapture(gyroSeq, accSeq []float64, openedAt time.Time) *Capture {
	c := &Capture{
		ID:       uuid.NewString(),
		GyroY:    make([]float64, len(gyroSeq)),
		AccX:     make([]float64, len(accSeq)),
		OpenedAt: openedAt,
		ClosedAt: time.Now(),
	}
	copy(c.GyroY, gyroSeq)
	copy(c.AccX, accSeq)
	return c
}

// Len returns the number of samples collected (per sequence).
func (c *Capture) Len() int {
	return len(c.GyroY)
}

// Flatten returns the prediction payload: the gyro sequence followed by the
// acc sequence as one flat slice of length 2*Len().
func (c *Capture) Flatten() []float64 {
	out := make([]float64, 0, len(c.GyroY)+len(c.AccX))
	out = append(out, c.GyroY...)
	out = append(out, c.AccX...)
	return out
}
