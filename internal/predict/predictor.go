// Package predict owns the boundary to the external gesture classifier: the
// Predictor contract, an HTTP implementation, and the asynchronous Emitter
// that keeps prediction traffic off the sample-processing path.
package predict

import (
	"context"

	"github.com/gesturelab/motionpipe/internal/gesture"
	"github.com/gesturelab/motionpipe/internal/monitoring"
)

// Result is the classifier's answer for one payload.
type Result struct {
	Gesture    string  `json:"gesture"`
	Confidence float64 `json:"confidence"`
	Model      string  `json:"model"`
}

// Predictor classifies pipeline outputs. Implementations own transport and
// serialization; the pipeline never retries or inspects failures.
type Predictor interface {
	// PredictFeatures classifies one fixed-window feature frame.
	PredictFeatures(ctx context.Context, f *gesture.FeatureFrame) (*Result, error)

	// PredictCapture classifies one anomaly capture.
	PredictCapture(ctx context.Context, c *gesture.Capture) (*Result, error)

	// Model identifies the backing classifier for logs and stats.
	Model() string
}

// LogPredictor is the terminal sink used when no classifier service is
// configured: it logs payload shapes and returns no result.
type LogPredictor struct{}

func (LogPredictor) PredictFeatures(_ context.Context, f *gesture.FeatureFrame) (*Result, error) {
	monitoring.Logf("[Predict] feature frame: acc x{mean=%.3f min=%.3f max=%.3f} gyro y{mean=%.3f min=%.3f max=%.3f}",
		f.Accel.X.Mean, f.Accel.X.Min, f.Accel.X.Max,
		f.Gyro.Y.Mean, f.Gyro.Y.Min, f.Gyro.Y.Max)
	return nil, nil
}

func (LogPredictor) PredictCapture(_ context.Context, c *gesture.Capture) (*Result, error) {
	monitoring.Logf("[Predict] capture %s: %d samples, payload length %d",
		c.ID, c.Len(), 2*c.Len())
	return nil, nil
}

func (LogPredictor) Model() string { return "log" }
