package pipeline

import (
	"time"

	"github.com/gesturelab/motionpipe/internal/gesture"
)

// EventType tags the payload carried by an Event.
type EventType string

const (
	// EventFrame announces a completed fixed-window feature frame.
	EventFrame EventType = "frame"
	// EventCapture announces a closed, qualifying anomaly capture.
	EventCapture EventType = "capture"
)

// Event is the debug-facing record published on the event bus for every
// pipeline output. Exactly one of Frame/Capture is set, matching Type.
type Event struct {
	Type    EventType             `json:"type"`
	T       time.Time             `json:"t"`
	Frame   *gesture.FeatureFrame `json:"frame,omitempty"`
	Capture *gesture.Capture      `json:"capture,omitempty"`
}
