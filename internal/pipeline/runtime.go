// Package pipeline composes the gesture core with its boundary sinks: the
// async prediction emitter, the capture history ring, and the debug event
// bus. It owns nothing algorithmic; all windowing and segmentation semantics
// live in package gesture.
package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/gesturelab/motionpipe/internal/eventbus"
	"github.com/gesturelab/motionpipe/internal/gesture"
	"github.com/gesturelab/motionpipe/internal/imu"
	"github.com/gesturelab/motionpipe/internal/predict"
)

// Tuning is the live parameter set of one pipeline session: the shared
// window geometry plus the segmenter thresholds.
type Tuning struct {
	WindowSize    int                     `json:"window_size"`
	WindowOverlap int                     `json:"window_overlap"`
	Segmenter     gesture.SegmenterConfig `json:"segmenter"`
}

// Validate rejects tunings the core cannot run with.
func (t Tuning) Validate() error {
	if t.WindowSize <= 0 {
		return fmt.Errorf("window size must be positive, got %d", t.WindowSize)
	}
	if t.WindowOverlap < 0 || t.WindowOverlap >= t.WindowSize {
		return fmt.Errorf("window overlap must be in [0,%d), got %d", t.WindowSize, t.WindowOverlap)
	}
	return t.Segmenter.Validate()
}

// DefaultTuning returns the parameter set used when neither a tuning file
// nor a stored profile is supplied.
func DefaultTuning() Tuning {
	return Tuning{
		WindowSize:    50,
		WindowOverlap: 25,
		Segmenter:     gesture.DefaultSegmenterConfig(),
	}
}

// Stats is a point-in-time snapshot of session counters.
type Stats struct {
	Samples           int64     `json:"samples"`
	Frames            int64     `json:"frames"`
	CapturesEmitted   int64     `json:"captures_emitted"`
	CapturesDiscarded int64     `json:"captures_discarded"`
	EmitterDrops      int64     `json:"emitter_drops"`
	SegmenterState    string    `json:"segmenter_state"`
	LastSampleAt      time.Time `json:"last_sample_at"`
}

// RuntimeConfig wires a Runtime. Emitter and Bus are optional: a nil
// Emitter gets a log-only default, a nil Bus disables event publishing.
type RuntimeConfig struct {
	Tuning      Tuning
	HistorySize int                  // capture ring size (default: 32)
	Emitter     *predict.Emitter     // async prediction sink
	Bus         *eventbus.Bus[Event] // debug event fanout, caller-owned
}

// Runtime drives both subsystems over one ordered sample stream. Exactly
// one goroutine may call ProcessSample; the mutex exists for control-plane
// access (stats reads, tuning swaps from API handlers), not for the data
// path.
type Runtime struct {
	mu        sync.Mutex
	tuning    Tuning
	frames    *gesture.FrameBuilder
	segmenter *gesture.Segmenter

	history *gesture.CaptureHistory
	emitter *predict.Emitter
	bus     *eventbus.Bus[Event]

	samples      int64
	lastSampleAt time.Time
}

// NewRuntime builds the core components from the given tuning.
func NewRuntime(cfg RuntimeConfig) (*Runtime, error) {
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: tuning: %w", err)
	}
	fb, err := gesture.NewFrameBuilder(cfg.Tuning.WindowSize, cfg.Tuning.WindowOverlap)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	seg, err := gesture.NewSegmenter(cfg.Tuning.Segmenter)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	emitter := cfg.Emitter
	if emitter == nil {
		emitter = predict.NewEmitter(predict.EmitterConfig{})
	}
	return &Runtime{
		tuning:    cfg.Tuning,
		frames:    fb,
		segmenter: seg,
		history:   gesture.NewCaptureHistory(cfg.HistorySize),
		emitter:   emitter,
		bus:       cfg.Bus,
	}, nil
}

// ProcessSample advances both subsystems by one combined sample. A contract
// error from the window pair halts processing of this sample and is
// returned; the segmenter is not stepped for a sample the windows rejected.
// Outputs are handed off without blocking: predictions through the emitter
// queue, events through the bus.
func (r *Runtime) ProcessSample(s imu.CombinedSample) error {
	t := s.T
	if t.IsZero() {
		t = time.Now()
	}

	r.mu.Lock()
	frame, err := r.frames.HandleSample(s.Accel, s.Gyro)
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("pipeline: %w", err)
	}
	capture := r.segmenter.Step(s.Accel.X, s.Gyro.Y)
	r.samples++
	r.lastSampleAt = t
	r.mu.Unlock()

	if frame != nil {
		r.emitter.EmitFrame(frame)
		r.publish(Event{Type: EventFrame, T: t, Frame: frame})
	}
	if capture != nil {
		r.history.Add(capture)
		r.emitter.EmitCapture(capture)
		r.publish(Event{Type: EventCapture, T: t, Capture: capture})
	}
	return nil
}

func (r *Runtime) publish(ev Event) {
	if r.bus != nil {
		r.bus.Publish(ev)
	}
}

// Tuning returns the active parameter set.
func (r *Runtime) Tuning() Tuning {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tuning
}

// ApplyTuning validates and installs a new parameter set, rebuilding the
// window pair and the segmenter. Buffered samples and any open capture are
// discarded: a tuning swap is a session restart, because windows sized
// under the old geometry cannot be carried into the new one.
func (r *Runtime) ApplyTuning(t Tuning) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("pipeline: tuning: %w", err)
	}
	fb, err := gesture.NewFrameBuilder(t.WindowSize, t.WindowOverlap)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	seg, err := gesture.NewSegmenter(t.Segmenter)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tuning = t
	r.frames = fb
	r.segmenter = seg
	return nil
}

// Stats returns a snapshot of the session counters.
func (r *Runtime) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Samples:           r.samples,
		Frames:            r.frames.Frames(),
		CapturesEmitted:   r.segmenter.Emitted(),
		CapturesDiscarded: r.segmenter.Discarded(),
		EmitterDrops:      r.emitter.Drops(),
		SegmenterState:    string(r.segmenter.State()),
		LastSampleAt:      r.lastSampleAt,
	}
}

// History exposes the capture ring for API handlers.
func (r *Runtime) History() *gesture.CaptureHistory {
	return r.history
}

// Close stops the prediction emitter, draining queued payloads. The event
// bus is caller-owned and not closed here.
func (r *Runtime) Close() {
	r.emitter.Close()
}
