package gesture

import (
	"fmt"
	"math"
	"time"
)

// SegmenterState identifies the capture state machine's position.
type SegmenterState string

const (
	// StateIdle means no capture is open; the segmenter is watching for a
	// sustained excursion.
	StateIdle SegmenterState = "idle"
	// StateCollecting means a capture is open and accumulating samples.
	StateCollecting SegmenterState = "collecting"
)

// SegmenterConfig holds the tunable thresholds of the capture state machine.
// All six parameters are exposed through the tuning file and API; none are
// hidden constants.
type SegmenterConfig struct {
	ExcursionThreshold float64 `json:"excursion_threshold"` // |gyroY| beyond this counts toward opening a capture
	EndBandLow         float64 `json:"end_band_low"`        // inclusive lower bound of the "returned to baseline" band
	EndBandHigh        float64 `json:"end_band_high"`       // inclusive upper bound of the band
	StartRunLength     int     `json:"start_run_length"`    // consecutive above-threshold samples required to open (>= 1)
	MinCaptureLength   int     `json:"min_capture_length"`  // minimum collected samples for a capture to be emitted
	EndRunLength       int     `json:"end_run_length"`      // consecutive in-band samples required to close
}

// DefaultSegmenterConfig returns thresholds tuned for wrist-worn gesture
// capture at ~100 Hz with gyroscope readings in deg/s.
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		ExcursionThreshold: 120.0,
		EndBandLow:         -40.0,
		EndBandHigh:        40.0,
		StartRunLength:     2,
		MinCaptureLength:   20,
		EndRunLength:       10,
	}
}

// Validate rejects configurations the state machine cannot run with.
func (c SegmenterConfig) Validate() error {
	if c.ExcursionThreshold <= 0 {
		return fmt.Errorf("excursion threshold must be positive, got %g", c.ExcursionThreshold)
	}
	if c.EndBandLow > c.EndBandHigh {
		return fmt.Errorf("end band inverted: [%g, %g]", c.EndBandLow, c.EndBandHigh)
	}
	if c.StartRunLength < 1 {
		return fmt.Errorf("start run length must be >= 1, got %d", c.StartRunLength)
	}
	if c.MinCaptureLength < 1 {
		return fmt.Errorf("min capture length must be >= 1, got %d", c.MinCaptureLength)
	}
	if c.EndRunLength < 1 {
		return fmt.Errorf("end run length must be >= 1, got %d", c.EndRunLength)
	}
	return nil
}

// Segmenter cuts variable-length gesture captures out of the sample stream
// by watching the gyroscope Y axis. A sustained excursion beyond
// ExcursionThreshold opens a capture; the capture closes once the signal has
// sat inside the end band for EndRunLength consecutive samples. Captures
// shorter than MinCaptureLength are discarded, not emitted.
//
// The start condition is unsigned (|gyroY| against one threshold) while the
// end condition is a signed band: closing asks "has the signal returned near
// zero", not "has it dropped below the excursion threshold". Excursions
// during collection do not interrupt it; only the end-band run closes a
// capture.
//
// All state lives on the instance. Step must be called from one goroutine,
// once per combined sample, in arrival order.
type Segmenter struct {
	cfg SegmenterConfig

	state             SegmenterState
	aboveThresholdRun int // consecutive samples with |gyroY| > threshold
	inEndBandRun      int // consecutive samples inside [EndBandLow, EndBandHigh]

	// capture accumulators, grown only while collecting
	gyroSeq []float64 // -gyroY per sample (upstream polarity is inverted)
	accSeq  []float64 // accX per sample
	openedAt time.Time

	emitted   int64 // qualifying captures closed this session
	discarded int64 // short captures dropped this session
}

// NewSegmenter creates a segmenter in the idle state.
func NewSegmenter(cfg SegmenterConfig) (*Segmenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("gesture: segmenter config: %w", err)
	}
	return &Segmenter{cfg: cfg, state: StateIdle}, nil
}

// Step advances the state machine by one (accX, gyroY) pair. It returns a
// non-nil Capture exactly when this step closes a capture of at least
// MinCaptureLength samples; short captures are discarded with a debug log
// and a counter bump. Both run counters are re-evaluated on every step: the
// same sample can end an above-threshold run and extend the end-band run.
func (s *Segmenter) Step(accX, gyroY float64) *Capture {
	if math.Abs(gyroY) > s.cfg.ExcursionThreshold {
		s.aboveThresholdRun++
	} else {
		s.aboveThresholdRun = 0
	}

	if s.aboveThresholdRun >= s.cfg.StartRunLength && s.state == StateIdle {
		s.state = StateCollecting
		s.gyroSeq = s.gyroSeq[:0]
		s.accSeq = s.accSeq[:0]
		s.inEndBandRun = 0
		s.openedAt = time.Now()
		debugf("[Segmenter] capture opened (run=%d)", s.aboveThresholdRun)
	}

	if s.state != StateCollecting {
		return nil
	}

	// The opening excursion belongs to the gesture: the sample that flips
	// the state is also the first one collected.
	s.gyroSeq = append(s.gyroSeq, -gyroY)
	s.accSeq = append(s.accSeq, accX)

	if gyroY >= s.cfg.EndBandLow && gyroY <= s.cfg.EndBandHigh {
		s.inEndBandRun++
	} else {
		s.inEndBandRun = 0
	}
	if s.inEndBandRun < s.cfg.EndRunLength {
		return nil
	}

	s.state = StateIdle
	var out *Capture
	if len(s.gyroSeq) >= s.cfg.MinCaptureLength {
		out = newCapture(s.gyroSeq, s.accSeq, s.openedAt)
		s.emitted++
		debugf("[Segmenter] capture %s closed with %d samples", out.ID, out.Len())
	} else {
		s.discarded++
		debugf("[Segmenter] capture discarded, %d samples < minimum %d",
			len(s.gyroSeq), s.cfg.MinCaptureLength)
	}
	s.gyroSeq = s.gyroSeq[:0]
	s.accSeq = s.accSeq[:0]
	return out
}

// State returns the current machine state.
func (s *Segmenter) State() SegmenterState {
	return s.state
}

// Config returns the active thresholds.
func (s *Segmenter) Config() SegmenterConfig {
	return s.cfg
}

// Emitted returns the number of qualifying captures closed this session.
func (s *Segmenter) Emitted() int64 {
	return s.emitted
}

// Discarded returns the number of short captures dropped this session.
func (s *Segmenter) Discarded() int64 {
	return s.discarded
}
