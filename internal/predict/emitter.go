package predict

import (
	"context"
	"sync"
	"time"

	"github.com/gesturelab/motionpipe/internal/gesture"
	"github.com/gesturelab/motionpipe/internal/monitoring"
)

// emitJob carries one payload through the queue; exactly one field is set.
type emitJob struct {
	frame   *gesture.FeatureFrame
	capture *gesture.Capture
}

// EmitterConfig configures the async prediction queue.
type EmitterConfig struct {
	Predictor Predictor     // destination classifier (default: LogPredictor)
	QueueSize int           // buffered payloads before drops begin (default: 16)
	Timeout   time.Duration // per-prediction context timeout (default: 5s)
}

// Emitter decouples the sample-processing loop from the classifier: payloads
// are handed off through a buffered channel to one worker goroutine, and the
// hot path never blocks. When the queue is full the payload is dropped with
// a log line and a counter bump; a slow classifier costs predictions, never
// sample ordering. Prediction results and errors are logged and go nowhere
// else: the pipeline cannot observe them.
type Emitter struct {
	predictor Predictor
	timeout   time.Duration
	jobs      chan emitJob
	done      chan struct{} // closed when the worker exits
	dropLogf  func(format string, v ...interface{})

	mu    sync.Mutex
	drops int64 // payloads dropped because the queue was full
}

// NewEmitter creates the queue and starts its worker.
func NewEmitter(cfg EmitterConfig) *Emitter {
	if cfg.Predictor == nil {
		cfg.Predictor = LogPredictor{}
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	e := &Emitter{
		predictor: cfg.Predictor,
		timeout:   cfg.Timeout,
		jobs:      make(chan emitJob, cfg.QueueSize),
		done:      make(chan struct{}),
		// A stalled classifier turns every enqueue into a drop; one line
		// every few seconds is enough to see it.
		dropLogf: monitoring.Throttled(5 * time.Second),
	}
	go e.worker()
	return e
}

// EmitFrame queues one feature frame without blocking.
func (e *Emitter) EmitFrame(f *gesture.FeatureFrame) {
	if f == nil {
		return
	}
	e.enqueue(emitJob{frame: f})
}

// EmitCapture queues one capture without blocking.
func (e *Emitter) EmitCapture(c *gesture.Capture) {
	if c == nil {
		return
	}
	e.enqueue(emitJob{capture: c})
}

func (e *Emitter) enqueue(job emitJob) {
	select {
	case e.jobs <- job:
	default:
		// Queue full: drop rather than stall sample processing.
		e.mu.Lock()
		e.drops++
		n := e.drops
		e.mu.Unlock()
		e.dropLogf("[Emitter] queue full, payload dropped (%d total)", n)
	}
}

// worker serialises predictor calls so a slow classifier never sees
// concurrent requests from one pipeline.
func (e *Emitter) worker() {
	defer close(e.done)
	for job := range e.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		var (
			result *Result
			err    error
			kind   string
		)
		switch {
		case job.frame != nil:
			kind = "features"
			result, err = e.predictor.PredictFeatures(ctx, job.frame)
		case job.capture != nil:
			kind = "capture"
			result, err = e.predictor.PredictCapture(ctx, job.capture)
		}
		cancel()

		if err != nil {
			monitoring.Logf("[Emitter] %s prediction failed (%s): %v", kind, e.predictor.Model(), err)
			continue
		}
		if result != nil {
			monitoring.Logf("[Emitter] %s prediction: gesture=%s confidence=%.3f model=%s",
				kind, result.Gesture, result.Confidence, result.Model)
		}
	}
}

// Drops returns the number of payloads dropped due to a full queue.
func (e *Emitter) Drops() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drops
}

// Close stops the worker after draining queued payloads. The emitter must
// not be used after Close.
func (e *Emitter) Close() {
	close(e.jobs)
	<-e.done
}
