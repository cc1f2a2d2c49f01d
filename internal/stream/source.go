// Package stream delivers ordered sensor samples from live and recorded
// transports to the pipeline. Every source invokes its SampleHandler from a
// single goroutine in arrival order; the handler is the serialization point
// for everything downstream.
package stream

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gesturelab/motionpipe/internal/imu"
	"github.com/gesturelab/motionpipe/internal/timeutil"
	"github.com/gesturelab/motionpipe/internal/units"
)

// SampleHandler receives decoded samples from a source, one at a time, in
// arrival order.
type SampleHandler func(imu.CombinedSample)

// NormalizingHandler wraps next so samples arriving in other device units
// reach the pipeline normalized (accelerometer in g, gyroscope in deg/s).
// Sources already delivering normalized units get next back unchanged.
func NormalizingHandler(accelUnit, gyroUnit string, next SampleHandler) SampleHandler {
	if accelUnit == units.AccelG && gyroUnit == units.GyroDPS {
		return next
	}
	return func(s imu.CombinedSample) {
		s.Accel.X = units.ConvertAccel(s.Accel.X, accelUnit)
		s.Accel.Y = units.ConvertAccel(s.Accel.Y, accelUnit)
		s.Accel.Z = units.ConvertAccel(s.Accel.Z, accelUnit)
		s.Gyro.X = units.ConvertGyro(s.Gyro.X, gyroUnit)
		s.Gyro.Y = units.ConvertGyro(s.Gyro.Y, gyroUnit)
		s.Gyro.Z = units.ConvertGyro(s.Gyro.Z, gyroUnit)
		next(s)
	}
}

// StatsRecorder tracks source-level delivery statistics.
type StatsRecorder interface {
	AddSample(bytes int)
	AddMalformed()
	AddDropped()
	LogStats()
}

// SourceStats is the standard StatsRecorder: thread-safe counters with
// periodic rate logging.
type SourceStats struct {
	mu             sync.Mutex
	name           string
	sampleCount    int64
	byteCount      int64
	malformedCount int64
	droppedCount   int64
	lastReset      time.Time
}

// NewSourceStats creates a SourceStats labelled with the source name used
// in log output.
func NewSourceStats(name string) *SourceStats {
	return &SourceStats{
		name:      name,
		lastReset: time.Now(),
	}
}

// AddSample increments sample count and byte count.
func (s *SourceStats) AddSample(bytes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sampleCount++
	s.byteCount += int64(bytes)
}

// AddMalformed increments the malformed input count.
func (s *SourceStats) AddMalformed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.malformedCount++
}

// AddDropped increments the dropped sample count.
func (s *SourceStats) AddDropped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.droppedCount++
}

// GetAndReset returns current stats and resets counters.
func (s *SourceStats) GetAndReset() (samples, bytes, malformed, dropped int64, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	duration = now.Sub(s.lastReset)
	samples = s.sampleCount
	bytes = s.byteCount
	malformed = s.malformedCount
	dropped = s.droppedCount

	s.sampleCount = 0
	s.byteCount = 0
	s.malformedCount = 0
	s.droppedCount = 0
	s.lastReset = now

	return
}

// LogStats logs the current interval's rates and resets the counters.
// Quiet intervals produce no output.
func (s *SourceStats) LogStats() {
	samples, bytes, malformed, dropped, duration := s.GetAndReset()
	if samples == 0 && malformed == 0 && dropped == 0 {
		return
	}
	samplesPerSec := float64(samples) / duration.Seconds()
	kbPerSec := float64(bytes) / duration.Seconds() / 1024

	logMsg := fmt.Sprintf("%s stats (/sec): %.1f samples, %.2f KB", s.name, samplesPerSec, kbPerSec)
	if malformed > 0 {
		logMsg += fmt.Sprintf(", %d malformed", malformed)
	}
	if dropped > 0 {
		logMsg += fmt.Sprintf(", %d dropped", dropped)
	}
	log.Print(logMsg)
}

// noopStats is a StatsRecorder implementation that does nothing. It is used
// as a safe default when no stats collector is provided.
type noopStats struct{}

func (n *noopStats) AddSample(bytes int) {}
func (n *noopStats) AddMalformed()       {}
func (n *noopStats) AddDropped()         {}
func (n *noopStats) LogStats()           {}

// logStatsLoop periodically logs source statistics. An initial report fires
// shortly after startup to avoid a long silence on first run, then reports
// continue on the configured interval.
func logStatsLoop(ctx context.Context, clock timeutil.Clock, stats StatsRecorder, interval time.Duration) {
	select {
	case <-ctx.Done():
		return
	case <-clock.After(2 * time.Second):
		stats.LogStats()
	}

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			stats.LogStats()
		}
	}
}
