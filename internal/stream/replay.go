package stream

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gesturelab/motionpipe/internal/imu"
	"github.com/gesturelab/motionpipe/internal/timeutil"
)

// ReplaySource reads a CSV recording and replays it through the handler,
// either flat-out or paced by the recorded timestamps.
type ReplaySource struct {
	path     string
	pace     bool
	speed    float64
	clock    timeutil.Clock
	stats    StatsRecorder
	onSample SampleHandler
}

// ReplaySourceConfig contains configuration options for the replay source.
type ReplaySourceConfig struct {
	Path     string
	Pace     bool    // honor recorded inter-sample gaps
	Speed    float64 // replay speed when pacing (1.0 = real-time, 2.0 = 2x speed)
	Clock    timeutil.Clock
	Stats    StatsRecorder
	OnSample SampleHandler
}

// NewReplaySource creates a new replay source with the provided configuration.
func NewReplaySource(config ReplaySourceConfig) *ReplaySource {
	stats := config.Stats
	if stats == nil {
		stats = &noopStats{}
	}
	speed := config.Speed
	if speed <= 0 {
		speed = 1.0
	}
	clock := config.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	return &ReplaySource{
		path:     config.Path,
		pace:     config.Pace,
		speed:    speed,
		clock:    clock,
		stats:    stats,
		onSample: config.OnSample,
	}
}

// Start replays the recording through the handler. It returns nil when the
// file is exhausted, or the context error if cancelled mid-file.
func (s *ReplaySource) Start(ctx context.Context) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open recording %s: %w", s.path, err)
	}
	defer f.Close()

	log.Printf("Replaying %s (pace=%v speed=%.1fx)", s.path, s.pace, s.speed)

	scanner := bufio.NewScanner(f)
	var (
		lineNo    int
		delivered int
		lastT     time.Time
		startTime = time.Now()
	)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			log.Printf("Replay stopping due to context cancellation (%d samples delivered)", delivered)
			return ctx.Err()
		default:
		}

		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		sample, err := imu.ParseCSV(line)
		if err != nil {
			// First row of a recording is commonly a column header.
			if delivered == 0 && lineNo == 1 {
				continue
			}
			s.stats.AddMalformed()
			log.Printf("Bad sample at %s:%d: %v", s.path, lineNo, err)
			continue
		}

		if s.pace && !sample.T.IsZero() {
			if !lastT.IsZero() {
				if gap := sample.T.Sub(lastT); gap > 0 {
					s.clock.Sleep(time.Duration(float64(gap) / s.speed))
				}
			}
			lastT = sample.T
		}

		s.stats.AddSample(len(line))
		s.onSample(sample)
		delivered++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed reading recording %s: %w", s.path, err)
	}

	elapsed := time.Since(startTime)
	log.Printf("Replay complete: %d samples from %s in %v", delivered, s.path, elapsed)
	return nil
}
