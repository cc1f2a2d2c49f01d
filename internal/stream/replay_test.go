package stream

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gesturelab/motionpipe/internal/imu"
	"github.com/gesturelab/motionpipe/internal/timeutil"
)

func writeRecording(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recording.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write recording: %v", err)
	}
	return path
}

func TestReplaySource_FlatOut(t *testing.T) {
	path := writeRecording(t, `t,ax,ay,az,gx,gy,gz
1000,0.1,0,0,0,10,0
1010,0.2,0,0,0,20,0
1030,0.3,0,0,0,30,0
`)

	clock := timeutil.NewMockClock(time.Now())
	handler := &recordingHandler{}
	source := NewReplaySource(ReplaySourceConfig{
		Path:     path,
		Clock:    clock,
		OnSample: handler.handle,
	})

	if err := source.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if handler.count() != 3 {
		t.Fatalf("Expected 3 samples, got %d", handler.count())
	}
	if len(clock.Sleeps()) != 0 {
		t.Errorf("Expected no pacing sleeps, got %v", clock.Sleeps())
	}

	samples := handler.all()
	if samples[0].Gyro.Y != 10 || samples[1].Gyro.Y != 20 || samples[2].Gyro.Y != 30 {
		t.Errorf("Samples out of order: %v", samples)
	}
}

func TestReplaySource_PacedDelivery(t *testing.T) {
	path := writeRecording(t, `t,ax,ay,az,gx,gy,gz
1000,0.1,0,0,0,10,0
1010,0.2,0,0,0,20,0
1030,0.3,0,0,0,30,0
`)

	clock := timeutil.NewMockClock(time.Now())
	handler := &recordingHandler{}
	source := NewReplaySource(ReplaySourceConfig{
		Path:     path,
		Pace:     true,
		Clock:    clock,
		OnSample: handler.handle,
	})

	if err := source.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if handler.count() != 3 {
		t.Fatalf("Expected 3 samples, got %d", handler.count())
	}

	// Gaps between recorded timestamps: 10ms then 20ms
	sleeps := clock.Sleeps()
	if len(sleeps) != 2 {
		t.Fatalf("Expected 2 pacing sleeps, got %d", len(sleeps))
	}
	if sleeps[0] != 10*time.Millisecond {
		t.Errorf("First gap: got %v, want 10ms", sleeps[0])
	}
	if sleeps[1] != 20*time.Millisecond {
		t.Errorf("Second gap: got %v, want 20ms", sleeps[1])
	}
}

func TestReplaySource_SpeedScalesGaps(t *testing.T) {
	path := writeRecording(t, `1000,0.1,0,0,0,10,0
1010,0.2,0,0,0,20,0
1030,0.3,0,0,0,30,0
`)

	clock := timeutil.NewMockClock(time.Now())
	handler := &recordingHandler{}
	source := NewReplaySource(ReplaySourceConfig{
		Path:     path,
		Pace:     true,
		Speed:    2.0,
		Clock:    clock,
		OnSample: handler.handle,
	})

	if err := source.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	sleeps := clock.Sleeps()
	if len(sleeps) != 2 {
		t.Fatalf("Expected 2 pacing sleeps, got %d", len(sleeps))
	}
	if sleeps[0] != 5*time.Millisecond {
		t.Errorf("First gap at 2x: got %v, want 5ms", sleeps[0])
	}
	if sleeps[1] != 10*time.Millisecond {
		t.Errorf("Second gap at 2x: got %v, want 10ms", sleeps[1])
	}
}

func TestReplaySource_SkipsHeaderCommentsAndMalformed(t *testing.T) {
	path := writeRecording(t, `t,ax,ay,az,gx,gy,gz
# calibration run 4
1000,0.1,0,0,0,10,0

not,a,valid,row,at,all,nope
1010,0.2,0,0,0,20,0
`)

	stats := &recordingStats{}
	handler := &recordingHandler{}
	source := NewReplaySource(ReplaySourceConfig{
		Path:     path,
		Stats:    stats,
		OnSample: handler.handle,
	})

	if err := source.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if handler.count() != 2 {
		t.Fatalf("Expected 2 samples, got %d", handler.count())
	}
	received, malformed, _ := stats.counts()
	if received != 2 {
		t.Errorf("Expected 2 received samples, got %d", received)
	}
	// The header row is not counted as malformed, the garbage row is.
	if malformed != 1 {
		t.Errorf("Expected 1 malformed row, got %d", malformed)
	}
}

func TestReplaySource_MissingFile(t *testing.T) {
	source := NewReplaySource(ReplaySourceConfig{
		Path:     "/nonexistent/recording.csv",
		OnSample: func(imu.CombinedSample) {},
	})

	if err := source.Start(context.Background()); err == nil {
		t.Error("Expected error for missing recording, got nil")
	}
}
