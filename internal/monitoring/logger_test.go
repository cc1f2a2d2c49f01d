package monitoring

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// nil installs a no-op, not a nil func.
	called = false
	SetLogger(nil)
	Logf("test message")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
	if Logf == nil {
		t.Error("Logf should never be nil")
	}
}

func TestThrottled(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})

	logf := Throttled(50 * time.Millisecond)
	for i := 0; i < 4; i++ {
		logf("drop %d", i)
	}

	if len(lines) != 1 {
		t.Fatalf("expected 1 line inside the interval, got %d: %v", len(lines), lines)
	}
	if lines[0] != "drop 0" {
		t.Errorf("expected first message through unchanged, got %q", lines[0])
	}

	time.Sleep(60 * time.Millisecond)
	logf("drop 4")

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines after the interval passed, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[1], "drop 4") || !strings.Contains(lines[1], "3 similar suppressed") {
		t.Errorf("expected suppressed count appended, got %q", lines[1])
	}
}

func TestThrottled_NoSuffixWithoutSuppression(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})

	logf := Throttled(time.Millisecond)
	logf("one")
	time.Sleep(5 * time.Millisecond)
	logf("two")

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
	for _, line := range lines {
		if strings.Contains(line, "suppressed") {
			t.Errorf("expected no suppression suffix, got %q", line)
		}
	}
}
