package gesture

import (
	"errors"
	"math"
	"testing"
)

func TestNewWindow_Validation(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		overlap  int
		wantErr  bool
	}{
		{"valid", 10, 5, false},
		{"zero overlap", 10, 0, false},
		{"zero capacity", 0, 0, true},
		{"negative capacity", -1, 0, true},
		{"negative overlap", 10, -1, true},
		{"overlap equals capacity", 10, 10, true},
		{"overlap exceeds capacity", 10, 11, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWindow(tt.capacity, tt.overlap)
			if tt.wantErr && err == nil {
				t.Errorf("Expected error for capacity=%d overlap=%d", tt.capacity, tt.overlap)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestWindow_AddSampleAndLen(t *testing.T) {
	w, err := NewWindow(3, 1)
	if err != nil {
		t.Fatalf("NewWindow failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if w.Full() {
			t.Errorf("Window full after %d samples, capacity 3", i)
		}
		if err := w.AddSample(float64(i), float64(i), float64(i)); err != nil {
			t.Fatalf("AddSample %d failed: %v", i, err)
		}
		if w.Len() != i+1 {
			t.Errorf("Expected length %d, got %d", i+1, w.Len())
		}
	}

	if !w.Full() {
		t.Error("Expected window to be full after 3 samples")
	}

	// The capacity+1-th addition must fail, not silently drop.
	err = w.AddSample(99, 99, 99)
	if !errors.Is(err, ErrWindowFull) {
		t.Errorf("Expected ErrWindowFull, got %v", err)
	}
	if w.Len() != 3 {
		t.Errorf("Expected length unchanged at 3, got %d", w.Len())
	}
}

func TestWindow_SlideRetainsOverlapInOrder(t *testing.T) {
	w, err := NewWindow(5, 2)
	if err != nil {
		t.Fatalf("NewWindow failed: %v", err)
	}

	for i := 1; i <= 5; i++ {
		v := float64(i)
		if err := w.AddSample(v, v*10, v*100); err != nil {
			t.Fatalf("AddSample failed: %v", err)
		}
	}

	if err := w.Slide(); err != nil {
		t.Fatalf("Slide failed: %v", err)
	}
	if w.Len() != 2 {
		t.Errorf("Expected length 2 after slide, got %d", w.Len())
	}

	// The retained samples must be the last two, in original order, on
	// every axis. Observe through ExtractFeatures: [4,5].
	f := w.ExtractFeatures()
	if f.X.Min != 4 || f.X.Max != 5 || f.X.Mean != 4.5 {
		t.Errorf("Expected x stats {4.5 4 5}, got %+v", f.X)
	}
	if f.Y.Min != 40 || f.Y.Max != 50 {
		t.Errorf("Expected y min/max {40 50}, got %+v", f.Y)
	}
	if f.Z.Min != 400 || f.Z.Max != 500 {
		t.Errorf("Expected z min/max {400 500}, got %+v", f.Z)
	}

	// Order check: append 6 and confirm the mean shifts as [4,5,6].
	if err := w.AddSample(6, 60, 600); err != nil {
		t.Fatalf("AddSample after slide failed: %v", err)
	}
	f = w.ExtractFeatures()
	if f.X.Mean != 5 {
		t.Errorf("Expected mean 5 over [4,5,6], got %g", f.X.Mean)
	}
}

func TestWindow_SlideZeroOverlapEmpties(t *testing.T) {
	w, _ := NewWindow(3, 0)
	for i := 0; i < 3; i++ {
		if err := w.AddSample(1, 2, 3); err != nil {
			t.Fatalf("AddSample failed: %v", err)
		}
	}
	if err := w.Slide(); err != nil {
		t.Fatalf("Slide failed: %v", err)
	}
	if w.Len() != 0 {
		t.Errorf("Expected empty window after zero-overlap slide, got length %d", w.Len())
	}
}

func TestWindow_SlideBeforeFull(t *testing.T) {
	w, _ := NewWindow(3, 1)
	if err := w.AddSample(1, 1, 1); err != nil {
		t.Fatalf("AddSample failed: %v", err)
	}
	err := w.Slide()
	if !errors.Is(err, ErrWindowNotFull) {
		t.Errorf("Expected ErrWindowNotFull, got %v", err)
	}
	if w.Len() != 1 {
		t.Errorf("Expected contents untouched, got length %d", w.Len())
	}
}

func TestWindow_ExtractFeatures(t *testing.T) {
	w, _ := NewWindow(5, 0)
	for _, v := range []float64{1, 2, 3} {
		if err := w.AddSample(v, -v, v*2); err != nil {
			t.Fatalf("AddSample failed: %v", err)
		}
	}

	f := w.ExtractFeatures()
	if f.X.Mean != 2 || f.X.Min != 1 || f.X.Max != 3 {
		t.Errorf("Expected x {mean=2 min=1 max=3}, got %+v", f.X)
	}
	if f.Y.Mean != -2 || f.Y.Min != -3 || f.Y.Max != -1 {
		t.Errorf("Expected y {mean=-2 min=-3 max=-1}, got %+v", f.Y)
	}
	if f.Z.Mean != 4 || f.Z.Min != 2 || f.Z.Max != 6 {
		t.Errorf("Expected z {mean=4 min=2 max=6}, got %+v", f.Z)
	}
}

func TestWindow_ExtractFeaturesEmpty(t *testing.T) {
	w, _ := NewWindow(4, 2)

	f := w.ExtractFeatures()
	for name, a := range map[string]AxisStats{"x": f.X, "y": f.Y, "z": f.Z} {
		if !math.IsNaN(a.Mean) || !math.IsNaN(a.Min) || !math.IsNaN(a.Max) {
			t.Errorf("Expected NaN stats for empty %s axis, got %+v", name, a)
		}
	}
}

func TestWindow_ExtractFeaturesIdempotent(t *testing.T) {
	w, _ := NewWindow(4, 1)
	for _, v := range []float64{2.5, -1.25, 0.75} {
		if err := w.AddSample(v, v+1, v-1); err != nil {
			t.Fatalf("AddSample failed: %v", err)
		}
	}

	first := w.ExtractFeatures()
	second := w.ExtractFeatures()
	if first != second {
		t.Errorf("Expected identical results, got %+v then %+v", first, second)
	}
	if w.Len() != 3 {
		t.Errorf("Expected extraction to leave contents alone, got length %d", w.Len())
	}
}

func TestWindow_FeaturesCoverWholeBufferAfterSlide(t *testing.T) {
	// Features are computed over everything buffered, including samples
	// retained from the previous cycle's overlap.
	w, _ := NewWindow(5, 2)
	for i := 1; i <= 5; i++ {
		if err := w.AddSample(float64(i), 0, 0); err != nil {
			t.Fatalf("AddSample failed: %v", err)
		}
	}
	if err := w.Slide(); err != nil {
		t.Fatalf("Slide failed: %v", err)
	}
	for i := 6; i <= 8; i++ {
		if err := w.AddSample(float64(i), 0, 0); err != nil {
			t.Fatalf("AddSample failed: %v", err)
		}
	}

	// Buffer is now [4,5,6,7,8].
	f := w.ExtractFeatures()
	if f.X.Mean != 6 || f.X.Min != 4 || f.X.Max != 8 {
		t.Errorf("Expected x {mean=6 min=4 max=8} over retained+new, got %+v", f.X)
	}
}
