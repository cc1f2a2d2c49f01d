package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gesturelab/motionpipe/internal/db"
	"github.com/gesturelab/motionpipe/internal/eventbus"
	"github.com/gesturelab/motionpipe/internal/gesture"
	"github.com/gesturelab/motionpipe/internal/imu"
	"github.com/gesturelab/motionpipe/internal/pipeline"
)

// setupTestServer builds a Server over a fresh runtime, a temp-file
// database, and a small event bus.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	database, err := db.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create DB: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	bus := eventbus.New[pipeline.Event](16)
	t.Cleanup(bus.Close)

	rt, err := pipeline.NewRuntime(pipeline.RuntimeConfig{
		Tuning: pipeline.DefaultTuning(),
		Bus:    bus,
	})
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}
	t.Cleanup(rt.Close)

	return NewServer(rt, database, bus)
}

// sampleAt builds a combined sample with the given gyro-Y value.
func sampleAt(gyroY float64) imu.CombinedSample {
	return imu.CombinedSample{
		Accel: imu.Vec3{X: 0.5, Y: 0, Z: 1},
		Gyro:  imu.Vec3{Y: gyroY},
	}
}

// driveCapture pushes enough samples through the runtime to open and close
// one qualifying capture under the default tuning: 30 excursion samples then
// 15 in-band samples, 45 total.
func driveCapture(t *testing.T, rt *pipeline.Runtime) {
	t.Helper()

	step := func(gyroY float64) {
		if err := rt.ProcessSample(sampleAt(gyroY)); err != nil {
			t.Fatalf("ProcessSample failed: %v", err)
		}
	}

	// Open: sustained excursion beyond the default 120 deg/s threshold.
	for i := 0; i < 30; i++ {
		step(200)
	}
	// Close: sit inside the default [-40,40] end band.
	for i := 0; i < 15; i++ {
		step(0)
	}

	if rt.History().Len() == 0 {
		t.Fatal("expected a capture in history after driving the runtime")
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := setupTestServer(t)
	mux := server.ServeMux()

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("Expected status 'ok', got %v", body["status"])
	}
	if _, ok := body["version"]; !ok {
		t.Error("Expected version field in health response")
	}
	if _, ok := body["uptime_sec"]; !ok {
		t.Error("Expected uptime_sec field in health response")
	}
}

func TestHealthEndpointMethodNotAllowed(t *testing.T) {
	server := setupTestServer(t)
	mux := server.ServeMux()

	req := httptest.NewRequest("POST", "/api/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	server := setupTestServer(t)
	mux := server.ServeMux()

	driveCapture(t, server.rt)

	req := httptest.NewRequest("GET", "/api/stats", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var stats statsResponse
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if stats.Samples != 45 {
		t.Errorf("Expected 45 samples, got %d", stats.Samples)
	}
	if stats.CapturesEmitted != 1 {
		t.Errorf("Expected 1 capture emitted, got %d", stats.CapturesEmitted)
	}
	if stats.HistoryLen != 1 {
		t.Errorf("Expected history length 1, got %d", stats.HistoryLen)
	}
	if stats.SegmenterState != string(gesture.StateIdle) {
		t.Errorf("Expected segmenter state 'idle', got %q", stats.SegmenterState)
	}
}

func TestTuningGet(t *testing.T) {
	server := setupTestServer(t)
	mux := server.ServeMux()

	req := httptest.NewRequest("GET", "/api/tuning", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var tuning pipeline.Tuning
	if err := json.NewDecoder(w.Body).Decode(&tuning); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if tuning.WindowSize != 50 {
		t.Errorf("Expected window size 50, got %d", tuning.WindowSize)
	}
	if tuning.Segmenter.ExcursionThreshold != 120.0 {
		t.Errorf("Expected excursion threshold 120, got %g", tuning.Segmenter.ExcursionThreshold)
	}
}

func TestTuningPut(t *testing.T) {
	server := setupTestServer(t)
	mux := server.ServeMux()

	newTuning := pipeline.Tuning{
		WindowSize:    40,
		WindowOverlap: 10,
		Segmenter: gesture.SegmenterConfig{
			ExcursionThreshold: 90.0,
			EndBandLow:         -30.0,
			EndBandHigh:        30.0,
			StartRunLength:     3,
			MinCaptureLength:   15,
			EndRunLength:       8,
		},
	}

	body, _ := json.Marshal(newTuning)
	req := httptest.NewRequest("PUT", "/api/tuning", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var applied pipeline.Tuning
	if err := json.NewDecoder(w.Body).Decode(&applied); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if applied.WindowSize != 40 {
		t.Errorf("Expected applied window size 40, got %d", applied.WindowSize)
	}

	// The runtime itself must carry the new parameters.
	if got := server.rt.Tuning().Segmenter.ExcursionThreshold; got != 90.0 {
		t.Errorf("Expected runtime threshold 90, got %g", got)
	}
}

func TestTuningPutInvalid(t *testing.T) {
	server := setupTestServer(t)
	mux := server.ServeMux()

	// Overlap >= size is rejected before anything is applied.
	bad := pipeline.Tuning{
		WindowSize:    20,
		WindowOverlap: 20,
		Segmenter:     gesture.DefaultSegmenterConfig(),
	}

	body, _ := json.Marshal(bad)
	req := httptest.NewRequest("PUT", "/api/tuning", bytes.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	if got := server.rt.Tuning().WindowSize; got != 50 {
		t.Errorf("Expected runtime window size unchanged at 50, got %d", got)
	}
}

func TestTuningPutMalformedBody(t *testing.T) {
	server := setupTestServer(t)
	mux := server.ServeMux()

	req := httptest.NewRequest("PUT", "/api/tuning", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestRecentCapturesEndpoint(t *testing.T) {
	server := setupTestServer(t)
	mux := server.ServeMux()

	// Empty ring first.
	req := httptest.NewRequest("GET", "/api/captures/recent", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	var captures []gesture.Capture
	if err := json.NewDecoder(w.Body).Decode(&captures); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(captures) != 0 {
		t.Errorf("Expected 0 captures, got %d", len(captures))
	}

	driveCapture(t, server.rt)

	req = httptest.NewRequest("GET", "/api/captures/recent?n=5", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if err := json.NewDecoder(w.Body).Decode(&captures); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(captures) != 1 {
		t.Fatalf("Expected 1 capture, got %d", len(captures))
	}
	if captures[0].ID == "" {
		t.Error("Expected capture to carry an ID")
	}
	if len(captures[0].GyroY) != len(captures[0].AccX) {
		t.Errorf("Expected equal-length sequences, got %d and %d",
			len(captures[0].GyroY), len(captures[0].AccX))
	}
}

func TestRecentCapturesInvalidParam(t *testing.T) {
	server := setupTestServer(t)
	mux := server.ServeMux()

	for _, q := range []string{"n=0", "n=-3", "n=abc"} {
		req := httptest.NewRequest("GET", "/api/captures/recent?"+q, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %q, got %d", q, w.Code)
		}
	}
}

func TestStatusCodeColor(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, colorBoldGreen + "200" + colorReset},
		{204, colorBoldGreen + "204" + colorReset},
		{301, colorYellow + "301" + colorReset},
		{404, colorBoldRed + "404" + colorReset},
		{500, colorBoldRed + "500" + colorReset},
		{100, "100"},
	}

	for _, tt := range tests {
		if got := statusCodeColor(tt.code); got != tt.want {
			t.Errorf("statusCodeColor(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestLoggingMiddleware(t *testing.T) {
	server := setupTestServer(t)
	handler := LoggingMiddleware(server.ServeMux())

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 through middleware, got %d", w.Code)
	}
}

func TestLoggingResponseWriterDefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	lrw := &loggingResponseWriter{rec, http.StatusOK}

	// A handler that writes without calling WriteHeader keeps the default.
	lrw.Write([]byte("ok"))
	if lrw.statusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", lrw.statusCode)
	}

	lrw.WriteHeader(http.StatusTeapot)
	if lrw.statusCode != http.StatusTeapot {
		t.Errorf("Expected status 418, got %d", lrw.statusCode)
	}
}
