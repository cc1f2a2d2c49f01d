package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default pipeline values.
const DefaultConfigPath = "config/pipeline.defaults.json"

// TuningConfig is the root configuration for pipeline parameters. The
// schema matches the /api/tuning endpoint so the same JSON works for both
// startup configuration and runtime updates. All fields are pointers:
// omitted keys fall back to the Get* defaults, so partial configs are safe.
type TuningConfig struct {
	// Window params
	WindowSize    *int `json:"window_size,omitempty"`
	WindowOverlap *int `json:"window_overlap,omitempty"`

	// Segmenter params
	ExcursionThreshold *float64 `json:"excursion_threshold,omitempty"`
	EndBandLow         *float64 `json:"end_band_low,omitempty"`
	EndBandHigh        *float64 `json:"end_band_high,omitempty"`
	StartRunLength     *int     `json:"start_run_length,omitempty"`
	MinCaptureLength   *int     `json:"min_capture_length,omitempty"`
	EndRunLength       *int     `json:"end_run_length,omitempty"`

	// Prediction params
	PredictURL     *string `json:"predict_url,omitempty"`
	PredictTimeout *string `json:"predict_timeout,omitempty"` // duration string like "5s"
	EmitQueueSize  *int    `json:"emit_queue_size,omitempty"`

	// Debug surfaces
	HistorySize *int `json:"history_size,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from a file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field explicitly
// set to its default value. SaveTuningConfig(DefaultTuningConfig(), path)
// regenerates the shipped defaults file.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		WindowSize:         ptrInt(50),
		WindowOverlap:      ptrInt(25),
		ExcursionThreshold: ptrFloat64(120.0),
		EndBandLow:         ptrFloat64(-40.0),
		EndBandHigh:        ptrFloat64(40.0),
		StartRunLength:     ptrInt(2),
		MinCaptureLength:   ptrInt(20),
		EndRunLength:       ptrInt(10),
		PredictURL:         ptrString(""),
		PredictTimeout:     ptrString("5s"),
		EmitQueueSize:      ptrInt(16),
		HistorySize:        ptrInt(32),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The path must
// carry a .json extension and the file must be under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveTuningConfig writes the configuration as indented JSON, so edits made
// through the API can be round-tripped back to the startup file.
func SaveTuningConfig(cfg *TuningConfig, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid configuration: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(filepath.Clean(path), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MustLoadDefaultConfig loads the canonical pipeline defaults from
// DefaultConfigPath. It searches the current directory and common parent
// directories. Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are usable. Only fields
// that are set get checked; cross-field rules apply to effective values so
// a partial config cannot smuggle in an impossible combination.
func (c *TuningConfig) Validate() error {
	if c.WindowSize != nil && *c.WindowSize <= 0 {
		return fmt.Errorf("window_size must be positive, got %d", *c.WindowSize)
	}
	if c.WindowOverlap != nil && *c.WindowOverlap < 0 {
		return fmt.Errorf("window_overlap must be non-negative, got %d", *c.WindowOverlap)
	}
	if c.GetWindowOverlap() >= c.GetWindowSize() {
		return fmt.Errorf("window_overlap %d must be less than window_size %d",
			c.GetWindowOverlap(), c.GetWindowSize())
	}

	if c.ExcursionThreshold != nil && *c.ExcursionThreshold <= 0 {
		return fmt.Errorf("excursion_threshold must be positive, got %f", *c.ExcursionThreshold)
	}
	if c.GetEndBandLow() > c.GetEndBandHigh() {
		return fmt.Errorf("end band inverted: [%f, %f]", c.GetEndBandLow(), c.GetEndBandHigh())
	}
	if c.StartRunLength != nil && *c.StartRunLength < 1 {
		return fmt.Errorf("start_run_length must be >= 1, got %d", *c.StartRunLength)
	}
	if c.MinCaptureLength != nil && *c.MinCaptureLength < 1 {
		return fmt.Errorf("min_capture_length must be >= 1, got %d", *c.MinCaptureLength)
	}
	if c.EndRunLength != nil && *c.EndRunLength < 1 {
		return fmt.Errorf("end_run_length must be >= 1, got %d", *c.EndRunLength)
	}

	if c.PredictTimeout != nil && *c.PredictTimeout != "" {
		if _, err := time.ParseDuration(*c.PredictTimeout); err != nil {
			return fmt.Errorf("invalid predict_timeout '%s': %w", *c.PredictTimeout, err)
		}
	}
	if c.EmitQueueSize != nil && *c.EmitQueueSize < 1 {
		return fmt.Errorf("emit_queue_size must be >= 1, got %d", *c.EmitQueueSize)
	}
	if c.HistorySize != nil && *c.HistorySize < 1 {
		return fmt.Errorf("history_size must be >= 1, got %d", *c.HistorySize)
	}

	return nil
}

// GetWindowSize returns the window_size value or the default.
func (c *TuningConfig) GetWindowSize() int {
	if c.WindowSize == nil {
		return 50
	}
	return *c.WindowSize
}

// GetWindowOverlap returns the window_overlap value or the default.
func (c *TuningConfig) GetWindowOverlap() int {
	if c.WindowOverlap == nil {
		return 25
	}
	return *c.WindowOverlap
}

// GetExcursionThreshold returns the excursion_threshold value or the default.
func (c *TuningConfig) GetExcursionThreshold() float64 {
	if c.ExcursionThreshold == nil {
		return 120.0
	}
	return *c.ExcursionThreshold
}

// GetEndBandLow returns the end_band_low value or the default.
func (c *TuningConfig) GetEndBandLow() float64 {
	if c.EndBandLow == nil {
		return -40.0
	}
	return *c.EndBandLow
}

// GetEndBandHigh returns the end_band_high value or the default.
func (c *TuningConfig) GetEndBandHigh() float64 {
	if c.EndBandHigh == nil {
		return 40.0
	}
	return *c.EndBandHigh
}

// GetStartRunLength returns the start_run_length value or the default.
func (c *TuningConfig) GetStartRunLength() int {
	if c.StartRunLength == nil {
		return 2
	}
	return *c.StartRunLength
}

// GetMinCaptureLength returns the min_capture_length value or the default.
func (c *TuningConfig) GetMinCaptureLength() int {
	if c.MinCaptureLength == nil {
		return 20
	}
	return *c.MinCaptureLength
}

// GetEndRunLength returns the end_run_length value or the default.
func (c *TuningConfig) GetEndRunLength() int {
	if c.EndRunLength == nil {
		return 10
	}
	return *c.EndRunLength
}

// GetPredictURL returns the predict_url value or "" when no classifier
// service is configured.
func (c *TuningConfig) GetPredictURL() string {
	if c.PredictURL == nil {
		return ""
	}
	return *c.PredictURL
}

// GetPredictTimeout parses and returns the predict_timeout as a duration.
func (c *TuningConfig) GetPredictTimeout() time.Duration {
	if c.PredictTimeout == nil || *c.PredictTimeout == "" {
		return 5 * time.Second // default
	}
	d, err := time.ParseDuration(*c.PredictTimeout)
	if err != nil {
		return 5 * time.Second // default on parse error
	}
	return d
}

// GetEmitQueueSize returns the emit_queue_size value or the default.
func (c *TuningConfig) GetEmitQueueSize() int {
	if c.EmitQueueSize == nil {
		return 16
	}
	return *c.EmitQueueSize
}

// GetHistorySize returns the history_size value or the default.
func (c *TuningConfig) GetHistorySize() int {
	if c.HistorySize == nil {
		return 32
	}
	return *c.HistorySize
}
