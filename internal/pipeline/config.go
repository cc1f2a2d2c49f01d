package pipeline

import (
	"github.com/gesturelab/motionpipe/internal/config"
	"github.com/gesturelab/motionpipe/internal/gesture"
)

// TuningFromConfig builds pipeline Tuning from a loaded TuningConfig.
// Use this in binaries where the TuningConfig is already loaded; fields
// absent from the file fall back to the config package defaults.
func TuningFromConfig(cfg *config.TuningConfig) Tuning {
	return Tuning{
		WindowSize:    cfg.GetWindowSize(),
		WindowOverlap: cfg.GetWindowOverlap(),
		Segmenter: gesture.SegmenterConfig{
			ExcursionThreshold: cfg.GetExcursionThreshold(),
			EndBandLow:         cfg.GetEndBandLow(),
			EndBandHigh:        cfg.GetEndBandHigh(),
			StartRunLength:     cfg.GetStartRunLength(),
			MinCaptureLength:   cfg.GetMinCaptureLength(),
			EndRunLength:       cfg.GetEndRunLength(),
		},
	}
}

// DefaultTuningFromFile loads the canonical defaults file and converts it.
// Panics if the file cannot be found, intended for tests and binaries that
// have already validated config availability.
func DefaultTuningFromFile() Tuning {
	return TuningFromConfig(config.MustLoadDefaultConfig())
}
