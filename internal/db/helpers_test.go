package db

import (
	"path/filepath"
	"testing"

	"github.com/gesturelab/motionpipe/internal/config"
)

// Helper functions for creating pointer values
func intPtr(i int) *int {
	return &i
}

func floatPtr(f float64) *float64 {
	return &f
}

// newTestDB creates a fully migrated database in a temp directory.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// newTestProfile builds a profile overriding a couple of window fields,
// leaving everything else to defaults.
func newTestProfile(name string) *TuningProfile {
	cfg := config.EmptyTuningConfig()
	cfg.WindowSize = intPtr(30)
	cfg.WindowOverlap = intPtr(10)
	cfg.ExcursionThreshold = floatPtr(100.0)

	return &TuningProfile{
		Name:        name,
		Description: "test profile",
		Config:      *cfg,
	}
}
