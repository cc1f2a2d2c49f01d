// Package plot renders gesture captures to PNG files for offline
// inspection, primarily from the replay tool.
package plot

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/gesturelab/motionpipe/internal/gesture"
	"github.com/gesturelab/motionpipe/internal/security"
)

// CapturePlot renders the inverted gyro-Y and acc-X traces of one capture
// to a PNG at path, one line per series with the sample index on X.
func CapturePlot(c *gesture.Capture, path string) error {
	if c == nil || c.Len() == 0 {
		return fmt.Errorf("plot: nothing to plot, capture is empty")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Capture %s (%d samples)", c.ID, c.Len())
	p.X.Label.Text = "Sample"
	p.Y.Label.Text = "Value"

	gyroPts := make(plotter.XYs, len(c.GyroY))
	for i, v := range c.GyroY {
		gyroPts[i] = plotter.XY{X: float64(i), Y: v}
	}
	accPts := make(plotter.XYs, len(c.AccX))
	for i, v := range c.AccX {
		accPts[i] = plotter.XY{X: float64(i), Y: v}
	}

	gyroLine, err := plotter.NewLine(gyroPts)
	if err != nil {
		return fmt.Errorf("plot: gyro line: %w", err)
	}
	gyroLine.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	gyroLine.Width = vg.Points(1)
	p.Add(gyroLine)
	p.Legend.Add("gyro_y", gyroLine)

	accLine, err := plotter.NewLine(accPts)
	if err != nil {
		return fmt.Errorf("plot: acc line: %w", err)
	}
	accLine.Color = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	accLine.Width = vg.Points(1)
	p.Add(accLine)
	p.Legend.Add("acc_x", accLine)

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("plot: save capture plot: %w", err)
	}
	return nil
}

// CaptureFilename returns the PNG path for a capture inside dir. The name
// is derived from the capture ID through the filename sanitizer, so an ID
// from an untrusted recording cannot carry path syntax into the filesystem.
func CaptureFilename(dir string, c *gesture.Capture) string {
	return filepath.Join(dir, security.SanitizeFilename("capture-"+c.ID)+".png")
}

// MakeOutputDir creates a timestamped plot directory under baseDir, named
// after the source recording when one is given:
//
//	<baseDir>/<source_basename>/<timestamp>   for replayed recordings
//	<baseDir>/live_<timestamp>                otherwise
//
// The resolved directory is checked against the export allow-list before
// anything is created.
func MakeOutputDir(baseDir, sourceFile string) (string, error) {
	ts := time.Now().Format("20060102_150405")

	dir := filepath.Join(baseDir, "live_"+ts)
	if sourceFile != "" {
		base := filepath.Base(sourceFile)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		dir = filepath.Join(baseDir, security.SanitizeFilename(name), ts)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("plot: resolve output dir: %w", err)
	}
	if err := security.ValidateExportPath(abs); err != nil {
		return "", fmt.Errorf("plot: output dir rejected: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return "", fmt.Errorf("plot: create output dir: %w", err)
	}
	return abs, nil
}
