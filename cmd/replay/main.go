// Command replay runs a recorded sensor session through the gesture core
// flat-out and prints every feature frame and capture it produces. Because
// the core is driven synchronously, output never drops no matter how fast
// the recording replays; the same tuning that ran live can be re-evaluated
// offline, plotted, or pointed at a classifier.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/gesturelab/motionpipe/internal/config"
	"github.com/gesturelab/motionpipe/internal/gesture"
	"github.com/gesturelab/motionpipe/internal/imu"
	"github.com/gesturelab/motionpipe/internal/pipeline"
	"github.com/gesturelab/motionpipe/internal/plot"
	"github.com/gesturelab/motionpipe/internal/predict"
	"github.com/gesturelab/motionpipe/internal/stream"
	"github.com/gesturelab/motionpipe/internal/units"
)

func main() {
	// Input selection
	file := flag.String("file", "", "CSV recording to analyze")
	pcapFile := flag.String("pcap", "", "PCAP recording to analyze (build with -tags=pcap)")
	pcapPort := flag.Int("pcap-port", 9901, "UDP port to extract from the PCAP recording")

	// Tuning and units
	configPath := flag.String("config", "", "Tuning config JSON file (empty: built-in defaults)")
	accelUnit := flag.String("accel-unit", units.AccelG, "Accelerometer units of the recording (g, ms2)")
	gyroUnit := flag.String("gyro-unit", units.GyroDPS, "Gyroscope units of the recording (dps, rads)")

	// Outputs
	plotsDir := flag.String("plots", "", "Base directory for per-capture PNG plots (empty: no plots)")
	predictURL := flag.String("predict-url", "", "Classifier base URL to call for each frame and capture")
	quiet := flag.Bool("quiet", false, "Suppress per-frame output; print captures and the summary only")

	flag.Parse()

	if *file == "" && *pcapFile == "" {
		log.Fatal("one of -file or -pcap is required")
	}
	if *file != "" && *pcapFile != "" {
		log.Fatal("-file and -pcap are mutually exclusive")
	}
	if !units.IsValidAccelUnit(*accelUnit) {
		log.Fatalf("Invalid -accel-unit %q (valid: %s)", *accelUnit, units.GetValidAccelUnitsString())
	}
	if !units.IsValidGyroUnit(*gyroUnit) {
		log.Fatalf("Invalid -gyro-unit %q (valid: %s)", *gyroUnit, units.GetValidGyroUnitsString())
	}

	tuning := pipeline.DefaultTuning()
	if *configPath != "" {
		cfg, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load tuning config: %v", err)
		}
		tuning = pipeline.TuningFromConfig(cfg)
		log.Printf("Tuning loaded from %s", *configPath)
	}

	frames, err := gesture.NewFrameBuilder(tuning.WindowSize, tuning.WindowOverlap)
	if err != nil {
		log.Fatalf("Failed to create frame builder: %v", err)
	}
	seg, err := gesture.NewSegmenter(tuning.Segmenter)
	if err != nil {
		log.Fatalf("Failed to create segmenter: %v", err)
	}

	var predictor predict.Predictor
	if *predictURL != "" {
		predictor, err = predict.NewHTTPPredictor(predict.HTTPPredictorConfig{BaseURL: *predictURL})
		if err != nil {
			log.Fatalf("Failed to create predictor: %v", err)
		}
		log.Printf("Predictions from %s", *predictURL)
	}

	outDir := ""
	if *plotsDir != "" {
		source := *file
		if source == "" {
			source = *pcapFile
		}
		outDir, err = plot.MakeOutputDir(*plotsDir, source)
		if err != nil {
			log.Fatalf("Failed to create plot directory: %v", err)
		}
		log.Printf("Writing capture plots to %s", outDir)
	}

	var samples int
	handler := func(s imu.CombinedSample) {
		samples++

		frame, err := frames.HandleSample(s.Accel, s.Gyro)
		if err != nil {
			log.Fatalf("Sample %d rejected: %v", samples, err)
		}
		if frame != nil {
			if !*quiet {
				fmt.Printf("frame %d @ sample %d: acc_mean=(%.3f,%.3f,%.3f) gyro_mean=(%.3f,%.3f,%.3f)\n",
					frames.Frames(), samples,
					frame.Accel.X.Mean, frame.Accel.Y.Mean, frame.Accel.Z.Mean,
					frame.Gyro.X.Mean, frame.Gyro.Y.Mean, frame.Gyro.Z.Mean)
			}
			if predictor != nil {
				result, err := predictor.PredictFeatures(context.Background(), frame)
				printPrediction("frame", result, err)
			}
		}

		if capture := seg.Step(s.Accel.X, s.Gyro.Y); capture != nil {
			fmt.Printf("capture %s @ sample %d: %d samples collected\n",
				capture.ID, samples, capture.Len())
			if outDir != "" {
				path := plot.CaptureFilename(outDir, capture)
				if err := plot.CapturePlot(capture, path); err != nil {
					log.Printf("Failed to plot capture %s: %v", capture.ID, err)
				} else {
					log.Printf("Wrote %s", path)
				}
			}
			if predictor != nil {
				result, err := predictor.PredictCapture(context.Background(), capture)
				printPrediction("capture", result, err)
			}
		}
	}

	wrapped := stream.NormalizingHandler(*accelUnit, *gyroUnit, handler)

	start := time.Now()
	if *file != "" {
		src := stream.NewReplaySource(stream.ReplaySourceConfig{
			Path:     *file,
			OnSample: wrapped,
		})
		err = src.Start(context.Background())
	} else {
		err = stream.ReadPcapFile(context.Background(), *pcapFile, *pcapPort, wrapped, nil)
	}
	if err != nil {
		log.Fatalf("Replay failed: %v", err)
	}

	elapsed := time.Since(start)
	fmt.Printf("\n%d samples in %v: %d frames, %d captures (%d discarded as too short), state=%s\n",
		samples, elapsed.Round(time.Millisecond),
		frames.Frames(), seg.Emitted(), seg.Discarded(), seg.State())
}

// printPrediction prints one classifier answer, or the error that replaced
// it. Offline runs keep going on prediction failures; the recording is the
// subject here, not the classifier.
func printPrediction(kind string, result *predict.Result, err error) {
	if err != nil {
		log.Printf("%s prediction failed: %v", kind, err)
		return
	}
	if result == nil {
		return
	}
	fmt.Printf("  %s prediction: gesture=%s confidence=%.3f\n", kind, result.Gesture, result.Confidence)
}
