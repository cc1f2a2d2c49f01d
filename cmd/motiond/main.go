package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gesturelab/motionpipe/internal/api"
	"github.com/gesturelab/motionpipe/internal/config"
	"github.com/gesturelab/motionpipe/internal/db"
	"github.com/gesturelab/motionpipe/internal/eventbus"
	"github.com/gesturelab/motionpipe/internal/imu"
	"github.com/gesturelab/motionpipe/internal/pipeline"
	"github.com/gesturelab/motionpipe/internal/predict"
	"github.com/gesturelab/motionpipe/internal/stream"
	"github.com/gesturelab/motionpipe/internal/units"
	"github.com/gesturelab/motionpipe/internal/version"
)

var (
	listen      = flag.String("listen", ":8080", "HTTP listen address")
	source      = flag.String("source", "udp", "Sample source: udp, serial, mqtt, replay or pcap")
	udpAddr     = flag.String("udp-addr", ":9901", "UDP listen address for the udp source")
	rcvBuf      = flag.Int("rcvbuf", 1<<20, "UDP receive buffer size in bytes (default 1MB)")
	serialPort  = flag.String("serial-port", "/dev/ttyUSB0", "Serial device for the serial source")
	serialBaud  = flag.Int("serial-baud", 115200, "Serial baud rate")
	mqttBroker  = flag.String("mqtt-broker", "tcp://localhost:1883", "MQTT broker URL for the mqtt source")
	mqttTopic   = flag.String("mqtt-topic", "sensors/imu", "MQTT topic carrying JSON samples")
	replayFile  = flag.String("replay-file", "", "CSV recording for the replay source")
	replayPace  = flag.Bool("replay-pace", true, "Honor recorded timestamps when replaying")
	replaySpeed = flag.Float64("replay-speed", 1.0, "Replay speed multiplier when pacing")
	pcapFile    = flag.String("pcap-file", "", "PCAP recording for the pcap source")
	pcapPort    = flag.Int("pcap-port", 9901, "UDP port to extract from the PCAP recording")
	accelUnit   = flag.String("accel-unit", units.AccelG, "Accelerometer units of incoming samples (g, ms2)")
	gyroUnit    = flag.String("gyro-unit", units.GyroDPS, "Gyroscope units of incoming samples (dps, rads)")
	configPath  = flag.String("config", "", "Tuning config JSON file (empty: stored active profile or built-in defaults)")
	profileName = flag.String("profile", "", "Stored tuning profile to start with")
	dbFile      = flag.String("db", "motionpipe.db", "Path to the SQLite profile database")
	predictURL  = flag.String("predict-url", "", "Classifier service base URL (empty: log predictions only)")
	logInterval = flag.Int("log-interval", 60, "Source statistics logging interval in seconds")
	showVersion = flag.Bool("version", false, "Print version information and exit")
)

// resolveTuning picks the startup parameter set: an explicit config file
// wins, then an explicitly named profile, then the profile marked active in
// the store, then the built-in defaults. The returned TuningConfig carries
// the prediction and debug settings that live outside pipeline.Tuning.
func resolveTuning(database *db.DB) (pipeline.Tuning, *config.TuningConfig) {
	if *configPath != "" {
		cfg, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load tuning config: %v", err)
		}
		log.Printf("Tuning loaded from %s", *configPath)
		return pipeline.TuningFromConfig(cfg), cfg
	}

	if *profileName != "" {
		profile, err := database.GetProfileByName(*profileName)
		if err != nil {
			log.Fatalf("Failed to look up profile %q: %v", *profileName, err)
		}
		if profile == nil {
			log.Fatalf("No stored profile named %q", *profileName)
		}
		log.Printf("Tuning loaded from profile %q", profile.Name)
		return pipeline.TuningFromConfig(&profile.Config), &profile.Config
	}

	profile, err := database.GetActiveProfile()
	if err != nil {
		log.Fatalf("Failed to look up active profile: %v", err)
	}
	if profile != nil {
		log.Printf("Tuning loaded from active profile %q", profile.Name)
		return pipeline.TuningFromConfig(&profile.Config), &profile.Config
	}

	return pipeline.DefaultTuning(), config.EmptyTuningConfig()
}

// buildSource constructs the selected sample source and returns its blocking
// run function.
func buildSource(handler stream.SampleHandler, stats stream.StatsRecorder) func(context.Context) error {
	logIvl := time.Duration(*logInterval) * time.Second

	switch *source {
	case "udp":
		src := stream.NewUDPSource(stream.UDPSourceConfig{
			ListenAddr:  *udpAddr,
			RcvBuf:      *rcvBuf,
			LogInterval: logIvl,
			Stats:       stats,
			OnSample:    handler,
		})
		return src.Start
	case "serial":
		src := stream.NewSerialSource(stream.SerialSourceConfig{
			Port:        *serialPort,
			Baud:        *serialBaud,
			LogInterval: logIvl,
			Stats:       stats,
			OnSample:    handler,
		})
		return src.Start
	case "mqtt":
		src := stream.NewMQTTSource(stream.MQTTSourceConfig{
			Broker:      *mqttBroker,
			Topic:       *mqttTopic,
			LogInterval: logIvl,
			Stats:       stats,
			OnSample:    handler,
		})
		return src.Start
	case "replay":
		if *replayFile == "" {
			log.Fatal("-replay-file is required with -source replay")
		}
		src := stream.NewReplaySource(stream.ReplaySourceConfig{
			Path:     *replayFile,
			Pace:     *replayPace,
			Speed:    *replaySpeed,
			Stats:    stats,
			OnSample: handler,
		})
		return src.Start
	case "pcap":
		if *pcapFile == "" {
			log.Fatal("-pcap-file is required with -source pcap")
		}
		return func(ctx context.Context) error {
			return stream.ReadPcapFile(ctx, *pcapFile, *pcapPort, handler, stats)
		}
	default:
		log.Fatalf("Unknown source %q (valid: udp, serial, mqtt, replay, pcap)", *source)
		return nil
	}
}

// Main
func main() {
	// The migrate subcommand runs before flag parsing so migration tooling
	// does not drag the full daemon flag set with it.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		migrateFlags := flag.NewFlagSet("migrate", flag.ExitOnError)
		migrateDB := migrateFlags.String("db", "motionpipe.db", "Path to the SQLite profile database")
		migrateFlags.Parse(os.Args[2:])
		db.RunMigrateCommand(migrateFlags.Args(), *migrateDB)
		return
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("motiond %s\n", version.String())
		return
	}

	if *listen == "" {
		log.Fatal("HTTP listen address is required")
	}
	if !units.IsValidAccelUnit(*accelUnit) {
		log.Fatalf("Invalid -accel-unit %q (valid: %s)", *accelUnit, units.GetValidAccelUnitsString())
	}
	if !units.IsValidGyroUnit(*gyroUnit) {
		log.Fatalf("Invalid -gyro-unit %q (valid: %s)", *gyroUnit, units.GetValidGyroUnitsString())
	}

	log.Printf("motiond %s starting (source=%s)", version.Version, *source)

	// Initialize database
	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	tuning, cfg := resolveTuning(database)

	// Build the prediction sink: an HTTP classifier when a URL is
	// configured, otherwise log-only.
	var predictor predict.Predictor = predict.LogPredictor{}
	url := *predictURL
	if url == "" {
		url = cfg.GetPredictURL()
	}
	if url != "" {
		p, err := predict.NewHTTPPredictor(predict.HTTPPredictorConfig{
			BaseURL: url,
			Timeout: cfg.GetPredictTimeout(),
		})
		if err != nil {
			log.Fatalf("Failed to create predictor: %v", err)
		}
		predictor = p
		log.Printf("Predictions will be posted to %s", url)
	} else {
		log.Print("No predict URL configured; predictions are logged only")
	}

	emitter := predict.NewEmitter(predict.EmitterConfig{
		Predictor: predictor,
		QueueSize: cfg.GetEmitQueueSize(),
		Timeout:   cfg.GetPredictTimeout(),
	})

	bus := eventbus.New[pipeline.Event](64)
	defer bus.Close()

	rt, err := pipeline.NewRuntime(pipeline.RuntimeConfig{
		Tuning:      tuning,
		HistorySize: cfg.GetHistorySize(),
		Emitter:     emitter,
		Bus:         bus,
	})
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}
	defer rt.Close()

	stats := stream.NewSourceStats("IMU")
	handler := stream.NormalizingHandler(*accelUnit, *gyroUnit, func(s imu.CombinedSample) {
		if err := rt.ProcessSample(s); err != nil {
			log.Printf("Sample rejected: %v", err)
		}
	})

	runSource := buildSource(handler, stats)

	// Create a wait group for the HTTP server and sample source routines
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start sample source routine
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := runSource(ctx); err != nil && err != context.Canceled {
			log.Printf("Sample source error: %v", err)
		}
		log.Print("Sample source routine terminated")
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		// create the API server over the runtime and mount the handlers
		mux := api.NewServer(rt, database, bus).ServeMux()
		database.AttachAdminRoutes(mux)

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("Starting HTTP server on %s", *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		// Create a shutdown context with a shorter timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
			// Force close the server if graceful shutdown fails
			if err := server.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
