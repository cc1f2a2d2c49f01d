package stream

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"go.bug.st/serial"

	"github.com/gesturelab/motionpipe/internal/imu"
	"github.com/gesturelab/motionpipe/internal/timeutil"
)

// SerialSource reads line-delimited sensor samples from a serial port.
// Lines starting with '{' are decoded as JSON samples, everything else as
// CSV records.
type SerialSource struct {
	portName    string
	baud        int
	logInterval time.Duration
	clock       timeutil.Clock
	port        serial.Port
	stats       StatsRecorder
	onSample    SampleHandler
}

// SerialSourceConfig contains configuration options for the serial source.
type SerialSourceConfig struct {
	Port        string // device path, e.g. /dev/ttyUSB0
	Baud        int    // 0 defaults to 115200
	LogInterval time.Duration
	Clock       timeutil.Clock
	Stats       StatsRecorder
	OnSample    SampleHandler
}

// NewSerialSource creates a new serial source with the provided configuration.
func NewSerialSource(config SerialSourceConfig) *SerialSource {
	stats := config.Stats
	if stats == nil {
		stats = &noopStats{}
	}
	baud := config.Baud
	if baud == 0 {
		baud = 115200
	}
	logInterval := config.LogInterval
	if logInterval == 0 {
		logInterval = time.Minute
	}
	clock := config.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	return &SerialSource{
		portName:    config.Port,
		baud:        baud,
		logInterval: logInterval,
		clock:       clock,
		stats:       stats,
		onSample:    config.OnSample,
	}
}

// Start opens the serial port and reads samples until the context is
// cancelled or the port fails.
func (s *SerialSource) Start(ctx context.Context) error {
	mode := &serial.Mode{
		BaudRate: s.baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(s.portName, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.portName, err)
	}
	s.port = port
	defer port.Close()

	log.Printf("Serial sample source started on %s at %d baud", s.portName, s.baud)

	go logStatsLoop(ctx, s.clock, s.stats, s.logInterval)

	scan := bufio.NewScanner(port)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if !scan.Scan() {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if err := scan.Err(); err != nil {
					return fmt.Errorf("serial read: %w", err)
				}
				return nil
			}
			s.handleLine(scan.Bytes())
		}
	}
}

// handleLine decodes one line from the port and delivers the sample.
// Blank lines are ignored; malformed lines are counted and skipped.
func (s *SerialSource) handleLine(line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}

	s.stats.AddSample(len(line))

	var (
		sample imu.CombinedSample
		err    error
	)
	if line[0] == '{' {
		sample, err = imu.ParseJSON(line)
	} else {
		sample, err = imu.ParseCSV(string(line))
	}
	if err != nil {
		s.stats.AddMalformed()
		log.Printf("Bad sample line %q: %v", line, err)
		return
	}

	s.onSample(sample)
}

// Close closes the serial port. Closing unblocks a pending read so Start
// can observe context cancellation promptly.
func (s *SerialSource) Close() error {
	if s.port != nil {
		return s.port.Close()
	}
	return nil
}
