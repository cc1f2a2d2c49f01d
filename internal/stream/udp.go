package stream

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/gesturelab/motionpipe/internal/imu"
	"github.com/gesturelab/motionpipe/internal/timeutil"
)

// UDPSource receives sensor samples over UDP, one JSON-encoded sample per
// datagram, and delivers them in arrival order.
type UDPSource struct {
	addr        string
	rcvBuf      int
	logInterval time.Duration
	clock       timeutil.Clock
	factory     UDPSocketFactory
	conn        UDPSocket
	stats       StatsRecorder
	onSample    SampleHandler
}

// UDPSourceConfig contains configuration options for the UDP source.
type UDPSourceConfig struct {
	ListenAddr    string
	RcvBuf        int // socket receive buffer size in bytes; 0 leaves the OS default
	LogInterval   time.Duration
	Clock         timeutil.Clock
	SocketFactory UDPSocketFactory // nil uses real sockets
	Stats         StatsRecorder
	OnSample      SampleHandler
}

// NewUDPSource creates a new UDP source with the provided configuration.
func NewUDPSource(config UDPSourceConfig) *UDPSource {
	stats := config.Stats
	if stats == nil {
		stats = &noopStats{}
	}
	logInterval := config.LogInterval
	if logInterval == 0 {
		logInterval = time.Minute
	}
	clock := config.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	factory := config.SocketFactory
	if factory == nil {
		factory = &RealUDPSocketFactory{}
	}

	return &UDPSource{
		addr:        config.ListenAddr,
		rcvBuf:      config.RcvBuf,
		logInterval: logInterval,
		clock:       clock,
		factory:     factory,
		stats:       stats,
		onSample:    config.OnSample,
	}
}

// Start begins listening for datagrams and delivering samples. It blocks
// until the context is cancelled or the socket fails.
func (s *UDPSource) Start(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address: %w", err)
	}

	conn, err := s.factory.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on UDP address: %w", err)
	}
	s.conn = conn
	defer conn.Close()

	if s.rcvBuf > 0 {
		if err := conn.SetReadBuffer(s.rcvBuf); err != nil {
			log.Printf("Warning: Failed to set UDP receive buffer size to %d: %v", s.rcvBuf, err)
		}
	}

	log.Printf("UDP sample source started on %s", conn.LocalAddr())

	go logStatsLoop(ctx, s.clock, s.stats, s.logInterval)

	// One JSON sample per datagram; samples are small but leave margin for
	// senders that attach extra metadata fields.
	buffer := make([]byte, 2048)

	for {
		select {
		case <-ctx.Done():
			log.Print("UDP sample source stopping due to context cancellation")
			return ctx.Err()
		default:
			// Set read deadline to allow checking context cancellation
			conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))

			n, peer, err := conn.ReadFromUDP(buffer)
			if err != nil {
				if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
					continue // Continue on timeout to check context
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("UDP read error: %v", err)
				continue
			}

			s.handleDatagram(buffer[:n], peer)
		}
	}
}

// handleDatagram decodes a single received datagram and delivers the sample.
// Malformed payloads are counted and skipped.
func (s *UDPSource) handleDatagram(payload []byte, peer *net.UDPAddr) {
	s.stats.AddSample(len(payload))

	sample, err := imu.ParseJSON(payload)
	if err != nil {
		s.stats.AddMalformed()
		log.Printf("Bad sample from %v: %v", peer, err)
		return
	}

	s.onSample(sample)
}

// Close closes the UDP socket and releases resources.
func (s *UDPSource) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
