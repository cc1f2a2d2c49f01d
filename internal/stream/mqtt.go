package stream

import (
	"context"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/gesturelab/motionpipe/internal/imu"
	"github.com/gesturelab/motionpipe/internal/timeutil"
)

// MQTTSource subscribes to a broker topic carrying JSON-encoded samples.
// Paho invokes the subscription callback from its own router goroutine;
// payloads are handed off through a single ordered channel so the sample
// handler still runs on one goroutine in publish order.
type MQTTSource struct {
	broker      string
	topic       string
	clientID    string
	qos         byte
	logInterval time.Duration
	clock       timeutil.Clock
	client      mqtt.Client
	payloads    chan []byte
	stats       StatsRecorder
	onSample    SampleHandler
}

// MQTTSourceConfig contains configuration options for the MQTT source.
type MQTTSourceConfig struct {
	Broker      string // e.g. "tcp://localhost:1883"
	Topic       string
	ClientID    string // defaults to "motionpipe-ingest"
	QoS         byte
	QueueSize   int // handoff buffer; full queue drops, 0 defaults to 256
	LogInterval time.Duration
	Clock       timeutil.Clock
	Stats       StatsRecorder
	OnSample    SampleHandler
}

// NewMQTTSource creates a new MQTT source with the provided configuration.
func NewMQTTSource(config MQTTSourceConfig) *MQTTSource {
	stats := config.Stats
	if stats == nil {
		stats = &noopStats{}
	}
	clientID := config.ClientID
	if clientID == "" {
		clientID = "motionpipe-ingest"
	}
	queueSize := config.QueueSize
	if queueSize == 0 {
		queueSize = 256
	}
	logInterval := config.LogInterval
	if logInterval == 0 {
		logInterval = time.Minute
	}
	clock := config.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	return &MQTTSource{
		broker:      config.Broker,
		topic:       config.Topic,
		clientID:    clientID,
		qos:         config.QoS,
		logInterval: logInterval,
		clock:       clock,
		payloads:    make(chan []byte, queueSize),
		stats:       stats,
		onSample:    config.OnSample,
	}
}

// Start connects to the broker, subscribes, and delivers samples until the
// context is cancelled.
func (s *MQTTSource) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(s.broker).
		SetClientID(s.clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect %s: %w", s.broker, token.Error())
	}
	s.client = client
	defer client.Disconnect(250)

	log.Printf("MQTT sample source connected to %s", s.broker)

	token := client.Subscribe(s.topic, s.qos, func(_ mqtt.Client, msg mqtt.Message) {
		// Copy out of paho's buffer before handing off.
		payload := make([]byte, len(msg.Payload()))
		copy(payload, msg.Payload())
		select {
		case s.payloads <- payload:
		default:
			s.stats.AddDropped()
		}
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", s.topic, token.Error())
	}
	log.Printf("MQTT sample source subscribed to %s", s.topic)

	go logStatsLoop(ctx, s.clock, s.stats, s.logInterval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload := <-s.payloads:
			s.handlePayload(payload)
		}
	}
}

// handlePayload decodes one message payload and delivers the sample.
// Malformed payloads are counted and skipped.
func (s *MQTTSource) handlePayload(payload []byte) {
	s.stats.AddSample(len(payload))

	sample, err := imu.ParseJSON(payload)
	if err != nil {
		s.stats.AddMalformed()
		log.Printf("Bad sample on %s: %v", s.topic, err)
		return
	}

	s.onSample(sample)
}

// Close disconnects from the broker.
func (s *MQTTSource) Close() error {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
	return nil
}
