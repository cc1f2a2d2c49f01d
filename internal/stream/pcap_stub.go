//go:build !pcap
// +build !pcap

package stream

import (
	"context"
	"fmt"
)

// ReadPcapFile is a stub implementation when PCAP support is disabled.
// Build with -tags=pcap to enable PCAP file reading.
func ReadPcapFile(ctx context.Context, pcapFile string, udpPort int, onSample SampleHandler, stats StatsRecorder) error {
	return fmt.Errorf("PCAP support not enabled: rebuild with -tags=pcap to enable PCAP file reading")
}
