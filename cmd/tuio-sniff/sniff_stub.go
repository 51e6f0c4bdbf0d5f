//go:build !pcap
// +build !pcap

package main

import (
	"context"
	"fmt"
)

// capture is a stub used when tuio-sniff is built without -tags=pcap.
// Grounded on the teacher's internal/lidar/network/pcap_stub.go.
func capture(ctx context.Context, iface, pcapFile string, port int, onPacket func([]byte)) error {
	return fmt.Errorf("pcap support not enabled: rebuild with -tags=pcap to enable live/offline capture")
}
