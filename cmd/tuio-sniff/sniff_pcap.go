//go:build pcap
// +build pcap

package main

import (
	"context"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// capture opens a live interface or offline pcap file, filters to UDP
// traffic on port, and invokes onPacket with each payload. Grounded on
// the teacher's internal/lidar/network/pcap_realtime.go packet loop,
// adapted from frame-builder feeding to a plain payload callback.
func capture(ctx context.Context, iface, pcapFile string, port int, onPacket func([]byte)) error {
	var handle *pcap.Handle
	var err error

	if pcapFile != "" {
		handle, err = pcap.OpenOffline(pcapFile)
		if err != nil {
			return fmt.Errorf("open pcap file %s: %w", pcapFile, err)
		}
	} else {
		handle, err = pcap.OpenLive(iface, 65536, true, pcap.BlockForever)
		if err != nil {
			return fmt.Errorf("open live interface %s: %w", iface, err)
		}
	}
	defer handle.Close()

	filter := fmt.Sprintf("udp port %d", port)
	if err := handle.SetBPFFilter(filter); err != nil {
		return fmt.Errorf("set BPF filter %q: %w", filter, err)
	}

	source := gopacket.NewPacketSource(handle, handle.LinkType())
	for {
		select {
		case <-ctx.Done():
			return nil
		case packet := <-source.Packets():
			if packet == nil {
				return nil
			}
			udpLayer := packet.Layer(layers.LayerTypeUDP)
			if udpLayer == nil {
				continue
			}
			udp, ok := udpLayer.(*layers.UDP)
			if !ok || len(udp.Payload) == 0 {
				continue
			}
			onPacket(udp.Payload)
		}
	}
}
