// Command tuio-sniff captures TUIO bundles directly off the network
// (live interface or a pcap file) and prints each decoded bundle's
// profile, source, frame sequence, and alive set. Live/offline capture
// is implemented in sniff_pcap.go behind the "pcap" build tag, with a
// stub in sniff_stub.go for default builds — grounded on the teacher's
// internal/lidar/network/pcap_realtime.go + pcap_stub.go split.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/tuio/internal/osc"
)

func main() {
	iface := flag.String("iface", "", "network interface to capture live from (mutually exclusive with -pcap)")
	pcapFile := flag.String("pcap", "", "pcap file to read instead of a live interface")
	port := flag.Int("port", 3333, "UDP port TUIO bundles are expected on")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if *iface == "" && *pcapFile == "" {
		log.Fatal("tuio-sniff: one of -iface or -pcap is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := capture(ctx, *iface, *pcapFile, *port, printPacket); err != nil {
		log.Fatalf("tuio-sniff: %v", err)
	}
}

func printPacket(payload []byte) {
	if !osc.IsBundle(payload) {
		return
	}
	bundle, err := osc.UnmarshalBundle(payload)
	if err != nil {
		return
	}
	decoded, err := osc.DecodeBundle(bundle)
	if err != nil {
		fmt.Fprintf(os.Stdout, "undecodable bundle: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stdout, "profile=%s source=%q fseq=%d alive=%v\n",
		decoded.Profile.Address(), decoded.Source, decoded.FSeq, decoded.Alive)
}
