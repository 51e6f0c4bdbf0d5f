// Command tuio-receive listens for TUIO bundles on a UDP port and
// prints every New/Update/Remove event as it is reconciled. Grounded on
// original_source/examples/receive.rs's process_events/main loop,
// ported from its blocking client.refresh() poll to a ticker-driven
// Client.Refresh call since the Go client has no blocking variant.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/tuio/client"
	"github.com/banshee-data/tuio/tuio"
)

func main() {
	port := flag.Int("port", 3333, "UDP port to listen for TUIO bundles on")
	pollInterval := flag.Duration("poll-interval", 16*time.Millisecond, "interval between Refresh polls")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	c := client.FromPort(*port)
	if err := c.Connect(); err != nil {
		log.Fatalf("tuio-receive: connect: %v", err)
	}
	defer c.Disconnect()

	log.Printf("tuio-receive: listening on 127.0.0.1:%d", *port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("tuio-receive: shutting down")
			return
		case <-ticker.C:
			if events := c.Refresh(); events != nil {
				processEvents(events)
			}
		}
	}
}

func processEvents(events *tuio.Events) {
	for _, e := range events.CursorEvents {
		fmt.Fprintf(os.Stdout, "%s Cursor: %+v from %s\n", e.Kind, e.Cursor, e.SourceName)
	}
	for _, e := range events.ObjectEvents {
		fmt.Fprintf(os.Stdout, "%s Object: %+v from %s\n", e.Kind, e.Object, e.SourceName)
	}
	for _, e := range events.BlobEvents {
		fmt.Fprintf(os.Stdout, "%s Blob: %+v from %s\n", e.Kind, e.Blob, e.SourceName)
	}
}
