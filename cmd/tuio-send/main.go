// Command tuio-send runs a TUIO server that moves a single simulated
// cursor in a circle, broadcasting full and incremental update bundles
// over UDP. Grounded on original_source/examples/send.rs and
// manual_send.rs, ported from their one-shot create/update/
// send_full_messages calls to a continuously running loop.
package main

import (
	"context"
	"flag"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/tuio/config"
	"github.com/banshee-data/tuio/server"
	"github.com/banshee-data/tuio/transport"
	"github.com/banshee-data/tuio/tuio"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:3333", "destination address for the TUIO UDP bundle stream")
	sourceName := flag.String("source", "tuio-send", "TUIO source name announced in every bundle")
	fullUpdate := flag.Bool("full-update", false, "re-emit every live entity each frame instead of only mutated ones")
	frameRate := flag.Duration("frame-interval", 33*time.Millisecond, "interval between committed frames")
	radius := flag.Float64("radius", 0.25, "radius of the simulated cursor's circular path")
	configPath := flag.String("config", "", "optional JSON ServerOptions file (see config.ServerOptions); when given, its source_name (default \"tuio\") replaces -source, and full update is on if either it or -full-update enables it")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	opts := config.EmptyServerOptions()
	if *configPath != "" {
		loaded, err := config.LoadServerOptions(*configPath)
		if err != nil {
			log.Fatalf("tuio-send: load config %s: %v", *configPath, err)
		}
		opts = loaded
	}

	sender, err := transport.NewUDPSender(*addr)
	if err != nil {
		log.Fatalf("tuio-send: create UDP sender for %s: %v", *addr, err)
	}
	defer sender.Close()

	effectiveSource := *sourceName
	if *configPath != "" {
		effectiveSource = opts.GetSourceName()
	}
	effectiveFullUpdate := *fullUpdate || opts.GetFullUpdate()

	srv := server.New(effectiveSource, server.WithFullUpdate(effectiveFullUpdate))
	srv.AddSender(sender)

	if opts.GetPeriodicMessaging() {
		interval := opts.GetUpdateInterval()
		srv.EnablePeriodicMessage(&interval)
	}

	cursorID := srv.CreateCursor(tuio.Position{X: 0.5, Y: 0.5})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.SendFullMessages(); err != nil {
		log.Printf("tuio-send: initial full message send failed: %v", err)
	}
	log.Printf("tuio-send: broadcasting to %s as source %q (full-update=%t)", *addr, effectiveSource, effectiveFullUpdate)

	ticker := time.NewTicker(*frameRate)
	defer ticker.Stop()

	var elapsed time.Duration
	for {
		select {
		case <-ctx.Done():
			log.Printf("tuio-send: shutting down")
			srv.Shutdown()
			return
		case <-ticker.C:
			elapsed += *frameRate
			angle := elapsed.Seconds()
			x := float32(0.5 + *radius*math.Cos(angle))
			y := float32(0.5 + *radius*math.Sin(angle))

			srv.InitFrame()
			srv.UpdateCursor(cursorID, tuio.Position{X: x, Y: y})
			if err := srv.CommitFrame(); err != nil {
				log.Printf("tuio-send: commit frame: %v", err)
			}
		}
	}
}
