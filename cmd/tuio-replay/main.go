// Command tuio-replay records a TUIO UDP bundle stream to a chunked log
// on disk and replays a recorded log back over UDP, pacing output by
// the packets' original receive timestamps. Grounded on the teacher's
// cmd/radar subcommand dispatch style (flag.NewFlagSet per subcommand,
// flag.Args() for positional dispatch) and recorder.Recorder/Player.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/tuio/internal/osc"
	"github.com/banshee-data/tuio/recorder"
	"github.com/banshee-data/tuio/transport"
)

// parseProfileFlag maps a -profile flag value to an osc.Profile, empty
// string meaning "replay every stream unfiltered".
func parseProfileFlag(name string) (osc.Profile, error) {
	switch name {
	case "":
		return osc.ProfileUnknown, nil
	case "cursor", "2Dcur":
		return osc.ProfileCursor, nil
	case "object", "2Dobj":
		return osc.ProfileObject, nil
	case "blob", "2Dblb":
		return osc.ProfileBlob, nil
	default:
		return osc.ProfileUnknown, fmt.Errorf("unknown -profile %q (want cursor, object, or blob)", name)
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "record":
		runRecord(os.Args[2:])
	case "play":
		runPlay(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tuio-replay record|play [flags]")
}

func runRecord(args []string) {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	port := fs.Int("port", 3333, "UDP port to listen for TUIO bundles on")
	out := fs.String("out", "", "log directory to write (default: a generated temp directory)")
	session := fs.String("session", "", "session id recorded in the log header (default: a random uuid)")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("tuio-replay record: parse flags: %v", err)
	}

	rec, err := recorder.NewRecorder(*out, *session)
	if err != nil {
		log.Fatalf("tuio-replay record: %v", err)
	}
	log.Printf("tuio-replay record: writing to %s", rec.Path())

	receiver := transport.NewUDPReceiver(fmt.Sprintf("127.0.0.1:%d", *port), 0)
	if err := receiver.Connect(); err != nil {
		log.Fatalf("tuio-replay record: connect UDP receiver: %v", err)
	}
	defer receiver.Disconnect()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	count := 0
	for {
		packet, err := receiver.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil || transport.IsClosedGracefully(err) {
				break
			}
			log.Printf("tuio-replay record: receive error, continuing: %v", err)
			continue
		}
		if err := rec.Record(int64(time.Since(start)), packet); err != nil {
			log.Printf("tuio-replay record: write packet: %v", err)
		}
		count++
	}

	if err := rec.Close(); err != nil {
		log.Fatalf("tuio-replay record: close log: %v", err)
	}
	log.Printf("tuio-replay record: wrote %d packets to %s", count, rec.Path())
}

func runPlay(args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:3333", "destination address to replay the recorded bundles to")
	path := fs.String("path", "", "log directory written by 'tuio-replay record'")
	rate := fs.Float64("rate", 1.0, "playback speed multiplier (1.0 = original timing)")
	loop := fs.Bool("loop", false, "replay the log repeatedly until interrupted")
	profileFlag := fs.String("profile", "", "replay only one profile's stream: cursor, object, or blob (default: every stream)")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("tuio-replay play: parse flags: %v", err)
	}
	if *path == "" {
		log.Fatal("tuio-replay play: -path is required")
	}
	profile, err := parseProfileFlag(*profileFlag)
	if err != nil {
		log.Fatalf("tuio-replay play: %v", err)
	}

	sender, err := transport.NewUDPSender(*addr)
	if err != nil {
		log.Fatalf("tuio-replay play: create UDP sender for %s: %v", *addr, err)
	}
	defer sender.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := replayOnce(ctx, *path, sender, float32(*rate), profile); err != nil {
			log.Fatalf("tuio-replay play: %v", err)
		}
		if !*loop || ctx.Err() != nil {
			return
		}
	}
}

func replayOnce(ctx context.Context, path string, sender transport.Sender, rate float32, profile osc.Profile) error {
	player, err := recorder.NewPlayer(path)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer player.Close()
	player.SetRate(rate)

	log.Printf("tuio-replay play: replaying %d packets from %s at %.2fx", player.TotalPackets(), path, rate)

	var lastTs int64
	first := true
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if profile != osc.ProfileUnknown {
			if err := player.SeekNextProfile(profile); err != nil {
				if err == io.EOF {
					return nil
				}
				return fmt.Errorf("seek next %s packet: %w", profile.Address(), err)
			}
		}

		packet, ts, err := player.ReadPacket()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read packet: %w", err)
		}

		if !first {
			delay := time.Duration(float64(ts-lastTs) / float64(player.Rate()))
			if delay > 0 {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(delay):
				}
			}
		}
		first = false
		lastTs = ts

		if err := sender.Send(packet); err != nil {
			log.Printf("tuio-replay play: send packet: %v", err)
		}
	}
}
