// Package client implements the TUIO receiver (spec §4.5): one
// background goroutine per transport.Receiver feeds a shared bounded
// packet ring, and a synchronous Refresh call drains it, arbitrates
// frame ordering, and reconciles each source's live entity tables.
//
// Ported from the logic in original_source/src/client.rs's
// Client::process_osc_packet/update_frame/retain_by_ids, re-expressed
// around a poll-based Refresh instead of the original's callback
// Dispatcher trait, per spec §4.5.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/banshee-data/tuio/internal/clock"
	"github.com/banshee-data/tuio/internal/logging"
	"github.com/banshee-data/tuio/internal/ordered"
	"github.com/banshee-data/tuio/internal/osc"
	"github.com/banshee-data/tuio/transport"
	"github.com/banshee-data/tuio/tuio"
)

var logf = logging.For("client")

// ErrAlreadyConnected is returned by Connect when called on a client that
// is already connected.
var ErrAlreadyConnected = errors.New("client: already connected")

// ErrNotConnected is returned by Disconnect when the client is not
// currently connected (never connected, or already disconnected).
var ErrNotConnected = errors.New("client: not connected")

type sourceCollection struct {
	cursors *ordered.Map[*tuio.Cursor]
	objects *ordered.Map[*tuio.Object]
	blobs   *ordered.Map[*tuio.Blob]
}

func newSourceCollection() *sourceCollection {
	return &sourceCollection{
		cursors: ordered.NewMap[*tuio.Cursor](),
		objects: ordered.NewMap[*tuio.Object](),
		blobs:   ordered.NewMap[*tuio.Blob](),
	}
}

// Client receives TUIO bundles from one or more transports and exposes
// accumulated New/Update/Remove events via Refresh.
type Client struct {
	receivers []transport.Receiver
	ring      *packetRing
	arbiter   *frameArbiter
	clk       clock.Clock

	mu        sync.Mutex
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	sources map[string]*sourceCollection
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithClock injects a clock.Clock, overriding the default RealClock.
// Tests use this to drive frame-arbitration timing deterministically.
func WithClock(c clock.Clock) Option {
	return func(c2 *Client) { c2.clk = c }
}

// New constructs a Client with no receivers attached; call AddReceiver
// before Connect.
func New(opts ...Option) *Client {
	c := &Client{
		clk:     clock.RealClock{},
		sources: make(map[string]*sourceCollection),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ring = newPacketRing(ringCapacity)
	c.arbiter = newFrameArbiter(c.clk)
	return c
}

// FromPort constructs a Client with a single UDP receiver bound to the
// given loopback port (spec §4.5's default construction variant).
func FromPort(port int, opts ...Option) *Client {
	c := New(opts...)
	c.AddReceiver(transport.NewUDPReceiver(fmt.Sprintf("127.0.0.1:%d", port), 0))
	return c
}

// AddReceiver registers an additional transport to pull packets from.
// Must be called before Connect.
func (c *Client) AddReceiver(r transport.Receiver) {
	c.receivers = append(c.receivers, r)
}

// Connect opens every registered receiver and starts one ingestion
// goroutine per receiver.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected {
		return ErrAlreadyConnected
	}

	for _, r := range c.receivers {
		if err := r.Connect(); err != nil {
			return fmt.Errorf("client: connect receiver: %w", err)
		}
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.connected = true
	for _, r := range c.receivers {
		c.wg.Add(1)
		go c.ingest(r)
	}
	return nil
}

func (c *Client) ingest(r transport.Receiver) {
	defer c.wg.Done()
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		packet, err := r.Recv(c.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || transport.IsClosedGracefully(err) {
				return
			}
			logf("receive error, continuing: %v", err)
			continue
		}
		c.ring.push(packet)
	}
}

// Disconnect signals every ingestion goroutine to stop, waits for them,
// and closes every receiver.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	cancel := c.cancel
	c.connected = false
	c.mu.Unlock()

	cancel()
	for _, r := range c.receivers {
		r.Disconnect()
	}
	c.wg.Wait()
	return nil
}

// IsConnected reports whether Connect has succeeded and Disconnect has
// not yet been called.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Refresh drains every packet accumulated since the last call, decodes
// and arbitrates each one, and returns the aggregated events. Returns
// nil if no packets were queued.
func (c *Client) Refresh() *tuio.Events {
	packets := c.ring.drain()
	if len(packets) == 0 {
		return nil
	}

	events := &tuio.Events{}
	for _, raw := range packets {
		c.processPacket(raw, events)
	}
	return events
}

func (c *Client) processPacket(raw []byte, events *tuio.Events) {
	if !osc.IsBundle(raw) {
		logf("discarding non-bundle packet")
		return
	}
	bundle, err := osc.UnmarshalBundle(raw)
	if err != nil {
		logf("discarding malformed bundle: %v", err)
		return
	}
	decoded, err := osc.DecodeBundle(bundle)
	if err != nil {
		logf("discarding undecodable bundle: %v", err)
		return
	}

	if !c.arbiter.updateFrame(decoded.FSeq) {
		return
	}

	source := c.sources[decoded.Source]
	if source == nil {
		source = newSourceCollection()
		c.sources[decoded.Source] = source
	}

	toKeep := make(map[int32]bool, len(decoded.Alive))
	for _, id := range decoded.Alive {
		toKeep[id] = true
	}

	switch decoded.Profile {
	case osc.ProfileCursor:
		reconcileCursors(source.cursors, toKeep, decoded.Cursors, decoded.Source, c.arbiter.currentTime, events)
	case osc.ProfileObject:
		reconcileObjects(source.objects, toKeep, decoded.Objects, decoded.Source, c.arbiter.currentTime, events)
	case osc.ProfileBlob:
		reconcileBlobs(source.blobs, toKeep, decoded.Blobs, decoded.Source, c.arbiter.currentTime, events)
	}
}
