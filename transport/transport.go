// Package transport defines the OSC packet transport contract consumed by
// the server and client (spec §6): a Sender that transmits encoded
// bundles, and a Receiver that blocks for incoming packets. The
// interfaces and their mock implementations mirror the teacher's
// UDPSocket/UDPSocketFactory abstraction in
// internal/lidar/network/udp_interface.go, generalized from a raw UDP
// socket to the narrower send/receive contract the TUIO core needs.
package transport

import "context"

// Sender transmits an already-encoded OSC packet to one destination.
type Sender interface {
	// Send transmits the raw OSC packet bytes. Implementations should
	// treat this as synchronous: it blocks for the duration of the
	// underlying transport's write.
	Send(packet []byte) error

	// IsConnected reports whether the sender currently has a usable
	// connection.
	IsConnected() bool

	// IsLocal reports whether the sender's destination is a loopback
	// address, used to compose the default source name (spec §4.4).
	IsLocal() bool
}

// Receiver supplies inbound OSC packets. Implementations may be UDP,
// a loopback pipe, or in-memory for tests.
type Receiver interface {
	// Connect prepares the receiver to accept Recv calls.
	Connect() error

	// Disconnect releases any resources and causes a blocked Recv to
	// return promptly.
	Disconnect() error

	// IsConnected reports whether Connect has succeeded and Disconnect
	// has not yet been called.
	IsConnected() bool

	// Recv blocks until a packet arrives or ctx is done, whichever comes
	// first. Implementations should poll ctx with a short deadline
	// rather than blocking indefinitely, mirroring the teacher's
	// UDPListener.Start cancellation loop, so that disconnect is
	// observed promptly rather than only on the next packet.
	Recv(ctx context.Context) ([]byte, error)
}
