package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/tuio/internal/clock"
	"github.com/banshee-data/tuio/internal/osc"
	"github.com/banshee-data/tuio/transport"
	"github.com/banshee-data/tuio/tuio"
)

func marshalCursorBundle(t *testing.T, source string, alive []int32, sets []osc.CursorParams, fseq int32) []byte {
	t.Helper()
	wire, err := osc.EncodeCursorBundle(source, alive, sets, fseq).Marshal()
	require.NoError(t, err)
	return wire
}

// TestCursorLifecycleViaClient is spec §8 scenario 1 observed from the
// client side: a New event on first sight, an Update on the next frame,
// and a Remove once the id drops from the alive set.
func TestCursorLifecycleViaClient(t *testing.T) {
	c := New()
	c.ring.push(marshalCursorBundle(t, "app@local", []int32{1}, []osc.CursorParams{{SessionID: 1, X: 0, Y: 0}}, 1))

	events := c.Refresh()
	require.NotNil(t, events)
	require.Len(t, events.CursorEvents, 1)
	require.Equal(t, tuio.EventNew, events.CursorEvents[0].Kind)

	c.ring.push(marshalCursorBundle(t, "app@local", []int32{1}, []osc.CursorParams{{SessionID: 1, X: 1, Y: 1, VX: 1, VY: 1}}, 2))
	events = c.Refresh()
	require.Len(t, events.CursorEvents, 1)
	require.Equal(t, tuio.EventUpdate, events.CursorEvents[0].Kind)
	require.InDelta(t, 1.0, events.CursorEvents[0].Cursor.Velocity.X, 1e-6)

	c.ring.push(marshalCursorBundle(t, "app@local", nil, nil, 3))
	events = c.Refresh()
	require.Len(t, events.CursorEvents, 1)
	require.Equal(t, tuio.EventRemove, events.CursorEvents[0].Kind)
	require.Equal(t, int32(1), events.CursorEvents[0].Cursor.SessionID)
}

func TestRefreshReturnsNilWithoutPackets(t *testing.T) {
	c := New()
	require.Nil(t, c.Refresh())
}

// TestLateFrameRejected is spec §8 scenario 4: a frame number below the
// current frame, within the restart threshold, is discarded entirely —
// no events are produced.
func TestLateFrameRejected(t *testing.T) {
	c := New()
	c.ring.push(marshalCursorBundle(t, "app@local", []int32{1}, []osc.CursorParams{{SessionID: 1}}, 10))
	require.NotNil(t, c.Refresh())

	// A late, non-restart frame must be entirely ignored: no new/update
	// event for id 2, and id 1 remains live (no remove either).
	c.ring.push(marshalCursorBundle(t, "app@local", []int32{2}, []osc.CursorParams{{SessionID: 2}}, 9))
	events := c.Refresh()
	require.Len(t, events.CursorEvents, 0)

	source := c.sources["app@local"]
	require.True(t, source.cursors.Has(1))
	require.False(t, source.cursors.Has(2))
}

// TestSourceRestartAcceptedAfterLargeBackwardsJump is spec §8 scenario 5:
// once current_frame is far enough ahead, a much smaller fseq (over 100
// behind) is treated as a restart and accepted.
func TestSourceRestartAcceptedAfterLargeBackwardsJump(t *testing.T) {
	c := New()
	c.ring.push(marshalCursorBundle(t, "app@local", []int32{1}, []osc.CursorParams{{SessionID: 1}}, 500))
	require.NotNil(t, c.Refresh())

	c.ring.push(marshalCursorBundle(t, "app@local", []int32{1}, []osc.CursorParams{{SessionID: 1, X: 0.5}}, 1))
	events := c.Refresh()
	require.Len(t, events.CursorEvents, 1)
	require.Equal(t, tuio.EventUpdate, events.CursorEvents[0].Kind)
}

func TestEqualFrameAcceptedWithoutTimeAdvance(t *testing.T) {
	c := New()
	c.ring.push(marshalCursorBundle(t, "app@local", []int32{1}, []osc.CursorParams{{SessionID: 1}}, 10))
	require.NotNil(t, c.Refresh())

	// Same fseq, a second set message for a new id: must still be
	// accepted (frame >= current_frame).
	c.ring.push(marshalCursorBundle(t, "app@local", []int32{1, 2}, []osc.CursorParams{{SessionID: 2}}, 10))
	events := c.Refresh()
	require.Len(t, events.CursorEvents, 1)
	require.Equal(t, tuio.EventNew, events.CursorEvents[0].Kind)
}

// TestMultiSourceFederation is spec §8 scenario 6: two distinct sources
// maintain independent entity tables keyed by source name.
func TestMultiSourceFederation(t *testing.T) {
	c := New()
	c.ring.push(marshalCursorBundle(t, "app@local", []int32{1}, []osc.CursorParams{{SessionID: 1}}, 1))
	c.ring.push(marshalCursorBundle(t, "other@10.0.0.5", []int32{1}, []osc.CursorParams{{SessionID: 1, X: 0.9}}, 1))

	events := c.Refresh()
	require.Len(t, events.CursorEvents, 2)

	require.True(t, c.sources["app@local"].cursors.Has(1))
	require.True(t, c.sources["other@10.0.0.5"].cursors.Has(1))

	appCursor, _ := c.sources["app@local"].cursors.Get(1)
	otherCursor, _ := c.sources["other@10.0.0.5"].cursors.Get(1)
	require.NotEqual(t, appCursor.Position.X, otherCursor.Position.X)
}

func TestGoodbyeFrameIsIgnoredByArbitration(t *testing.T) {
	c := New()
	c.ring.push(marshalCursorBundle(t, "app@local", []int32{1}, []osc.CursorParams{{SessionID: 1}}, 1))
	require.NotNil(t, c.Refresh())

	// fseq -1 (goodbye) is always rejected by frame arbitration, per the
	// ported original_source behavior: the entity table is untouched.
	c.ring.push(marshalCursorBundle(t, "app@local", nil, nil, -1))
	events := c.Refresh()
	require.Len(t, events.CursorEvents, 0)
	require.True(t, c.sources["app@local"].cursors.Has(1))
}

func TestRefreshDiscardsMalformedPacket(t *testing.T) {
	c := New()
	c.ring.push([]byte("not an osc bundle"))
	events := c.Refresh()
	require.NotNil(t, events)
	require.True(t, events.Empty())
}

func TestConnectTwiceReturnsAlreadyConnected(t *testing.T) {
	c := New()
	c.AddReceiver(transport.NewMockReceiver())
	require.NoError(t, c.Connect())
	defer c.Disconnect()
	require.ErrorIs(t, c.Connect(), ErrAlreadyConnected)
}

func TestConnectDisconnectIngestsPacket(t *testing.T) {
	c := New()
	recv := transport.NewMockReceiver()
	c.AddReceiver(recv)
	require.NoError(t, c.Connect())

	recv.Enqueue(marshalCursorBundle(t, "app@local", []int32{1}, []osc.CursorParams{{SessionID: 1}}, 1))

	require.Eventually(t, func() bool {
		return c.Refresh() != nil
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Disconnect())
	require.ErrorIs(t, c.Disconnect(), ErrNotConnected)
}

func TestWithClockControlsArbitrationTiming(t *testing.T) {
	mc := clock.NewMockClock(time.Unix(0, 0))
	c := New(WithClock(mc))
	require.Equal(t, int32(-1), c.arbiter.currentFrame)
	c.ring.push(marshalCursorBundle(t, "app@local", []int32{1}, []osc.CursorParams{{SessionID: 1}}, 1))
	c.Refresh()
	require.Equal(t, int32(1), c.arbiter.currentFrame)
}
