package osc

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// TestRoundTripCursor is the spec §8 round-trip invariant for the 2Dcur
// profile: encode then decode must reproduce source, fseq, alive (in
// insertion order) and set entries pointwise.
func TestRoundTripCursor(t *testing.T) {
	alive := []int32{1, 2, 3}
	sets := []CursorParams{
		{SessionID: 1, X: 0.1, Y: 0.2, VX: 0, VY: 0, Accel: 0},
		{SessionID: 2, X: 0.5, Y: 0.6, VX: 0.1, VY: 0.2, Accel: 0.05},
	}

	bundle := EncodeCursorBundle("app@local", alive, sets, 42)

	wire, err := bundle.Marshal()
	require.NoError(t, err)

	decodedWire, err := UnmarshalBundle(wire)
	require.NoError(t, err)

	decoded, err := DecodeBundle(decodedWire)
	require.NoError(t, err)

	if decoded.Profile != ProfileCursor {
		t.Fatalf("Profile = %v, want ProfileCursor", decoded.Profile)
	}
	if decoded.Source != "app@local" {
		t.Errorf("Source = %q, want %q", decoded.Source, "app@local")
	}
	if decoded.FSeq != 42 {
		t.Errorf("FSeq = %d, want 42", decoded.FSeq)
	}
	if diff := cmp.Diff(alive, decoded.Alive); diff != "" {
		t.Errorf("Alive mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(sets, decoded.Cursors); diff != "" {
		t.Errorf("Cursors mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripObject(t *testing.T) {
	alive := []int32{7}
	sets := []ObjectParams{
		{SessionID: 7, ClassID: 3, X: 1, Y: 1, Angle: 1.5708, VX: 1, VY: 1, RotationSpeed: 0.25, Accel: 1.4142, RotationAccel: 0.25},
	}
	bundle := EncodeObjectBundle("app@local", alive, sets, 2)

	wire, err := bundle.Marshal()
	require.NoError(t, err)
	decodedWire, err := UnmarshalBundle(wire)
	require.NoError(t, err)
	decoded, err := DecodeBundle(decodedWire)
	require.NoError(t, err)

	if diff := cmp.Diff(sets, decoded.Objects); diff != "" {
		t.Errorf("Objects mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripBlob(t *testing.T) {
	alive := []int32{9}
	sets := []BlobParams{
		{SessionID: 9, X: 1, Y: 1, Angle: 1.5708, Width: 0.2, Height: 0.2, Area: 0.04, VX: 1, VY: 1, RotationSpeed: 0.25, Accel: 1.4142, RotationAccel: 0.25},
	}
	bundle := EncodeBlobBundle("app@local", alive, sets, 2)

	wire, err := bundle.Marshal()
	require.NoError(t, err)
	decodedWire, err := UnmarshalBundle(wire)
	require.NoError(t, err)
	decoded, err := DecodeBundle(decodedWire)
	require.NoError(t, err)

	if diff := cmp.Diff(sets, decoded.Blobs); diff != "" {
		t.Errorf("Blobs mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeGoodbyeBundle(t *testing.T) {
	bundle := EncodeCursorBundle("app@local", nil, nil, -1)
	wire, err := bundle.Marshal()
	require.NoError(t, err)
	decodedWire, err := UnmarshalBundle(wire)
	require.NoError(t, err)
	decoded, err := DecodeBundle(decodedWire)
	require.NoError(t, err)

	if decoded.FSeq != -1 {
		t.Errorf("FSeq = %d, want -1", decoded.FSeq)
	}
	if len(decoded.Alive) != 0 {
		t.Errorf("Alive = %v, want empty", decoded.Alive)
	}
}

func TestDecodeEmptyMessage(t *testing.T) {
	b := Bundle{Messages: []Message{{Address: "/tuio/2Dcur"}}}
	_, err := DecodeBundle(b)
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	if decErr.Kind != ErrEmptyMessage {
		t.Errorf("Kind = %v, want ErrEmptyMessage", decErr.Kind)
	}
}

func TestDecodeUnknownAddress(t *testing.T) {
	b := Bundle{Messages: []Message{buildMessage("/tuio/3Dcur", "source", String("app"))}}
	_, err := DecodeBundle(b)
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	if decErr.Kind != ErrUnknownAddress {
		t.Errorf("Kind = %v, want ErrUnknownAddress", decErr.Kind)
	}
}

func TestDecodeIncompleteBundle(t *testing.T) {
	addr := ProfileCursor.Address()
	b := Bundle{Messages: []Message{
		buildMessage(addr, "set", Int(1), Float(0), Float(0), Float(0), Float(0), Float(0)),
	}}
	_, err := DecodeBundle(b)
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	if decErr.Kind != ErrIncompleteBundle {
		t.Errorf("Kind = %v, want ErrIncompleteBundle", decErr.Kind)
	}
}

func TestDecodeMissingArguments(t *testing.T) {
	addr := ProfileCursor.Address()
	b := Bundle{Messages: []Message{
		buildMessage(addr, "source", String("app")),
		buildMessage(addr, "set", Int(1), Float(0), Float(0)), // too few fields
	}}
	_, err := DecodeBundle(b)
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	if decErr.Kind != ErrMissingArguments {
		t.Errorf("Kind = %v, want ErrMissingArguments", decErr.Kind)
	}
}

func TestDecodeWrongArgumentType(t *testing.T) {
	addr := ProfileCursor.Address()
	b := Bundle{Messages: []Message{
		buildMessage(addr, "source", String("app")),
		buildMessage(addr, "set", String("not-an-int"), Float(0), Float(0), Float(0), Float(0), Float(0)),
	}}
	_, err := DecodeBundle(b)
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	if decErr.Kind != ErrWrongArgumentType {
		t.Errorf("Kind = %v, want ErrWrongArgumentType", decErr.Kind)
	}
}

func TestUnmarshalBundleRejectsBareMessage(t *testing.T) {
	msg := buildMessage(ProfileCursor.Address(), "fseq", Int(1))
	wire, err := msg.Marshal()
	require.NoError(t, err)

	if IsBundle(wire) {
		t.Fatal("a bare message must not be identified as a bundle")
	}
	_, err = UnmarshalBundle(wire)
	require.Error(t, err)
}

func TestOrderToleranceWithinBundle(t *testing.T) {
	addr := ProfileCursor.Address()
	// fseq arrives before source/alive/set: decoder must still succeed.
	b := Bundle{Messages: []Message{
		buildMessage(addr, "fseq", Int(5)),
		buildMessage(addr, "set", Int(1), Float(0), Float(0), Float(0), Float(0), Float(0)),
		buildMessage(addr, "alive", Int(1)),
		buildMessage(addr, "source", String("app")),
	}}
	decoded, err := DecodeBundle(b)
	require.NoError(t, err)
	if decoded.FSeq != 5 || decoded.Source != "app" || len(decoded.Cursors) != 1 {
		t.Errorf("unexpected decode result: %+v", decoded)
	}
}
