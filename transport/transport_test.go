package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUDPSenderReceiverRoundTrip(t *testing.T) {
	receiver := NewUDPReceiver("127.0.0.1:0", 0)
	require.NoError(t, receiver.Connect())
	defer receiver.Disconnect()

	addr := receiver.conn.LocalAddr().String()
	sender, err := NewUDPSender(addr)
	require.NoError(t, err)
	defer sender.Close()

	require.True(t, sender.IsLocal())
	require.True(t, sender.IsConnected())

	require.NoError(t, sender.Send([]byte("hello")))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := receiver.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))
}

func TestUDPReceiverRecvObservesCancellation(t *testing.T) {
	receiver := NewUDPReceiver("127.0.0.1:0", 0)
	require.NoError(t, receiver.Connect())
	defer receiver.Disconnect()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := receiver.Recv(ctx)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Recv did not observe cancellation in time")
	}
}

func TestUDPReceiverDisconnectUnblocksRecv(t *testing.T) {
	receiver := NewUDPReceiver("127.0.0.1:0", 0)
	require.NoError(t, receiver.Connect())

	done := make(chan error, 1)
	go func() {
		_, err := receiver.Recv(context.Background())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, receiver.Disconnect())

	select {
	case err := <-done:
		require.True(t, IsClosedGracefully(err))
	case <-time.After(2 * time.Second):
		t.Fatal("Recv did not unblock after Disconnect")
	}
}

func TestMockSenderRecordsPackets(t *testing.T) {
	sender := NewMockSender(true)
	require.NoError(t, sender.Send([]byte("a")))
	require.NoError(t, sender.Send([]byte("b")))

	sent := sender.Sent()
	require.Len(t, sent, 2)
	require.Equal(t, "a", string(sent[0]))
	require.Equal(t, "b", string(sent[1]))
	require.True(t, sender.IsLocal())
	require.True(t, sender.IsConnected())
}

func TestMockSenderNextError(t *testing.T) {
	sender := NewMockSender(false)
	wantErr := errors.New("boom")
	sender.SetNextError(wantErr)

	err := sender.Send([]byte("x"))
	require.ErrorIs(t, err, wantErr)
	require.Empty(t, sender.Sent())

	require.NoError(t, sender.Send([]byte("y")))
	require.Len(t, sender.Sent(), 1)
}

func TestMockReceiverConnectTwiceErrors(t *testing.T) {
	r := NewMockReceiver()
	require.NoError(t, r.Connect())
	require.Error(t, r.Connect())
}

func TestMockReceiverDrainsInOrder(t *testing.T) {
	r := NewMockReceiver()
	require.NoError(t, r.Connect())
	r.Enqueue([]byte("first"))
	r.Enqueue([]byte("second"))

	ctx := context.Background()
	got1, err := r.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, "first", string(got1))

	got2, err := r.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, "second", string(got2))
}

func TestMockReceiverBlocksUntilEnqueue(t *testing.T) {
	r := NewMockReceiver()
	require.NoError(t, r.Connect())

	done := make(chan []byte, 1)
	go func() {
		got, err := r.Recv(context.Background())
		require.NoError(t, err)
		done <- got
	}()

	time.Sleep(10 * time.Millisecond)
	r.Enqueue([]byte("late"))

	select {
	case got := <-done:
		require.Equal(t, "late", string(got))
	case <-time.After(2 * time.Second):
		t.Fatal("Recv did not return after Enqueue")
	}
}

func TestMockReceiverNextError(t *testing.T) {
	r := NewMockReceiver()
	require.NoError(t, r.Connect())
	wantErr := errors.New("recv failed")
	r.SetNextError(wantErr)

	_, err := r.Recv(context.Background())
	require.ErrorIs(t, err, wantErr)
}

func TestMockReceiverDisconnectReturnsGraceful(t *testing.T) {
	r := NewMockReceiver()
	require.NoError(t, r.Connect())

	done := make(chan error, 1)
	go func() {
		_, err := r.Recv(context.Background())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, r.Disconnect())

	select {
	case err := <-done:
		require.True(t, IsClosedGracefully(err))
	case <-time.After(2 * time.Second):
		t.Fatal("Recv did not unblock after Disconnect")
	}
}
