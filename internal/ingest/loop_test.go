package ingest

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Unknown6656/UDPOscilloscope/configs"
	"github.com/Unknown6656/UDPOscilloscope/internal/metrics"
	"github.com/Unknown6656/UDPOscilloscope/internal/pipeline"
	"github.com/Unknown6656/UDPOscilloscope/pkg/common"
	"github.com/Unknown6656/UDPOscilloscope/pkg/frame"
)

func newTestPipeline(t *testing.T, splitExponent int) (*pipeline.Pipeline, *metrics.Session) {
	t.Helper()
	settings := configs.GetDefaultConfig().Settings()
	settings.SplitExponent = splitExponent
	session := metrics.NewSession()
	return pipeline.New(configs.NewLive(settings), logging.NewDefaultLogger(), session), session
}

func startLoop(t *testing.T, p *pipeline.Pipeline) (net.PacketConn, <-chan error) {
	t.Helper()
	conn, err := Listen(context.Background(), "127.0.0.1:0", true)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- NewLoop(conn, p, configs.DefaultReadBuffer).Run(context.Background())
	}()
	return conn, done
}

func send(t *testing.T, addr net.Addr, payload []byte) {
	t.Helper()
	client, err := net.Dial("udp", addr.String())
	require.NoError(t, err)
	defer client.Close()
	_, err = client.Write(payload)
	require.NoError(t, err)
}

func TestLoopEnqueuesDatagram(t *testing.T) {
	p, session := newTestPipeline(t, 0)
	conn, done := startLoop(t, p)

	payload := []byte{0, 100, 0, 200, 0, 50, 0, 25}
	send(t, conn.LocalAddr(), payload)

	require.Eventually(t, func() bool { return p.Queue.Count() == 1 }, 2*time.Second, 5*time.Millisecond)

	got, err := p.Queue.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, frame.RawFrame(payload), got)

	snapshot := session.Snapshot()
	assert.Equal(t, int64(1), snapshot.Datagrams)
	assert.Equal(t, int64(len(payload)), snapshot.Bytes)

	require.NoError(t, conn.Close())
	<-done
}

func TestLoopSplitsDatagram(t *testing.T) {
	p, _ := newTestPipeline(t, 2)
	conn, done := startLoop(t, p)

	send(t, conn.LocalAddr(), []byte{1, 2, 3, 4, 5, 6, 7, 8})

	require.Eventually(t, func() bool { return p.Queue.Count() == 4 }, 2*time.Second, 5*time.Millisecond)
	for _, want := range [][]byte{{1, 2}, {3, 4}, {5, 6}, {7, 8}} {
		got, err := p.Queue.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, frame.RawFrame(want), got)
	}

	require.NoError(t, conn.Close())
	<-done
}

func TestLoopRejectsShortDatagramAndContinues(t *testing.T) {
	p, session := newTestPipeline(t, 3)
	conn, done := startLoop(t, p)

	send(t, conn.LocalAddr(), []byte{1, 2, 3})
	require.Eventually(t, func() bool { return session.Snapshot().FramesRejected == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, p.Queue.Count())

	send(t, conn.LocalAddr(), make([]byte, 16))
	require.Eventually(t, func() bool { return p.Queue.Count() == 8 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	<-done
}

func TestLoopRaisesSmallReadBuffer(t *testing.T) {
	p, _ := newTestPipeline(t, 0)
	conn, err := Listen(context.Background(), "127.0.0.1:0", true)
	require.NoError(t, err)

	loop := NewLoop(conn, p, 4)
	assert.Equal(t, configs.MaxDatagramSize, loop.readBuffer)

	done := make(chan error, 1)
	go func() { done <- loop.Run(context.Background()) }()

	payload := []byte{0, 1, 0, 2, 0, 3, 0, 4}
	send(t, conn.LocalAddr(), payload)
	require.Eventually(t, func() bool { return p.Queue.Count() == 1 }, 2*time.Second, 5*time.Millisecond)

	got, err := p.Queue.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, frame.RawFrame(payload), got)

	require.NoError(t, conn.Close())
	<-done
}

func TestLoopReportsNetworkErrorOnClose(t *testing.T) {
	p, _ := newTestPipeline(t, 0)
	conn, done := startLoop(t, p)

	require.NoError(t, conn.Close())

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrNetwork)
		assert.True(t, errors.Is(err, net.ErrClosed))
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after socket close")
	}
}

func TestLoopStopsWhenContextCancelled(t *testing.T) {
	p, _ := newTestPipeline(t, 0)
	conn, err := Listen(context.Background(), "127.0.0.1:0", false)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, NewLoop(conn, p, configs.DefaultReadBuffer).Run(ctx))
}
