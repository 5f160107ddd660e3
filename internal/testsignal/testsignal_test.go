package testsignal

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Unknown6656/UDPOscilloscope/pkg/frame"
	"github.com/Unknown6656/UDPOscilloscope/pkg/spectral"
)

func TestNewGeneratorValidates(t *testing.T) {
	_, err := NewGenerator("square", 64, 1, 1)
	assert.Error(t, err)

	_, err = NewGenerator(PatternSine, 63, 1, 1)
	assert.Error(t, err)

	_, err = NewGenerator(PatternSine, 0, 1, 1)
	assert.Error(t, err)

	g, err := NewGenerator(PatternWobble, DefaultFrameSize, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultFrameSize, g.FrameSize)
}

func TestSilenceIsZero(t *testing.T) {
	g, err := NewGenerator(PatternSilence, 32, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 32), g.Frame(time.Now()))
}

func TestWobbleFollowsClock(t *testing.T) {
	g, err := NewGenerator(PatternWobble, DefaultFrameSize, 0, 4)
	require.NoError(t, err)

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := g.Frame(at)
	require.Len(t, f, DefaultFrameSize)
	// sin(0) is zero, so the first byte sits at mid scale
	assert.Equal(t, byte(128), f[0])

	later := g.Frame(at.Add(250 * time.Millisecond))
	assert.NotEqual(t, f, later)
}

func TestSinePeaksAtConfiguredBin(t *testing.T) {
	g, err := NewGenerator(PatternSine, 512, 8, 2)
	require.NoError(t, err)

	w, err := frame.NewDecoder(false, 1).Decode(g.Frame(time.Now()))
	require.NoError(t, err)
	require.Equal(t, 256, w.Len())

	mags, err := spectral.Magnitude(w.Amplitude)
	require.NoError(t, err)

	peaks := spectral.PeakFrequencies(mags, 1, spectral.PeakOptions{OneSided: true})
	require.Len(t, peaks, 1)
	assert.Equal(t, 8, peaks[0].Bin)
}

func TestSenderDeliversFrames(t *testing.T) {
	listener, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	g, err := NewGenerator(PatternSine, 64, 2, 1)
	require.NoError(t, err)

	sender, err := NewSender(listener.LocalAddr().String(), g, time.Millisecond, logging.NewDefaultLogger())
	require.NoError(t, err)
	defer sender.Close()

	sent, err := sender.Run(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, sent)

	buf := make([]byte, 128)
	for i := 0; i < 3; i++ {
		require.NoError(t, listener.SetReadDeadline(time.Now().Add(2*time.Second)))
		n, _, err := listener.ReadFrom(buf)
		require.NoError(t, err)
		assert.Equal(t, 64, n)
	}
}

func TestSenderStopsOnCancel(t *testing.T) {
	listener, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	g, err := NewGenerator(PatternSilence, 16, 0, 1)
	require.NoError(t, err)

	sender, err := NewSender(listener.LocalAddr().String(), g, time.Hour, nil)
	require.NoError(t, err)
	defer sender.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sent, err := sender.Run(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestNewSenderRejectsZeroInterval(t *testing.T) {
	g, err := NewGenerator(PatternSilence, 16, 0, 1)
	require.NoError(t, err)

	_, err = NewSender("127.0.0.1:9", g, 0, nil)
	assert.Error(t, err)
}
