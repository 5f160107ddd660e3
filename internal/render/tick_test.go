package render

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Unknown6656/UDPOscilloscope/configs"
	"github.com/Unknown6656/UDPOscilloscope/internal/display"
	"github.com/Unknown6656/UDPOscilloscope/internal/metrics"
	"github.com/Unknown6656/UDPOscilloscope/internal/pipeline"
	"github.com/Unknown6656/UDPOscilloscope/pkg/frame"
)

type captureSink struct {
	mu       sync.Mutex
	updates  []*display.Update
	onRender func(u *display.Update)
}

func (c *captureSink) Name() string { return "capture" }

func (c *captureSink) Render(u *display.Update) error {
	c.mu.Lock()
	c.updates = append(c.updates, u)
	hook := c.onRender
	c.mu.Unlock()

	if hook != nil {
		hook(u)
	}
	return nil
}

func (c *captureSink) Close() error { return nil }

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.updates)
}

func (c *captureSink) last() *display.Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.updates) == 0 {
		return nil
	}
	return c.updates[len(c.updates)-1]
}

func newTestTick(t *testing.T, mutate func(s *configs.Settings)) (*Tick, *pipeline.Pipeline, *captureSink, *metrics.Session) {
	t.Helper()
	settings := configs.GetDefaultConfig().Settings()
	if mutate != nil {
		mutate(&settings)
	}
	session := metrics.NewSession()
	p := pipeline.New(configs.NewLive(settings), logging.NewDefaultLogger(), session)
	sink := &captureSink{}
	return NewTick(p, sink), p, sink, session
}

func TestTickIdleOnEmptyQueue(t *testing.T) {
	tick, _, sink, _ := newTestTick(t, nil)

	assert.Equal(t, Idle, tick.Run())
	assert.Equal(t, 0, sink.count())
}

func TestTickEndToEnd(t *testing.T) {
	tick, p, sink, session := newTestTick(t, nil)
	p.Queue.Enqueue(frame.RawFrame{0, 100, 0, 200, 0, 50, 0, 25})

	assert.Equal(t, Processed, tick.Run())
	require.Equal(t, 1, sink.count())

	u := sink.last()
	assert.Equal(t, uint64(1), u.Sequence)
	assert.Equal(t, []float64{100, 200, 50, 25}, u.Waveform.Amplitude)
	assert.Equal(t, []float64{0, 1, 2, 3}, u.Waveform.Index)
	assert.Len(t, u.Histogram, 4)
	require.NotNil(t, u.Spectrum)
	assert.Len(t, u.Spectrum.Amplitude, 4)
	assert.InDelta(t, 375, u.Spectrum.Amplitude[0], 1e-9)
	require.NotNil(t, u.SpectrumBounds)
	assert.InDelta(t, 375*1.03, u.SpectrumBounds.YMax, 1e-9)
	assert.NotEmpty(t, u.Peaks)
	for _, peak := range u.Peaks {
		assert.NotZero(t, peak.Bin)
	}
	require.NotNil(t, u.Features)
	assert.Greater(t, u.Features.Energy, 0.0)
	assert.Contains(t, u.Summary, "0064h (  100)")
	assert.Empty(t, u.AnalysisError)

	assert.Equal(t, 0, p.Queue.Count())
	assert.Equal(t, int64(1), session.Snapshot().FramesProcessed)
}

func TestTickDefaultPeaksCoverEveryNonDCBin(t *testing.T) {
	tick, p, sink, _ := newTestTick(t, nil)
	p.Queue.Enqueue(frame.RawFrame{0, 10, 0, 80, 0, 30, 0, 5, 0, 60, 0, 20, 0, 90, 0, 40})

	require.Equal(t, Processed, tick.Run())
	u := sink.last()
	require.NotNil(t, u)
	require.Len(t, u.Spectrum.Amplitude, 8)

	bins := make([]int, 0, len(u.Peaks))
	for _, peak := range u.Peaks {
		bins = append(bins, peak.Bin)
	}
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7}, bins)
}

func TestTickOneSidedPeaks(t *testing.T) {
	tick, p, sink, _ := newTestTick(t, func(s *configs.Settings) { s.OneSided = true })
	p.Queue.Enqueue(frame.RawFrame{0, 10, 0, 80, 0, 30, 0, 5, 0, 60, 0, 20, 0, 90, 0, 40})

	require.Equal(t, Processed, tick.Run())
	u := sink.last()
	require.NotNil(t, u)

	bins := make([]int, 0, len(u.Peaks))
	for _, peak := range u.Peaks {
		bins = append(bins, peak.Bin)
	}
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, bins)
}

func TestTickMalformedFrame(t *testing.T) {
	tick, p, sink, session := newTestTick(t, nil)
	p.Queue.Enqueue(frame.RawFrame{1, 2, 3})

	assert.Equal(t, Failed, tick.Run())
	assert.Equal(t, 0, sink.count())
	assert.Equal(t, 0, p.Queue.Count())
	assert.Equal(t, int64(1), session.Snapshot().FramesFailed)

	assert.Equal(t, Idle, tick.Run())
}

func TestTickNonPowerOfTwoKeepsWaveform(t *testing.T) {
	tick, p, sink, session := newTestTick(t, nil)
	p.Queue.Enqueue(make(frame.RawFrame, 12))

	assert.Equal(t, Processed, tick.Run())
	u := sink.last()
	require.NotNil(t, u)
	assert.Equal(t, 6, u.Waveform.Len())
	assert.Nil(t, u.Spectrum)
	assert.Nil(t, u.Features)
	assert.Empty(t, u.Peaks)
	assert.Len(t, u.Histogram, 1)
	assert.Contains(t, u.AnalysisError, "not a power of two")
	assert.Equal(t, int64(1), session.Snapshot().AnalysisFailed)
}

func TestTickOptionalAnalyses(t *testing.T) {
	tick, p, sink, _ := newTestTick(t, func(s *configs.Settings) {
		s.IncludeSpectrum = false
		s.IncludeHistogram = false
		s.Normalize = true
	})
	p.Queue.Enqueue(frame.RawFrame{0xff, 0xff, 0, 0})

	assert.Equal(t, Processed, tick.Run())
	u := sink.last()
	require.NotNil(t, u)
	assert.Equal(t, []float64{1, 0}, u.Waveform.Amplitude)
	assert.Nil(t, u.Spectrum)
	assert.Nil(t, u.Histogram)
	assert.Nil(t, u.Peaks)
	assert.Empty(t, u.Summary)
	assert.InDelta(t, 1.03, u.WaveformBounds.YMax, 1e-9)
}

func TestTickGuardDropsOldestWhenNestedTooDeep(t *testing.T) {
	tick, p, sink, session := newTestTick(t, nil)
	for i := 0; i < 30; i++ {
		p.Queue.Enqueue(frame.RawFrame{0, byte(i)})
	}

	var outcomes []Outcome
	nested := 0
	sink.onRender = func(*display.Update) {
		if nested < 24 {
			nested++
			outcomes = append(outcomes, tick.Run())
		}
	}

	outcomes = append(outcomes, tick.Run())

	require.Len(t, outcomes, 25)
	counts := map[Outcome]int{}
	for _, o := range outcomes {
		counts[o]++
	}
	assert.Equal(t, 24, counts[Processed])
	assert.Equal(t, 1, counts[Dropped])
	// The innermost invocation returns first.
	assert.Equal(t, Dropped, outcomes[0])

	assert.Equal(t, 5, p.Queue.Count())
	assert.Equal(t, 24, sink.count())

	snapshot := session.Snapshot()
	assert.Equal(t, int64(24), snapshot.FramesProcessed)
	assert.Equal(t, int64(1), snapshot.FramesDropped)

	// Frames 0..23 were rendered and frame 24 was dropped.
	next, err := p.Queue.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, frame.RawFrame{0, 25}, next)
}

func TestTickFollowsEngineChanges(t *testing.T) {
	tick, p, sink, _ := newTestTick(t, nil)
	payload := frame.RawFrame{0, 100, 0, 200, 0, 50, 0, 25}

	p.Queue.Enqueue(payload)
	require.Equal(t, Processed, tick.Run())
	radix := sink.last().Spectrum.Amplitude

	settings := p.Settings.Load()
	settings.FFTEngine = "gonum"
	p.Settings.Store(settings)

	p.Queue.Enqueue(payload)
	require.Equal(t, Processed, tick.Run())
	assert.Equal(t, "gonum", tick.fft.EngineName())
	assert.InDeltaSlice(t, radix, sink.last().Spectrum.Amplitude, 1e-9)
}

func TestSchedulerDrainsQueue(t *testing.T) {
	tick, p, sink, _ := newTestTick(t, func(s *configs.Settings) {
		s.TickInterval = 2 * time.Millisecond
	})
	scheduler := NewScheduler(tick, p.Settings)

	for i := 0; i < 5; i++ {
		p.Queue.Enqueue(frame.RawFrame{0, byte(i), 0, 1})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scheduler.Run(ctx) }()

	require.Eventually(t, func() bool { return sink.count() == 5 }, 2*time.Second, 2*time.Millisecond)

	settings := p.Settings.Load()
	settings.TickInterval = time.Millisecond
	p.Settings.Store(settings)

	p.Queue.Enqueue(frame.RawFrame{0, 9, 0, 1})
	require.Eventually(t, func() bool { return sink.count() == 6 }, 2*time.Second, 2*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "processed", Processed.String())
	assert.Equal(t, "dropped", Dropped.String())
	assert.Equal(t, "failed", Failed.String())
}
