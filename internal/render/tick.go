// Package render drains the frame queue on a fixed cadence, analyses each
// frame and hands the result to the display sink.
package render

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/Unknown6656/UDPOscilloscope/configs"
	"github.com/Unknown6656/UDPOscilloscope/internal/display"
	"github.com/Unknown6656/UDPOscilloscope/internal/metrics"
	"github.com/Unknown6656/UDPOscilloscope/internal/pipeline"
	"github.com/Unknown6656/UDPOscilloscope/pkg/common"
	"github.com/Unknown6656/UDPOscilloscope/pkg/frame"
	"github.com/Unknown6656/UDPOscilloscope/pkg/spectral"
)

// Outcome is what a single tick did
type Outcome int

const (
	// Idle means the queue was empty
	Idle Outcome = iota
	// Processed means one frame was decoded, analysed and rendered
	Processed
	// Dropped means the overrun guard discarded the oldest frame
	Dropped
	// Failed means the dequeued frame was malformed and discarded
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Idle:
		return "idle"
	case Processed:
		return metrics.OutcomeProcessed
	case Dropped:
		return metrics.OutcomeDropped
	case Failed:
		return metrics.OutcomeFailed
	default:
		return "unknown"
	}
}

// Tick processes at most one frame per invocation. Invocations may nest when
// the sink re-enters the tick; once the nesting depth exceeds the configured
// threshold a nested invocation drops the oldest frame instead of processing.
type Tick struct {
	pipeline *pipeline.Pipeline
	sink     display.Sink
	logger   logging.Logger

	depth    atomic.Int32
	sequence atomic.Uint64

	fftMu      sync.Mutex
	fft        *spectral.FFT
	fftEngine  string
	fftWorkers int
}

// NewTick creates a tick that renders into sink
func NewTick(p *pipeline.Pipeline, sink display.Sink) *Tick {
	return &Tick{
		pipeline: p,
		sink:     sink,
		logger: p.Logger.WithFields(logging.Fields{
			"component": "render",
		}),
	}
}

// Run executes one tick
func (t *Tick) Run() Outcome {
	depth := int(t.depth.Add(1))
	defer t.depth.Add(-1)

	queue := t.pipeline.Queue
	if queue.Count() == 0 {
		return Idle
	}

	settings := t.pipeline.Settings.Load()
	if depth > settings.ReentrancyThreshold {
		return t.dropOldest(depth, settings.ReentrancyThreshold)
	}

	raw, err := queue.Dequeue()
	if err != nil {
		return Idle
	}

	start := time.Now()
	update, err := t.process(raw, settings)
	if err != nil {
		t.pipeline.Metrics.FrameOutcome(metrics.OutcomeFailed, time.Since(start))
		t.logger.Warn("Discarded malformed frame", logging.Fields{
			"bytes": len(raw),
			"error": err.Error(),
		})
		return Failed
	}

	if err := t.sink.Render(update); err != nil {
		t.logger.Warn("Display sink failed", logging.Fields{
			"sink":     t.sink.Name(),
			"sequence": update.Sequence,
			"error":    err.Error(),
		})
	}

	t.pipeline.Metrics.FrameOutcome(metrics.OutcomeProcessed, time.Since(start))
	return Processed
}

func (t *Tick) dropOldest(depth, threshold int) Outcome {
	dropped, err := t.pipeline.Queue.Dequeue()
	if err != nil {
		return Idle
	}

	overrun := common.NewScopeError(common.KindOverrun, "render", "having a hard time keeping up", nil)
	t.pipeline.Metrics.FrameOutcome(metrics.OutcomeDropped, 0)
	t.logger.Warn("Having a hard time keeping up", logging.Fields{
		"depth":         depth,
		"threshold":     threshold,
		"dropped_bytes": len(dropped),
		"queue_len":     t.pipeline.Queue.Count(),
		"error":         overrun.Error(),
	})
	return Dropped
}

// process decodes raw and runs the histogram and spectrum concurrently. A
// spectrum failure is reported on the update; only a decode failure is an error.
func (t *Tick) process(raw frame.RawFrame, settings configs.Settings) (*display.Update, error) {
	waveform, err := frame.NewDecoder(settings.Normalize, settings.Workers).Decode(raw)
	if err != nil {
		return nil, err
	}

	update := &display.Update{
		Sequence:       t.sequence.Add(1),
		Timestamp:      time.Now(),
		Waveform:       waveform,
		WaveformBounds: display.WaveformBounds(waveform.Len(), waveform.Normalized, settings.AxisMargin),
	}

	var g errgroup.Group
	if settings.IncludeHistogram {
		g.Go(func() error {
			update.Histogram = spectral.ValueHistogram(waveform, settings.TopK)
			return nil
		})
	}
	if settings.IncludeSpectrum {
		g.Go(func() error {
			return t.spectrum(update, settings)
		})
	}

	if err := g.Wait(); err != nil {
		t.pipeline.Metrics.AnalysisFailed(string(common.KindOf(err)))
		t.logger.Warn("Spectrum unavailable for frame", logging.Fields{
			"sequence": update.Sequence,
			"samples":  waveform.Len(),
			"error":    err.Error(),
		})
		update.AnalysisError = err.Error()
	}

	update.Summary = spectral.FormatSummary(update.Histogram, update.Peaks)
	return update, nil
}

func (t *Tick) spectrum(update *display.Update, settings configs.Settings) error {
	fft, err := t.fftFor(settings)
	if err != nil {
		return err
	}

	magnitudes, err := fft.Magnitude(update.Waveform.Amplitude)
	if err != nil {
		return err
	}

	bins := make([]float64, len(magnitudes))
	for i := range bins {
		bins[i] = float64(i)
	}
	bounds := display.SpectrumBounds(len(magnitudes), floats.Max(magnitudes), settings.AxisMargin)

	update.Spectrum = &frame.Waveform{Index: bins, Amplitude: magnitudes}
	update.SpectrumBounds = &bounds
	opts := spectral.PeakOptions{
		OneSided:   settings.OneSided,
		SampleRate: settings.SampleRate,
	}
	features := spectral.SpectralFeatures(magnitudes, opts)
	update.Features = &features
	update.Peaks = spectral.PeakFrequencies(magnitudes, settings.TopK, opts)
	return nil
}

// fftFor returns the FFT for the configured engine, rebuilding it when the
// engine or worker count changed since the last frame.
func (t *Tick) fftFor(settings configs.Settings) (*spectral.FFT, error) {
	t.fftMu.Lock()
	defer t.fftMu.Unlock()

	if t.fft != nil && t.fftEngine == settings.FFTEngine && t.fftWorkers == settings.Workers {
		return t.fft, nil
	}

	fft, err := spectral.NewFFT(settings.FFTEngine, settings.Workers)
	if err != nil {
		return nil, err
	}
	t.fft, t.fftEngine, t.fftWorkers = fft, settings.FFTEngine, settings.Workers
	return fft, nil
}
